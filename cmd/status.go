package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tubeconv/internal/models"
	"tubeconv/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show the current state of a conversion job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), appInstance.Config.Poll.Timeout)
		defer cancel()

		st, err := appInstance.JobClient.JobStatus(ctx, args[0])
		if err != nil {
			return fmt.Errorf("error fetching status for %s: %w", args[0], err)
		}

		renderStatusTable(cmd.OutOrStdout(), args[0], st)
		return nil
	},
}

func renderStatusTable(out io.Writer, taskID string, st *store.StatusResponse) {
	progress := "-"
	if st.Progress != nil {
		progress = strconv.Itoa(int(math.Round(*st.Progress))) + "%"
	}
	status := models.ParseJobStatus(st.Status)

	detail := st.Message
	switch status {
	case models.JobStatusCompleted:
		detail = st.DownloadURL
	case models.JobStatusFailed:
		detail = st.Error
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Task ID", "Status", "Progress", "File", "Detail"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.Append([]string{taskID, status.String(), progress, st.Filename, detail})
	table.Render()
}
