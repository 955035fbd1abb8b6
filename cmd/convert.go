package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"tubeconv/internal/clix"
	"tubeconv/internal/models"
)

var convertCmd = &cobra.Command{
	Use:   "convert <url>",
	Short: "Convert a YouTube video and save the result",
	Long: `Submits the video to the conversion service, polls until the job is
finished and downloads the converted file through the service's proxy.

Examples:
  tubeconv convert https://youtu.be/dQw4w9WgXcQ
  tubeconv convert -f mp3 -q 192 https://www.youtube.com/watch?v=dQw4w9WgXcQ -o ~/Music`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		req := clix.ParseConvertRequest(cmd.Flags(), args[0])
		dir := clix.ParseOutputDir(cmd.Flags(), "")
		console := NewConsole(cmd.OutOrStdout())

		ctrl, err := appInstance.NewController(console, console, dir)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		_, delivered, err := ctrl.Convert(ctx, req)
		switch {
		case errors.Is(err, models.ErrRetrievalWarning):
			// the job succeeded and the console already showed the direct link
			return nil
		case err != nil:
			return errReported{err}
		}

		if delivered != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s (%d bytes)\n", delivered.Path, delivered.Size)
		}
		return nil
	},
}

func init() {
	clix.AddConvertFlags(convertCmd.Flags())
}
