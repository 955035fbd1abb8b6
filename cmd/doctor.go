package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the conversion service is reachable and healthy",
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get app instance: %w", err)
		}
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Checking %s ...\n", appInstance.BaseURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), appInstance.Config.Poll.Timeout)
		defer cancel()
		health, err := appInstance.JobClient.Health(ctx)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		if health.Status != "healthy" {
			fmt.Fprintf(out, "Service status: %s\n", color.YellowString(health.Status))
		} else {
			fmt.Fprintf(out, "Service status: %s\n", color.GreenString(health.Status))
		}
		if health.Version != "" {
			fmt.Fprintf(out, "Version: %s\n", health.Version)
		}
		fmt.Fprintf(out, "Active tasks: %d\n", health.ActiveTasks)
		for _, w := range health.Warnings {
			fmt.Fprintf(out, "  - %s %s\n", color.YellowString("WARN"), w)
		}
		return nil
	},
}
