package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tubeconv/internal/app"
	"tubeconv/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tubeconv",
	Short: "Convert YouTube videos to mp4 or mp3 through a conversion service",
	Long: `tubeconv submits a conversion job to a remote conversion service, follows
its progress until it finishes, and saves the converted file locally.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// rootPersistentPreRunE runs before any subcommand's RunE. It is attached in
// init() because it refers to rootCmd (via skipAppInit).
func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	if skipAppInit(cmd) {
		return nil
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appInstance, err := app.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), appKey, appInstance)
	cmd.SetContext(ctx)
	return nil
}

func skipAppInit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "completion", "__complete":
		return true
	}
	return cmd == rootCmd
}

// errReported marks a failure the console has already shown to the user.
type errReported struct{ err error }

func (e errReported) Error() string { return e.err.Error() }
func (e errReported) Unwrap() error { return e.err }

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported errReported
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type contextKey string

const appKey contextKey = "app"

func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentPreRunE = rootPersistentPreRunE
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.tubeconv/config.yaml)")
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(sandboxCmd)
}
