package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tubeconv/internal/apihandlers"
)

var (
	sandboxAddr string
	sandboxPort string
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local stand-in for the conversion service",
	Long: `Starts an HTTP server that speaks the conversion service API from a
fixed script: every job finishes after a few status polls and serves a small
placeholder file. Point backend.url at it to try tubeconv offline.

Example:
  tubeconv sandbox --port 5000
  TUBECONV_BACKEND_URL=http://localhost:5000 tubeconv convert https://youtu.be/dQw4w9WgXcQ`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)
		router := gin.New()
		router.Use(gin.Recovery())

		sandbox := apihandlers.NewSandbox()
		sandbox.Register(router.Group("/api"))

		listenAddr := fmt.Sprintf("%s:%s", sandboxAddr, sandboxPort)
		srv := &http.Server{Addr: listenAddr, Handler: router}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Infof("Sandbox conversion service listening on http://%s/api", listenAddr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to run sandbox server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("sandbox shutdown: %w", err)
		}
		log.Info("Sandbox stopped.")
		return nil
	},
}

func init() {
	sandboxCmd.Flags().StringVar(&sandboxAddr, "addr", "localhost", "Address to listen on (e.g., '0.0.0.0' for all interfaces)")
	sandboxCmd.Flags().StringVar(&sandboxPort, "port", "5000", "Port to listen on")
}
