package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sensorgate/internal/log"
	"github.com/mattjoyce/sensorgate/internal/webhook"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, authenticator, err := loadAuthenticator()
			if err != nil {
				return err
			}

			log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
			logger := log.WithComponent("webhook")

			wcfg, err := webhook.FromGlobalConfig(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("sensorgate starting", "version", version, "config", cfg.Path, "listen", wcfg.Listen)

			server := webhook.New(wcfg, authenticator, logger)
			if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("server stopped", "error", err)
				return err
			}
			log.Info("sensorgate stopped")
			return nil
		},
	}
}
