package commands

import (
	"github.com/spf13/cobra"

	"github.com/mattjoyce/sensorgate/internal/auth"
	"github.com/mattjoyce/sensorgate/internal/config"
)

const version = "0.1.0"

var (
	configPath string
	envFile    string
)

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "sensorgate",
		Short:        "HMAC-verified JSON ingest for IoT devices",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (optional; env only when empty)")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before configuration")

	root.AddCommand(serveCmd(), signCmd(), configCmd(), versionCmd())
	return root
}

// loadAuthenticator loads configuration and builds the shared-key authenticator.
func loadAuthenticator() (*config.Config, *auth.Authenticator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	a, err := auth.New([]byte(cfg.Server.Secret))
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}
