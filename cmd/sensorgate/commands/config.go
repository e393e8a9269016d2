package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/sensorgate/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and lock configuration",
	}
	cmd.AddCommand(configCheckCmd(), configLockCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and verify its integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			size, err := cfg.MaxBodyBytes()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range cfg.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "config OK (listen=%s max_body_size=%d log_level=%s)\n",
				cfg.Server.Listen, size, cfg.Service.LogLevel)
			return nil
		},
	}
}

func configLockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock",
		Short: "Write the BLAKE3 hash of the config file to .checksums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("config lock requires --config")
			}

			path, err := filepath.Abs(configPath)
			if err != nil {
				return err
			}
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, "config.yaml")
			}

			manifest, err := config.Lock(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "locked %s blake3:%s -> %s\n",
				filepath.Base(path), manifest.Hashes[filepath.Base(path)], config.ChecksumPath(path))
			return nil
		},
	}
}
