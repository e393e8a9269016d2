package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// sign [file]: print the signature a device must send for this exact body.
func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign [file]",
		Short: "Print the X-Signature value for a body (stdin when no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, authenticator, err := loadAuthenticator()
			if err != nil {
				return err
			}

			var body []byte
			if len(args) == 1 {
				body, err = os.ReadFile(args[0])
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), authenticator.Sign(body))
			return nil
		},
	}
}
