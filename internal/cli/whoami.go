package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/nsfwsweep/internal/wire"
)

// WhoamiCmd returns the whoami command
func WhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "whoami",
		Short:        "Check the configured credentials",
		Long:         "Authenticate with the configured credentials and print the account name.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := NewContext()
			defer stop()

			if err := wire.Config().Validate(); err != nil {
				return err
			}

			session, err := wire.Authenticator().Authenticate(ctx, wire.Credentials())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "u/%s\n", session.Username())
			return nil
		},
	}
}
