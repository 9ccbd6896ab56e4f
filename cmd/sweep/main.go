package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/nsfwsweep/internal/cli"
	"github.com/example/nsfwsweep/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "sweep",
		Short:   "sweep - remove NSFW items from a Reddit account's saved and voted lists",
		Version: version.String(),
		Long: `sweep lists the items an account has saved, upvoted or downvoted and
unsaves or clears the vote on everything flagged NSFW. It keeps passing over
each list until no NSFW items remain, retrying failures and skipping items
Reddit will not let it change.`,
		PersistentPreRunE: cli.Setup,
	}
	cli.AddGlobalFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.WhoamiCmd())
	rootCmd.AddCommand(cli.ConfigCmd())
	rootCmd.AddCommand(cli.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
