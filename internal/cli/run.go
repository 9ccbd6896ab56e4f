package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/nsfwsweep/internal/core/cleanup"
	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/secondary"
	"github.com/example/nsfwsweep/internal/version"
	"github.com/example/nsfwsweep/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var (
		category  string
		timeout   time.Duration
		maxPasses int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Remove NSFW items from saved, upvoted and downvoted lists",
		Long: `Repeatedly list the account's saved, upvoted or downvoted items and
unsave or clear the vote on every item flagged NSFW, until none remain.

Failed and timed-out items are retried on the next pass. Archived items and
items Reddit refuses to change are skipped and logged.

Examples:
  sweep run                      # interactive menu
  sweep run --category saved
  sweep run --category all --timeout 30s --max-passes 10`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := NewContext()
			defer stop()

			cfg := wire.Config()
			if cmd.Flags().Changed("timeout") {
				seconds, err := timeoutSeconds(timeout)
				if err != nil {
					return err
				}
				cfg.TimeoutSeconds = seconds
			}
			if cmd.Flags().Changed("max-passes") {
				cfg.MaxPasses = maxPasses
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			runID := uuid.NewString()

			color.New(color.FgMagenta).Fprintf(out, "=== Reddit NSFW Cleaner %s ===\n\n", version.Version)

			session, err := connect(ctx, wire.Authenticator(), wire.Credentials(), wire.EventLog(), runID, in, out)
			if err != nil {
				return err
			}

			categories, err := selectCategories(category, in, out)
			if err != nil {
				return err
			}

			wire.Logger().Debug("starting run", "run", runID, "categories", categories, "timeout", cfg.Timeout())
			_, err = wire.CleanupAdapterWithOutput(session, out).RunAll(ctx, runID, categories, wire.ErrorLogPath())
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "saved, upvoted, downvoted or all (prompts when omitted)")
	cmd.Flags().DurationVar(&timeout, "timeout", 20*time.Second, "Time budget for a single unsave or vote call")
	cmd.Flags().IntVar(&maxPasses, "max-passes", 0, "Stop after N passes per category (0 = until clean)")

	return cmd
}

// timeoutSeconds converts the --timeout flag into whole seconds.
func timeoutSeconds(d time.Duration) (int, error) {
	if d < time.Second || d%time.Second != 0 {
		return 0, fmt.Errorf("--timeout must be a whole number of seconds, got %s", d)
	}
	return int(d / time.Second), nil
}

// connect authenticates, offering a retry after every failure.
func connect(ctx context.Context, auth secondary.Authenticator, creds secondary.Credentials, events secondary.EventLog, runID string, in *bufio.Reader, out io.Writer) (secondary.ContentService, error) {
	for {
		color.New(color.FgCyan).Fprintln(out, "Connecting to Reddit API...")

		session, err := auth.Authenticate(ctx, creds)
		if err == nil {
			color.New(color.FgGreen).Fprintf(out, "✓ Connected as: %s\n\n", session.Username())
			return session, nil
		}

		color.New(color.FgRed).Fprintf(out, "✗ Connection failed: %v\n", err)
		if recErr := events.Record(ctx, secondary.Event{
			RunID:   runID,
			Time:    time.Now(),
			Kind:    secondary.EventError,
			Message: fmt.Sprintf("connection failed: %v", err),
		}); recErr != nil {
			wire.Logger().Warn("failed to record event", "err", recErr)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !confirmPrompt(in, out, color.YellowString("Retry connection? (y/n): ")) {
			return nil, fmt.Errorf("could not connect to Reddit: %w", err)
		}
	}
}

// selectCategories resolves the --category flag or prompts with the menu.
func selectCategories(flag string, in *bufio.Reader, out io.Writer) ([]models.Category, error) {
	if flag != "" {
		return cleanup.ParseSelection(flag)
	}

	prompt := "Select action:\n" + strings.Join(cleanup.MenuOptions, "\n") + "\nChoice: "
	choice, err := readLine(in, out, color.CyanString(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to read choice: %w", err)
	}
	return cleanup.ParseSelection(choice)
}
