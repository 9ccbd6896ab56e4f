package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/nsfwsweep/internal/models"
	"github.com/example/nsfwsweep/internal/ports/primary"
	"github.com/example/nsfwsweep/internal/ports/secondary"
	"github.com/example/nsfwsweep/internal/wire"
)

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the run journal",
		Long: `View and manage the journal of past runs.

The journal records every error, timeout, skip and per-category summary.
The plain-text error log (cleanup_log.txt) holds the same failures.`,
	}

	cmd.AddCommand(logTailCmd())
	cmd.AddCommand(logShowCmd())
	cmd.AddCommand(logPruneCmd())
	return cmd
}

func logTailCmd() *cobra.Command {
	var (
		limit    int
		category string
		runID    string
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent journal entries",
		Long:  "Show recent journal entries (default 50), oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := NewContext()
			defer stop()

			filters, err := tailFilters(limit, category, runID, kind)
			if err != nil {
				return err
			}

			service, err := wire.LogService()
			if err != nil {
				return err
			}
			entries, err := service.ListLogs(ctx, filters)
			if err != nil {
				return fmt.Errorf("failed to fetch logs: %w", err)
			}

			printLogEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (saved, upvoted, downvoted)")
	cmd.Flags().StringVar(&runID, "run", "", "Filter by run ID")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (error, timeout, skip, summary)")
	return cmd
}

// tailFilters validates the tail flags. An empty category means every category.
func tailFilters(limit int, category, runID, kind string) (primary.LogFilters, error) {
	if limit <= 0 {
		limit = 50
	}
	if category != "" {
		parsed, err := models.ParseCategory(category)
		if err != nil {
			return primary.LogFilters{}, err
		}
		category = string(parsed)
	}
	return primary.LogFilters{
		RunID:    runID,
		Category: category,
		Kind:     kind,
		Limit:    limit,
	}, nil
}

func logShowCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show the history of one item",
		Long:  "Show every journal entry for an item fullname (e.g. t3_abc123)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := NewContext()
			defer stop()

			service, err := wire.LogService()
			if err != nil {
				return err
			}
			entries, err := service.ListLogs(ctx, primary.LogFilters{
				ItemID: args[0],
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("failed to fetch logs: %w", err)
			}

			printLogEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum entries to show")
	return cmd
}

func logPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old journal entries",
		Long:  "Delete journal entries older than the specified number of days (default 30)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := NewContext()
			defer stop()

			if days <= 0 {
				days = 30
			}

			service, err := wire.LogService()
			if err != nil {
				return err
			}
			count, err := service.PruneLogs(ctx, days)
			if err != nil {
				return fmt.Errorf("failed to prune logs: %w", err)
			}

			out := cmd.OutOrStdout()
			if count == 0 {
				fmt.Fprintf(out, "No log entries older than %d days found.\n", days)
			} else {
				fmt.Fprintf(out, "Pruned %d log entries older than %d days.\n", count, days)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Delete entries older than N days")
	return cmd
}

func printLogEntries(out io.Writer, entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No log entries found.")
		return
	}

	fmt.Fprintf(out, "Found %d log entries:\n\n", len(entries))

	// Print in reverse order (oldest first) for tail view
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(out, entries[i])
	}
}

func printLogEntry(out io.Writer, entry *primary.LogEntry) {
	// Format: timestamp | run | kind | category/item | message
	category := entry.Category
	if category == "" {
		category = "-"
	}
	item := entry.ItemID
	if item == "" {
		item = "-"
	}

	fmt.Fprintf(out, "%s | %s | %s | %s/%s | %s\n",
		formatTimestamp(entry.Timestamp),
		shortRunID(entry.RunID),
		kindLabel(entry.Kind),
		category,
		item,
		entry.Message,
	)
}

func kindLabel(kind string) string {
	label := fmt.Sprintf("%-7s", kind)
	switch kind {
	case secondary.EventError:
		return color.RedString(label)
	case secondary.EventTimeout:
		return color.YellowString(label)
	case secondary.EventSkip:
		return color.CyanString(label)
	case secondary.EventSummary:
		return color.GreenString(label)
	default:
		return label
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}
