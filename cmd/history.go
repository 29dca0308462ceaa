package cmd

import (
	"context"
	"fmt"
	"strconv"

	"gold-analyst/internal/model"
	"gold-analyst/internal/repository"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the stored analysis history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored analyses, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, appDep *AppDependency, history repository.HistoryRepository) error {
			entries := history.List()
			if historyJSON {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			printHistoryList(cmd.OutOrStdout(), entries)
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id|#>",
	Short: "Show one stored analysis by id or list position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, appDep *AppDependency, history repository.HistoryRepository) error {
			entry, err := findEntry(history, args[0])
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd.OutOrStdout(), entry)
			}
			printEntry(cmd.OutOrStdout(), appDep.cfg.App.Instrument, entry)
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id|#>",
	Short: "Delete one stored analysis by id or list position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, appDep *AppDependency, history repository.HistoryRepository) error {
			entry, err := findEntry(history, args[0])
			if err != nil {
				return err
			}
			if err := history.Remove(ctx, entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", entry.ID)
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(ctx context.Context, appDep *AppDependency, history repository.HistoryRepository) error {
			if err := history.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		})
	},
}

// withHistory opens only the history storage; the analysis provider is not needed here.
func withHistory(fn func(ctx context.Context, appDep *AppDependency, history repository.HistoryRepository) error) error {
	ctx := context.Background()
	appDep, err := NewAppDependency(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	history := repository.NewHistoryRepository(appDep.slot, appDep.cfg.App.HistoryCapacity, appDep.log)
	history.Load(ctx)
	return fn(ctx, appDep, history)
}

// findEntry accepts an entry id or its 1-based position in the list.
func findEntry(history repository.HistoryRepository, ref string) (model.HistoryEntry, error) {
	if entry, ok := history.Select(ref); ok {
		return entry, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		entries := history.List()
		if n >= 1 && n <= len(entries) {
			return entries[n-1], nil
		}
	}
	return model.HistoryEntry{}, fmt.Errorf("%w: %s", model.ErrHistoryNotFound, ref)
}

func init() {
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
