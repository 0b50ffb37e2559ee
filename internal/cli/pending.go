package cli

import (
	"fmt"

	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/pending"
	"github.com/spf13/cobra"
)

var (
	flagSort      string
	flagAll       bool
	flagCanonical string
)

func newPendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Review names that could not be resolved",
	}

	list := &cobra.Command{
		Use:   "list [category]",
		Short: "List unresolved names grouped by cleaned text",
		Long: `List unresolved names grouped by cleaned text with their occurrence count,
first and last sighting and up to three example pages. Without a category all
alias categories are listed. Names already resolved are hidden unless --all.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPendingList,
	}
	list.Flags().StringVar(&flagSort, "sort", string(SortByCount), "Sort order: count, recent or name")
	list.Flags().BoolVar(&flagAll, "all", false, "Include names already marked resolved")

	resolve := &cobra.Command{
		Use:   "resolve <category> <raw>",
		Short: "Mark a name resolved without registering an alias",
		Args:  cobra.ExactArgs(2),
		RunE:  runPendingResolve,
	}
	resolve.Flags().StringVar(&flagCanonical, "canonical", "", "Canonical name recorded with the marker")

	cmd.AddCommand(list, resolve)
	return cmd
}

func runPendingList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(FormatText)
	if err != nil {
		return err
	}
	order, ok := parseSortOrder(flagSort)
	if !ok {
		return fmt.Errorf("invalid sort order: %s (must be 'count', 'recent' or 'name')", flagSort)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(alias.Categories))
	if len(args) == 1 {
		keys = append(keys, pending.FileKey(args[0], ""))
	} else {
		for _, c := range alias.Categories {
			keys = append(keys, string(c))
		}
	}

	reports := make([]PendingReport, 0, len(keys))
	for _, key := range keys {
		var names []pending.Summary
		if flagAll {
			names, err = a.pending.Summarize(key)
		} else {
			names, err = a.pending.Pending(key)
		}
		if err != nil {
			return fmt.Errorf("reading pending %s: %w", key, err)
		}
		sortSummaries(names, order)
		reports = append(reports, PendingReport{Category: key, Names: names})
	}

	return WritePending(cmd.OutOrStdout(), reports, format, flagVerbose)
}

func runPendingResolve(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	raw := alias.Canonicalize(args[1])
	if raw == "" {
		return alias.ErrEmptyName
	}
	if err := a.pending.MarkResolved(args[0], raw, flagCanonical); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "[resolved] %s: %s\n", pending.FileKey(args[0], ""), raw)
	return nil
}
