package cli

import (
	"fmt"

	"github.com/pfrederiksen/npb-scrape/internal/alias"
	"github.com/pfrederiksen/npb-scrape/internal/logger"
	"github.com/spf13/cobra"
)

var (
	flagSource    string
	flagNote      string
	flagOverwrite bool
)

func newAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Register, look up and promote name aliases",
		Long: `Aliases map a raw name as printed on a page to its canonical dictionary name.
New aliases are staged in the local layer and reach the base layer on promote.

Categories: teams_first, teams_farm, stadiums, clubs (singular forms accepted).`,
		Example: `  npb-scrape alias register stadium '甲子園' '阪神甲子園球場' --source='https://...' --note='short name'
  npb-scrape alias resolve stadium '甲子園'
  npb-scrape alias promote`,
	}

	register := &cobra.Command{
		Use:   "register <category> <raw> <canonical>",
		Short: "Stage an alias in the local layer",
		Args:  cobra.ExactArgs(3),
		RunE:  runAliasRegister,
	}
	register.Flags().StringVar(&flagSource, "source", "", "URL the raw name was seen on")
	register.Flags().StringVar(&flagNote, "note", "", "Free-form note stored with the registration")
	register.Flags().BoolVar(&flagOverwrite, "overwrite", false, "Replace an existing different mapping")

	resolve := &cobra.Command{
		Use:   "resolve <category> <raw>",
		Short: "Look a raw name up in the merged alias layers",
		Args:  cobra.ExactArgs(2),
		RunE:  runAliasResolve,
	}

	promote := &cobra.Command{
		Use:   "promote",
		Short: "Merge the local layer into the base layer and clear it",
		Args:  cobra.NoArgs,
		RunE:  runAliasPromote,
	}

	cmd.AddCommand(register, resolve, promote)
	return cmd
}

func runAliasRegister(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(FormatText)
	if err != nil {
		return err
	}
	category, err := alias.ParseCategory(args[0])
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	meta := map[string]string{}
	if flagSource != "" {
		meta["source"] = flagSource
	}
	if flagNote != "" {
		meta["note"] = flagNote
	}

	result, err := a.aliases.Register(category, args[1], args[2], meta, flagOverwrite)
	if err != nil {
		return fmt.Errorf("registering alias: %w", err)
	}

	if result != alias.ResultConflict {
		if err := a.pending.MarkResolved(string(category), args[1], alias.Canonicalize(args[2])); err != nil {
			// The alias is stored; the stale pending entry only affects reports.
			logger.Warn("Failed to mark pending name resolved", logger.Fields{
				"category": category,
				"raw":      args[1],
				"error":    err.Error(),
			})
		}
	}

	return WriteRegister(cmd.OutOrStdout(), &RegisterResult{
		Result:    result,
		Category:  category,
		Raw:       args[1],
		Canonical: args[2],
	}, format)
}

func runAliasResolve(cmd *cobra.Command, args []string) error {
	category, err := alias.ParseCategory(args[0])
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	canonical, ok, err := a.store.Resolve(category, args[1])
	if err != nil {
		return err
	}
	if !ok {
		norm, err := a.store.Normalizer()
		if err != nil {
			return err
		}
		canonical, ok = norm.Normalize(category, args[1])
	}

	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "(not found)")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), canonical)
	return nil
}

func runAliasPromote(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(FormatText)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	report, err := a.aliases.Promote()
	if err != nil {
		return fmt.Errorf("promoting aliases: %w", err)
	}
	return WritePromotion(cmd.OutOrStdout(), report, format, flagVerbose)
}
