package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/piggybook/smsledger/internal/model"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage bank SMS extraction patterns",
	}

	cmd.AddCommand(patternsAddCmd())
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsReviewCmd("approve", "Approve a pending pattern for runtime matching", model.StatusApproved))
	cmd.AddCommand(patternsReviewCmd("reject", "Reject a pending pattern", model.StatusRejected))

	return cmd
}

func patternsAddCmd() *cobra.Command {
	var pattern model.Pattern
	var category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Contribute a new pattern (enters review as PENDING)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if category != "" {
				parsed, ok := model.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				pattern.Category = parsed
			}
			pattern.Status = model.StatusPending

			if err := store.CreatePattern(ctx, &pattern); err != nil {
				return err
			}

			fmt.Printf("Pattern %d created (PENDING review)\n", pattern.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern.BankAddress, "bank", "", "bank address the pattern is scoped to")
	cmd.Flags().StringVar(&pattern.BankName, "bank-name", "", "human-readable bank name")
	cmd.Flags().StringVar(&pattern.Regex, "regex", "", "regex with named capture groups")
	cmd.Flags().StringVar(&pattern.Sample, "sample", "", "sample message the pattern matches")
	cmd.Flags().StringVar(&category, "category", "", "curated category for matches (optional)")
	cmd.Flags().IntVar(&pattern.Priority, "priority", 0, "matching priority (higher tried first)")
	cmd.Flags().StringVar(&pattern.CreatedBy, "user", "", "contributing user")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("regex")

	return cmd
}

func patternsListCmd() *cobra.Command {
	var bankAddress, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetPatterns(ctx, bankAddress, model.PatternStatus(status))
			if err != nil {
				return err
			}

			if len(patterns) == 0 {
				fmt.Println("No patterns found.")
				return nil
			}

			for _, p := range patterns {
				fmt.Printf("%-6d %-10s %-8s prio=%-3d %s\n", p.ID, p.BankAddress, p.Status, p.Priority, p.Regex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bankAddress, "bank", "", "filter by bank address")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (PENDING, APPROVED, REJECTED)")

	return cmd
}

func patternsReviewCmd(verb, short string, status model.PatternStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " [pattern id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid pattern id %q", args[0])
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdatePatternStatus(ctx, id, status); err != nil {
				return err
			}

			fmt.Printf("Pattern %d is now %s\n", id, status)
			return nil
		},
	}
}
