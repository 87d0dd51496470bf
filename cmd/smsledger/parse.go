package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/piggybook/smsledger/internal/common"
)

func parseCmd() *cobra.Command {
	var (
		bankAddress string
		userID      string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "parse [sms text]",
		Short: "Extract a transaction from a bank SMS",
		Long: `Parse a bank SMS against the approved patterns for its sender and save
the extracted, categorized transaction. Messages no pattern can extract
are queued as unparsed for manual triage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			eng := newEngine(store, logger)
			smsText := args[0]

			if dryRun {
				txn, parseErr := eng.Parse(ctx, smsText, bankAddress)
				if parseErr != nil {
					return parseErr
				}
				printTransaction(txn)
				return nil
			}

			txn, err := eng.ParseAndSave(ctx, smsText, bankAddress, userID)
			if err != nil {
				if errors.Is(err, common.ErrNoMatch) {
					fmt.Printf("Message queued for manual review: %s\n", err)
					return nil
				}
				return err
			}

			printTransaction(txn)
			return nil
		},
	}

	cmd.Flags().StringVar(&bankAddress, "bank", "", "bank address (SMS sender short code)")
	cmd.Flags().StringVar(&userID, "user", "", "user to attribute the transaction to")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse without saving anything")
	_ = cmd.MarkFlagRequired("bank")

	return cmd
}
