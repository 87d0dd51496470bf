package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybook/smsledger/internal/model"
)

func transactionsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List extracted transactions for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.GetTransactionsByUser(ctx, userID)
			if err != nil {
				return err
			}

			if len(transactions) == 0 {
				fmt.Println("No transactions found.")
				return nil
			}

			for i := range transactions {
				printTransaction(&transactions[i])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user to list transactions for")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printTransaction(txn *model.Transaction) {
	fmt.Printf("%s  %-8s %10s  %-15s %-13s %s\n",
		txn.Date.Format("2006-01-02"),
		txn.Type,
		txn.Amount.StringFixed(2),
		txn.Merchant,
		txn.Category,
		txn.BankName)
}
