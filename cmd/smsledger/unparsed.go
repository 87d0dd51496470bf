package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func unparsedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unparsed",
		Short: "Triage messages that could not be extracted",
	}

	cmd.AddCommand(unparsedListCmd())
	cmd.AddCommand(unparsedResolveCmd())
	cmd.AddCommand(unparsedDeleteCmd())

	return cmd
}

func unparsedListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued unparsed messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			messages, err := store.GetUnparsedMessages(ctx, !all)
			if err != nil {
				return err
			}

			if len(messages) == 0 {
				fmt.Println("No unparsed messages.")
				return nil
			}

			for _, msg := range messages {
				state := " "
				if msg.Processed {
					state = "x"
				}
				fmt.Printf("[%s] %-6d %-10s %s\n       %s\n", state, msg.ID, msg.BankAddress, msg.Reason, msg.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include already-processed messages")

	return cmd
}

func unparsedResolveCmd() *cobra.Command {
	var unprocess bool

	cmd := &cobra.Command{
		Use:   "resolve [message id]",
		Short: "Mark an unparsed message as processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q", args[0])
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.MarkUnparsedProcessed(ctx, id, !unprocess); err != nil {
				return err
			}

			fmt.Printf("Message %d updated\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unprocess, "undo", false, "mark the message unprocessed instead")

	return cmd
}

func unparsedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [message id]",
		Short: "Delete an unparsed message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid message id %q", args[0])
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteUnparsedMessage(ctx, id); err != nil {
				return err
			}

			fmt.Printf("Message %d deleted\n", id)
			return nil
		},
	}
}
