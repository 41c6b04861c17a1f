package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ticketCmd)
	ticketCmd.AddCommand(ticketGetCmd)
}

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Inspect tickets",
}

var ticketGetCmd = &cobra.Command{
	Use:   "get <guild> <channel>",
	Short: "Print the ticket held by a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s dataaccess.Store, _ *slog.Logger) error {
			t, err := s.GetTicket(ctx, args[0], args[1])
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("channel %s is not a ticket of guild %s", args[1], args[0])
			} else if err != nil {
				return fmt.Errorf("error getting ticket: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), t)
		})
	},
}
