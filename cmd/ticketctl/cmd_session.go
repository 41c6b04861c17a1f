package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage configuration sessions",
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear <guild>",
	Short: "Clear the pending configuration session of a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s dataaccess.Store, l *slog.Logger) error {
			if err := dataaccess.NewConfigStore(l, s).ClearSession(ctx, args[0]); err != nil {
				return fmt.Errorf("error clearing session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session of guild %s cleared.\n", args[0])
			return nil
		})
	},
}
