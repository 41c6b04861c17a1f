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
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect guild configurations",
}

var configGetCmd = &cobra.Command{
	Use:   "get <guild>",
	Short: "Print the configuration of a guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s dataaccess.Store, _ *slog.Logger) error {
			g, err := s.GetGuildByID(ctx, args[0])
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("guild %s has no configuration", args[0])
			} else if err != nil {
				return fmt.Errorf("error getting guild: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), g)
		})
	},
}
