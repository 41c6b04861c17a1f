package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Jacobbrewer1/ticketeer/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const appName = "ticketctl"

var storeOpts dataaccess.OpenOptions

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Inspect and repair the ticket store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Same environment as the bot so that both open the same backend.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&storeOpts.MongoURI, "mongo-uri", os.Getenv("MONGO_URI"), "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&storeOpts.MongoDatabase, "mongo-database", envOr("MONGO_DATABASE", dataaccess.DefaultMongoDatabase), "MongoDB database")
	rootCmd.PersistentFlags().StringVar(&storeOpts.Path, "store-path", envOr("STORE_PATH", "data"), "directory of the file store")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openStore opens the configured backend. Logs go to stderr so that stdout only holds the output.
func openStore(ctx context.Context) (dataaccess.Store, *slog.Logger, error) {
	l, err := logging.CommonLogger(logging.NewConfig(appName).WithOutput(os.Stderr))
	if err != nil {
		return nil, nil, fmt.Errorf("error creating logger: %w", err)
	}

	s, err := dataaccess.Open(ctx, l, storeOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}
	return s, l, nil
}

// withStore runs fn against the store and closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s dataaccess.Store, l *slog.Logger) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, l, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			l.Warn("Error closing store", slog.String(logging.KeyError, err.Error()))
		}
	}()

	return fn(ctx, s, l)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
