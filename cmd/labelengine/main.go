package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/config"
	"github.com/shipdesk-io/labelengine/internal/logging"
	"github.com/shipdesk-io/labelengine/internal/store"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "labelengine",
	Short: "Order reconciliation and label batching engine",
	Long: `labelengine reconciles a merged shipment-label document against an
order export: it assigns each page its order row (round-robin over
duplicate keys), canonicalizes SKUs, aggregates the picklist, and
partitions pages into named print batches. Processed pages are persisted
so labels can be found again for reprinting.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := cfg.GetString("LABELENGINE_LOG_LEVEL", "info")
		if verbose {
			level = "debug"
		}
		logger, err = logging.NewLogger(logging.Config{
			Level:  level,
			Format: cfg.GetString("LABELENGINE_LOG_FORMAT", "console"),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore connects to the configured PostgreSQL store. Commands that can
// run without persistence call this only when cfg.HasStore().
func openStore() (*store.Client, error) {
	client, err := store.NewClient(cfg.GetStoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}
	return client, nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reprintCmd)
	rootCmd.AddCommand(picklistsCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(healthCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
