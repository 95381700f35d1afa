package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shipdesk-io/labelengine/internal/reprint"
	"github.com/shipdesk-io/labelengine/internal/store"
)

var (
	reprintTrackingIDs []string
	reprintOrderIDs    []string
	reprintDate        string
)

var reprintCmd = &cobra.Command{
	Use:   "reprint",
	Short: "Find previously processed labels for reprinting",
	Long: `Looks up processed label records by tracking or order key for a given
day (default today) and prints the matched pages plus any keys that were
not found. Matching nothing is not an error.`,
	RunE: runReprint,
}

func init() {
	reprintCmd.Flags().StringSliceVar(&reprintTrackingIDs, "tracking", nil, "tracking keys to find")
	reprintCmd.Flags().StringSliceVar(&reprintOrderIDs, "order", nil, "order keys to find")
	reprintCmd.Flags().StringVar(&reprintDate, "date", "", "target date YYYY-MM-DD (default today)")
}

func runReprint(cmd *cobra.Command, args []string) error {
	if !cfg.HasStore() {
		return fmt.Errorf("reprint requires a configured store (set LABELENGINE_PG_HOST)")
	}

	client, err := openStore()
	if err != nil {
		return err
	}
	defer client.Close()

	resolver := reprint.NewResolver(store.NewLabelStore(client, logger), logger)
	result, err := resolver.Resolve(cmd.Context(), reprint.Request{
		TrackingKeys: reprintTrackingIDs,
		OrderKeys:    reprintOrderIDs,
		Date:         reprintDate,
	})
	if err != nil {
		return err
	}

	if len(result.Labels) == 0 {
		fmt.Println("no labels found")
	}
	for _, record := range result.Labels {
		fmt.Printf("%s page %d  order=%s tracking=%s sku=%s run=%s at=%s\n",
			record.SourceDocument, record.PageIndex,
			record.OrderKey, record.TrackingKey, record.CanonicalSKU,
			record.RunID, record.ProcessedAt.Format("15:04:05"))
	}
	if len(result.NotFoundTrackingIDs) > 0 {
		fmt.Printf("tracking not found: %s\n", strings.Join(result.NotFoundTrackingIDs, ", "))
	}
	if len(result.NotFoundOrderIDs) > 0 {
		fmt.Printf("orders not found: %s\n", strings.Join(result.NotFoundOrderIDs, ", "))
	}

	return nil
}
