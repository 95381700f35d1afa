package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipdesk-io/labelengine/internal/picklist"
	"github.com/shipdesk-io/labelengine/internal/store"
)

var (
	pickPicklistID string
	pickSKU        string
	pickPicked     int
	pickFulfill    bool
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Record pick progress on a persisted picklist",
	Long: `Records the picked quantity for one SKU of a picklist (clamped to the
required quantity) and re-derives its status, or closes the picklist as
Fulfilled with --fulfill regardless of remaining units.`,
	RunE: runPick,
}

func init() {
	pickCmd.Flags().StringVar(&pickPicklistID, "picklist", "", "picklist ID (required)")
	pickCmd.Flags().StringVar(&pickSKU, "sku", "", "SKU to record progress for")
	pickCmd.Flags().IntVar(&pickPicked, "picked", 0, "picked quantity for the SKU")
	pickCmd.Flags().BoolVar(&pickFulfill, "fulfill", false, "close the picklist as Fulfilled")
	_ = pickCmd.MarkFlagRequired("picklist")
}

func runPick(cmd *cobra.Command, args []string) error {
	if !cfg.HasStore() {
		return fmt.Errorf("pick requires a configured store (set LABELENGINE_PG_HOST)")
	}
	if !pickFulfill && pickSKU == "" {
		return fmt.Errorf("either --sku or --fulfill is required")
	}

	client, err := openStore()
	if err != nil {
		return err
	}
	defer client.Close()
	picklists := store.NewPicklistStore(client, logger)

	var list picklist.Picklist
	if pickFulfill {
		list, err = picklist.MarkFulfilled(cmd.Context(), picklists, pickPicklistID)
	} else {
		list, err = picklist.RecordPick(cmd.Context(), picklists, pickPicklistID, pickSKU, pickPicked)
	}
	if err != nil {
		return err
	}

	fmt.Printf("picklist %s  %s\n", list.PicklistID, list.Status)
	for _, item := range list.Items {
		fmt.Printf("  %-24s picked %d/%d  remaining %d\n",
			item.SKU, item.PickedQty, item.RequiredQty, item.Remaining)
	}
	return nil
}
