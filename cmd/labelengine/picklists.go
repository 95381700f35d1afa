package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shipdesk-io/labelengine/internal/store"
)

var (
	picklistsFrom string
	picklistsTo   string
)

var picklistsCmd = &cobra.Command{
	Use:   "picklists",
	Short: "List persisted picklists for a date range",
	RunE:  runPicklists,
}

func init() {
	picklistsCmd.Flags().StringVar(&picklistsFrom, "from", "", "range start YYYY-MM-DD (default today)")
	picklistsCmd.Flags().StringVar(&picklistsTo, "to", "", "range end YYYY-MM-DD (default today)")
}

func runPicklists(cmd *cobra.Command, args []string) error {
	if !cfg.HasStore() {
		return fmt.Errorf("picklists requires a configured store (set LABELENGINE_PG_HOST)")
	}

	from, to, err := resolveRange(picklistsFrom, picklistsTo)
	if err != nil {
		return err
	}

	client, err := openStore()
	if err != nil {
		return err
	}
	defer client.Close()

	lists, err := store.NewPicklistStore(client, logger).ListPicklists(cmd.Context(), from, to)
	if err != nil {
		return err
	}

	if len(lists) == 0 {
		fmt.Println("no picklists found")
		return nil
	}
	for _, list := range lists {
		fmt.Printf("%s  %s  %-10s  SKUs: %d  Units: %d\n",
			list.CreatedAt.Format("2006-01-02 15:04"),
			list.PicklistID, list.Status, list.TotalSKUs(), list.TotalUnits())
	}
	return nil
}

// resolveRange expands YYYY-MM-DD bounds to an inclusive local-time range.
func resolveRange(fromStr, toStr string) (time.Time, time.Time, error) {
	today := time.Now().Format(store.DateLayout)
	if fromStr == "" {
		fromStr = today
	}
	if toStr == "" {
		toStr = today
	}

	from, err := time.ParseInLocation(store.DateLayout, fromStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: %w", fromStr, err)
	}
	toDay, err := time.ParseInLocation(store.DateLayout, toStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q: %w", toStr, err)
	}

	to := toDay.Add(24*time.Hour - time.Nanosecond)
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", toStr, fromStr)
	}
	return from, to, nil
}
