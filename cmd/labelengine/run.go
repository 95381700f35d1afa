package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/batch"
	"github.com/shipdesk-io/labelengine/internal/engine"
	"github.com/shipdesk-io/labelengine/internal/orders"
	"github.com/shipdesk-io/labelengine/internal/picklist"
	"github.com/shipdesk-io/labelengine/internal/resolve"
	"github.com/shipdesk-io/labelengine/internal/store"
	"github.com/shipdesk-io/labelengine/internal/tabular"
)

var (
	runOrdersPath      string
	runCorrectionsPath string
	runPagesPath       string
	runPicklistOut     string
	runThreshold       int
	runSortMode        string
	runRemoveDupes     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a label document against an order export",
	Long: `Runs the full pipeline over three CSV inputs: the order export, the
SKU correction table (optional), and the per-page keys produced by the
text-scan collaborator (page index, order key, tracking key). Prints a
batch summary and writes the picklist CSV.`,
	RunE: runReconciliation,
}

func init() {
	runCmd.Flags().StringVar(&runOrdersPath, "orders", "", "order export CSV (required)")
	runCmd.Flags().StringVar(&runCorrectionsPath, "corrections", "", "SKU correction table CSV")
	runCmd.Flags().StringVar(&runPagesPath, "pages", "", "per-page keys CSV (required)")
	runCmd.Flags().StringVar(&runPicklistOut, "picklist-out", "", "write the picklist CSV here instead of stdout")
	runCmd.Flags().IntVar(&runThreshold, "threshold", 0, "per-identifier batching threshold (default 5)")
	runCmd.Flags().StringVar(&runSortMode, "sort", "", "sort mode: alpha or quantityDesc (default quantityDesc)")
	runCmd.Flags().BoolVar(&runRemoveDupes, "remove-duplicates", false, "skip repeat pages for an already-seen order key")
	_ = runCmd.MarkFlagRequired("orders")
	_ = runCmd.MarkFlagRequired("pages")
}

func runReconciliation(cmd *cobra.Command, args []string) error {
	orderRows, err := parseCSVFile(runOrdersPath)
	if err != nil {
		return err
	}

	var correctionRows []tabular.Record
	if runCorrectionsPath != "" {
		correctionRows, err = parseCSVFile(runCorrectionsPath)
		if err != nil {
			return err
		}
	}

	pages, err := loadPageKeys(runPagesPath)
	if err != nil {
		return err
	}

	var eng *engine.Engine
	if cfg.HasStore() {
		client, err := openStore()
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		eng = engine.New(
			store.NewLabelStore(client, logger),
			store.NewPicklistStore(client, logger),
			logger,
		)
	} else {
		logger.Warn("No store configured; processed labels will not be persisted")
		eng = engine.New(nil, nil, logger)
	}

	threshold := runThreshold
	if threshold == 0 {
		threshold = cfg.GetInt("LABELENGINE_THRESHOLD", 0)
	}
	sortMode := runSortMode
	if sortMode == "" {
		sortMode = cfg.GetString("LABELENGINE_SORT_MODE", "")
	}
	removeDupes := runRemoveDupes || cfg.GetBool("LABELENGINE_REMOVE_DUPLICATES", false)

	result, err := eng.Run(cmd.Context(), engine.Input{
		SourceDocument: filepath.Base(runPagesPath),
		OrderRows:      orderRows,
		CorrectionRows: correctionRows,
		Pages:          pages,
		Params: engine.RunParams{
			RemoveDuplicates: removeDupes,
			Threshold:        threshold,
			SortMode:         picklist.SortMode(sortMode),
		},
	})
	if err != nil {
		return err
	}

	printRunSummary(result)

	csvOut := picklist.CSV(result.Picklist)
	if runPicklistOut != "" {
		if err := os.WriteFile(runPicklistOut, []byte(csvOut), 0o644); err != nil {
			return fmt.Errorf("failed to write picklist: %w", err)
		}
		logger.Info("Picklist written", zap.String("path", runPicklistOut))
	} else {
		fmt.Print(csvOut)
	}

	return nil
}

func printRunSummary(result *engine.RunResult) {
	fmt.Printf("run %s: %d jobs, %d dropped rows, %d unresolved pages\n",
		result.RunID, len(result.Jobs), result.OrderStats.DroppedRows, result.ResolveStats.Unresolved)

	for _, name := range result.Assignment.Names {
		if name == batch.FullBatch || name == batch.SmallBatch {
			continue
		}
		fmt.Printf("  batch %-24s %d pages\n", name, len(result.Assignment.Batch(name)))
	}
	fmt.Printf("  batch %-24s %d pages\n", batch.SmallBatch, len(result.Assignment.Batch(batch.SmallBatch)))
	fmt.Printf("  batch %-24s %d pages (%d separators)\n",
		batch.FullBatch, len(result.Assignment.Batch(batch.FullBatch)), len(result.Assignment.Boundaries))

	if result.PicklistID != "" {
		fmt.Printf("  picklist %s saved\n", result.PicklistID)
	}
}

func parseCSVFile(path string) ([]tabular.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	records, err := tabular.ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// Page-key CSV columns, as emitted by the text-scan collaborator.
var (
	pageIndexField = tabular.Field{
		Name:     "page_index",
		Synonyms: []string{"Page Index", "Page", "Page No"},
	}
)

func loadPageKeys(path string) ([]resolve.PageKey, error) {
	rows, err := parseCSVFile(path)
	if err != nil {
		return nil, err
	}

	pages := make([]resolve.PageKey, 0, len(rows))
	for i, row := range rows {
		index := i
		if raw, ok := pageIndexField.Lookup(row); ok && raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid page index %q in %s: %w", raw, path, err)
			}
			index = parsed
		}
		pages = append(pages, resolve.PageKey{
			PageIndex:   index,
			OrderKey:    orders.OrderKeyField.Value(row),
			TrackingKey: orders.TrackingKeyField.Value(row),
		})
	}
	return pages, nil
}
