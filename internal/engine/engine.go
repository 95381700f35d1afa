// Package engine orchestrates one reconciliation run: index building, row
// resolution, picklist aggregation, batching, and best-effort persistence.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/batch"
	"github.com/shipdesk-io/labelengine/internal/metrics"
	"github.com/shipdesk-io/labelengine/internal/orders"
	"github.com/shipdesk-io/labelengine/internal/picklist"
	"github.com/shipdesk-io/labelengine/internal/resolve"
	"github.com/shipdesk-io/labelengine/internal/sku"
	"github.com/shipdesk-io/labelengine/internal/store"
	"github.com/shipdesk-io/labelengine/internal/tabular"
)

// LabelSaver persists processed label records after a successful run.
type LabelSaver interface {
	SaveLabels(ctx context.Context, records []store.ProcessedLabelRecord) error
}

// PicklistSaver persists the picklist document a run produces.
type PicklistSaver interface {
	SavePicklist(ctx context.Context, list picklist.Picklist) error
}

// RunParams are the caller-supplied knobs for one run.
type RunParams struct {
	RemoveDuplicates bool
	Threshold        int
	SortMode         picklist.SortMode
}

// Validate rejects invalid parameters before the pipeline runs and fills
// in defaults for zero values.
func (p *RunParams) Validate() error {
	if p.Threshold == 0 {
		p.Threshold = batch.DefaultThreshold
	}
	if p.Threshold < 0 {
		return fmt.Errorf("threshold must be positive, got %d", p.Threshold)
	}
	if p.SortMode == "" {
		p.SortMode = picklist.SortQuantityDesc
	}
	if !p.SortMode.Valid() {
		return fmt.Errorf("unknown sort mode %q", p.SortMode)
	}
	return nil
}

// CropBox is the page geometry recorded on persisted labels. The engine
// only passes it through to the rendering collaborator's records.
type CropBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Input is everything a run consumes, already materialized in memory by
// the calling layer. The engine itself performs no I/O before persistence.
type Input struct {
	SourceDocument string
	OrderRows      []tabular.Record
	CorrectionRows []tabular.Record
	Pages          []resolve.PageKey
	Crop           CropBox
	Params         RunParams
}

// RunResult is the computed outcome of a run. It is complete and valid
// even when persistence afterwards failed.
type RunResult struct {
	RunID      string
	Jobs       []resolve.PageJob
	Assignment *batch.Assignment
	Picklist   []picklist.Entry
	PicklistID string

	OrderStats      orders.BuildStats
	CorrectionStats sku.LoadStats
	ResolveStats    resolve.Stats
}

// Engine runs reconciliations. Either saver may be nil, in which case that
// persistence step is skipped.
type Engine struct {
	labels    LabelSaver
	picklists PicklistSaver
	logger    *zap.Logger
	now       func() time.Time
}

func New(labels LabelSaver, picklists PicklistSaver, logger *zap.Logger) *Engine {
	return &Engine{
		labels:    labels,
		picklists: picklists,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes the full pipeline synchronously over run-local state. All
// tie-break state lives inside this call; concurrent runs never share it.
// Persistence is best-effort after the result is computed: a storage
// failure is logged and counted but never fails the run.
func (e *Engine) Run(ctx context.Context, input Input) (*RunResult, error) {
	if err := input.Params.Validate(); err != nil {
		return nil, err
	}

	started := e.now()
	runID := uuid.New().String()
	logger := e.logger.With(zap.String("run_id", runID))

	logger.Info("Starting reconciliation run",
		zap.String("source_document", input.SourceDocument),
		zap.Int("order_rows", len(input.OrderRows)),
		zap.Int("pages", len(input.Pages)),
		zap.Int("threshold", input.Params.Threshold),
		zap.String("sort_mode", string(input.Params.SortMode)),
		zap.Bool("remove_duplicates", input.Params.RemoveDuplicates))

	orderIndex, orderStats := orders.BuildOrderIndex(input.OrderRows, logger)
	trackingIndex := orders.BuildTrackingIndex(orderIndex)
	corrections, correctionStats := sku.LoadCorrections(input.CorrectionRows, logger)

	resolver := resolve.NewResolver(orderIndex, trackingIndex, corrections, input.Params.RemoveDuplicates, logger)
	jobs := resolver.ResolveAll(input.Pages)
	resolveStats := resolver.Stats()

	aggregator := picklist.NewAggregator()
	for _, job := range jobs {
		aggregator.Add(job.CanonicalSKU, job.QuantityValue(), job.Description)
	}
	entries := aggregator.Entries(input.Params.SortMode)

	assignment, err := batch.Partition(jobs, batch.Params{
		Threshold: input.Params.Threshold,
		SortMode:  input.Params.SortMode,
	})
	if err != nil {
		metrics.RecordRun("error", e.now().Sub(started))
		return nil, fmt.Errorf("failed to partition jobs: %w", err)
	}

	result := &RunResult{
		RunID:           runID,
		Jobs:            jobs,
		Assignment:      assignment,
		Picklist:        entries,
		OrderStats:      orderStats,
		CorrectionStats: correctionStats,
		ResolveStats:    resolveStats,
	}

	e.persist(ctx, input, result, logger)

	metrics.RecordPages(resolveStats.Resolved, resolveStats.Unresolved)
	metrics.RowsDropped.Add(float64(orderStats.DroppedRows))
	metrics.RoundRobinAssignments.Add(float64(resolveStats.RoundRobinAssigned))
	metrics.DuplicatesSkipped.Add(float64(resolveStats.DuplicatesSkipped))
	metrics.RecordRun("ok", e.now().Sub(started))

	logger.Info("Reconciliation run completed",
		zap.Int("jobs", len(jobs)),
		zap.Int("batches", len(assignment.Names)),
		zap.Int("picklist_skus", len(entries)),
		zap.Duration("duration", e.now().Sub(started)))

	return result, nil
}

// persist writes labels and the picklist document. Failures never
// propagate; the computed result stands.
func (e *Engine) persist(ctx context.Context, input Input, result *RunResult, logger *zap.Logger) {
	processedAt := e.now()

	if e.labels != nil {
		records := buildLabelRecords(input, result, processedAt)
		if err := e.labels.SaveLabels(ctx, records); err != nil {
			metrics.PersistenceFailures.WithLabelValues("labels").Inc()
			logger.Error("Failed to persist processed labels", zap.Error(err))
		}
	}

	if e.picklists != nil {
		list := picklist.NewPicklist(result.RunID, result.Picklist, processedAt)
		if err := e.picklists.SavePicklist(ctx, list); err != nil {
			metrics.PersistenceFailures.WithLabelValues("picklist").Inc()
			logger.Error("Failed to persist picklist", zap.Error(err))
		} else {
			result.PicklistID = list.PicklistID
		}
	}
}

func buildLabelRecords(input Input, result *RunResult, processedAt time.Time) []store.ProcessedLabelRecord {
	records := make([]store.ProcessedLabelRecord, 0, len(result.Jobs))
	for _, job := range result.Jobs {
		records = append(records, store.ProcessedLabelRecord{
			SourceDocument: input.SourceDocument,
			PageIndex:      job.PageIndex,
			OrderKey:       job.OrderKey,
			TrackingKey:    job.TrackingKey,
			RawSKU:         job.RawSKU,
			CanonicalSKU:   job.CanonicalSKU,
			Quantity:       job.Quantity,
			Description:    job.Description,
			CropX:          input.Crop.X,
			CropY:          input.Crop.Y,
			CropWidth:      input.Crop.Width,
			CropHeight:     input.Crop.Height,
			RunID:          result.RunID,
			ProcessedAt:    processedAt,
			ProcessedDate:  processedAt.Format(store.DateLayout),
		})
	}
	return records
}
