// Package reprint answers "find this label again" queries against the
// persisted records of previous runs.
package reprint

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/store"
)

// LabelStore is the slice of the persistence collaborator the resolver
// needs: exact-match key queries over processed label records.
type LabelStore interface {
	FindByTrackingKey(ctx context.Context, trackingKey string) ([]store.ProcessedLabelRecord, error)
	FindByOrderKey(ctx context.Context, orderKey string) ([]store.ProcessedLabelRecord, error)
}

// Request names the labels to find. At least one key list must be
// non-empty; an empty date means today in the service's local time.
type Request struct {
	TrackingKeys []string
	OrderKeys    []string
	Date         string
}

// Validate fails fast on requests the resolver cannot serve.
func (r Request) Validate() error {
	if len(r.TrackingKeys) == 0 && len(r.OrderKeys) == 0 {
		return fmt.Errorf("at least one tracking key or order key is required")
	}
	if r.Date != "" {
		if _, err := time.Parse(store.DateLayout, r.Date); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", r.Date, err)
		}
	}
	return nil
}

// Result is the reprint outcome. Labels is deduplicated by
// (source document, page index) in match order; matching nothing is a
// valid, non-error outcome.
type Result struct {
	Labels              []store.ProcessedLabelRecord
	NotFoundTrackingIDs []string
	NotFoundOrderIDs    []string
}

// Resolver finds previously processed pages for a set of keys on a day.
type Resolver struct {
	labels LabelStore
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(labels LabelStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		labels: labels,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve runs tracking keys first, then order keys, each independently.
// Per key: exact match, filter to the target date, take the record with
// the latest processing time. A page matched through both key types is
// emitted once; the first writer wins.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	date := req.Date
	if date == "" {
		date = r.now().Format(store.DateLayout)
	}

	result := &Result{}
	seen := make(map[pageRef]bool)

	for _, key := range req.TrackingKeys {
		records, err := r.labels.FindByTrackingKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to query tracking key %q: %w", key, err)
		}
		if best, ok := latestForDate(records, date); ok {
			insert(result, seen, best)
		} else {
			result.NotFoundTrackingIDs = append(result.NotFoundTrackingIDs, key)
		}
	}

	for _, key := range req.OrderKeys {
		records, err := r.labels.FindByOrderKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to query order key %q: %w", key, err)
		}
		if best, ok := latestForDate(records, date); ok {
			insert(result, seen, best)
		} else {
			result.NotFoundOrderIDs = append(result.NotFoundOrderIDs, key)
		}
	}

	r.logger.Info("Reprint lookup completed",
		zap.String("date", date),
		zap.Int("found", len(result.Labels)),
		zap.Int("not_found_tracking", len(result.NotFoundTrackingIDs)),
		zap.Int("not_found_order", len(result.NotFoundOrderIDs)))

	return result, nil
}

type pageRef struct {
	sourceDocument string
	pageIndex      int
}

func insert(result *Result, seen map[pageRef]bool, record store.ProcessedLabelRecord) {
	ref := pageRef{record.SourceDocument, record.PageIndex}
	if seen[ref] {
		return
	}
	seen[ref] = true
	result.Labels = append(result.Labels, record)
}

// latestForDate filters records to the target date and picks the one with
// the latest ProcessedAt. Equal timestamps keep the earlier record, which
// is deterministic given the store's stable result ordering.
func latestForDate(records []store.ProcessedLabelRecord, date string) (store.ProcessedLabelRecord, bool) {
	var best store.ProcessedLabelRecord
	found := false
	for _, record := range records {
		if record.ProcessedDate != date {
			continue
		}
		if !found || record.ProcessedAt.After(best.ProcessedAt) {
			best = record
			found = true
		}
	}
	return best, found
}
