// Package resolve implements per-page row resolution against the order
// indexes, including the round-robin assignment for ambiguous order keys.
package resolve

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/orders"
	"github.com/shipdesk-io/labelengine/internal/sku"
)

// PageKey is the externally extracted identity of one physical label page.
// Either key may be empty; extraction accuracy is the caller's problem.
type PageKey struct {
	PageIndex   int
	OrderKey    string
	TrackingKey string
}

// PageJob is one page after resolution. Immutable once created; the
// tracking key may be back-filled from the resolved record at creation.
type PageJob struct {
	PageIndex    int
	OrderKey     string
	TrackingKey  string
	RawSKU       string
	CanonicalSKU string
	Quantity     string
	Description  string
}

// QuantityValue parses the raw quantity; a failed or negative parse is 0.
func (j PageJob) QuantityValue() int {
	qty, err := strconv.Atoi(strings.TrimSpace(j.Quantity))
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

// Stats counts resolution outcomes for one run.
type Stats struct {
	Resolved              int
	Unresolved            int
	TrackingDisambiguated int
	RoundRobinAssigned    int
	DuplicatesSkipped     int
}

// Resolver resolves pages for a single run. All tie-break state (the
// per-order-key usage counters and the duplicate-seen set) is owned by the
// instance; sharing a resolver across concurrent runs corrupts round-robin
// assignment.
type Resolver struct {
	orderIndex    *orders.OrderIndex
	trackingIndex *orders.TrackingIndex
	corrections   *sku.Resolver
	logger        *zap.Logger

	removeDuplicates bool
	usage            map[string]int
	seen             map[string]bool
	stats            Stats
}

// NewResolver creates a run-scoped resolver. When removeDuplicates is set,
// repeat pages for an already-seen order key are skipped entirely.
func NewResolver(orderIndex *orders.OrderIndex, trackingIndex *orders.TrackingIndex, corrections *sku.Resolver, removeDuplicates bool, logger *zap.Logger) *Resolver {
	return &Resolver{
		orderIndex:       orderIndex,
		trackingIndex:    trackingIndex,
		corrections:      corrections,
		logger:           logger,
		removeDuplicates: removeDuplicates,
		usage:            make(map[string]int),
		seen:             make(map[string]bool),
	}
}

// ResolvePage picks the single best-matching record for a page and builds
// its job. The second return is false when the page was skipped as a
// duplicate order; skipped pages do not advance any round-robin counter.
func (r *Resolver) ResolvePage(key PageKey) (PageJob, bool) {
	if r.removeDuplicates && key.OrderKey != "" && r.seen[key.OrderKey] {
		r.stats.DuplicatesSkipped++
		return PageJob{}, false
	}
	if key.OrderKey != "" {
		r.seen[key.OrderKey] = true
	}

	record := r.pickRecord(key)
	if record.IsZero() {
		r.stats.Unresolved++
	} else {
		r.stats.Resolved++
	}

	trackingKey := key.TrackingKey
	if trackingKey == "" && record.TrackingKey != "" {
		// Back-fill for downstream reprint indexing only; the resolution
		// above never used it.
		trackingKey = record.TrackingKey
	}

	return PageJob{
		PageIndex:    key.PageIndex,
		OrderKey:     key.OrderKey,
		TrackingKey:  trackingKey,
		RawSKU:       record.RawSKU,
		CanonicalSKU: r.corrections.Resolve(record.RawSKU),
		Quantity:     record.Quantity,
		Description:  record.Description,
	}, true
}

// pickRecord implements the resolution order: unique order-key match wins
// outright (a present-but-wrong tracking key is ignored); an ambiguous
// order key is disambiguated by tracking key only when exactly one of its
// candidates matches; everything else falls back to round-robin.
//
// A page with no usable order key resolves to an empty record. Tracking-only
// matching is deliberately not attempted: a tracking key shared across
// exports must never leak another order's row onto this page.
func (r *Resolver) pickRecord(key PageKey) orders.OrderRecord {
	if key.OrderKey == "" {
		return orders.OrderRecord{}
	}

	candidates, ok := r.orderIndex.Lookup(key.OrderKey)
	if !ok {
		return orders.OrderRecord{}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	if key.TrackingKey != "" {
		if entries, ok := r.trackingIndex.Lookup(key.TrackingKey); ok {
			var matched []orders.OrderRecord
			for _, entry := range entries {
				if entry.OrderKey == key.OrderKey {
					matched = append(matched, entry.Record)
				}
			}
			if len(matched) == 1 {
				r.stats.TrackingDisambiguated++
				return matched[0]
			}
		}
	}

	return r.roundRobin(key.OrderKey, candidates)
}

// roundRobin spreads the N pages of an ambiguous order key across its
// candidate rows cyclically, in page order. The counter advances only when
// a candidate is actually taken.
func (r *Resolver) roundRobin(orderKey string, candidates []orders.OrderRecord) orders.OrderRecord {
	index := r.usage[orderKey] % len(candidates)
	r.usage[orderKey]++
	r.stats.RoundRobinAssigned++
	return candidates[index]
}

// ResolveAll resolves pages in order and returns the jobs that survived
// duplicate removal.
func (r *Resolver) ResolveAll(keys []PageKey) []PageJob {
	jobs := make([]PageJob, 0, len(keys))
	for _, key := range keys {
		job, ok := r.ResolvePage(key)
		if !ok {
			continue
		}
		jobs = append(jobs, job)
	}

	r.logger.Info("Pages resolved",
		zap.Int("pages", len(keys)),
		zap.Int("resolved", r.stats.Resolved),
		zap.Int("unresolved", r.stats.Unresolved),
		zap.Int("round_robin", r.stats.RoundRobinAssigned),
		zap.Int("duplicates_skipped", r.stats.DuplicatesSkipped))

	return jobs
}

// Stats returns the resolution counters accumulated so far.
func (r *Resolver) Stats() Stats { return r.stats }
