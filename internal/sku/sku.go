// Package sku canonicalizes product identifiers through a correction table.
package sku

import (
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/tabular"
)

var (
	rawSKUField = tabular.Field{
		Name:     "raw_sku",
		Synonyms: []string{"Flipkart SKU", "Old SKU", "Raw SKU", "SKU"},
	}
	canonicalSKUField = tabular.Field{
		Name:     "canonical_sku",
		Synonyms: []string{"Custom SKU", "New SKU", "Canonical SKU"},
	}
)

// LoadStats counts accepted and rejected correction rows.
type LoadStats struct {
	Loaded   int
	Rejected int
}

// Resolver maps raw identifiers to their canonical form. Unknown and empty
// identifiers pass through unchanged.
type Resolver struct {
	corrections map[string]string
}

// NewResolver builds a resolver from an already-validated mapping.
func NewResolver(corrections map[string]string) *Resolver {
	if corrections == nil {
		corrections = make(map[string]string)
	}
	return &Resolver{corrections: corrections}
}

// LoadCorrections builds a resolver from the correction table. Rows with an
// empty raw or canonical side are rejected and counted.
func LoadCorrections(rows []tabular.Record, logger *zap.Logger) (*Resolver, LoadStats) {
	corrections := make(map[string]string, len(rows))
	stats := LoadStats{}

	for _, row := range rows {
		raw := rawSKUField.Value(row)
		canonical := canonicalSKUField.Value(row)
		if raw == "" || canonical == "" {
			stats.Rejected++
			continue
		}
		corrections[raw] = canonical
		stats.Loaded++
	}

	if stats.Rejected > 0 {
		logger.Warn("Rejected incomplete SKU correction rows",
			zap.Int("rejected", stats.Rejected))
	}
	logger.Info("SKU corrections loaded", zap.Int("corrections", stats.Loaded))

	return NewResolver(corrections), stats
}

// Resolve returns the canonical identifier for raw, or raw itself when no
// correction exists. An empty raw stays empty.
func (r *Resolver) Resolve(raw string) string {
	if canonical, ok := r.corrections[raw]; ok {
		return canonical
	}
	return raw
}

// Len returns the number of loaded corrections.
func (r *Resolver) Len() int { return len(r.corrections) }
