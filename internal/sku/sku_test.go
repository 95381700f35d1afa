package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/tabular"
)

func TestLoadCorrections(t *testing.T) {
	logger := zap.NewNop()

	t.Run("loads_complete_rows", func(t *testing.T) {
		resolver, stats := LoadCorrections([]tabular.Record{
			{"Flipkart SKU": "OLD-1", "Custom SKU": "NEW-1"},
			{"Flipkart SKU": "OLD-2", "Custom SKU": "NEW-2"},
		}, logger)

		assert.Equal(t, LoadStats{Loaded: 2}, stats)
		assert.Equal(t, "NEW-1", resolver.Resolve("OLD-1"))
		assert.Equal(t, "NEW-2", resolver.Resolve("OLD-2"))
	})

	t.Run("rejects_half_empty_rows", func(t *testing.T) {
		resolver, stats := LoadCorrections([]tabular.Record{
			{"Flipkart SKU": "OLD-1", "Custom SKU": ""},
			{"Flipkart SKU": "", "Custom SKU": "NEW-2"},
			{"Flipkart SKU": "OLD-3", "Custom SKU": "NEW-3"},
		}, logger)

		assert.Equal(t, LoadStats{Loaded: 1, Rejected: 2}, stats)
		assert.Equal(t, 1, resolver.Len())
	})

	t.Run("later_row_overwrites_earlier", func(t *testing.T) {
		resolver, stats := LoadCorrections([]tabular.Record{
			{"Old SKU": "OLD-1", "New SKU": "FIRST"},
			{"Old SKU": "OLD-1", "New SKU": "SECOND"},
		}, logger)

		assert.Equal(t, 2, stats.Loaded)
		assert.Equal(t, "SECOND", resolver.Resolve("OLD-1"))
	})
}

func TestResolve(t *testing.T) {
	resolver := NewResolver(map[string]string{"OLD-1": "NEW-1"})

	t.Run("known_identifier_mapped", func(t *testing.T) {
		assert.Equal(t, "NEW-1", resolver.Resolve("OLD-1"))
	})

	t.Run("unknown_identifier_passes_through", func(t *testing.T) {
		assert.Equal(t, "MYSTERY", resolver.Resolve("MYSTERY"))
	})

	t.Run("empty_stays_empty", func(t *testing.T) {
		assert.Equal(t, "", resolver.Resolve(""))
	})

	t.Run("resolution_is_single_step", func(t *testing.T) {
		chained := NewResolver(map[string]string{"A": "B", "B": "C"})
		assert.Equal(t, "B", chained.Resolve("A"))
	})

	t.Run("resolution_is_idempotent_without_chains", func(t *testing.T) {
		// Canonical identifiers never appear on the raw side, so resolving
		// twice is the same as resolving once.
		idempotent := NewResolver(map[string]string{"OLD-1": "NEW-1", "OLD-2": "NEW-2"})
		for _, raw := range []string{"OLD-1", "OLD-2", "NEW-1", "UNKNOWN", ""} {
			once := idempotent.Resolve(raw)
			assert.Equal(t, once, idempotent.Resolve(once))
		}
	})
}

func TestNewResolverNilMap(t *testing.T) {
	resolver := NewResolver(nil)
	assert.Equal(t, 0, resolver.Len())
	assert.Equal(t, "X", resolver.Resolve("X"))
}
