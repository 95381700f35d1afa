package reprint

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/store"
)

type fakeLabelStore struct {
	byTracking map[string][]store.ProcessedLabelRecord
	byOrder    map[string][]store.ProcessedLabelRecord
	err        error
}

func (f *fakeLabelStore) FindByTrackingKey(_ context.Context, trackingKey string) ([]store.ProcessedLabelRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byTracking[trackingKey], nil
}

func (f *fakeLabelStore) FindByOrderKey(_ context.Context, orderKey string) ([]store.ProcessedLabelRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byOrder[orderKey], nil
}

func record(doc string, page int, orderKey, trackingKey, date string, at time.Time) store.ProcessedLabelRecord {
	return store.ProcessedLabelRecord{
		SourceDocument: doc,
		PageIndex:      page,
		OrderKey:       orderKey,
		TrackingKey:    trackingKey,
		ProcessedAt:    at,
		ProcessedDate:  date,
	}
}

func TestRequestValidate(t *testing.T) {
	assert.Error(t, Request{}.Validate())
	assert.Error(t, Request{TrackingKeys: []string{"TRK1"}, Date: "01-06-2025"}.Validate())
	assert.NoError(t, Request{TrackingKeys: []string{"TRK1"}}.Validate())
	assert.NoError(t, Request{OrderKeys: []string{"OD1"}, Date: "2025-06-01"}.Validate())
}

func TestResolve(t *testing.T) {
	logger := zap.NewNop()
	morning := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	t.Run("latest_processing_time_wins", func(t *testing.T) {
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{
				"TRK1": {
					record("run-a.pdf", 0, "OD1", "TRK1", "2025-06-01", morning),
					record("run-b.pdf", 3, "OD1", "TRK1", "2025-06-01", evening),
				},
			},
		}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		require.Len(t, result.Labels, 1)
		assert.Equal(t, "run-b.pdf", result.Labels[0].SourceDocument)
		assert.Empty(t, result.NotFoundTrackingIDs)
	})

	t.Run("records_outside_the_date_are_ignored", func(t *testing.T) {
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{
				"TRK1": {
					record("run-a.pdf", 0, "OD1", "TRK1", "2025-05-30", morning),
				},
			},
		}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		assert.Empty(t, result.Labels)
		assert.Equal(t, []string{"TRK1"}, result.NotFoundTrackingIDs)
	})

	t.Run("equal_timestamps_keep_the_earlier_record", func(t *testing.T) {
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{
				"TRK1": {
					record("run-a.pdf", 0, "OD1", "TRK1", "2025-06-01", morning),
					record("run-b.pdf", 1, "OD1", "TRK1", "2025-06-01", morning),
				},
			},
		}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		require.Len(t, result.Labels, 1)
		assert.Equal(t, "run-a.pdf", result.Labels[0].SourceDocument)
	})

	t.Run("page_matched_by_both_key_types_emitted_once", func(t *testing.T) {
		page := record("run-a.pdf", 2, "OD1", "TRK1", "2025-06-01", morning)
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{"TRK1": {page}},
			byOrder:    map[string][]store.ProcessedLabelRecord{"OD1": {page}},
		}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
			OrderKeys:    []string{"OD1"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		assert.Len(t, result.Labels, 1)
		assert.Empty(t, result.NotFoundTrackingIDs)
		assert.Empty(t, result.NotFoundOrderIDs)
	})

	t.Run("tracking_keys_resolve_before_order_keys", func(t *testing.T) {
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{
				"TRK1": {record("run-a.pdf", 0, "OD1", "TRK1", "2025-06-01", morning)},
			},
			byOrder: map[string][]store.ProcessedLabelRecord{
				"OD2": {record("run-a.pdf", 1, "OD2", "TRK2", "2025-06-01", morning)},
			},
		}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
			OrderKeys:    []string{"OD2"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		require.Len(t, result.Labels, 2)
		assert.Equal(t, "TRK1", result.Labels[0].TrackingKey)
		assert.Equal(t, "OD2", result.Labels[1].OrderKey)
	})

	t.Run("not_found_lists_are_per_key_type", func(t *testing.T) {
		labels := &fakeLabelStore{}
		resolver := NewResolver(labels, logger)

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1", "TRK2"},
			OrderKeys:    []string{"OD1"},
			Date:         "2025-06-01",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"TRK1", "TRK2"}, result.NotFoundTrackingIDs)
		assert.Equal(t, []string{"OD1"}, result.NotFoundOrderIDs)
	})

	t.Run("empty_date_defaults_to_today", func(t *testing.T) {
		labels := &fakeLabelStore{
			byTracking: map[string][]store.ProcessedLabelRecord{
				"TRK1": {record("run-a.pdf", 0, "OD1", "TRK1", "2025-06-01", morning)},
			},
		}
		resolver := NewResolver(labels, logger)
		resolver.now = func() time.Time { return morning }

		result, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
		})
		require.NoError(t, err)
		assert.Len(t, result.Labels, 1)
	})

	t.Run("store_errors_propagate", func(t *testing.T) {
		labels := &fakeLabelStore{err: errors.New("connection reset")}
		resolver := NewResolver(labels, logger)

		_, err := resolver.Resolve(context.Background(), Request{
			TrackingKeys: []string{"TRK1"},
		})
		assert.Error(t, err)
	})

	t.Run("invalid_request_rejected_before_queries", func(t *testing.T) {
		resolver := NewResolver(&fakeLabelStore{err: errors.New("should not be called")}, logger)

		_, err := resolver.Resolve(context.Background(), Request{})
		assert.Error(t, err)
	})
}
