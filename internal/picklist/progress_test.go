package picklist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	lists   map[string]Picklist
	updated map[string]Picklist
	getErr  error
	updErr  error
}

func newFakeStore(lists ...Picklist) *fakeStore {
	s := &fakeStore{
		lists:   make(map[string]Picklist),
		updated: make(map[string]Picklist),
	}
	for _, list := range lists {
		s.lists[list.PicklistID] = list
	}
	return s
}

func (s *fakeStore) GetPicklist(_ context.Context, picklistID string) (Picklist, error) {
	if s.getErr != nil {
		return Picklist{}, s.getErr
	}
	list, ok := s.lists[picklistID]
	if !ok {
		return Picklist{}, errors.New("no such picklist")
	}
	return list, nil
}

func (s *fakeStore) UpdatePicklist(_ context.Context, picklistID string, items []Item, status string) error {
	if s.updErr != nil {
		return s.updErr
	}
	list := s.lists[picklistID]
	list.Items = items
	list.Status = status
	s.updated[picklistID] = list
	return nil
}

func testList() Picklist {
	list := NewPicklist("run-1", []Entry{
		{SKU: "SKU-A", Quantity: 3, Description: "Widget"},
		{SKU: "SKU-B", Quantity: 2, Description: "Gadget"},
	}, time.Now())
	list.PicklistID = "PL-test"
	return list
}

func TestRecordPick(t *testing.T) {
	t.Run("applies_and_persists_progress", func(t *testing.T) {
		store := newFakeStore(testList())

		list, err := RecordPick(context.Background(), store, "PL-test", "SKU-A", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Items[0].PickedQty)
		assert.Equal(t, StatusPartial, list.Status)

		saved, ok := store.updated["PL-test"]
		require.True(t, ok)
		assert.Equal(t, 2, saved.Items[0].PickedQty)
		assert.Equal(t, StatusPartial, saved.Status)
	})

	t.Run("completing_every_item_persists_all_picked", func(t *testing.T) {
		store := newFakeStore(testList())

		_, err := RecordPick(context.Background(), store, "PL-test", "SKU-A", 3)
		require.NoError(t, err)
		store.lists["PL-test"] = store.updated["PL-test"]

		list, err := RecordPick(context.Background(), store, "PL-test", "SKU-B", 2)
		require.NoError(t, err)
		assert.Equal(t, StatusAllPicked, list.Status)
	})

	t.Run("fulfilled_picklist_rejects_picks", func(t *testing.T) {
		list := testList()
		list.Fulfill()
		store := newFakeStore(list)

		_, err := RecordPick(context.Background(), store, "PL-test", "SKU-A", 1)
		assert.Error(t, err)
		assert.Empty(t, store.updated)
	})

	t.Run("unknown_sku_leaves_the_store_untouched", func(t *testing.T) {
		store := newFakeStore(testList())

		_, err := RecordPick(context.Background(), store, "PL-test", "SKU-Z", 1)
		assert.Error(t, err)
		assert.Empty(t, store.updated)
	})

	t.Run("load_and_update_errors_propagate", func(t *testing.T) {
		store := newFakeStore(testList())
		store.getErr = errors.New("connection reset")
		_, err := RecordPick(context.Background(), store, "PL-test", "SKU-A", 1)
		assert.Error(t, err)

		store.getErr = nil
		store.updErr = errors.New("connection reset")
		_, err = RecordPick(context.Background(), store, "PL-test", "SKU-A", 1)
		assert.Error(t, err)
	})
}

func TestMarkFulfilled(t *testing.T) {
	t.Run("closes_with_units_remaining", func(t *testing.T) {
		store := newFakeStore(testList())

		list, err := MarkFulfilled(context.Background(), store, "PL-test")
		require.NoError(t, err)
		assert.Equal(t, StatusFulfilled, list.Status)
		assert.Equal(t, 3, list.Items[0].Remaining)

		saved, ok := store.updated["PL-test"]
		require.True(t, ok)
		assert.Equal(t, StatusFulfilled, saved.Status)
	})

	t.Run("missing_picklist_errors", func(t *testing.T) {
		store := newFakeStore()
		_, err := MarkFulfilled(context.Background(), store, "PL-missing")
		assert.Error(t, err)
	})
}
