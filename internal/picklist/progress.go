package picklist

import (
	"context"
	"fmt"
)

// Store is the slice of the persistence collaborator the progress flow
// needs: load one document, replace its items and status.
type Store interface {
	GetPicklist(ctx context.Context, picklistID string) (Picklist, error)
	UpdatePicklist(ctx context.Context, picklistID string, items []Item, status string) error
}

// RecordPick loads a picklist, applies a picked quantity for one SKU and
// persists the updated items and status. A fulfilled picklist is closed;
// further picks are rejected.
func RecordPick(ctx context.Context, store Store, picklistID, skuID string, picked int) (Picklist, error) {
	list, err := store.GetPicklist(ctx, picklistID)
	if err != nil {
		return Picklist{}, fmt.Errorf("failed to load picklist %s: %w", picklistID, err)
	}
	if list.Status == StatusFulfilled {
		return Picklist{}, fmt.Errorf("picklist %s is fulfilled and no longer accepts picks", picklistID)
	}

	if err := list.ApplyPick(skuID, picked); err != nil {
		return Picklist{}, err
	}
	if err := store.UpdatePicklist(ctx, picklistID, list.Items, list.Status); err != nil {
		return Picklist{}, fmt.Errorf("failed to update picklist %s: %w", picklistID, err)
	}
	return list, nil
}

// MarkFulfilled closes a picklist regardless of remaining units and
// persists the change.
func MarkFulfilled(ctx context.Context, store Store, picklistID string) (Picklist, error) {
	list, err := store.GetPicklist(ctx, picklistID)
	if err != nil {
		return Picklist{}, fmt.Errorf("failed to load picklist %s: %w", picklistID, err)
	}

	list.Fulfill()
	if err := store.UpdatePicklist(ctx, picklistID, list.Items, list.Status); err != nil {
		return Picklist{}, fmt.Errorf("failed to update picklist %s: %w", picklistID, err)
	}
	return list, nil
}
