package picklist

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Picklist status values. A list stays open through Pending/Partial/All
// Picked and is closed explicitly as Fulfilled, even with units remaining.
const (
	StatusPending   = "Pending"
	StatusPartial   = "Partial"
	StatusAllPicked = "All Picked"
	StatusFulfilled = "Fulfilled"
)

// Item is one line of a persisted picklist.
type Item struct {
	SKU         string `json:"sku"`
	Product     string `json:"product"`
	RequiredQty int    `json:"requiredQty"`
	PickedQty   int    `json:"pickedQty"`
	Remaining   int    `json:"remaining"`
}

// Picklist is the persisted document a run produces for warehouse picking.
type Picklist struct {
	PicklistID string    `json:"picklistId"`
	RunID      string    `json:"runId"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
	Items      []Item    `json:"items"`
}

// NewPicklist snapshots aggregated entries into a fresh pending document.
func NewPicklist(runID string, entries []Entry, createdAt time.Time) Picklist {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Item{
			SKU:         entry.SKU,
			Product:     entry.Description,
			RequiredQty: entry.Quantity,
			Remaining:   entry.Quantity,
		})
	}
	return Picklist{
		PicklistID: "PL-" + uuid.New().String(),
		RunID:      runID,
		CreatedAt:  createdAt,
		Status:     StatusPending,
		Items:      items,
	}
}

// TotalSKUs returns the number of lines.
func (p *Picklist) TotalSKUs() int { return len(p.Items) }

// TotalUnits returns the sum of required quantities.
func (p *Picklist) TotalUnits() int {
	total := 0
	for _, item := range p.Items {
		total += item.RequiredQty
	}
	return total
}

// ApplyPick records a picked quantity for one SKU, clamped to
// [0, required], and re-derives the open status.
func (p *Picklist) ApplyPick(skuID string, picked int) error {
	for i := range p.Items {
		item := &p.Items[i]
		if item.SKU != skuID {
			continue
		}
		if picked < 0 {
			picked = 0
		}
		if picked > item.RequiredQty {
			picked = item.RequiredQty
		}
		item.PickedQty = picked
		item.Remaining = item.RequiredQty - picked
		p.Status = DeriveStatus(p.Items)
		return nil
	}
	return fmt.Errorf("picklist %s has no item for SKU %q", p.PicklistID, skuID)
}

// Fulfill closes the picklist regardless of remaining units.
func (p *Picklist) Fulfill() {
	p.Status = StatusFulfilled
}

// DeriveStatus computes the open status from item progress: no remaining
// units means All Picked, any progress with units left means Partial.
func DeriveStatus(items []Item) string {
	if len(items) == 0 {
		return StatusPending
	}

	remaining := 0
	partial := false
	for _, item := range items {
		remaining += item.Remaining
		if item.PickedQty > 0 && item.Remaining > 0 {
			partial = true
		}
	}

	if remaining == 0 {
		return StatusAllPicked
	}
	if partial {
		return StatusPartial
	}
	return StatusPending
}
