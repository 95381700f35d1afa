// Package picklist aggregates pick quantities per canonical identifier and
// models the persisted picklist documents warehouse staff work through.
package picklist

import (
	"fmt"
	"sort"
)

// SortMode selects the output ordering of an aggregated picklist. Both
// orderings have shipped at various points; quantity-descending is the
// current default and alphabetical remains a supported policy.
type SortMode string

const (
	SortAlpha        SortMode = "alpha"
	SortQuantityDesc SortMode = "quantityDesc"
)

// Valid reports whether m names a known sort mode.
func (m SortMode) Valid() bool {
	return m == SortAlpha || m == SortQuantityDesc
}

// Entry is the aggregate for one canonical identifier.
type Entry struct {
	SKU         string
	Quantity    int
	Description string
}

// Aggregator sums required quantities per canonical identifier, retaining
// the first non-empty description seen. First-seen ordering is tracked
// explicitly; map iteration is never relied on.
type Aggregator struct {
	entries map[string]*Entry
	order   []string
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]*Entry)}
}

// Add contributes one page's quantity to its identifier. An empty
// identifier or non-positive quantity is a no-op and creates no entry.
func (a *Aggregator) Add(canonicalSKU string, quantity int, description string) {
	if canonicalSKU == "" || quantity <= 0 {
		return
	}

	entry, ok := a.entries[canonicalSKU]
	if !ok {
		entry = &Entry{SKU: canonicalSKU}
		a.entries[canonicalSKU] = entry
		a.order = append(a.order, canonicalSKU)
	}
	entry.Quantity += quantity
	if entry.Description == "" && description != "" {
		entry.Description = description
	}
}

// Len returns the number of identifiers with at least one contribution.
func (a *Aggregator) Len() int { return len(a.entries) }

// TotalQuantity returns the sum over all entries.
func (a *Aggregator) TotalQuantity() int {
	total := 0
	for _, entry := range a.entries {
		total += entry.Quantity
	}
	return total
}

// Quantity returns the running total for one identifier.
func (a *Aggregator) Quantity(canonicalSKU string) int {
	if entry, ok := a.entries[canonicalSKU]; ok {
		return entry.Quantity
	}
	return 0
}

// Entries finalizes the picklist in the requested order.
func (a *Aggregator) Entries(mode SortMode) []Entry {
	entries := make([]Entry, 0, len(a.entries))
	for _, skuID := range a.order {
		entries = append(entries, *a.entries[skuID])
	}

	switch mode {
	case SortAlpha:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].SKU < entries[j].SKU
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Quantity != entries[j].Quantity {
				return entries[i].Quantity > entries[j].Quantity
			}
			return entries[i].SKU < entries[j].SKU
		})
	}

	return entries
}

// CSV renders the picklist in the export format pick staff print out.
func CSV(entries []Entry) string {
	out := "SKU,Product,Total Qty\n"
	for _, entry := range entries {
		out += fmt.Sprintf("%s,%s,%d\n", entry.SKU, entry.Description, entry.Quantity)
	}
	return out
}
