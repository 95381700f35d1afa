// Package orders builds the lookup indexes over an order-export table.
package orders

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/tabular"
)

// Header synonyms for the logical fields of an order export. Matching is
// handled by tabular.Field; first declared spelling present wins.
var (
	OrderKeyField = tabular.Field{
		Name:     "order_key",
		Synonyms: []string{"Order Id", "Order ID", "Order Number", "Order No"},
	}
	TrackingKeyField = tabular.Field{
		Name:     "tracking_key",
		Synonyms: []string{"Tracking Id", "Tracking ID", "Tracking Number", "AWB No", "AWB Number"},
	}
	SKUField = tabular.Field{
		Name:     "sku",
		Synonyms: []string{"SKU", "SKU Id", "Flipkart SKU", "Seller SKU", "SKU Code"},
	}
	QuantityField = tabular.Field{
		Name:     "quantity",
		Synonyms: []string{"Quantity", "Qty", "Item Quantity", "Units"},
	}
	DescriptionField = tabular.Field{
		Name:     "description",
		Synonyms: []string{"Description", "Product", "Product Title", "Product Name", "Item Description"},
	}
)

// OrderRecord is one normalized row of the order export. Header synonym
// matching happens exactly once, here; downstream code never sees raw maps.
type OrderRecord struct {
	OrderKey    string
	TrackingKey string
	RawSKU      string
	Quantity    string
	Description string
}

// IsZero reports whether the record carries no fields at all, which is how
// an unresolvable page is represented.
func (r OrderRecord) IsZero() bool {
	return r == OrderRecord{}
}

// QuantityValue parses the raw quantity string. A failed or negative parse
// yields 0; quantities are advisory, not validated.
func (r OrderRecord) QuantityValue() int {
	qty, err := strconv.Atoi(strings.TrimSpace(r.Quantity))
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

func normalizeRecord(raw tabular.Record) OrderRecord {
	return OrderRecord{
		OrderKey:    strings.TrimSpace(OrderKeyField.Value(raw)),
		TrackingKey: strings.TrimSpace(TrackingKeyField.Value(raw)),
		RawSKU:      strings.TrimSpace(SKUField.Value(raw)),
		Quantity:    strings.TrimSpace(QuantityField.Value(raw)),
		Description: strings.TrimSpace(DescriptionField.Value(raw)),
	}
}

// BuildStats counts what happened during an index build. Malformed rows are
// dropped silently; only the counts surface.
type BuildStats struct {
	TotalRows   int
	IndexedRows int
	DroppedRows int
}

// OrderIndex maps an order key to its candidate records in export order.
// A key with more than one record is ambiguous.
type OrderIndex struct {
	records []OrderRecord
	byKey   map[string][]OrderRecord
}

// BuildOrderIndex normalizes the export rows and indexes them by order key.
// Rows without an order key are dropped and counted, never surfaced per-row.
func BuildOrderIndex(rows []tabular.Record, logger *zap.Logger) (*OrderIndex, BuildStats) {
	index := &OrderIndex{
		byKey: make(map[string][]OrderRecord),
	}
	stats := BuildStats{TotalRows: len(rows)}

	for _, raw := range rows {
		record := normalizeRecord(raw)
		if record.OrderKey == "" {
			stats.DroppedRows++
			continue
		}
		index.records = append(index.records, record)
		index.byKey[record.OrderKey] = append(index.byKey[record.OrderKey], record)
		stats.IndexedRows++
	}

	if stats.DroppedRows > 0 {
		logger.Warn("Dropped order rows without an order key",
			zap.Int("dropped", stats.DroppedRows),
			zap.Int("total", stats.TotalRows))
	}
	logger.Info("Order index built",
		zap.Int("rows", stats.IndexedRows),
		zap.Int("keys", len(index.byKey)))

	return index, stats
}

// Lookup returns the candidate records for an order key in export order.
func (i *OrderIndex) Lookup(orderKey string) ([]OrderRecord, bool) {
	records, ok := i.byKey[orderKey]
	return records, ok
}

// Len returns the number of indexed rows.
func (i *OrderIndex) Len() int { return len(i.records) }

// Keys returns the number of distinct order keys.
func (i *OrderIndex) Keys() int { return len(i.byKey) }

// Records returns every indexed record in export order.
func (i *OrderIndex) Records() []OrderRecord { return i.records }

// TrackingEntry attributes a record to the order key it was indexed under.
// Tracking lookups are always order-key-attributed; there is no
// tracking-only match path.
type TrackingEntry struct {
	OrderKey string
	Record   OrderRecord
}

// TrackingIndex maps a tracking key to its entries in export order.
type TrackingIndex struct {
	byKey map[string][]TrackingEntry
}

// BuildTrackingIndex derives the secondary index by scanning every record
// of the order index. Records without a tracking key contribute nothing.
func BuildTrackingIndex(orderIndex *OrderIndex) *TrackingIndex {
	index := &TrackingIndex{
		byKey: make(map[string][]TrackingEntry),
	}
	for _, record := range orderIndex.records {
		if record.TrackingKey == "" {
			continue
		}
		index.byKey[record.TrackingKey] = append(index.byKey[record.TrackingKey], TrackingEntry{
			OrderKey: record.OrderKey,
			Record:   record,
		})
	}
	return index
}

// Lookup returns the entries for a tracking key in export order.
func (i *TrackingIndex) Lookup(trackingKey string) ([]TrackingEntry, bool) {
	entries, ok := i.byKey[trackingKey]
	return entries, ok
}

// Keys returns the number of distinct tracking keys.
func (i *TrackingIndex) Keys() int { return len(i.byKey) }
