package store

import "time"

// DateLayout is the calendar-date format used on persisted records,
// computed in the service's local time zone.
const DateLayout = "2006-01-02"

// ProcessedLabelRecord is the immutable snapshot persisted for every page
// at the end of a successful run. It is written once and never updated;
// distinct run IDs keep concurrent runs from colliding.
type ProcessedLabelRecord struct {
	SourceDocument string
	PageIndex      int
	OrderKey       string
	TrackingKey    string
	RawSKU         string
	CanonicalSKU   string
	Quantity       string
	Description    string
	CropX          float64
	CropY          float64
	CropWidth      float64
	CropHeight     float64
	RunID          string
	ProcessedAt    time.Time
	ProcessedDate  string
}
