package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// saveChunkSize caps one insert batch. Purely a write-size concern for the
// backing store, not an algorithmic one.
const saveChunkSize = 400

const labelColumns = `source_document, page_index, order_key, tracking_key,
	raw_sku, canonical_sku, quantity, description,
	crop_x, crop_y, crop_width, crop_height,
	run_id, processed_at, processed_date`

// LabelStore persists processed label records and answers the exact-match
// key queries used for reprints.
type LabelStore struct {
	client *Client
	logger *zap.Logger
}

func NewLabelStore(client *Client, logger *zap.Logger) *LabelStore {
	return &LabelStore{client: client, logger: logger}
}

// SaveLabels appends records in chunks. The table is append-only; callers
// treat failures as best-effort-after-success and never roll back a run.
func (s *LabelStore) SaveLabels(ctx context.Context, records []ProcessedLabelRecord) error {
	for _, chunk := range chunkRecords(records, saveChunkSize) {
		if err := s.saveChunk(ctx, chunk); err != nil {
			return fmt.Errorf("failed to save label chunk: %w", err)
		}
	}

	s.logger.Info("Processed labels saved", zap.Int("records", len(records)))
	return nil
}

func (s *LabelStore) saveChunk(ctx context.Context, records []ProcessedLabelRecord) error {
	batch := &pgx.Batch{}
	query := fmt.Sprintf(`INSERT INTO processed_labels (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`, labelColumns)

	for _, record := range records {
		batch.Queue(query,
			record.SourceDocument,
			record.PageIndex,
			record.OrderKey,
			record.TrackingKey,
			record.RawSKU,
			record.CanonicalSKU,
			record.Quantity,
			record.Description,
			record.CropX,
			record.CropY,
			record.CropWidth,
			record.CropHeight,
			record.RunID,
			record.ProcessedAt,
			record.ProcessedDate,
		)
	}

	results := s.client.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// FindByTrackingKey returns every persisted record matching the tracking
// key exactly, oldest first.
func (s *LabelStore) FindByTrackingKey(ctx context.Context, trackingKey string) ([]ProcessedLabelRecord, error) {
	return s.find(ctx, "tracking_key", trackingKey)
}

// FindByOrderKey returns every persisted record matching the order key
// exactly, oldest first.
func (s *LabelStore) FindByOrderKey(ctx context.Context, orderKey string) ([]ProcessedLabelRecord, error) {
	return s.find(ctx, "order_key", orderKey)
}

func (s *LabelStore) find(ctx context.Context, column, key string) ([]ProcessedLabelRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM processed_labels WHERE %s = $1 ORDER BY processed_at`,
		labelColumns, column)

	rows, err := s.client.Query(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query labels by %s: %w", column, err)
	}
	defer rows.Close()

	var records []ProcessedLabelRecord
	for rows.Next() {
		var record ProcessedLabelRecord
		if err := rows.Scan(
			&record.SourceDocument,
			&record.PageIndex,
			&record.OrderKey,
			&record.TrackingKey,
			&record.RawSKU,
			&record.CanonicalSKU,
			&record.Quantity,
			&record.Description,
			&record.CropX,
			&record.CropY,
			&record.CropWidth,
			&record.CropHeight,
			&record.RunID,
			&record.ProcessedAt,
			&record.ProcessedDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan label record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating label records: %w", err)
	}

	return records, nil
}

func chunkRecords(records []ProcessedLabelRecord, size int) [][]ProcessedLabelRecord {
	if size <= 0 || len(records) == 0 {
		return nil
	}

	var chunks [][]ProcessedLabelRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
