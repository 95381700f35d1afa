package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk-io/labelengine/internal/picklist"
)

// PicklistStore persists picklist documents. Items are stored as a JSONB
// blob; progress updates replace the whole item list.
type PicklistStore struct {
	client *Client
	logger *zap.Logger
}

func NewPicklistStore(client *Client, logger *zap.Logger) *PicklistStore {
	return &PicklistStore{client: client, logger: logger}
}

func (s *PicklistStore) SavePicklist(ctx context.Context, list picklist.Picklist) error {
	items, err := json.Marshal(list.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal picklist items: %w", err)
	}

	query := `INSERT INTO picklists (picklist_id, run_id, created_at, status, items)
		VALUES ($1, $2, $3, $4, $5)`
	if err := s.client.Exec(ctx, query, list.PicklistID, list.RunID, list.CreatedAt, list.Status, items); err != nil {
		return fmt.Errorf("failed to save picklist %s: %w", list.PicklistID, err)
	}

	s.logger.Info("Picklist saved",
		zap.String("picklist_id", list.PicklistID),
		zap.Int("skus", list.TotalSKUs()),
		zap.Int("units", list.TotalUnits()))
	return nil
}

// ListPicklists returns picklists created in [from, to], newest first.
func (s *PicklistStore) ListPicklists(ctx context.Context, from, to time.Time) ([]picklist.Picklist, error) {
	query := `SELECT picklist_id, run_id, created_at, status, items
		FROM picklists
		WHERE created_at >= $1 AND created_at <= $2
		ORDER BY created_at DESC`

	rows, err := s.client.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list picklists: %w", err)
	}
	defer rows.Close()

	var lists []picklist.Picklist
	for rows.Next() {
		var list picklist.Picklist
		var items []byte
		if err := rows.Scan(&list.PicklistID, &list.RunID, &list.CreatedAt, &list.Status, &items); err != nil {
			return nil, fmt.Errorf("failed to scan picklist: %w", err)
		}
		if err := json.Unmarshal(items, &list.Items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal picklist items: %w", err)
		}
		lists = append(lists, list)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picklists: %w", err)
	}

	return lists, nil
}

// GetPicklist fetches one picklist by ID.
func (s *PicklistStore) GetPicklist(ctx context.Context, picklistID string) (picklist.Picklist, error) {
	query := `SELECT picklist_id, run_id, created_at, status, items
		FROM picklists WHERE picklist_id = $1`

	var list picklist.Picklist
	var items []byte
	row := s.client.pool.QueryRow(ctx, query, picklistID)
	if err := row.Scan(&list.PicklistID, &list.RunID, &list.CreatedAt, &list.Status, &items); err != nil {
		return picklist.Picklist{}, fmt.Errorf("failed to get picklist %s: %w", picklistID, err)
	}
	if err := json.Unmarshal(items, &list.Items); err != nil {
		return picklist.Picklist{}, fmt.Errorf("failed to unmarshal picklist items: %w", err)
	}

	return list, nil
}

// UpdatePicklist replaces a picklist's items and status.
func (s *PicklistStore) UpdatePicklist(ctx context.Context, picklistID string, items []picklist.Item, status string) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal picklist items: %w", err)
	}

	query := `UPDATE picklists SET items = $2, status = $3 WHERE picklist_id = $1`
	if err := s.client.Exec(ctx, query, picklistID, payload, status); err != nil {
		return fmt.Errorf("failed to update picklist %s: %w", picklistID, err)
	}
	return nil
}
