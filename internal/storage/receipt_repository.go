package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bm-streak/internal/types"
)

// ReceiptRepository keeps each recipient's inbound send history, newest first
type ReceiptRepository struct {
	store *RedisStore
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(store *RedisStore) *ReceiptRepository {
	return &ReceiptRepository{store: store}
}

type receiptRecord struct {
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// Prepend adds a receipt to the head of the recipient's history
func (r *ReceiptRepository) Prepend(ctx context.Context, recipient string, receipt types.Receipt) error {
	payload, err := json.Marshal(receiptRecord{
		Sender:    receipt.Sender,
		Timestamp: types.FormatTime(receipt.Timestamp),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}

	if err := r.store.client.LPush(ctx, r.store.Key(KeyReceived, recipient), payload).Err(); err != nil {
		return fmt.Errorf("failed to append receipt for %s: %w", recipient, err)
	}
	return nil
}

// List returns up to limit receipts, most recent first. Malformed entries are skipped.
func (r *ReceiptRepository) List(ctx context.Context, recipient string, limit int) ([]types.Receipt, error) {
	if limit <= 0 {
		return []types.Receipt{}, nil
	}

	raw, err := r.store.client.LRange(ctx, r.store.Key(KeyReceived, recipient), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read receipts for %s: %w", recipient, err)
	}

	receipts := make([]types.Receipt, 0, len(raw))
	for _, item := range raw {
		var rec receiptRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		ts, err := types.ParseTime(rec.Timestamp)
		if err != nil {
			continue
		}
		receipts = append(receipts, types.Receipt{Sender: rec.Sender, Timestamp: ts})
	}
	return receipts, nil
}
