package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"mangaverse/database"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q Queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

func newBalanceHistoryRepository(q Queryable) interfaces.BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: q}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *entities.BalanceHistory) error {
	var metadata []byte
	if history.TransactionMetadata != nil {
		var err error
		metadata, err = json.Marshal(history.TransactionMetadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
	}

	query := `
		INSERT INTO balance_history (
			account_id, chain, currency, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_id, related_type
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	var relatedType *string
	if history.RelatedType != nil {
		rt := string(*history.RelatedType)
		relatedType = &rt
	}

	err := r.q.QueryRow(ctx, query,
		history.AccountID,
		history.Chain,
		history.Currency,
		history.BalanceBefore.String(),
		history.BalanceAfter.String(),
		history.ChangeAmount.String(),
		string(history.TransactionType),
		metadata,
		history.RelatedID,
		relatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return translateError(err, "record balance history")
	}
	return nil
}

// GetByAccount returns the newest entries for an account
func (r *BalanceHistoryRepository) GetByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]*entities.BalanceHistory, error) {
	query := `
		SELECT id, account_id, chain, currency,
		       balance_before::text, balance_after::text, change_amount::text,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var histories []*entities.BalanceHistory
	for rows.Next() {
		var h entities.BalanceHistory
		var before, after, change, transactionType string
		var metadata []byte
		var relatedType *string
		err := rows.Scan(
			&h.ID, &h.AccountID, &h.Chain, &h.Currency,
			&before, &after, &change,
			&transactionType, &metadata, &h.RelatedID, &relatedType, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}
		if h.BalanceBefore, err = parseDecimal(before, "balance_before"); err != nil {
			return nil, err
		}
		if h.BalanceAfter, err = parseDecimal(after, "balance_after"); err != nil {
			return nil, err
		}
		if h.ChangeAmount, err = parseDecimal(change, "change_amount"); err != nil {
			return nil, err
		}
		h.TransactionType = entities.TransactionType(transactionType)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &h.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		if relatedType != nil {
			rt := entities.RelatedType(*relatedType)
			h.RelatedType = &rt
		}
		histories = append(histories, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}
	return histories, nil
}
