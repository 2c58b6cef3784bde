package repository

import (
	"context"
	"errors"
	"fmt"

	"mangaverse/database"
	"mangaverse/domain"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AirdropClaimRepository implements the AirdropClaimRepository interface
type AirdropClaimRepository struct {
	q Queryable
}

// NewAirdropClaimRepository creates a new airdrop claim repository
func NewAirdropClaimRepository(db *database.DB) *AirdropClaimRepository {
	return &AirdropClaimRepository{q: db.Pool}
}

func newAirdropClaimRepository(q Queryable) interfaces.AirdropClaimRepository {
	return &AirdropClaimRepository{q: q}
}

// GetByUser returns the user's claim
func (r *AirdropClaimRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.AirdropClaim, error) {
	query := `
		SELECT id, user_id, public_key, amount::text, signature, status, error,
		       last_valid_block_height, created_at, updated_at
		FROM airdrop_claims
		WHERE user_id = $1
	`
	var claim entities.AirdropClaim
	var amount, status string
	var lastValidBlockHeight int64
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&claim.ID,
		&claim.UserID,
		&claim.PublicKey,
		&amount,
		&claim.Signature,
		&status,
		&claim.Error,
		&lastValidBlockHeight,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "get airdrop claim")
	}
	if claim.Amount, err = parseDecimal(amount, "amount"); err != nil {
		return nil, err
	}
	claim.Status = entities.AirdropStatus(status)
	claim.LastValidBlockHeight = uint64(lastValidBlockHeight)
	return &claim, nil
}

// CreatePending writes the claim before submission. Only a failed claim may
// be overwritten; any other existing row is a conflict.
func (r *AirdropClaimRepository) CreatePending(ctx context.Context, claim *entities.AirdropClaim) error {
	query := `
		INSERT INTO airdrop_claims (user_id, public_key, amount, signature, status, last_valid_block_height)
		VALUES ($1, $2, $3::numeric, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET public_key = EXCLUDED.public_key,
		    amount = EXCLUDED.amount,
		    signature = EXCLUDED.signature,
		    status = EXCLUDED.status,
		    last_valid_block_height = EXCLUDED.last_valid_block_height,
		    error = NULL,
		    updated_at = NOW()
		WHERE airdrop_claims.status = 'failed'
		RETURNING id, created_at, updated_at
	`
	if claim.Status == "" {
		claim.Status = entities.AirdropStatusPending
	}
	err := r.q.QueryRow(ctx, query,
		claim.UserID,
		claim.PublicKey,
		claim.Amount.String(),
		claim.Signature,
		string(claim.Status),
		int64(claim.LastValidBlockHeight),
	).Scan(&claim.ID, &claim.CreatedAt, &claim.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: airdrop already claimed by user %s", domain.ErrConflict, claim.UserID)
	}
	if err != nil {
		return translateError(err, "create airdrop claim")
	}
	return nil
}

// UpdateOutcome stores the submission result, keeping the stored signature
// when none is supplied
func (r *AirdropClaimRepository) UpdateOutcome(ctx context.Context, userID uuid.UUID, status entities.AirdropStatus, signature *string, errMsg *string) error {
	query := `
		UPDATE airdrop_claims
		SET status = $2,
		    signature = COALESCE($3, signature),
		    error = $4,
		    updated_at = NOW()
		WHERE user_id = $1
	`
	result, err := r.q.Exec(ctx, query, userID, string(status), signature, errMsg)
	if err != nil {
		return translateError(err, "update airdrop claim")
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: no airdrop claim for user %s", domain.ErrNotFound, userID)
	}
	return nil
}
