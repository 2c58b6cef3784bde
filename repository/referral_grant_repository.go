package repository

import (
	"context"
	"errors"

	"mangaverse/database"
	"mangaverse/domain/entities"
	"mangaverse/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReferralGrantRepository implements the ReferralGrantRepository interface
type ReferralGrantRepository struct {
	q Queryable
}

// NewReferralGrantRepository creates a new referral grant repository
func NewReferralGrantRepository(db *database.DB) *ReferralGrantRepository {
	return &ReferralGrantRepository{q: db.Pool}
}

func newReferralGrantRepository(q Queryable) interfaces.ReferralGrantRepository {
	return &ReferralGrantRepository{q: q}
}

// Create inserts a grant; the unique invitee column rejects a second payout
func (r *ReferralGrantRepository) Create(ctx context.Context, grant *entities.ReferralGrant) error {
	query := `
		INSERT INTO referral_grants (inviter_id, invitee_id, bonus_amount)
		VALUES ($1, $2, $3::numeric)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, grant.InviterID, grant.InviteeID, grant.BonusAmount.String()).
		Scan(&grant.ID, &grant.CreatedAt)
	if err != nil {
		return translateError(err, "create referral grant")
	}
	return nil
}

// GetByInvitee returns the grant paid for an invitee
func (r *ReferralGrantRepository) GetByInvitee(ctx context.Context, inviteeID uuid.UUID) (*entities.ReferralGrant, error) {
	query := `
		SELECT id, inviter_id, invitee_id, bonus_amount::text, created_at
		FROM referral_grants
		WHERE invitee_id = $1
	`
	var grant entities.ReferralGrant
	var bonus string
	err := r.q.QueryRow(ctx, query, inviteeID).Scan(&grant.ID, &grant.InviterID, &grant.InviteeID, &bonus, &grant.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "get referral grant")
	}
	if grant.BonusAmount, err = parseDecimal(bonus, "bonus_amount"); err != nil {
		return nil, err
	}
	return &grant, nil
}
