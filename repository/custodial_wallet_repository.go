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

// CustodialWalletRepository implements the CustodialWalletRepository interface
type CustodialWalletRepository struct {
	q Queryable
}

// NewCustodialWalletRepository creates a new custodial wallet repository
func NewCustodialWalletRepository(db *database.DB) *CustodialWalletRepository {
	return &CustodialWalletRepository{q: db.Pool}
}

func newCustodialWalletRepository(q Queryable) interfaces.CustodialWalletRepository {
	return &CustodialWalletRepository{q: q}
}

// InsertIfAbsent stores the wallet unless the user already owns one. The
// persisted row is returned either way, so a losing concurrent insert sees
// the winner's keypair.
func (r *CustodialWalletRepository) InsertIfAbsent(ctx context.Context, wallet *entities.CustodialWallet) (*entities.CustodialWallet, error) {
	query := `
		INSERT INTO custodial_wallets (user_id, public_key, sealed_secret)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, wallet.UserID, wallet.PublicKey, wallet.SealedSecret); err != nil {
		return nil, translateError(err, "insert custodial wallet")
	}

	stored, err := r.GetByUser(ctx, wallet.UserID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, translateError(pgx.ErrNoRows, "read custodial wallet")
	}
	return stored, nil
}

// GetByUser returns the user's custodial wallet
func (r *CustodialWalletRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.CustodialWallet, error) {
	query := `
		SELECT user_id, public_key, sealed_secret, created_at
		FROM custodial_wallets
		WHERE user_id = $1
	`
	var wallet entities.CustodialWallet
	err := r.q.QueryRow(ctx, query, userID).Scan(&wallet.UserID, &wallet.PublicKey, &wallet.SealedSecret, &wallet.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "get custodial wallet")
	}
	return &wallet, nil
}
