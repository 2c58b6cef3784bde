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

const accountColumns = `id, wallet_address, referral_code, referred_by, weekly_points, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

func newAccountRepository(q Queryable) interfaces.AccountRepository {
	return &AccountRepository{q: q}
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var account entities.Account
	err := row.Scan(
		&account.ID,
		&account.WalletAddress,
		&account.ReferralCode,
		&account.ReferredBy,
		&account.WeeklyPoints,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) getOne(ctx context.Context, where string, arg any) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	account, err := scanAccount(r.q.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	return r.getOne(ctx, `id = $1`, id)
}

// GetByWallet retrieves an account by wallet address
func (r *AccountRepository) GetByWallet(ctx context.Context, walletAddress string) (*entities.Account, error) {
	return r.getOne(ctx, `wallet_address = $1`, walletAddress)
}

// GetByReferralCode retrieves the account that owns a referral code
func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*entities.Account, error) {
	return r.getOne(ctx, `referral_code = $1`, code)
}

// Create inserts a new account
func (r *AccountRepository) Create(ctx context.Context, walletAddress string, referredBy *uuid.UUID) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (wallet_address, referred_by)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, walletAddress, referredBy))
	if err != nil {
		return nil, translateError(err, "create account")
	}
	return account, nil
}

// SetReferralCode assigns a code to an account that has none, skipping codes
// that another account already owns
func (r *AccountRepository) SetReferralCode(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	query := `
		UPDATE accounts
		SET referral_code = $2, updated_at = NOW()
		WHERE id = $1
		  AND referral_code IS NULL
		  AND NOT EXISTS (SELECT 1 FROM accounts WHERE referral_code = $2)
	`
	result, err := r.q.Exec(ctx, query, id, code)
	if err != nil {
		return false, translateError(err, "set referral code")
	}
	return result.RowsAffected() == 1, nil
}

// AddWeeklyPoints increments weekly points in a single statement
func (r *AccountRepository) AddWeeklyPoints(ctx context.Context, id uuid.UUID, points int64) (int64, error) {
	query := `
		UPDATE accounts
		SET weekly_points = weekly_points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING weekly_points
	`
	var total int64
	err := r.q.QueryRow(ctx, query, id, points).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: account %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return 0, translateError(err, "add weekly points")
	}
	return total, nil
}

// GetWithWeeklyPointsForUpdate locks every account holding weekly points.
// Rows are locked in id order so concurrent lockers cannot deadlock.
func (r *AccountRepository) GetWithWeeklyPointsForUpdate(ctx context.Context) ([]*entities.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE weekly_points > 0
		ORDER BY id
		FOR UPDATE`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, translateError(err, "query accounts with points")
	}
	defer rows.Close()

	var accounts []*entities.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// ResetWeeklyPoints zeroes the points of the given accounts
func (r *AccountRepository) ResetWeeklyPoints(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	query := `UPDATE accounts SET weekly_points = 0, updated_at = NOW() WHERE id = ANY($1::uuid[])`
	if _, err := r.q.Exec(ctx, query, idStrings); err != nil {
		return translateError(err, "reset weekly points")
	}
	return nil
}
