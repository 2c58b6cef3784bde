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
	"github.com/shopspring/decimal"
)

// amounts travel as text so no precision is lost between NUMERIC and decimal.Decimal
const balanceColumns = `account_id, chain, currency, amount::text, decimals, version, created_at, updated_at`

// BalanceRepository implements the BalanceRepository interface
type BalanceRepository struct {
	q Queryable
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *database.DB) *BalanceRepository {
	return &BalanceRepository{q: db.Pool}
}

func newBalanceRepository(q Queryable) interfaces.BalanceRepository {
	return &BalanceRepository{q: q}
}

func scanBalance(row pgx.Row) (*entities.Balance, error) {
	var balance entities.Balance
	var amount string
	err := row.Scan(
		&balance.AccountID,
		&balance.Chain,
		&balance.Currency,
		&amount,
		&balance.Decimals,
		&balance.Version,
		&balance.CreatedAt,
		&balance.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if balance.Amount, err = parseDecimal(amount, "amount"); err != nil {
		return nil, err
	}
	return &balance, nil
}

// Get retrieves a balance
func (r *BalanceRepository) Get(ctx context.Context, key entities.BalanceKey) (*entities.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM balances
		WHERE account_id = $1 AND chain = $2 AND currency = $3`

	balance, err := scanBalance(r.q.QueryRow(ctx, query, key.AccountID, key.Chain, key.Currency))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Increment adds amount in one upsert, creating the row when absent
func (r *BalanceRepository) Increment(ctx context.Context, key entities.BalanceKey, decimals int32, amount decimal.Decimal) (*entities.Balance, error) {
	query := `
		INSERT INTO balances (account_id, chain, currency, amount, decimals)
		VALUES ($1, $2, $3, $4::numeric, $5)
		ON CONFLICT (account_id, chain, currency) DO UPDATE
		SET amount = balances.amount + EXCLUDED.amount,
		    version = balances.version + 1,
		    updated_at = NOW()
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, key.AccountID, key.Chain, key.Currency, amount.String(), decimals))
	if err != nil {
		return nil, translateError(err, "increment balance")
	}
	return balance, nil
}

// Decrement subtracts amount only when the stored amount covers it
func (r *BalanceRepository) Decrement(ctx context.Context, key entities.BalanceKey, amount decimal.Decimal) (*entities.Balance, error) {
	query := `
		UPDATE balances
		SET amount = amount - $4::numeric,
		    version = version + 1,
		    updated_at = NOW()
		WHERE account_id = $1 AND chain = $2 AND currency = $3
		  AND amount >= $4::numeric
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRow(ctx, query, key.AccountID, key.Chain, key.Currency, amount.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s cannot cover %s %s", domain.ErrInsufficientFunds, key.AccountID, amount, key.Currency)
	}
	if err != nil {
		return nil, translateError(err, "decrement balance")
	}
	return balance, nil
}

// ListByAccount returns every balance of an account
func (r *BalanceRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*entities.Balance, error) {
	query := `SELECT ` + balanceColumns + `
		FROM balances
		WHERE account_id = $1
		ORDER BY chain, currency`

	rows, err := r.q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*entities.Balance
	for rows.Next() {
		balance, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balances: %w", err)
	}
	return balances, nil
}
