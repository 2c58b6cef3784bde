package testutil

import (
	"context"
	"testing"

	"mangaverse/database"
	"mangaverse/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	TestChain    = "solana"
	TestCurrency = "MVT"
	TestDecimals = int32(6)
)

// NewTestWallet returns a unique wallet address for a test
func NewTestWallet(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// BalanceKey returns the test ledger key for an account
func BalanceKey(accountID uuid.UUID) entities.BalanceKey {
	return entities.BalanceKey{AccountID: accountID, Chain: TestChain, Currency: TestCurrency}
}

// CreateTestAccount inserts an account directly and returns it
func CreateTestAccount(t *testing.T, db *database.DB, wallet string) *entities.Account {
	t.Helper()
	var account entities.Account
	err := db.QueryRow(context.Background(), `
		INSERT INTO accounts (wallet_address) VALUES ($1)
		RETURNING id, wallet_address, weekly_points, created_at, updated_at`, wallet,
	).Scan(&account.ID, &account.WalletAddress, &account.WeeklyPoints, &account.CreatedAt, &account.UpdatedAt)
	require.NoError(t, err)
	return &account
}

// CreateTestAccountWithBalance inserts an account holding amount of the test currency
func CreateTestAccountWithBalance(t *testing.T, db *database.DB, wallet string, amount string) *entities.Account {
	t.Helper()
	account := CreateTestAccount(t, db, wallet)
	_, err := db.Exec(context.Background(), `
		INSERT INTO balances (account_id, chain, currency, amount, decimals)
		VALUES ($1, $2, $3, $4::numeric, $5)`,
		account.ID, TestChain, TestCurrency, amount, TestDecimals,
	)
	require.NoError(t, err)
	return account
}

// SetWeeklyPoints overwrites an account's weekly points
func SetWeeklyPoints(t *testing.T, db *database.DB, accountID uuid.UUID, points int64) {
	t.Helper()
	_, err := db.Exec(context.Background(), `UPDATE accounts SET weekly_points = $2 WHERE id = $1`, accountID, points)
	require.NoError(t, err)
}

// CreateTestChapter inserts a chapter for the content type and returns its id
func CreateTestChapter(t *testing.T, db *database.DB, contentType entities.ContentType, title string) uuid.UUID {
	t.Helper()
	table := "manga_chapters"
	if contentType == entities.ContentTypeNovel {
		table = "novel_chapters"
	}
	var id uuid.UUID
	err := db.QueryRow(context.Background(), `INSERT INTO `+table+` (title) VALUES ($1) RETURNING id`, title).Scan(&id)
	require.NoError(t, err)
	return id
}

// GetBalanceAmount reads an account's test currency balance, zero when absent
func GetBalanceAmount(t *testing.T, db *database.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	var raw *string
	err := db.QueryRow(context.Background(), `
		SELECT (SELECT amount::text FROM balances WHERE account_id = $1 AND chain = $2 AND currency = $3)`,
		accountID, TestChain, TestCurrency,
	).Scan(&raw)
	require.NoError(t, err)
	if raw == nil {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(*raw)
	require.NoError(t, err)
	return amount
}

// CreateTestOngoingGame builds an ongoing game between two wallets
func CreateTestOngoingGame(playerOne, playerTwo string, stake decimal.Decimal) *entities.Game {
	return &entities.Game{
		PlayerOne:   playerOne,
		PlayerTwo:   &playerTwo,
		StakeAmount: stake,
		Status:      entities.GameStatusOngoing,
	}
}
