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

const gameColumns = `id, player_one, player_two, player_one_move, player_two_move, stake_amount::text,
	status, winner, round, version, created_at, updated_at, completed_at`

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q Queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

func newGameRepository(q Queryable) interfaces.GameRepository {
	return &GameRepository{q: q}
}

func scanGame(row pgx.Row) (*entities.Game, error) {
	var game entities.Game
	var oneMove, twoMove *string
	var stake, status string
	err := row.Scan(
		&game.ID,
		&game.PlayerOne,
		&game.PlayerTwo,
		&oneMove,
		&twoMove,
		&stake,
		&status,
		&game.Winner,
		&game.Round,
		&game.Version,
		&game.CreatedAt,
		&game.UpdatedAt,
		&game.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if game.StakeAmount, err = parseDecimal(stake, "stake_amount"); err != nil {
		return nil, err
	}
	game.Status = entities.GameStatus(status)
	game.PlayerOneMove = toMove(oneMove)
	game.PlayerTwoMove = toMove(twoMove)
	return &game, nil
}

func toMove(raw *string) *entities.Move {
	if raw == nil {
		return nil
	}
	m := entities.Move(*raw)
	return &m
}

func fromMove(m *entities.Move) *string {
	if m == nil {
		return nil
	}
	s := string(*m)
	return &s
}

// Create inserts a new game
func (r *GameRepository) Create(ctx context.Context, game *entities.Game) error {
	query := `
		INSERT INTO games (player_one, player_two, stake_amount, status)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING id, round, version, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		game.PlayerOne,
		game.PlayerTwo,
		game.StakeAmount.String(),
		string(game.Status),
	).Scan(&game.ID, &game.Round, &game.Version, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return translateError(err, "create game")
	}
	return nil
}

func (r *GameRepository) get(ctx context.Context, id uuid.UUID, lock bool) (*entities.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	game, err := scanGame(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "get game")
	}
	return game, nil
}

// GetByID retrieves a game by id
func (r *GameRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Game, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate retrieves a game and locks its row
func (r *GameRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Game, error) {
	return r.get(ctx, id, true)
}

// Update writes the mutable game columns guarded by the version the caller read
func (r *GameRepository) Update(ctx context.Context, game *entities.Game) error {
	query := `
		UPDATE games
		SET player_two = $3,
		    player_one_move = $4,
		    player_two_move = $5,
		    status = $6,
		    winner = $7,
		    round = $8,
		    completed_at = $9,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		game.ID,
		game.Version,
		game.PlayerTwo,
		fromMove(game.PlayerOneMove),
		fromMove(game.PlayerTwoMove),
		string(game.Status),
		game.Winner,
		game.Round,
		game.CompletedAt,
	).Scan(&game.Version, &game.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: game %s was modified concurrently", domain.ErrConflict, game.ID)
	}
	if err != nil {
		return translateError(err, "update game")
	}
	return nil
}
