package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Move is a rock-paper-scissors choice
type Move string

const (
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// ErrInvalidMove is returned by ParseMove for anything outside the move set
var ErrInvalidMove = errors.New("move must be one of rock, paper, scissors")

// ParseMove normalizes and validates a submitted choice
func ParseMove(raw string) (Move, error) {
	switch m := Move(strings.ToLower(strings.TrimSpace(raw))); m {
	case MoveRock, MovePaper, MoveScissors:
		return m, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidMove, raw)
	}
}

// Beats applies the three-way cycle rule
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MoveScissors:
		return other == MovePaper
	case MovePaper:
		return other == MoveRock
	}
	return false
}

// GameStatus tracks the game lifecycle
type GameStatus string

const (
	GameStatusWaiting   GameStatus = "waiting"
	GameStatusOngoing   GameStatus = "ongoing"
	GameStatusCompleted GameStatus = "completed"
)

// RoundOutcome is the result of evaluating the current round
type RoundOutcome string

const (
	RoundOutcomePending   RoundOutcome = "ongoing"
	RoundOutcomeTie       RoundOutcome = "tie"
	RoundOutcomeCompleted RoundOutcome = "completed"
)

// Game is a two-player rock-paper-scissors match with a fixed stake
type Game struct {
	ID            uuid.UUID       `db:"id"`
	PlayerOne     string          `db:"player_one"`
	PlayerTwo     *string         `db:"player_two"`
	PlayerOneMove *Move           `db:"player_one_move"`
	PlayerTwoMove *Move           `db:"player_two_move"`
	StakeAmount   decimal.Decimal `db:"stake_amount"`
	Status        GameStatus      `db:"status"`
	Winner        *string         `db:"winner"`
	Round         int             `db:"round"`
	Version       int64           `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
}

// IsCompleted returns true once a winner has been settled
func (g *Game) IsCompleted() bool {
	return g.Status == GameStatusCompleted
}

// IsPlayer reports whether wallet is registered in either slot
func (g *Game) IsPlayer(wallet string) bool {
	if wallet == "" {
		return false
	}
	return g.PlayerOne == wallet || (g.PlayerTwo != nil && *g.PlayerTwo == wallet)
}

// Opponent returns the other player's wallet
func (g *Game) Opponent(wallet string) (string, bool) {
	switch {
	case g.PlayerTwo == nil:
		return "", false
	case g.PlayerOne == wallet:
		return *g.PlayerTwo, true
	case *g.PlayerTwo == wallet:
		return g.PlayerOne, true
	}
	return "", false
}

// Join seats the second player and starts the game
func (g *Game) Join(wallet string) error {
	if g.Status != GameStatusWaiting || g.PlayerTwo != nil {
		return errors.New("game is not open for joining")
	}
	if wallet == g.PlayerOne {
		return errors.New("cannot join your own game")
	}
	g.PlayerTwo = &wallet
	g.Status = GameStatusOngoing
	return nil
}

// SetMove records wallet's choice for the current round, replacing an
// unresolved earlier choice.
func (g *Game) SetMove(wallet string, move Move) error {
	if g.Status != GameStatusOngoing {
		return fmt.Errorf("game is %s", g.Status)
	}
	switch {
	case g.PlayerOne == wallet:
		g.PlayerOneMove = &move
	case g.PlayerTwo != nil && *g.PlayerTwo == wallet:
		g.PlayerTwoMove = &move
	default:
		return errors.New("wallet is not a player in this game")
	}
	return nil
}

// BothMoved returns true when the round can be evaluated
func (g *Game) BothMoved() bool {
	return g.PlayerOneMove != nil && g.PlayerTwoMove != nil
}

// DetermineOutcome evaluates the round without mutating the game. The winner
// and loser wallets are only set for RoundOutcomeCompleted.
func (g *Game) DetermineOutcome() (outcome RoundOutcome, winner, loser string) {
	if !g.BothMoved() || g.PlayerTwo == nil {
		return RoundOutcomePending, "", ""
	}
	one, two := *g.PlayerOneMove, *g.PlayerTwoMove
	switch {
	case one == two:
		return RoundOutcomeTie, "", ""
	case one.Beats(two):
		return RoundOutcomeCompleted, g.PlayerOne, *g.PlayerTwo
	default:
		return RoundOutcomeCompleted, *g.PlayerTwo, g.PlayerOne
	}
}

// ResetRound clears both moves after a tie and advances the round counter
func (g *Game) ResetRound() {
	g.PlayerOneMove = nil
	g.PlayerTwoMove = nil
	g.Round++
}

// Complete finalizes the game with a winner
func (g *Game) Complete(winner string, at time.Time) {
	g.Status = GameStatusCompleted
	g.Winner = &winner
	g.CompletedAt = &at
}
