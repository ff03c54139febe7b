// store/store.go
package store

import (
	"errors"

	"chartridge/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("store: record not found")

// Store is the narrow row-store boundary the recorder, registrar and
// aggregator are built against. The production implementation is GormStore;
// MemoryStore backs the tests.
type Store interface {
	// Games
	CreateGame(g *models.Game) error
	GetGame(id string) (*models.Game, error)
	UpdateGame(g *models.Game) error
	ListGames() ([]models.Game, error)
	// DeleteGame cascades across the game row and all seven event tables.
	DeleteGame(id string) error
	// ClearGameData wipes the seven event tables but keeps the game row.
	ClearGameData(id string) error

	// Sessions & players
	CreateSession(s *models.Session) error
	GetSession(id string) (*models.Session, error)
	SessionExists(id string) (bool, error)
	ListSessions(gameID string) ([]models.Session, error) // started_at desc
	ListPlayerSessions(gameID, playerID string) ([]models.Session, error)
	CountSessions(gameID string) (int64, error)
	// EnsurePlayer inserts the (game, player) pair if unseen. The insert is a
	// single ON CONFLICT DO NOTHING statement, so concurrent first contact
	// from the same player cannot produce duplicate rows.
	EnsurePlayer(gameID, playerID string) (created bool, err error)
	PlayerExists(gameID, playerID string) (bool, error)
	CountPlayers(gameID string) (int64, error)

	// Event writes
	AppendCheckpoint(c *models.Checkpoint) error
	AppendBonus(b *models.Bonus) error
	AppendScore(s *models.Score) error
	// ApplyIncrement upserts the (session, game, name) counter atomically:
	// new value = set if non-nil, else existing value + delta (delta on
	// first contact).
	ApplyIncrement(sessionID, gameID, name string, delta int64, set *int64) error
	// PutDatum upserts the (session, game, name) value, last write wins.
	PutDatum(sessionID, gameID, name, value string) error

	// Event reads
	ListCheckpoints(gameID string) ([]models.Checkpoint, error)
	ListBonuses(gameID string) ([]models.Bonus, error)
	ListScores(gameID string) ([]models.Score, error)
	ListSessionCheckpoints(gameID, sessionID string) ([]models.Checkpoint, error)
	ListSessionBonuses(gameID, sessionID string) ([]models.Bonus, error)
	ListSessionScores(gameID, sessionID string) ([]models.Score, error)
	ListSessionIncrements(gameID, sessionID string) ([]models.Increment, error)
	ListSessionData(gameID, sessionID string) ([]models.Datum, error)
}
