// store/gorm.go
package store

import (
	"errors"

	"chartridge/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates/updates all eight tables.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Game{},
		&models.Session{},
		&models.Player{},
		&models.Checkpoint{},
		&models.Bonus{},
		&models.Score{},
		&models.Increment{},
		&models.Datum{},
	)
}

func (s *GormStore) CreateGame(g *models.Game) error {
	return s.DB.Create(g).Error
}

func (s *GormStore) GetGame(id string) (*models.Game, error) {
	var game models.Game
	if err := s.DB.First(&game, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

func (s *GormStore) UpdateGame(g *models.Game) error {
	return s.DB.Save(g).Error
}

func (s *GormStore) ListGames() ([]models.Game, error) {
	var games []models.Game
	if err := s.DB.Order("created_at desc").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (s *GormStore) DeleteGame(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := clearEventTables(tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Game{}, "id = ?", id).Error
	})
}

func (s *GormStore) ClearGameData(id string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return clearEventTables(tx, id)
	})
}

func clearEventTables(tx *gorm.DB, gameID string) error {
	for _, m := range []interface{}{
		&models.Session{},
		&models.Player{},
		&models.Checkpoint{},
		&models.Bonus{},
		&models.Score{},
		&models.Increment{},
		&models.Datum{},
	} {
		if err := tx.Where("game_id = ?", gameID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *GormStore) CreateSession(sess *models.Session) error {
	return s.DB.Create(sess).Error
}

func (s *GormStore) GetSession(id string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *GormStore) SessionExists(id string) (bool, error) {
	var count int64
	if err := s.DB.Model(&models.Session{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) ListSessions(gameID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.DB.Where("game_id = ?", gameID).Order("started_at desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *GormStore) ListPlayerSessions(gameID, playerID string) ([]models.Session, error) {
	var sessions []models.Session
	if err := s.DB.Where("game_id = ? AND player_id = ?", gameID, playerID).
		Order("started_at desc").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *GormStore) CountSessions(gameID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Session{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}

func (s *GormStore) EnsurePlayer(gameID, playerID string) (bool, error) {
	res := s.DB.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Player{GameID: gameID, ID: playerID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) PlayerExists(gameID, playerID string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Player{}).
		Where("game_id = ? AND id = ?", gameID, playerID).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CountPlayers(gameID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Player{}).Where("game_id = ?", gameID).Count(&count).Error
	return count, err
}

func (s *GormStore) AppendCheckpoint(c *models.Checkpoint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return s.DB.Create(c).Error
}

func (s *GormStore) AppendBonus(b *models.Bonus) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return s.DB.Create(b).Error
}

func (s *GormStore) AppendScore(sc *models.Score) error {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	return s.DB.Create(sc).Error
}

func (s *GormStore) ApplyIncrement(sessionID, gameID, name string, delta int64, set *int64) error {
	initial := delta
	if set != nil {
		initial = *set
	}
	row := models.Increment{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		GameID:    gameID,
		Name:      name,
		Value:     initial,
	}
	// Single ON CONFLICT statement so concurrent reports for the same key
	// cannot lose updates.
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "game_id"}, {Name: "name"}},
	}
	if set != nil {
		onConflict.DoUpdates = clause.Assignments(map[string]interface{}{"value": *set})
	} else {
		onConflict.DoUpdates = clause.Assignments(map[string]interface{}{
			"value": gorm.Expr("increments.value + ?", delta),
		})
	}
	return s.DB.Clauses(onConflict).Create(&row).Error
}

func (s *GormStore) PutDatum(sessionID, gameID, name, value string) error {
	row := models.Datum{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		GameID:    gameID,
		Name:      name,
		Value:     value,
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "game_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"value": value}),
	}).Create(&row).Error
}

func (s *GormStore) ListCheckpoints(gameID string) ([]models.Checkpoint, error) {
	var rows []models.Checkpoint
	if err := s.DB.Where("game_id = ?", gameID).Order("reached_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListBonuses(gameID string) ([]models.Bonus, error) {
	var rows []models.Bonus
	if err := s.DB.Where("game_id = ?", gameID).Order("reached_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListScores(gameID string) ([]models.Score, error) {
	var rows []models.Score
	if err := s.DB.Where("game_id = ?", gameID).Order("recorded_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListSessionCheckpoints(gameID, sessionID string) ([]models.Checkpoint, error) {
	var rows []models.Checkpoint
	if err := s.DB.Where("game_id = ? AND session_id = ?", gameID, sessionID).
		Order("reached_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListSessionBonuses(gameID, sessionID string) ([]models.Bonus, error) {
	var rows []models.Bonus
	if err := s.DB.Where("game_id = ? AND session_id = ?", gameID, sessionID).
		Order("reached_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListSessionScores(gameID, sessionID string) ([]models.Score, error) {
	var rows []models.Score
	if err := s.DB.Where("game_id = ? AND session_id = ?", gameID, sessionID).
		Order("recorded_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListSessionIncrements(gameID, sessionID string) ([]models.Increment, error) {
	var rows []models.Increment
	if err := s.DB.Where("game_id = ? AND session_id = ?", gameID, sessionID).
		Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormStore) ListSessionData(gameID, sessionID string) ([]models.Datum, error) {
	var rows []models.Datum
	if err := s.DB.Where("game_id = ? AND session_id = ?", gameID, sessionID).
		Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
