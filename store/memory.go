// store/memory.go
package store

import (
	"sort"
	"sync"

	"chartridge/models"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store used by tests.
type MemoryStore struct {
	mu          sync.Mutex
	games       map[string]models.Game
	sessions    []models.Session
	players     map[[2]string]models.Player
	checkpoints []models.Checkpoint
	bonuses     []models.Bonus
	scores      []models.Score
	increments  []models.Increment
	data        []models.Datum
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]models.Game),
		players: make(map[[2]string]models.Player),
	}
}

func (s *MemoryStore) CreateGame(g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = *g
	return nil
}

func (s *MemoryStore) GetGame(id string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (s *MemoryStore) UpdateGame(g *models.Game) error {
	return s.CreateGame(g)
}

func (s *MemoryStore) ListGames() ([]models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := make([]models.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

func (s *MemoryStore) DeleteGame(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	s.clearLocked(id)
	return nil
}

func (s *MemoryStore) ClearGameData(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(id)
	return nil
}

func (s *MemoryStore) clearLocked(gameID string) {
	keep := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.GameID != gameID {
			keep = append(keep, sess)
		}
	}
	s.sessions = keep
	for key := range s.players {
		if key[0] == gameID {
			delete(s.players, key)
		}
	}
	cps := s.checkpoints[:0]
	for _, c := range s.checkpoints {
		if c.GameID != gameID {
			cps = append(cps, c)
		}
	}
	s.checkpoints = cps
	bns := s.bonuses[:0]
	for _, b := range s.bonuses {
		if b.GameID != gameID {
			bns = append(bns, b)
		}
	}
	s.bonuses = bns
	scs := s.scores[:0]
	for _, sc := range s.scores {
		if sc.GameID != gameID {
			scs = append(scs, sc)
		}
	}
	s.scores = scs
	incs := s.increments[:0]
	for _, in := range s.increments {
		if in.GameID != gameID {
			incs = append(incs, in)
		}
	}
	s.increments = incs
	dat := s.data[:0]
	for _, d := range s.data {
		if d.GameID != gameID {
			dat = append(dat, d)
		}
	}
	s.data = dat
}

func (s *MemoryStore) CreateSession(sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, *sess)
	return nil
}

func (s *MemoryStore) GetSession(id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			out := sess
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SessionExists(id string) (bool, error) {
	_, err := s.GetSession(id)
	if err == ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *MemoryStore) ListSessions(gameID string) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.GameID == gameID {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListPlayerSessions(gameID, playerID string) ([]models.Session, error) {
	sessions, err := s.ListSessions(gameID)
	if err != nil {
		return nil, err
	}
	var out []models.Session
	for _, sess := range sessions {
		if sess.PlayerID == playerID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *MemoryStore) CountSessions(gameID string) (int64, error) {
	sessions, err := s.ListSessions(gameID)
	return int64(len(sessions)), err
}

func (s *MemoryStore) EnsurePlayer(gameID, playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{gameID, playerID}
	if _, ok := s.players[key]; ok {
		return false, nil
	}
	s.players[key] = models.Player{GameID: gameID, ID: playerID}
	return true, nil
}

func (s *MemoryStore) PlayerExists(gameID, playerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.players[[2]string{gameID, playerID}]
	return ok, nil
}

func (s *MemoryStore) CountPlayers(gameID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for key := range s.players {
		if key[0] == gameID {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) AppendCheckpoint(c *models.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.checkpoints = append(s.checkpoints, *c)
	return nil
}

func (s *MemoryStore) AppendBonus(b *models.Bonus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.bonuses = append(s.bonuses, *b)
	return nil
}

func (s *MemoryStore) AppendScore(sc *models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	s.scores = append(s.scores, *sc)
	return nil
}

func (s *MemoryStore) ApplyIncrement(sessionID, gameID, name string, delta int64, set *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.increments {
		in := &s.increments[i]
		if in.SessionID == sessionID && in.GameID == gameID && in.Name == name {
			if set != nil {
				in.Value = *set
			} else {
				in.Value += delta
			}
			return nil
		}
	}
	initial := delta
	if set != nil {
		initial = *set
	}
	s.increments = append(s.increments, models.Increment{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		GameID:    gameID,
		Name:      name,
		Value:     initial,
	})
	return nil
}

func (s *MemoryStore) PutDatum(sessionID, gameID, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data {
		d := &s.data[i]
		if d.SessionID == sessionID && d.GameID == gameID && d.Name == name {
			d.Value = value
			return nil
		}
	}
	s.data = append(s.data, models.Datum{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		GameID:    gameID,
		Name:      name,
		Value:     value,
	})
	return nil
}

func (s *MemoryStore) ListCheckpoints(gameID string) ([]models.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Checkpoint
	for _, c := range s.checkpoints {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListBonuses(gameID string) ([]models.Bonus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bonus
	for _, b := range s.bonuses {
		if b.GameID == gameID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListScores(gameID string) ([]models.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Score
	for _, sc := range s.scores {
		if sc.GameID == gameID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSessionCheckpoints(gameID, sessionID string) ([]models.Checkpoint, error) {
	rows, _ := s.ListCheckpoints(gameID)
	var out []models.Checkpoint
	for _, c := range rows {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSessionBonuses(gameID, sessionID string) ([]models.Bonus, error) {
	rows, _ := s.ListBonuses(gameID)
	var out []models.Bonus
	for _, b := range rows {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSessionScores(gameID, sessionID string) ([]models.Score, error) {
	rows, _ := s.ListScores(gameID)
	var out []models.Score
	for _, sc := range rows {
		if sc.SessionID == sessionID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSessionIncrements(gameID, sessionID string) ([]models.Increment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Increment
	for _, in := range s.increments {
		if in.GameID == gameID && in.SessionID == sessionID {
			out = append(out, in)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSessionData(gameID, sessionID string) ([]models.Datum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Datum
	for _, d := range s.data {
		if d.GameID == gameID && d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	return out, nil
}
