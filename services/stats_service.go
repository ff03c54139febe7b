// services/stats_service.go
package services

import (
	"errors"
	"time"

	"chartridge/models"
	"chartridge/store"

	"github.com/gofiber/fiber/v2"
)

// StatsService serves the dashboard read side. Every endpoint recomputes its
// view from raw rows at call time; concurrent reads are always safe.
type StatsService struct {
	Store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{Store: st}
}

// GameStatsView is the main per-game dashboard payload.
type GameStatsView struct {
	Playcount     int `json:"playcount"`
	PlaysToday    int `json:"plays_today"`
	PlaysThisWeek int `json:"plays_this_week"`

	Today         []int    `json:"today"`
	ThisWeek      []int    `json:"this_week"`
	ThisMonth     []int    `json:"this_month"`
	AllTime       []int    `json:"all_time,omitempty"`
	AllTimeLabels []string `json:"all_time_labels,omitempty"`

	Checkpoints []FunnelBar `json:"checkpoints,omitempty"`
	Bonuses     []FunnelBar `json:"bonuses,omitempty"`

	RecentSessions []SessionProgress `json:"recent_sessions"`

	// Leaderboards grouped by mode, top 10 each, in display pages of 4.
	LeaderboardPages [][]Leaderboard `json:"leaderboard_pages,omitempty"`
}

// BuildGameStats derives the dashboard view from raw rows at "now".
func BuildGameStats(game *models.Game, sessions []models.Session,
	checkpoints []models.Checkpoint, bonuses []models.Bonus,
	scores []models.Score, now time.Time) GameStatsView {

	view := GameStatsView{
		Playcount: len(sessions),
		Today:     hourlyToday(sessions, now),
		ThisWeek:  weeklyHistogram(sessions, now),
		ThisMonth: monthlyHistogram(sessions, now),
	}
	view.PlaysToday = sum(view.Today)
	view.PlaysThisWeek = sum(view.ThisWeek)
	view.AllTime, view.AllTimeLabels = allTimeHistogram(sessions, now)

	if !game.DisableCheckpointUnit {
		view.Checkpoints = funnel(game.CheckpointNames(), checkpointCountsByName(checkpoints), len(sessions))
	}
	if !game.DisableBonusUnit {
		view.Bonuses = funnel(game.BonusNames(), bonusCountsByName(bonuses), len(sessions))
	}

	bySession := checkpointsBySession(checkpoints)
	configured := game.CheckpointNames()
	recent := sessions
	if len(recent) > 10 {
		recent = recent[:10]
	}
	view.RecentSessions = make([]SessionProgress, 0, len(recent))
	for _, sess := range recent {
		view.RecentSessions = append(view.RecentSessions, SessionProgress{
			SessionID: sess.ID,
			PlayerID:  sess.PlayerID,
			Percent:   sessionProgressPercent(bySession[sess.ID], configured),
		})
	}

	if !game.DisableScoreUnit {
		view.LeaderboardPages = pageLeaderboards(leaderboards(scores, 10), 4)
	}
	return view
}

func checkpointsBySession(rows []models.Checkpoint) map[string][]models.Checkpoint {
	out := make(map[string][]models.Checkpoint)
	for _, r := range rows {
		out[r.SessionID] = append(out[r.SessionID], r)
	}
	return out
}

// GameStats handles GET /games/:id/stats.
func (s *StatsService) GameStats(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	sessions, err := s.Store.ListSessions(game.ID)
	if err != nil {
		return dbError(c)
	}
	checkpoints, err := s.Store.ListCheckpoints(game.ID)
	if err != nil {
		return dbError(c)
	}
	bonuses, err := s.Store.ListBonuses(game.ID)
	if err != nil {
		return dbError(c)
	}
	scores, err := s.Store.ListScores(game.ID)
	if err != nil {
		return dbError(c)
	}
	return c.JSON(BuildGameStats(game, sessions, checkpoints, bonuses, scores, time.Now()))
}

// GameInfoView is the detailed-information payload with labeled series and
// geo breakdowns.
type GameInfoView struct {
	Today     LabeledSeries `json:"today"`
	ThisWeek  LabeledSeries `json:"this_week"`
	ThisMonth LabeledSeries `json:"this_month"`
	AllTime   LabeledSeries `json:"all_time"`

	// BeatPercent is the share of sessions that reached the final configured
	// checkpoint.
	BeatPercent int `json:"beat_percent"`

	TimeOfDay LabeledSeries `json:"time_of_day"`
	DayOfWeek LabeledSeries `json:"day_of_week"`

	Countries Breakdown `json:"countries"`
	Locations Breakdown `json:"locations"`
}

// BuildGameInfo derives the detailed view from raw rows at "now".
func BuildGameInfo(game *models.Game, sessions []models.Session,
	checkpoints []models.Checkpoint, now time.Time) GameInfoView {

	view := GameInfoView{
		Today:     LabeledSeries{hourlyToday(sessions, now), hourLabelsThrough(now)},
		ThisWeek:  LabeledSeries{weeklyHistogram(sessions, now), weekdayLabels},
		ThisMonth: LabeledSeries{monthlyHistogram(sessions, now), monthDayLabels(now)},
		TimeOfDay: LabeledSeries{timeOfDayDistribution(sessions), fullHourLabels()},
		DayOfWeek: LabeledSeries{dayOfWeekDistribution(sessions), weekdayLabels},
	}
	view.AllTime.Values, view.AllTime.Labels = allTimeHistogram(sessions, now)

	names := game.CheckpointNames()
	if len(names) > 0 {
		last := names[len(names)-1]
		view.BeatPercent = roundPercent(checkpointCountsByName(checkpoints)[last], len(sessions))
	}

	countries := make([]string, len(sessions))
	locations := make([]string, len(sessions))
	for i, sess := range sessions {
		countries[i] = sess.IPCountry
		locations[i] = sess.Location
	}
	view.Countries = breakdown(countries, "Unknown Country")
	view.Locations = breakdown(locations, "Unknown Location")
	return view
}

// GameInfo handles GET /games/:id/info.
func (s *StatsService) GameInfo(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	sessions, err := s.Store.ListSessions(game.ID)
	if err != nil {
		return dbError(c)
	}
	checkpoints, err := s.Store.ListCheckpoints(game.ID)
	if err != nil {
		return dbError(c)
	}
	return c.JSON(BuildGameInfo(game, sessions, checkpoints, time.Now()))
}

// GameSessions handles GET /games/:id/sessions: every session with its
// progress bar plus the average.
func (s *StatsService) GameSessions(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	sessions, err := s.Store.ListSessions(game.ID)
	if err != nil {
		return dbError(c)
	}
	checkpoints, err := s.Store.ListCheckpoints(game.ID)
	if err != nil {
		return dbError(c)
	}

	bySession := checkpointsBySession(checkpoints)
	configured := game.CheckpointNames()
	progress := make([]SessionProgress, 0, len(sessions))
	total := 0
	for _, sess := range sessions {
		p := sessionProgressPercent(bySession[sess.ID], configured)
		total += p
		progress = append(progress, SessionProgress{
			SessionID: sess.ID,
			PlayerID:  sess.PlayerID,
			Percent:   p,
		})
	}
	average := 0
	if len(progress) > 0 {
		average = int(float64(total)/float64(len(progress)) + 0.5)
	}

	return c.JSON(fiber.Map{
		"average":  average,
		"sessions": progress,
	})
}

// TimelineEntry is one checkpoint/bonus hit in a session drill-down, with the
// elapsed time since session start.
type TimelineEntry struct {
	Name    string    `json:"name"`
	At      time.Time `json:"at"`
	Elapsed string    `json:"elapsed"`
}

// SessionDetailView is the per-session drill-down.
type SessionDetailView struct {
	Session  models.Session `json:"session"`
	Percent  int            `json:"percent"`
	Reached  int            `json:"reached"`
	Total    int            `json:"total"`
	Timeline struct {
		Checkpoints []TimelineEntry `json:"checkpoints"`
		Bonuses     []TimelineEntry `json:"bonuses"`
	} `json:"timeline"`
	Scores     []models.Score     `json:"scores,omitempty"`
	Increments []models.Increment `json:"increments,omitempty"`
	Data       []models.Datum     `json:"data,omitempty"`
}

// SessionDetail handles GET /games/:id/sessions/:session_id.
func (s *StatsService) SessionDetail(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	sess, err := s.Store.GetSession(c.Params("session_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
		}
		return dbError(c)
	}

	checkpoints, err := s.Store.ListSessionCheckpoints(game.ID, sess.ID)
	if err != nil {
		return dbError(c)
	}
	bonuses, err := s.Store.ListSessionBonuses(game.ID, sess.ID)
	if err != nil {
		return dbError(c)
	}

	view := SessionDetailView{
		Session: *sess,
		Percent: sessionProgressPercent(checkpoints, game.CheckpointNames()),
		Total:   len(game.CheckpointNames()),
	}
	view.Reached = len(checkpoints)
	for _, cp := range checkpoints {
		view.Timeline.Checkpoints = append(view.Timeline.Checkpoints, TimelineEntry{
			Name:    cp.Name,
			At:      cp.ReachedAt,
			Elapsed: formatElapsed(sess.StartedAt, cp.ReachedAt),
		})
	}
	for _, b := range bonuses {
		view.Timeline.Bonuses = append(view.Timeline.Bonuses, TimelineEntry{
			Name:    b.Name,
			At:      b.ReachedAt,
			Elapsed: formatElapsed(sess.StartedAt, b.ReachedAt),
		})
	}

	if !game.DisableScoreUnit {
		if view.Scores, err = s.Store.ListSessionScores(game.ID, sess.ID); err != nil {
			return dbError(c)
		}
	}
	if !game.DisableIncrementUnit {
		if view.Increments, err = s.Store.ListSessionIncrements(game.ID, sess.ID); err != nil {
			return dbError(c)
		}
	}
	if !game.DisableDataUnit {
		if view.Data, err = s.Store.ListSessionData(game.ID, sess.ID); err != nil {
			return dbError(c)
		}
	}
	return c.JSON(view)
}

// PlayerDetail handles GET /games/:id/players/:player_id.
func (s *StatsService) PlayerDetail(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	sessions, err := s.Store.ListPlayerSessions(game.ID, c.Params("player_id"))
	if err != nil {
		return dbError(c)
	}

	checkpoints, err := s.Store.ListCheckpoints(game.ID)
	if err != nil {
		return dbError(c)
	}
	bySession := checkpointsBySession(checkpoints)
	configured := game.CheckpointNames()

	progress := make([]SessionProgress, 0, len(sessions))
	for _, sess := range sessions {
		progress = append(progress, SessionProgress{
			SessionID: sess.ID,
			PlayerID:  sess.PlayerID,
			Percent:   sessionProgressPercent(bySession[sess.ID], configured),
		})
	}

	out := fiber.Map{
		"player_id": c.Params("player_id"),
		"playcount": len(sessions),
		"sessions":  progress,
	}
	if len(sessions) > 0 {
		// sessions arrive newest first
		out["last_session"] = sessions[0].StartedAt
		out["first_session"] = sessions[len(sessions)-1].StartedAt
	}
	return c.JSON(out)
}

// ScoreColumns is one mode's full score list, split into four display columns.
type ScoreColumns struct {
	Mode    string      `json:"mode"`
	Columns [][]float64 `json:"columns"`
}

// GameScores handles GET /games/:id/scores: every mode with its complete
// descending score list.
func (s *StatsService) GameScores(c *fiber.Ctx) error {
	game, err := s.Store.GetGame(c.Params("id"))
	if err != nil {
		return notFoundOrDB(c, err)
	}
	scores, err := s.Store.ListScores(game.ID)
	if err != nil {
		return dbError(c)
	}

	boards := leaderboards(scores, 0)
	out := make([]ScoreColumns, 0, len(boards))
	for _, b := range boards {
		out = append(out, ScoreColumns{Mode: b.Mode, Columns: splitColumns(b.Scores, 4)})
	}
	return c.JSON(out)
}

func notFoundOrDB(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}
	return dbError(c)
}

func dbError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
}
