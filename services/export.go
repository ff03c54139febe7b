// services/export.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"chartridge/models"
	"chartridge/store"
	"chartridge/utils"

	"github.com/go-co-op/gocron/v2"
)

// ExportService snapshots each game's headline numbers to R2 as CSV once a
// day, so aggregate history survives a "clear game data".
type ExportService struct {
	Store store.Store
}

func NewExportService(st store.Store) *ExportService {
	return &ExportService{Store: st}
}

// StartExportScheduler runs the daily export job until ctx is cancelled.
func (s *ExportService) StartExportScheduler(ctx context.Context) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("❌ [EXPORT] failed to create scheduler: %v", err)
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			if err := s.ExportAll(ctx); err != nil {
				log.Printf("❌ [EXPORT] run failed: %v", err)
			}
		}),
	)
	if err != nil {
		log.Printf("❌ [EXPORT] failed to schedule job: %v", err)
	}

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[EXPORT] scheduler shutdown: %v", err)
		}
	}()
}

// ExportAll uploads one summary CSV per game.
func (s *ExportService) ExportAll(ctx context.Context) error {
	games, err := s.Store.ListGames()
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}

	now := time.Now()
	for _, game := range games {
		body, err := s.buildSummaryCSV(&game, now)
		if err != nil {
			log.Printf("❌ [EXPORT] summary failed for %s: %v", game.ID, err)
			continue
		}

		key := fmt.Sprintf("exports/%s/%s.csv", game.ID, now.Format("2006-01-02"))
		url, err := utils.UploadBytesToR2(ctx, key, body, "text/csv")
		if err != nil {
			log.Printf("❌ [EXPORT] upload failed for %s: %v", game.ID, err)
			continue
		}
		log.Printf("✅ [EXPORT] %s → %s", game.ID, url)
	}
	return nil
}

func (s *ExportService) buildSummaryCSV(game *models.Game, now time.Time) ([]byte, error) {
	sessions, err := s.Store.ListSessions(game.ID)
	if err != nil {
		return nil, err
	}
	checkpoints, err := s.Store.ListCheckpoints(game.ID)
	if err != nil {
		return nil, err
	}
	bonuses, err := s.Store.ListBonuses(game.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.Store.ListScores(game.ID)
	if err != nil {
		return nil, err
	}
	playcount, err := s.Store.CountPlayers(game.ID)
	if err != nil {
		return nil, err
	}

	stats := BuildGameStats(game, sessions, checkpoints, bonuses, scores, now)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	records := [][]string{
		{"metric", "name", "value"},
		{"sessions", "", strconv.Itoa(stats.Playcount)},
		{"players", "", strconv.FormatInt(playcount, 10)},
		{"plays_today", "", strconv.Itoa(stats.PlaysToday)},
		{"plays_this_week", "", strconv.Itoa(stats.PlaysThisWeek)},
	}
	for _, bar := range stats.Checkpoints {
		records = append(records, []string{"checkpoint_percent", bar.Name, strconv.Itoa(bar.Percent)})
	}
	for _, bar := range stats.Bonuses {
		records = append(records, []string{"bonus_percent", bar.Name, strconv.Itoa(bar.Percent)})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
