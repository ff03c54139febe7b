package services

import (
	"testing"
	"time"

	"chartridge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, January 6 2021, 12:00. The week window behind it starts on
// Sunday, January 3.
var wednesdayNoon = time.Date(2021, time.January, 6, 12, 0, 0, 0, time.UTC)

func sessionAt(t time.Time) models.Session {
	return models.Session{ID: "s-" + t.Format("020106150405"), GameID: "flappy", StartedAt: t}
}

func TestHourlyTodayGrowsThroughTheDay(t *testing.T) {
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 6, 9, 15, 0, 0, time.UTC)),
		sessionAt(time.Date(2021, time.January, 6, 9, 45, 0, 0, time.UTC)),
		sessionAt(time.Date(2021, time.January, 5, 9, 0, 0, 0, time.UTC)), // yesterday
	}

	buckets := hourlyToday(sessions, wednesdayNoon)
	require.Len(t, buckets, 13, "one bucket per hour through the current hour inclusive")
	assert.Equal(t, 2, buckets[9])
	assert.Equal(t, 2, sum(buckets), "yesterday's session is outside today's window")
}

func TestWeeklyHistogramSundayBoundary(t *testing.T) {
	lastSundayMidnight := time.Date(2021, time.January, 3, 0, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		sessionAt(lastSundayMidnight),
		sessionAt(lastSundayMidnight.Add(-time.Second)), // Saturday night, out of window
		sessionAt(time.Date(2021, time.January, 5, 8, 0, 0, 0, time.UTC)), // Tuesday
	}

	buckets := weeklyHistogram(sessions, wednesdayNoon)
	require.Len(t, buckets, 7)
	assert.Equal(t, 1, buckets[0], "Sunday 00:00:00 lands in bucket 0")
	assert.Equal(t, 1, buckets[2])
	assert.Equal(t, 2, sum(buckets))
}

func TestWeeklyHistogramWhenTodayIsSunday(t *testing.T) {
	sundayNoon := time.Date(2021, time.January, 3, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 3, 8, 0, 0, 0, time.UTC)),
		sessionAt(time.Date(2021, time.January, 2, 8, 0, 0, 0, time.UTC)),
	}

	buckets := weeklyHistogram(sessions, sundayNoon)
	assert.Equal(t, 1, sum(buckets), "on Sunday the window is just today")
	assert.Equal(t, 1, buckets[0])
}

func TestMonthlyHistogram(t *testing.T) {
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 3, 20, 0, 0, 0, time.UTC)),
		sessionAt(time.Date(2020, time.December, 31, 20, 0, 0, 0, time.UTC)),
	}

	buckets := monthlyHistogram(sessions, wednesdayNoon)
	require.Len(t, buckets, 6, "one bucket per day-of-month through today")
	assert.Equal(t, 1, buckets[2])
	assert.Equal(t, 1, sum(buckets))
}

func TestAllTimeHistogramFillsGapDays(t *testing.T) {
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 5, 9, 0, 0, 0, time.UTC)),
		sessionAt(time.Date(2021, time.January, 1, 22, 0, 0, 0, time.UTC)),
	}
	now := time.Date(2021, time.January, 5, 23, 0, 0, 0, time.UTC)

	values, labels := allTimeHistogram(sessions, now)
	require.Len(t, values, 5)
	assert.Equal(t, []int{1, 0, 0, 0, 1}, values, "days 2-4 are explicit zeros, not omitted")
	require.Len(t, labels, 5)
	assert.Equal(t, "January 1, 2021", labels[0])
	assert.Equal(t, "January 5, 2021", labels[4])
}

func TestAllTimeHistogramEmptyWithoutSessions(t *testing.T) {
	values, labels := allTimeHistogram(nil, wednesdayNoon)
	assert.Nil(t, values)
	assert.Nil(t, labels)
}

func TestFunnelPercentages(t *testing.T) {
	bars := funnel([]string{"start", "mid", "end"}, map[string]int{"mid": 2}, 4)
	require.Len(t, bars, 3)
	assert.Equal(t, FunnelBar{Name: "start", Reached: 0, Percent: 0}, bars[0])
	assert.Equal(t, FunnelBar{Name: "mid", Reached: 2, Percent: 50}, bars[1])
	assert.Equal(t, FunnelBar{Name: "end", Reached: 0, Percent: 0}, bars[2])
}

func TestFunnelZeroSessionsGuard(t *testing.T) {
	bars := funnel([]string{"start", "mid"}, map[string]int{"start": 3}, 0)
	for _, bar := range bars {
		assert.Equal(t, 0, bar.Percent, "zero sessions must not divide")
	}
}

func TestRoundPercentRoundsToNearest(t *testing.T) {
	assert.Equal(t, 33, roundPercent(1, 3))
	assert.Equal(t, 67, roundPercent(2, 3))
	assert.Equal(t, 100, roundPercent(3, 3))
}

func TestSessionProgressIgnoresDuplicatesAndUnknownNames(t *testing.T) {
	reached := []models.Checkpoint{
		{Name: "start"},
		{Name: "start"},  // duplicate report
		{Name: "secret"}, // not in the configured list
	}
	assert.Equal(t, 33, sessionProgressPercent(reached, []string{"start", "mid", "end"}))
	assert.Equal(t, 0, sessionProgressPercent(reached, nil))
}

func TestLeaderboardsGroupAndSort(t *testing.T) {
	scores := []models.Score{
		{Mode: "arcade", Score: 10},
		{Mode: "hardcore", Score: 3},
		{Mode: "arcade", Score: 99.5},
		{Mode: "arcade", Score: 50},
	}

	boards := leaderboards(scores, 2)
	require.Len(t, boards, 2)
	assert.Equal(t, "arcade", boards[0].Mode, "modes keep first-seen order")
	assert.Equal(t, []float64{99.5, 50}, boards[0].Scores, "descending, trimmed to top N")
	assert.Equal(t, []float64{3}, boards[1].Scores)
}

func TestLeaderboardPagesOfFour(t *testing.T) {
	var scores []models.Score
	for _, mode := range []string{"a", "b", "c", "d", "e"} {
		scores = append(scores, models.Score{Mode: mode, Score: 1})
	}

	pages := pageLeaderboards(leaderboards(scores, 10), 4)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0], 4)
	assert.Len(t, pages[1], 1)
}

func TestSplitColumns(t *testing.T) {
	vals := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	cols := splitColumns(vals, 4)
	require.Len(t, cols, 4)
	assert.Equal(t, []float64{10, 9, 8}, cols[0])
	assert.Equal(t, []float64{1}, cols[3])
	assert.Nil(t, splitColumns(nil, 4))
}

func TestBreakdownNormalizesAndColors(t *testing.T) {
	b := breakdown([]string{"US", "", "US", "DE"}, "Unknown Country")
	assert.Equal(t, []string{"US", "Unknown Country", "DE"}, b.Names)
	assert.Equal(t, []int{2, 1, 1}, b.Counts)
	assert.Equal(t, []string{"#999", "#666", "#333"}, b.Colors)
}

func TestBreakdownColorCycleWraps(t *testing.T) {
	values := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	b := breakdown(values, "Unknown")
	require.Len(t, b.Colors, 9)
	assert.Equal(t, b.Colors[0], b.Colors[8], "palette wraps after eight groups")
}

func TestAllTimeDistributions(t *testing.T) {
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 3, 9, 0, 0, 0, time.UTC)),  // Sunday
		sessionAt(time.Date(2020, time.December, 29, 9, 0, 0, 0, time.UTC)), // Tuesday, long ago
	}

	dow := dayOfWeekDistribution(sessions)
	require.Len(t, dow, 7)
	assert.Equal(t, 1, dow[0])
	assert.Equal(t, 1, dow[2])

	tod := timeOfDayDistribution(sessions)
	require.Len(t, tod, 24)
	assert.Equal(t, 2, tod[9])
}

func TestHourAndMonthLabels(t *testing.T) {
	assert.Equal(t, "12:00 AM", hourLabel(0))
	assert.Equal(t, "11:00 AM", hourLabel(11))
	assert.Equal(t, "12:00 PM", hourLabel(12))
	assert.Equal(t, "11:00 PM", hourLabel(23))

	labels := monthDayLabels(wednesdayNoon)
	require.Len(t, labels, 6)
	assert.Equal(t, "January 1st", labels[0])
	assert.Equal(t, "January 2nd", labels[1])
	assert.Equal(t, "January 3rd", labels[2])
	assert.Equal(t, "January 4th", labels[3])
}

func TestOrdinalSuffixTeens(t *testing.T) {
	assert.Equal(t, "th", ordinalSuffix(11))
	assert.Equal(t, "th", ordinalSuffix(12))
	assert.Equal(t, "th", ordinalSuffix(13))
	assert.Equal(t, "st", ordinalSuffix(21))
	assert.Equal(t, "nd", ordinalSuffix(22))
	assert.Equal(t, "rd", ordinalSuffix(23))
}

func TestFormatElapsed(t *testing.T) {
	start := wednesdayNoon
	assert.Equal(t, "0 seconds", formatElapsed(start, start))
	assert.Equal(t, "1 second", formatElapsed(start, start.Add(time.Second)))
	assert.Equal(t, "2 minutes, 5 seconds", formatElapsed(start, start.Add(2*time.Minute+5*time.Second)))
	assert.Equal(t, "1 day, 1 hour", formatElapsed(start, start.Add(25*time.Hour)))
	assert.Equal(t, "0 seconds", formatElapsed(start, start.Add(-time.Minute)), "clock skew clamps to zero")
}

func TestBuildGameStatsRespectsUnitToggles(t *testing.T) {
	game := &models.Game{
		ID:               "flappy",
		Checkpoints:      "start,mid,end",
		Bonuses:          "secret",
		DisableScoreUnit: true,
		DisableBonusUnit: true,
	}
	sessions := []models.Session{
		sessionAt(time.Date(2021, time.January, 6, 9, 0, 0, 0, time.UTC)),
		sessionAt(time.Date(2021, time.January, 5, 9, 0, 0, 0, time.UTC)),
	}
	checkpoints := []models.Checkpoint{{SessionID: sessions[0].ID, Name: "start"}}
	scores := []models.Score{{Mode: "arcade", Score: 12}}

	view := BuildGameStats(game, sessions, checkpoints, nil, scores, wednesdayNoon)

	assert.Equal(t, 2, view.Playcount)
	assert.Equal(t, 1, view.PlaysToday)
	assert.Equal(t, 2, view.PlaysThisWeek)
	require.Len(t, view.Checkpoints, 3)
	assert.Equal(t, 50, view.Checkpoints[0].Percent)
	assert.Nil(t, view.Bonuses, "disabled bonus unit is omitted")
	assert.Nil(t, view.LeaderboardPages, "disabled score unit is omitted")
	require.Len(t, view.RecentSessions, 2)
	assert.Equal(t, 33, view.RecentSessions[0].Percent)
}

func TestBuildGameStatsCapsRecentSessions(t *testing.T) {
	game := &models.Game{ID: "flappy"}
	var sessions []models.Session
	for i := 0; i < 12; i++ {
		sessions = append(sessions, sessionAt(wednesdayNoon.Add(-time.Duration(i)*time.Hour)))
	}

	view := BuildGameStats(game, sessions, nil, nil, nil, wednesdayNoon)
	assert.Len(t, view.RecentSessions, 10)
}

func TestBuildGameInfoBeatPercentUsesLastCheckpoint(t *testing.T) {
	game := &models.Game{ID: "flappy", Checkpoints: "start,mid,end"}
	sessions := []models.Session{
		{ID: "a", GameID: "flappy", StartedAt: wednesdayNoon, IPCountry: "US", Location: "itch.io"},
		{ID: "b", GameID: "flappy", StartedAt: wednesdayNoon, IPCountry: "", Location: ""},
	}
	checkpoints := []models.Checkpoint{
		{SessionID: "a", Name: "end"},
		{SessionID: "a", Name: "mid"},
	}

	view := BuildGameInfo(game, sessions, checkpoints, wednesdayNoon)
	assert.Equal(t, 50, view.BeatPercent)
	assert.Equal(t, []string{"US", "Unknown Country"}, view.Countries.Names)
	assert.Equal(t, []string{"itch.io", "Unknown Location"}, view.Locations.Names)
	require.Len(t, view.TimeOfDay.Values, 24)
	require.Len(t, view.DayOfWeek.Values, 7)
}
