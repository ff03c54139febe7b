// services/stats.go
//
// Pure aggregation logic: every function here takes raw rows plus "now" and
// returns a derived view. Nothing is cached — each dashboard render recomputes
// from the row store.
package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"chartridge/models"
)

// LabeledSeries pairs histogram values with their display labels.
type LabeledSeries struct {
	Values []int    `json:"values"`
	Labels []string `json:"labels"`
}

// FunnelBar is one checkpoint/bonus completion bar.
type FunnelBar struct {
	Name    string `json:"name"`
	Reached int    `json:"reached"`
	Percent int    `json:"percent"`
}

// SessionProgress is the per-session completion bar shown in listings.
type SessionProgress struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
	Percent   int    `json:"percent"`
}

// Leaderboard holds one mode's scores, highest first.
type Leaderboard struct {
	Mode   string    `json:"mode"`
	Scores []float64 `json:"scores"`
}

// Breakdown is a grouped count (countries, locations) with a color per group.
type Breakdown struct {
	Names  []string `json:"names"`
	Counts []int    `json:"counts"`
	Colors []string `json:"colors"`
}

// Cyclic palette assigned to breakdown groups in first-seen order.
var colorCycle = []string{"#999", "#666", "#333", "#aaa", "#777", "#888", "#444", "#bbb"}

var weekdayLabels = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// roundPercent rounds 100*count/total to the nearest integer, guarding the
// zero-session case.
func roundPercent(count, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}

// hourlyToday buckets today's sessions by hour of day. The slice grows with
// the day: one bucket per hour from 0 through the current hour inclusive.
func hourlyToday(sessions []models.Session, now time.Time) []int {
	buckets := make([]int, now.Hour()+1)
	today := startOfDay(now)
	for _, s := range sessions {
		if s.StartedAt.Before(today) {
			continue
		}
		if h := s.StartedAt.Hour(); h < len(buckets) {
			buckets[h]++
		}
	}
	return buckets
}

func hourLabelsThrough(now time.Time) []string {
	labels := make([]string, now.Hour()+1)
	for i := range labels {
		labels[i] = hourLabel(i)
	}
	return labels
}

func hourLabel(hour int) string {
	h := hour % 12
	if h == 0 {
		h = 12
	}
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:00 %s", h, meridiem)
}

// weeklyHistogram buckets week-to-date sessions by weekday. The window always
// begins on the most recent Sunday at midnight; if today is Sunday the window
// is just today.
func weeklyHistogram(sessions []models.Session, now time.Time) []int {
	buckets := make([]int, 7)
	weekStart := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	for _, s := range sessions {
		if s.StartedAt.Before(weekStart) {
			continue
		}
		buckets[int(s.StartedAt.Weekday())]++
	}
	return buckets
}

// monthlyHistogram buckets month-to-date sessions by day of month, one bucket
// per day from the 1st through today inclusive.
func monthlyHistogram(sessions []models.Session, now time.Time) []int {
	buckets := make([]int, now.Day())
	monthStart := startOfDay(now).AddDate(0, 0, -(now.Day() - 1))
	for _, s := range sessions {
		if s.StartedAt.Before(monthStart) {
			continue
		}
		if d := s.StartedAt.Day() - 1; d >= 0 && d < len(buckets) {
			buckets[d]++
		}
	}
	return buckets
}

func monthDayLabels(now time.Time) []string {
	labels := make([]string, now.Day())
	month := now.Month().String()
	for i := range labels {
		labels[i] = fmt.Sprintf("%s %d%s", month, i+1, ordinalSuffix(i+1))
	}
	return labels
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// allTimeHistogram covers every calendar day from the first recorded session
// through today inclusive, with explicit zeros for days without sessions.
// Returns nil slices when no session exists yet.
func allTimeHistogram(sessions []models.Session, now time.Time) ([]int, []string) {
	if len(sessions) == 0 {
		return nil, nil
	}

	first := sessions[0].StartedAt
	for _, s := range sessions {
		if s.StartedAt.Before(first) {
			first = s.StartedAt
		}
	}

	perDay := make(map[string]int)
	for _, s := range sessions {
		perDay[s.StartedAt.Format("2006-01-02")]++
	}

	var values []int
	var labels []string
	end := startOfDay(now)
	for d := startOfDay(first); !d.After(end); d = d.AddDate(0, 0, 1) {
		values = append(values, perDay[d.Format("2006-01-02")])
		labels = append(labels, d.Format("January 2, 2006"))
	}
	return values, labels
}

// funnel builds one bar per configured name. Events whose name is not in the
// configured list are recorded but never enter these percentages.
func funnel(names []string, countByName map[string]int, totalSessions int) []FunnelBar {
	bars := make([]FunnelBar, 0, len(names))
	for _, name := range names {
		reached := countByName[name]
		bars = append(bars, FunnelBar{
			Name:    name,
			Reached: reached,
			Percent: roundPercent(reached, totalSessions),
		})
	}
	return bars
}

func checkpointCountsByName(rows []models.Checkpoint) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Name]++
	}
	return counts
}

func bonusCountsByName(rows []models.Bonus) map[string]int {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Name]++
	}
	return counts
}

// sessionProgressPercent measures how far one session got: distinct
// configured checkpoints reached over the configured total. Duplicate reports
// and unknown names do not inflate the bar.
func sessionProgressPercent(reached []models.Checkpoint, configured []string) int {
	if len(configured) == 0 {
		return 0
	}
	inList := make(map[string]bool, len(configured))
	for _, name := range configured {
		inList[name] = true
	}
	seen := make(map[string]bool)
	for _, r := range reached {
		if inList[r.Name] {
			seen[r.Name] = true
		}
	}
	return roundPercent(len(seen), len(configured))
}

// leaderboards groups scores by mode in first-seen order; each board is
// sorted descending and trimmed to topN (0 = unbounded).
func leaderboards(scores []models.Score, topN int) []Leaderboard {
	var order []string
	byMode := make(map[string][]float64)
	for _, sc := range scores {
		if _, ok := byMode[sc.Mode]; !ok {
			order = append(order, sc.Mode)
		}
		byMode[sc.Mode] = append(byMode[sc.Mode], sc.Score)
	}

	boards := make([]Leaderboard, 0, len(order))
	for _, mode := range order {
		vals := byMode[mode]
		sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
		if topN > 0 && len(vals) > topN {
			vals = vals[:topN]
		}
		boards = append(boards, Leaderboard{Mode: mode, Scores: vals})
	}
	return boards
}

// pageLeaderboards splits boards into display pages of per modes each.
func pageLeaderboards(boards []Leaderboard, per int) [][]Leaderboard {
	var pages [][]Leaderboard
	for start := 0; start < len(boards); start += per {
		end := start + per
		if end > len(boards) {
			end = len(boards)
		}
		pages = append(pages, boards[start:end])
	}
	return pages
}

// splitColumns distributes vals into cols display columns of ceil(n/cols)
// entries each, preserving order.
func splitColumns(vals []float64, cols int) [][]float64 {
	if len(vals) == 0 {
		return nil
	}
	per := (len(vals) + cols - 1) / cols
	var out [][]float64
	for start := 0; start < len(vals); start += per {
		end := start + per
		if end > len(vals) {
			end = len(vals)
		}
		out = append(out, vals[start:end])
	}
	return out
}

// breakdown counts distinct values, normalizing empty strings to
// unknownLabel and assigning palette colors in first-seen order.
func breakdown(values []string, unknownLabel string) Breakdown {
	var names []string
	var colors []string
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			v = unknownLabel
		}
		if _, ok := counts[v]; !ok {
			colors = append(colors, colorCycle[len(names)%len(colorCycle)])
			names = append(names, v)
		}
		counts[v]++
	}
	outCounts := make([]int, len(names))
	for i, n := range names {
		outCounts[i] = counts[n]
	}
	return Breakdown{Names: names, Counts: outCounts, Colors: colors}
}

// dayOfWeekDistribution is the all-time 7-bucket histogram, not windowed.
func dayOfWeekDistribution(sessions []models.Session) []int {
	buckets := make([]int, 7)
	for _, s := range sessions {
		buckets[int(s.StartedAt.Weekday())]++
	}
	return buckets
}

// timeOfDayDistribution is the all-time 24-bucket histogram, not windowed.
func timeOfDayDistribution(sessions []models.Session) []int {
	buckets := make([]int, 24)
	for _, s := range sessions {
		buckets[s.StartedAt.Hour()]++
	}
	return buckets
}

func fullHourLabels() []string {
	labels := make([]string, 24)
	for i := range labels {
		labels[i] = hourLabel(i)
	}
	return labels
}

func sum(vals []int) int {
	total := 0
	for _, v := range vals {
		total += v
	}
	return total
}

// formatElapsed renders the gap between session start and an event in the
// drill-down timeline ("2 hours, 5 minutes, 1 second").
func formatElapsed(start, end time.Time) string {
	diff := int(end.Sub(start).Seconds())
	if diff < 0 {
		diff = 0
	}

	days := diff / (24 * 60 * 60)
	hours := diff/(60*60) - days*24
	minutes := diff/60 - hours*60 - days*24*60
	seconds := diff - minutes*60 - hours*60*60 - days*24*60*60

	parts := []struct {
		n    int
		unit string
	}{
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
		{seconds, "second"},
	}

	out := ""
	for _, p := range parts {
		if p.n == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d %s", p.n, p.unit)
		if p.n != 1 {
			out += "s"
		}
	}
	if out == "" {
		out = "0 seconds"
	}
	return out
}
