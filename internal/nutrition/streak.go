package nutrition

import (
	"sort"
	"time"

	"github.com/franckalain/fittrack/internal/models"
)

// DateLayout is the calendar-day format used on the wire and as ledger key.
const DateLayout = "2006-01-02"

// Badge is the rank earned by a streak length.
type Badge string

const (
	BadgeBeginner Badge = "Beginner"
	BadgeWarrior  Badge = "Warrior"
	BadgeChampion Badge = "Champion"
	BadgeLegend   Badge = "Legend"
)

// BadgeFor returns the badge for a streak of the given number of days.
func BadgeFor(days int) Badge {
	switch {
	case days >= 30:
		return BadgeLegend
	case days >= 14:
		return BadgeChampion
	case days >= 7:
		return BadgeWarrior
	default:
		return BadgeBeginner
	}
}

// Milestone is a streak length worth celebrating.
type Milestone struct {
	Days     int    `json:"days"`
	Title    string `json:"title"`
	Achieved bool   `json:"achieved"`
}

var milestones = []Milestone{
	{Days: 7, Title: "Warrior"},
	{Days: 14, Title: "Champion"},
	{Days: 30, Title: "Legend"},
	{Days: 100, Title: "Master"},
}

// StreakStats summarises logging consistency.
type StreakStats struct {
	Current    int         `json:"current_streak"`
	Longest    int         `json:"longest_streak"`
	TotalDays  int         `json:"total_days"`
	Badge      Badge       `json:"badge"`
	Milestones []Milestone `json:"milestones"`
	// Week holds Monday..Sunday of the current week.
	Week          [7]bool `json:"week"`
	CompletedWeek int     `json:"completed_this_week"`
}

// Streaks computes streak statistics from the days on which food was logged.
// The current streak ends today, or yesterday when nothing is logged today yet.
func Streaks(logged []time.Time, today time.Time) StreakStats {
	days := make(map[string]bool, len(logged))
	for _, d := range logged {
		days[d.Format(DateLayout)] = true
	}
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stats := StreakStats{TotalDays: len(keys)}

	run := 0
	var prev time.Time
	for i, k := range keys {
		d, _ := time.ParseInLocation(DateLayout, k, time.Local)
		if i > 0 && prev.AddDate(0, 0, 1).Format(DateLayout) == k {
			run++
		} else {
			run = 1
		}
		if run > stats.Longest {
			stats.Longest = run
		}
		prev = d
	}

	cursor := startOfDay(today)
	if !days[cursor.Format(DateLayout)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[cursor.Format(DateLayout)] {
		stats.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	stats.Badge = BadgeFor(stats.Current)
	stats.Milestones = make([]Milestone, len(milestones))
	for i, m := range milestones {
		m.Achieved = stats.Longest >= m.Days
		stats.Milestones[i] = m
	}

	monday := startOfDay(today).AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	for i := range stats.Week {
		if days[monday.AddDate(0, 0, i).Format(DateLayout)] {
			stats.Week[i] = true
			stats.CompletedWeek++
		}
	}
	return stats
}

// LoggedDays returns the dates of an analytics report on which at least one
// meal was logged. Unparseable dates are skipped.
func LoggedDays(data models.AnalyticsData) []time.Time {
	var out []time.Time
	for _, d := range data.DailyData {
		if d.Meals <= 0 {
			continue
		}
		t, err := time.ParseInLocation(DateLayout, d.Date, time.Local)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
