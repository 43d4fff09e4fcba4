package nutrition_test

import (
	"strings"
	"testing"
	"time"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
)

func TestTip(t *testing.T) {
	tests := []struct {
		name                         string
		calories, protein, carbs, fat float64
		contains                     string
	}{
		{"no macros", 0, 0, 0, 0, "variety"},
		{"carb heavy", 500, 5, 110, 4, "carbohydrates"},
		{"protein rich", 350, 40, 10, 5, "protein"},
		{"fatty", 400, 12, 10, 30, "fat content"},
		{"balanced", 300, 15, 35, 9, "balanced"},
		{"low protein", 250, 5, 50, 3, "more protein"},
		{"light", 150, 12, 10, 8, "Light"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tip := nutrition.Tip(tt.calories, tt.protein, tt.carbs, tt.fat)
			if !strings.Contains(tip, tt.contains) {
				t.Errorf("tip %q should mention %q", tip, tt.contains)
			}
		})
	}
}

func TestHydrationMessage(t *testing.T) {
	if msg := nutrition.HydrationMessage(30); !strings.Contains(msg, "Good progress") {
		t.Errorf("30%% message: %q", msg)
	}
	if msg := nutrition.HydrationMessage(100); !strings.Contains(msg, "achieved") {
		t.Errorf("100%% message: %q", msg)
	}
}

func TestStreaks(t *testing.T) {
	// Wednesday
	today := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.Local)
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	t.Run("current streak ending today", func(t *testing.T) {
		// Given eight consecutive days up to today and an older three day run
		var logged []time.Time
		for i := 0; i < 8; i++ {
			logged = append(logged, day(-i))
		}
		logged = append(logged, day(-20), day(-21), day(-22), day(-1))
		// When the streaks are computed
		stats := nutrition.Streaks(logged, today)
		// Then the duplicate day is counted once
		if stats.TotalDays != 11 {
			t.Errorf("TotalDays = %d, want 11", stats.TotalDays)
		}
		if stats.Current != 8 || stats.Longest != 8 {
			t.Errorf("Current/Longest = %d/%d, want 8/8", stats.Current, stats.Longest)
		}
		if stats.Badge != nutrition.BadgeWarrior {
			t.Errorf("badge = %s", stats.Badge)
		}
		if !stats.Milestones[0].Achieved || stats.Milestones[1].Achieved {
			t.Errorf("milestones: %+v", stats.Milestones)
		}
		// Monday..Wednesday logged
		if stats.CompletedWeek != 3 || !stats.Week[0] || !stats.Week[2] || stats.Week[3] {
			t.Errorf("week: %v (%d)", stats.Week, stats.CompletedWeek)
		}
	})

	t.Run("today not logged yet", func(t *testing.T) {
		stats := nutrition.Streaks([]time.Time{day(-1), day(-2)}, today)
		if stats.Current != 2 {
			t.Errorf("streak should survive until the day is over: %d", stats.Current)
		}
	})

	t.Run("broken streak", func(t *testing.T) {
		stats := nutrition.Streaks([]time.Time{day(-2), day(-3)}, today)
		if stats.Current != 0 || stats.Longest != 2 {
			t.Errorf("Current/Longest = %d/%d, want 0/2", stats.Current, stats.Longest)
		}
	})

	t.Run("from analytics", func(t *testing.T) {
		data := models.AnalyticsData{DailyData: []models.DayStats{
			{Date: "2024-01-09", Meals: 3},
			{Date: "2024-01-10", Meals: 0},
			{Date: "bogus", Meals: 2},
		}}
		days := nutrition.LoggedDays(data)
		if len(days) != 1 || days[0].Format(nutrition.DateLayout) != "2024-01-09" {
			t.Errorf("LoggedDays = %v", days)
		}
	})
}

func TestSummarize(t *testing.T) {
	data := models.AnalyticsData{
		DailyData: []models.DayStats{{Meals: 3}, {Meals: 4}},
		Averages:  models.Goals{Calories: 1956.6, Protein: 129.6},
		MealDistribution: []models.MealShare{
			{MealType: "lunch", Count: 7, TotalCalories: 4200},
			{MealType: "snack", Count: 0},
		},
	}
	s := nutrition.Summarize(data)
	if s.TotalMeals != 7 || s.DaysTracked != 2 || s.AvgCalories != 1957 || s.AvgProtein != 130 {
		t.Errorf("summary: %+v", s)
	}
	if s.MealTypes[0].AvgCalories != 600 || s.MealTypes[1].AvgCalories != 0 {
		t.Errorf("meal averages: %+v", s.MealTypes)
	}
}
