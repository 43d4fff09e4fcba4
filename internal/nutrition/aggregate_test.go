package nutrition_test

import (
	"math"
	"testing"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/pkg/errors"
)

func TestAggregate(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		if totals := nutrition.Aggregate(nil); totals != (nutrition.DailyTotals{}) {
			t.Errorf("empty ledger should aggregate to zero totals: %+v", totals)
		}
	})

	t.Run("two entries", func(t *testing.T) {
		// Given two logged meals
		entries := []models.FoodEntry{
			{Description: "omelette", Calories: 320, Protein: 35, Carbs: 12, Fat: 18, Quantity: 1},
			{Description: "oats", Calories: 180, Protein: 15, Carbs: 22, Fat: 8, Quantity: 1},
		}
		// When they are aggregated
		totals := nutrition.Aggregate(entries)
		// Then each field is the elementwise sum
		expected := nutrition.DailyTotals{Calories: 500, Protein: 50, Carbs: 34, Fat: 26}
		if totals != expected {
			t.Errorf("totals did not match: got %+v, want %+v", totals, expected)
		}
	})

	t.Run("incremental add matches full sum", func(t *testing.T) {
		entries := []models.FoodEntry{
			{Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.3},
			{Calories: 280, Protein: 52, Fat: 6},
			{Calories: 200, Protein: 4, Carbs: 45, Fat: 0.5},
		}
		var running nutrition.DailyTotals
		for i, e := range entries {
			running = running.Add(e)
			if full := nutrition.Aggregate(entries[:i+1]); running != full {
				t.Errorf("after %d entries: incremental %+v != full %+v", i+1, running, full)
			}
		}
	})
}

func TestPercentOfGoal(t *testing.T) {
	pct, err := nutrition.PercentOfGoal(1250, 2000)
	if err != nil {
		t.Fatal(err)
	}
	if pct != 63 {
		t.Errorf("PercentOfGoal(1250, 2000) = %d, want 63", pct)
	}

	for _, goal := range []float64{0, -10, math.NaN()} {
		if _, err := nutrition.PercentOfGoal(100, goal); errors.Cause(err) != nutrition.ErrInvalidGoal {
			t.Errorf("goal %v should fail with ErrInvalidGoal, got %v", goal, err)
		}
	}

	t.Run("never negative for non-negative input", func(t *testing.T) {
		for _, c := range []float64{0, 0.4, 1, 999, 5000} {
			for _, g := range []float64{0.5, 1, 2000} {
				pct, err := nutrition.PercentOfGoal(c, g)
				if err != nil || pct < 0 {
					t.Errorf("PercentOfGoal(%v, %v) = %d, %v", c, g, pct, err)
				}
			}
		}
	})
}

func TestRemaining(t *testing.T) {
	if r := nutrition.Remaining(2000, 1250); r != 750 {
		t.Errorf("Remaining(2000, 1250) = %v, want 750", r)
	}
	if r := nutrition.Remaining(2000, 2600); r != 0 {
		t.Errorf("over-goal remaining should clamp to 0, got %v", r)
	}
}

func TestProgress(t *testing.T) {
	totals := nutrition.DailyTotals{Calories: 1250, Protein: 85, Carbs: 150, Fat: 45}
	p := nutrition.Progress(totals, models.Goals{Calories: 2000, Protein: 150, Carbs: 0, Fat: 65})

	if p.Calories.Percent != 63 || p.Calories.Remaining != 750 {
		t.Errorf("calorie progress did not match: %+v", p.Calories)
	}
	if !p.Carbs.Invalid || p.Carbs.Percent != 0 {
		t.Errorf("a zero goal should be flagged invalid with 0 percent: %+v", p.Carbs)
	}
	if p.Protein.Invalid {
		t.Error("protein goal is valid")
	}
}
