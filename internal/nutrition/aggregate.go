// Package nutrition computes every derived metric the dashboard shows: daily
// totals, goal progress, macro split and chart geometry, tips and streaks.
// Presentation code must not redo this arithmetic on its own.
package nutrition

import (
	"math"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/pkg/errors"
)

// ErrInvalidGoal is returned when a percentage is requested against a
// non-positive goal.
var ErrInvalidGoal = errors.New("goal must be positive")

// DailyTotals is the sum of all entries logged for one date.
type DailyTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the totals with the entry's contribution added.
func (t DailyTotals) Add(e models.FoodEntry) DailyTotals {
	t.Calories += e.Calories
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
	return t
}

// Aggregate sums calories and macros across entries.
func Aggregate(entries []models.FoodEntry) DailyTotals {
	var totals DailyTotals
	for _, e := range entries {
		totals = totals.Add(e)
	}
	return totals
}

// PercentOfGoal returns round(current/goal*100).
func PercentOfGoal(current, goal float64) (int, error) {
	if goal <= 0 || math.IsNaN(goal) {
		return 0, errors.Wrapf(ErrInvalidGoal, "goal=%v", goal)
	}
	return int(math.Round(current / goal * 100)), nil
}

// Remaining returns how much of the goal is left, never below zero.
func Remaining(goal, current float64) float64 {
	return math.Max(0, goal-current)
}

// NutrientProgress is one nutrient measured against its goal.
type NutrientProgress struct {
	Current   float64 `json:"current"`
	Goal      float64 `json:"goal"`
	Percent   int     `json:"percent"`
	Remaining float64 `json:"remaining"`
	// Invalid is set when the goal is not positive; Percent is then 0.
	Invalid bool `json:"invalid,omitempty"`
}

// GoalProgress is the progress of every tracked nutrient.
type GoalProgress struct {
	Calories NutrientProgress `json:"calories"`
	Protein  NutrientProgress `json:"protein"`
	Carbs    NutrientProgress `json:"carbs"`
	Fat      NutrientProgress `json:"fat"`
}

func progressOf(current, goal float64) NutrientProgress {
	p := NutrientProgress{Current: current, Goal: goal, Remaining: Remaining(goal, current)}
	pct, err := PercentOfGoal(current, goal)
	if err != nil {
		p.Invalid = true
		return p
	}
	p.Percent = pct
	return p
}

// Progress measures totals against goals.
func Progress(totals DailyTotals, goals models.Goals) GoalProgress {
	return GoalProgress{
		Calories: progressOf(totals.Calories, goals.Calories),
		Protein:  progressOf(totals.Protein, goals.Protein),
		Carbs:    progressOf(totals.Carbs, goals.Carbs),
		Fat:      progressOf(totals.Fat, goals.Fat),
	}
}
