package ledger

import (
	"github.com/franckalain/fittrack/internal/nutrition"
)

// DefaultWaterGoalML is the daily target when the backend supplies none.
const DefaultWaterGoalML = 2500

// Water is the day's water intake, always within [0, GoalML].
type Water struct {
	CurrentML int `json:"current_ml"`
	GoalML    int `json:"goal_ml"`
}

// Add returns the intake after adding delta, clamped to [0, GoalML].
func (w Water) Add(delta int) Water {
	w.CurrentML = clampInt(w.CurrentML+delta, 0, w.GoalML)
	return w
}

// Percent returns the rounded share of the goal reached.
func (w Water) Percent() int {
	pct, err := nutrition.PercentOfGoal(float64(w.CurrentML), float64(w.GoalML))
	if err != nil {
		return 0
	}
	return pct
}

// RemainingML returns how much is left to drink.
func (w Water) RemainingML() int {
	return int(nutrition.Remaining(float64(w.GoalML), float64(w.CurrentML)))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
