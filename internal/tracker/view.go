package tracker

import (
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
)

// RingRadius is the radius of the macro and calorie rings.
const RingRadius = 80

// Macros is the macro chart.
type Macros struct {
	Calories float64              `json:"calories"`
	Split    nutrition.MacroSplit `json:"split"`
	Arcs     nutrition.Arcs       `json:"arcs"`
}

// Ring is a single progress ring.
type Ring struct {
	Percent       float64 `json:"percent"`
	Circumference float64 `json:"circumference"`
	DashOffset    float64 `json:"dash_offset"`
}

// WaterView is the water tracker.
type WaterView struct {
	CurrentML   int    `json:"current_ml"`
	GoalML      int    `json:"goal_ml"`
	Percent     int    `json:"percent"`
	RemainingML int    `json:"remaining_ml"`
	Message     string `json:"message"`
}

// Dashboard is everything the dashboard renders for the selected date.
type Dashboard struct {
	Date        string                 `json:"date"`
	User        *models.User           `json:"user,omitempty"`
	Entries     []models.FoodEntry     `json:"entries"`
	Totals      nutrition.DailyTotals  `json:"totals"`
	Goals       models.Goals           `json:"goals"`
	Progress    nutrition.GoalProgress `json:"progress"`
	Macros      Macros                 `json:"macros"`
	CalorieRing Ring                   `json:"calorie_ring"`
	Water       WaterView              `json:"water"`
	Tip         string                 `json:"tip"`
	Degraded    bool                   `json:"degraded"`
	Reason      string                 `json:"reason,omitempty"`
}

// Dashboard builds the view of the selected date.
func (t *Tracker) Dashboard() Dashboard {
	snap := t.ledger.Snapshot()
	totals := snap.Totals
	circumference := nutrition.Circumference(RingRadius)
	split := nutrition.MacroPercentages(totals.Protein, totals.Carbs, totals.Fat)
	caloriePct := nutrition.CircularProgress(totals.Calories, snap.Goals.Calories)

	d := Dashboard{
		Date:     snap.Date,
		User:     t.backend.Session().User(),
		Entries:  snap.Entries,
		Totals:   totals,
		Goals:    snap.Goals,
		Progress: nutrition.Progress(totals, snap.Goals),
		Macros: Macros{
			Calories: nutrition.MacroCalories(totals.Protein, totals.Carbs, totals.Fat),
			Split:    split,
			Arcs:     nutrition.ArcOffsets(split, circumference),
		},
		CalorieRing: Ring{
			Percent:       caloriePct,
			Circumference: circumference,
			DashOffset:    nutrition.RingDashOffset(caloriePct, circumference),
		},
		Water: WaterView{
			CurrentML:   snap.Water.CurrentML,
			GoalML:      snap.Water.GoalML,
			Percent:     snap.Water.Percent(),
			RemainingML: snap.Water.RemainingML(),
			Message:     nutrition.HydrationMessage(snap.Water.Percent()),
		},
		Tip:      nutrition.Tip(totals.Calories, totals.Protein, totals.Carbs, totals.Fat),
		Degraded: snap.Degraded,
		Reason:   snap.Reason,
	}
	if d.Entries == nil {
		d.Entries = []models.FoodEntry{}
	}

	t.mu.Lock()
	if t.notice != "" {
		d.Degraded = true
		if d.Reason == "" {
			d.Reason = t.notice
		}
	}
	t.mu.Unlock()
	return d
}
