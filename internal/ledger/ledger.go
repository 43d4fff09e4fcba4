// Package ledger holds the food and water log of the date being viewed.
package ledger

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrStale is returned by SelectDate when another date was selected while
// the reload was in flight. The late response has been discarded.
var ErrStale = errors.New("stale response discarded")

// Loader fetches the persisted state of one date.
type Loader interface {
	DailyNutrition(ctx context.Context, date string) api.Result[models.DailyNutrition]
	WaterIntake(ctx context.Context, date string) api.Result[models.WaterIntakeRecord]
}

// Snapshot is a consistent copy of the ledger.
type Snapshot struct {
	Date     string
	Entries  []models.FoodEntry
	Totals   nutrition.DailyTotals
	Goals    models.Goals
	Water    Water
	Degraded bool
	Reason   string
}

// Ledger is the per-session log. Entries are kept most recent first and the
// cached totals always equal nutrition.Aggregate(entries).
type Ledger struct {
	mu         sync.Mutex
	loader     Loader
	log        zerolog.Logger
	loc        *time.Location
	generation uint64

	date     string
	entries  []models.FoodEntry
	totals   nutrition.DailyTotals
	goals    models.Goals
	water    Water
	degraded bool
	reason   string

	// Writes accepted while the reload of date is in flight. They are
	// replayed over the loaded state so a late response cannot drop them.
	loading    bool
	appended   []models.FoodEntry
	waterDelta int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLocation sets the zone that defines calendar days. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithLogger sets the ledger's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithWater sets the starting intake and goal.
func WithWater(currentML, goalML int) Option {
	return func(l *Ledger) {
		if goalML > 0 {
			l.water.GoalML = goalML
		}
		l.water = l.water.Add(currentML)
	}
}

// New creates an empty ledger for today.
func New(loader Loader, goals models.Goals, opts ...Option) *Ledger {
	l := &Ledger{
		loader: loader,
		log:    zerolog.Nop(),
		loc:    time.Local,
		goals:  goals,
		water:  Water{GoalML: DefaultWaterGoalML},
	}
	if !l.goals.Valid() {
		l.goals = models.DefaultGoals
	}
	for _, opt := range opts {
		opt(l)
	}
	l.date = l.DateKey(time.Now())
	return l
}

// DateKey returns the calendar day of t in the ledger's zone.
func (l *Ledger) DateKey(t time.Time) string {
	return t.In(l.loc).Format(nutrition.DateLayout)
}

// Date returns the date being viewed.
func (l *Ledger) Date() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.date
}

// Day returns midnight of the date being viewed.
func (l *Ledger) Day() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	day, err := time.ParseInLocation(nutrition.DateLayout, l.date, l.loc)
	if err != nil {
		return time.Now().In(l.loc)
	}
	return day
}

// SelectDate switches to day and reloads its entries, goals and water from
// the loader. A failed load leaves the date empty, apart from writes made
// while it was in flight. If another SelectDate started meanwhile, this
// call's response is dropped and ErrStale returned.
func (l *Ledger) SelectDate(ctx context.Context, day time.Time) error {
	key := l.DateKey(day)

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.date = key
	l.entries = nil
	l.totals = nutrition.DailyTotals{}
	l.water = Water{GoalML: l.water.GoalML}
	l.degraded = false
	l.reason = ""
	l.loading = true
	l.appended = nil
	l.waterDelta = 0
	l.mu.Unlock()

	daily := l.loader.DailyNutrition(ctx, key)
	water := l.loader.WaterIntake(ctx, key)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation || key != l.date {
		l.log.Debug().Str("date", key).Str("current", l.date).Msg("discarding stale daily nutrition")
		return errors.Wrapf(ErrStale, "date %s", key)
	}
	defer l.settle()

	if water.Usable() {
		l.applyWater(water.Value)
		l.water = l.water.Add(l.waterDelta)
	}
	if water.IsDegraded() {
		l.markDegraded(water.Err)
	}

	if !daily.Usable() {
		l.log.Warn().Stack().Err(daily.Err).Str("date", key).Msg("daily nutrition unavailable, showing empty day")
		return errors.Wrapf(daily.Err, "load %s", key)
	}
	if daily.IsDegraded() {
		l.markDegraded(daily.Err)
	}

	l.entries = append([]models.FoodEntry(nil), daily.Value.FoodEntries...)
	for _, e := range l.appended {
		l.entries = append([]models.FoodEntry{e}, l.entries...)
	}
	l.totals = nutrition.Aggregate(l.entries)
	if daily.Value.Goals.Valid() {
		l.goals = daily.Value.Goals
	}
	if len(l.entries) > 0 && math.Abs(daily.Value.Nutrition.Calories-l.totals.Calories) > 0.5 {
		l.log.Debug().
			Float64("reported", daily.Value.Nutrition.Calories).
			Float64("aggregated", l.totals.Calories).
			Str("date", key).
			Msg("backend totals differ from entry sum, using entry sum")
	}
	return nil
}

// settle ends the reload of the current generation.
func (l *Ledger) settle() {
	l.loading = false
	l.appended = nil
	l.waterDelta = 0
}

func (l *Ledger) applyWater(rec models.WaterIntakeRecord) {
	goal := l.water.GoalML
	if rec.GoalML > 0 {
		goal = rec.GoalML
	}
	l.water = Water{GoalML: goal}.Add(rec.TotalML)
}

func (l *Ledger) markDegraded(reason error) {
	l.degraded = true
	if reason != nil && l.reason == "" {
		l.reason = reason.Error()
	}
}

// AppendEntry logs an entry at the head of date and adds its contribution
// to the cached totals. It reports false, and changes nothing, when date is
// no longer the date being viewed.
func (l *Ledger) AppendEntry(date string, e models.FoodEntry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if date != l.date {
		return false
	}
	l.entries = append([]models.FoodEntry{e}, l.entries...)
	l.totals = l.totals.Add(e)
	if l.loading {
		l.appended = append(l.appended, e)
	}
	return true
}

// AddWater changes the intake of date by deltaML, clamped to [0, goal], and
// returns the change actually applied: 0 when date is not being viewed.
func (l *Ledger) AddWater(date string, deltaML int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if date != l.date {
		return 0
	}
	before := l.water.CurrentML
	l.water = l.water.Add(deltaML)
	applied := l.water.CurrentML - before
	if l.loading {
		l.waterDelta += applied
	}
	return applied
}

// SetGoals replaces the goals, ignoring invalid ones.
func (l *Ledger) SetGoals(goals models.Goals) bool {
	if !goals.Valid() {
		return false
	}
	l.mu.Lock()
	l.goals = goals
	l.mu.Unlock()
	return true
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Date:     l.date,
		Entries:  append([]models.FoodEntry(nil), l.entries...),
		Totals:   l.totals,
		Goals:    l.goals,
		Water:    l.water,
		Degraded: l.degraded,
		Reason:   l.reason,
	}
}
