// Package tracker runs the user-facing operations of the dashboard: it
// sends writes to the backend, applies them to the ledger and builds the
// view every surface renders.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/ledger"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/franckalain/fittrack/internal/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Backend is the part of *api.Client the tracker uses.
type Backend interface {
	ledger.Loader
	Session() *session.Session
	Register(ctx context.Context, in api.RegisterRequest) api.Result[models.AuthResponse]
	Login(ctx context.Context, username, password string) api.Result[models.AuthResponse]
	Logout(ctx context.Context) error
	SearchFood(ctx context.Context, query string) api.Result[[]models.FoodItem]
	AnalyzeFood(ctx context.Context, img api.Image) api.Result[*models.NutritionData]
	AnalyzeDescription(ctx context.Context, description string) api.Result[*models.NutritionData]
	AddFood(ctx context.Context, entry models.FoodEntry, date string) api.Result[models.WriteResponse]
	Analytics(ctx context.Context, days int) api.Result[models.AnalyticsData]
	AddWaterIntake(ctx context.Context, amountML int, date string) api.Result[models.WriteResponse]
	HealthCheck(ctx context.Context) api.Result[models.HealthStatus]
}

// Tracker is safe for concurrent use.
type Tracker struct {
	backend Backend
	ledger  *ledger.Ledger
	log     zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	notice string // reason of the last degraded write
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) { t.log = log }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New returns a tracker writing through backend into l.
func New(backend Backend, l *ledger.Ledger, opts ...Option) *Tracker {
	t := &Tracker{backend: backend, ledger: l, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start applies the goals of a restored user and loads today.
func (t *Tracker) Start(ctx context.Context) error {
	t.applyUserGoals(t.backend.Session().User())
	return t.SelectDate(ctx, t.now())
}

// SelectDate switches the ledger to day. A reload overtaken by a newer
// selection is not an error.
func (t *Tracker) SelectDate(ctx context.Context, day time.Time) error {
	err := t.ledger.SelectDate(ctx, day)
	if errors.Is(err, ledger.ErrStale) {
		return nil
	}
	return err
}

// LogFood records entry on the selected date. The ledger is only touched
// when the write was accepted, by the backend or by the demo fallback, and
// only if that date is still selected.
func (t *Tracker) LogFood(ctx context.Context, entry models.FoodEntry) api.Result[models.WriteResponse] {
	date := t.ledger.Date()
	res := t.backend.AddFood(ctx, entry, date)
	if !res.Usable() {
		return res
	}
	if !t.ledger.AppendEntry(date, entry) {
		t.log.Debug().Str("date", date).Msg("date changed during add-food, entry left to the next reload")
	}
	t.record(res.Status, res.Err)
	return res
}

// AddWater changes the day's intake by deltaML. The change is clamped to
// [0, goal] first and only the applied amount is sent.
func (t *Tracker) AddWater(ctx context.Context, deltaML int) api.Result[models.WriteResponse] {
	date := t.ledger.Date()
	applied := t.ledger.AddWater(date, deltaML)
	if applied == 0 {
		return api.OK(models.WriteResponse{Success: true, Message: "Water intake unchanged"})
	}
	res := t.backend.AddWaterIntake(ctx, applied, date)
	if !res.Usable() {
		t.ledger.AddWater(date, -applied)
		return res
	}
	t.record(res.Status, res.Err)
	return res
}

// Search looks up foods.
func (t *Tracker) Search(ctx context.Context, query string) api.Result[[]models.FoodItem] {
	res := t.backend.SearchFood(ctx, query)
	t.record(res.Status, res.Err)
	return res
}

// AnalyzeImage estimates a meal photo. The result is not logged.
func (t *Tracker) AnalyzeImage(ctx context.Context, img api.Image) api.Result[*models.NutritionData] {
	res := t.backend.AnalyzeFood(ctx, img)
	t.record(res.Status, res.Err)
	return res
}

// AnalyzeDescription estimates a described meal. The result is not logged.
func (t *Tracker) AnalyzeDescription(ctx context.Context, description string) api.Result[*models.NutritionData] {
	res := t.backend.AnalyzeDescription(ctx, description)
	t.record(res.Status, res.Err)
	return res
}

// Report is the analytics tab.
type Report struct {
	Data    models.AnalyticsData       `json:"data"`
	Summary nutrition.AnalyticsSummary `json:"summary"`
	Streaks nutrition.StreakStats      `json:"streaks"`
}

// Analytics returns the report over the last days days.
func (t *Tracker) Analytics(ctx context.Context, days int) api.Result[Report] {
	res := t.backend.Analytics(ctx, days)
	t.record(res.Status, res.Err)
	if !res.Usable() {
		return api.Failed[Report](res.Err)
	}
	report := Report{
		Data:    res.Value,
		Summary: nutrition.Summarize(res.Value),
		Streaks: nutrition.Streaks(nutrition.LoggedDays(res.Value), t.now()),
	}
	return api.Result[Report]{Value: report, Status: res.Status, Err: res.Err}
}

// Login starts a session and reloads the selected date under it.
func (t *Tracker) Login(ctx context.Context, username, password string) api.Result[models.AuthResponse] {
	return t.afterAuth(ctx, t.backend.Login(ctx, username, password))
}

// Register creates an account and logs it in.
func (t *Tracker) Register(ctx context.Context, in api.RegisterRequest) api.Result[models.AuthResponse] {
	return t.afterAuth(ctx, t.backend.Register(ctx, in))
}

func (t *Tracker) afterAuth(ctx context.Context, res api.Result[models.AuthResponse]) api.Result[models.AuthResponse] {
	if !res.Usable() {
		return res
	}
	t.record(res.Status, res.Err)
	t.applyUserGoals(res.Value.User)
	if err := t.SelectDate(ctx, t.ledger.Day()); err != nil {
		t.log.Warn().Stack().Err(err).Msg("reload after login failed")
	}
	return res
}

// Logout ends the session and restores the default goals.
func (t *Tracker) Logout(ctx context.Context) error {
	err := t.backend.Logout(ctx)
	t.ledger.SetGoals(models.DefaultGoals)
	t.mu.Lock()
	t.notice = ""
	t.mu.Unlock()
	return err
}

// Health reports the backend status.
func (t *Tracker) Health(ctx context.Context) api.Result[models.HealthStatus] {
	return t.backend.HealthCheck(ctx)
}

func (t *Tracker) applyUserGoals(u *models.User) {
	if u == nil || u.Goals == nil {
		return
	}
	if !t.ledger.SetGoals(*u.Goals) {
		t.log.Debug().Interface("goals", u.Goals).Msg("ignoring invalid profile goals")
	}
}

func (t *Tracker) record(status api.Status, reason error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch status {
	case api.StatusOK:
		t.notice = ""
	case api.StatusDegraded:
		if reason != nil {
			t.notice = reason.Error()
		}
	}
}
