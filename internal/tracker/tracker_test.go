package tracker_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/ledger"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/franckalain/fittrack/internal/session"
	"github.com/franckalain/fittrack/internal/tracker"
	"github.com/pkg/errors"
)

var errOffline = errors.New("connection refused")

// fakeBackend answers from memory. Writes are Degraded when offline is set.
// When gate is set, writes report their date on started and block until
// gate is closed.
type fakeBackend struct {
	mu         sync.Mutex
	sess       *session.Session
	offline    bool
	water      []int
	waterTotal int
	foods      []models.FoodEntry
	daily      models.DailyNutrition
	user       *models.User
	gate       chan struct{}
	started    chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{sess: session.New(nil)}
}

func write[T any](f *fakeBackend, v T) api.Result[T] {
	if f.offline {
		return api.Degraded(v, errOffline)
	}
	return api.OK(v)
}

func (f *fakeBackend) Session() *session.Session { return f.sess }

func (f *fakeBackend) DailyNutrition(_ context.Context, date string) api.Result[models.DailyNutrition] {
	d := f.daily
	d.Date = date
	return write(f, d)
}

func (f *fakeBackend) WaterIntake(_ context.Context, date string) api.Result[models.WaterIntakeRecord] {
	f.mu.Lock()
	total := f.waterTotal
	f.mu.Unlock()
	return write(f, models.WaterIntakeRecord{Date: date, TotalML: total, GoalML: 2000})
}

func (f *fakeBackend) hold(date string) {
	if f.gate == nil {
		return
	}
	f.started <- date
	<-f.gate
}

func (f *fakeBackend) Register(ctx context.Context, in api.RegisterRequest) api.Result[models.AuthResponse] {
	return f.Login(ctx, in.Username, in.Password)
}

func (f *fakeBackend) Login(ctx context.Context, username, _ string) api.Result[models.AuthResponse] {
	if username == "mallory" {
		return api.Failed[models.AuthResponse](errors.Wrap(api.ErrRejected, "Invalid credentials"))
	}
	if err := f.sess.Begin(ctx, "tok", f.user); err != nil {
		return api.Failed[models.AuthResponse](err)
	}
	return write(f, models.AuthResponse{Success: true, Token: "tok", User: f.user})
}

func (f *fakeBackend) Logout(ctx context.Context) error { return f.sess.End(ctx) }

func (f *fakeBackend) SearchFood(context.Context, string) api.Result[[]models.FoodItem] {
	return write(f, []models.FoodItem{{Name: "Avocado", Calories: 234}})
}

func (f *fakeBackend) AnalyzeFood(context.Context, api.Image) api.Result[*models.NutritionData] {
	return write(f, &models.NutritionData{FoodDescription: "Photo meal", Calories: 400})
}

func (f *fakeBackend) AnalyzeDescription(_ context.Context, d string) api.Result[*models.NutritionData] {
	return write(f, &models.NutritionData{FoodDescription: d, Calories: 200})
}

func (f *fakeBackend) AddFood(ctx context.Context, e models.FoodEntry, date string) api.Result[models.WriteResponse] {
	f.hold(date)
	if err := ctx.Err(); err != nil {
		return api.Failed[models.WriteResponse](err)
	}
	f.mu.Lock()
	f.foods = append(f.foods, e)
	f.mu.Unlock()
	return write(f, models.WriteResponse{Success: true})
}

func (f *fakeBackend) Analytics(context.Context, int) api.Result[models.AnalyticsData] {
	return write(f, models.AnalyticsData{
		DailyData: []models.DayStats{{Date: "2026-05-09", Meals: 3}, {Date: "2026-05-10", Meals: 2}},
		Averages:  models.Goals{Calories: 1900.4},
	})
}

func (f *fakeBackend) AddWaterIntake(ctx context.Context, ml int, date string) api.Result[models.WriteResponse] {
	f.hold(date)
	if err := ctx.Err(); err != nil {
		return api.Failed[models.WriteResponse](err)
	}
	f.mu.Lock()
	f.water = append(f.water, ml)
	f.mu.Unlock()
	return write(f, models.WriteResponse{Success: true})
}

func (f *fakeBackend) HealthCheck(context.Context) api.Result[models.HealthStatus] {
	return api.OK(models.HealthStatus{Status: "healthy"})
}

var today = time.Date(2026, 5, 10, 12, 0, 0, 0, time.Local)

func newTracker(t *testing.T, b *fakeBackend) *tracker.Tracker {
	t.Helper()
	l := ledger.New(b, models.DefaultGoals)
	tr := tracker.New(b, l, tracker.WithClock(func() time.Time { return today }))
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestLogFood(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	tr := newTracker(t, b)

	// Given two meals logged, the second while offline
	tr.LogFood(ctx, models.FoodEntry{Description: "Oats", Calories: 150, Protein: 5, Carbs: 27, Fat: 3, Quantity: 1, Unit: "cup"})
	b.offline = true
	res := tr.LogFood(ctx, models.FoodEntry{Description: "Eggs", Calories: 140, Protein: 12, Carbs: 1, Fat: 10, Quantity: 2, Unit: "egg"})

	// Then both are in the ledger, newest first, and the view is degraded
	if !res.IsDegraded() {
		t.Fatalf("status %v", res.Status)
	}
	d := tr.Dashboard()
	if len(d.Entries) != 2 || d.Entries[0].Description != "Eggs" {
		t.Fatalf("entries %+v", d.Entries)
	}
	if d.Totals != nutrition.Aggregate(d.Entries) || d.Totals.Calories != 290 {
		t.Errorf("totals %+v", d.Totals)
	}
	if !d.Degraded || d.Reason == "" {
		t.Error("degraded write should mark the dashboard")
	}
	if d.Date != "2026-05-10" {
		t.Errorf("date %q", d.Date)
	}

	// When a write fails outright, the ledger is untouched
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if res := tr.LogFood(cancelled, models.FoodEntry{Description: "Toast", Calories: 80, Quantity: 1}); res.Status != api.StatusFailed {
		t.Errorf("status %v", res.Status)
	}
	if got := len(tr.Dashboard().Entries); got != 2 {
		t.Errorf("failed write changed the ledger: %d entries", got)
	}
}

func TestAddWater(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	tr := newTracker(t, b)

	tr.AddWater(ctx, 1500)
	tr.AddWater(ctx, 1500) // goal is 2000, only 500 applies
	tr.AddWater(ctx, 1000) // already full, nothing sent
	tr.AddWater(ctx, -250)

	if want := []int{1500, 500, -250}; len(b.water) != len(want) || b.water[0] != want[0] || b.water[1] != want[1] || b.water[2] != want[2] {
		t.Errorf("posted %v, want %v", b.water, want)
	}
	w := tr.Dashboard().Water
	if w.CurrentML != 1750 || w.GoalML != 2000 || w.Percent != 88 || w.RemainingML != 250 {
		t.Errorf("water %+v", w)
	}
	if w.Message != nutrition.HydrationMessage(88) {
		t.Errorf("message %q", w.Message)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	tr.AddWater(cancelled, 100)
	if got := tr.Dashboard().Water.CurrentML; got != 1750 {
		t.Errorf("failed write should be rolled back, current %d", got)
	}
}

func TestWritesStayOnTheirDate(t *testing.T) {
	ctx := context.Background()
	earlier := today.AddDate(0, 0, -3)

	t.Run("food", func(t *testing.T) {
		b := newFakeBackend()
		tr := newTracker(t, b)
		b.gate, b.started = make(chan struct{}), make(chan string, 1)

		// Given a meal whose add-food call is held back
		done := make(chan api.Result[models.WriteResponse], 1)
		go func() {
			done <- tr.LogFood(ctx, models.FoodEntry{Description: "Pasta", Calories: 500, Quantity: 1})
		}()
		posted := <-b.started

		// When another day is selected before the call returns
		if err := tr.SelectDate(ctx, earlier); err != nil {
			t.Fatal(err)
		}
		close(b.gate)
		res := <-done

		// Then the meal belongs to the day it was posted for only
		if posted != "2026-05-10" || res.Status != api.StatusOK {
			t.Fatalf("posted %q status %v", posted, res.Status)
		}
		d := tr.Dashboard()
		if d.Date != "2026-05-07" || len(d.Entries) != 0 || d.Totals != (nutrition.DailyTotals{}) {
			t.Errorf("entry leaked into %s: %d entries, %+v", d.Date, len(d.Entries), d.Totals)
		}
	})

	t.Run("water rollback", func(t *testing.T) {
		b := newFakeBackend()
		tr := newTracker(t, b)
		b.gate, b.started = make(chan struct{}), make(chan string, 1)

		// Given a water write that will fail after a date switch
		wctx, cancel := context.WithCancel(ctx)
		done := make(chan api.Result[models.WriteResponse], 1)
		go func() { done <- tr.AddWater(wctx, 500) }()
		<-b.started

		b.mu.Lock()
		b.waterTotal = 1200
		b.mu.Unlock()
		if err := tr.SelectDate(ctx, earlier); err != nil {
			t.Fatal(err)
		}
		cancel()
		close(b.gate)
		if res := <-done; res.Status != api.StatusFailed {
			t.Fatalf("status %v", res.Status)
		}

		// Then the rollback does not touch the newly selected day
		if got := tr.Dashboard().Water.CurrentML; got != 1200 {
			t.Errorf("water of %s = %d, want 1200", tr.Dashboard().Date, got)
		}
	})
}

func TestDashboardGeometry(t *testing.T) {
	b := newFakeBackend()
	b.daily = models.DailyNutrition{
		FoodEntries: []models.FoodEntry{{Description: "Mix", Calories: 1000, Protein: 50, Carbs: 100, Fat: 200.0 / 9, Quantity: 1}},
	}
	tr := newTracker(t, b)

	d := tr.Dashboard()
	c := nutrition.Circumference(tracker.RingRadius)
	if math.Abs(d.Macros.Calories-800) > 1e-9 {
		t.Errorf("macro calories %v", d.Macros.Calories)
	}
	if math.Abs(d.Macros.Arcs.CarbsOffsetStart-0.25*c) > 1e-9 || math.Abs(d.Macros.Arcs.FatOffsetStart-0.75*c) > 1e-9 {
		t.Errorf("arcs %+v", d.Macros.Arcs)
	}
	if d.CalorieRing.Percent != 50 || math.Abs(d.CalorieRing.DashOffset-c/2) > 1e-9 {
		t.Errorf("ring %+v", d.CalorieRing)
	}
	if d.Progress.Calories.Percent != 50 || d.Progress.Calories.Remaining != 1000 {
		t.Errorf("progress %+v", d.Progress.Calories)
	}
	if d.Tip == "" {
		t.Error("missing tip")
	}
}

func TestLoginAppliesProfileGoals(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend()
	b.user = &models.User{ID: 3, Username: "ann", Goals: &models.Goals{Calories: 1800, Protein: 120, Carbs: 200, Fat: 60}}
	tr := newTracker(t, b)

	if res := tr.Login(ctx, "mallory", "x"); res.Status != api.StatusFailed {
		t.Errorf("rejected login: %v", res.Status)
	}
	if tr.Dashboard().User != nil {
		t.Error("rejected login must not set a user")
	}

	if res := tr.Login(ctx, "ann", "pw"); res.Status != api.StatusOK {
		t.Fatalf("login: %v %v", res.Status, res.Err)
	}
	d := tr.Dashboard()
	if d.Goals.Calories != 1800 || d.User == nil || d.User.Username != "ann" {
		t.Errorf("goals %+v user %+v", d.Goals, d.User)
	}

	if err := tr.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	d = tr.Dashboard()
	if d.Goals != models.DefaultGoals || d.User != nil {
		t.Errorf("after logout goals %+v user %+v", d.Goals, d.User)
	}
}

func TestAnalytics(t *testing.T) {
	tr := newTracker(t, newFakeBackend())
	res := tr.Analytics(context.Background(), 7)
	if res.Status != api.StatusOK {
		t.Fatal(res.Err)
	}
	r := res.Value
	if r.Summary.TotalMeals != 5 || r.Summary.AvgCalories != 1900 {
		t.Errorf("summary %+v", r.Summary)
	}
	if r.Streaks.Current != 2 || r.Streaks.TotalDays != 2 {
		t.Errorf("streaks %+v", r.Streaks)
	}
}
