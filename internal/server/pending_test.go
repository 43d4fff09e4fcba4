package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/ledger"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/tracker"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func offlineTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	dead := httptest.NewServer(http.NotFoundHandler())
	backendURL := dead.URL
	dead.Close()

	client := api.New(backendURL, nil)
	tr := tracker.New(client, ledger.New(client, models.DefaultGoals))
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return tr
}

var salad = models.NutritionData{FoodDescription: "Salad", Calories: 350, Protein: 30, Carbs: 20, Fat: 15}

func TestFailedLogKeepsAnalysis(t *testing.T) {
	// Given a server whose backend calls always time out
	s := New(offlineTracker(t), zerolog.Nop(), WithTimeout(time.Nanosecond))
	srv := httptest.NewServer(s.Handler(""))
	defer srv.Close()
	s.pending.Store("a1", pendingAnalysis{data: salad, created: time.Now()})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// When logging the analysis fails
	if err := conn.WriteJSON(map[string]any{"type": "log_food", "data": map[string]string{"analysis_id": "a1"}}); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}

	// Then the estimate is still there for a retry
	if reply.Type != "error" {
		t.Fatalf("reply %+v", reply)
	}
	if _, ok := s.pending.Load("a1"); !ok {
		t.Error("analysis dropped after a failed write")
	}
}

func TestPrunePending(t *testing.T) {
	s := New(offlineTracker(t), zerolog.Nop())
	now := time.Now()
	s.pending.Store("old", pendingAnalysis{data: salad, created: now.Add(-analysisTTL - time.Minute)})
	s.pending.Store("fresh", pendingAnalysis{data: salad, created: now.Add(-time.Minute)})

	s.prunePending(now)

	if _, ok := s.pending.Load("old"); ok {
		t.Error("expired analysis kept")
	}
	if _, ok := s.pending.Load("fresh"); !ok {
		t.Error("fresh analysis pruned")
	}
}
