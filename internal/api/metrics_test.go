package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callCount(t *testing.T, reg *prometheus.Registry, op, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "fittrack_backend_calls_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["op"] == op && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.FoodItem{{Name: "Rice"}})
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := api.NewMetrics(reg)
	live := api.New(srv.URL, nil, api.WithMetrics(m))
	dead := api.New(deadURL(t), nil, api.WithMetrics(m))

	// Given two successful searches and one against a dead backend
	ctx := context.Background()
	live.SearchFood(ctx, "rice")
	live.SearchFood(ctx, "")
	dead.SearchFood(ctx, "rice")
	// and a login that falls back to the demo user
	dead.Login(ctx, "alice", "pw")

	// Then each outcome is counted under its own status
	assert.Equal(t, 2.0, callCount(t, reg, "search-food", "ok"))
	assert.Equal(t, 1.0, callCount(t, reg, "search-food", "degraded"))
	assert.Equal(t, 1.0, callCount(t, reg, "login", "degraded"))
	n, err := testutil.GatherAndCount(reg, "fittrack_backend_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one latency series per op")
}

func TestNilMetrics(t *testing.T) {
	// Clients built without WithMetrics record nothing and do not panic.
	c := api.New(deadURL(t), nil)
	res := c.SearchFood(context.Background(), "")
	assert.Equal(t, api.StatusDegraded, res.Status)
}
