// Package app wires the components shared by the FitTrack binaries.
package app

import (
	"context"
	"net/http"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/config"
	"github.com/franckalain/fittrack/internal/ledger"
	"github.com/franckalain/fittrack/internal/logging"
	"github.com/franckalain/fittrack/internal/session"
	"github.com/franckalain/fittrack/internal/store"
	"github.com/franckalain/fittrack/internal/tracker"
	"github.com/franckalain/fittrack/internal/vision"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// App holds the long-lived components of one client.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Store    *store.SQLiteDB
	Session  *session.Session
	Client   *api.Client
	Ledger   *ledger.Ledger
	Tracker  *tracker.Tracker
	Registry *prometheus.Registry
	analyzer vision.Analyzer
}

// New opens the local store, restores any saved session and builds the
// tracker. It does not contact the backend.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	db, err := store.NewSQLiteDB(cfg.Store.Path, logging.Component(log, "store"))
	if err != nil {
		return nil, errors.Wrap(err, "open local store")
	}

	sess := session.New(db)
	restored, err := sess.Restore(ctx)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "restore session")
	}
	if restored {
		log.Info().Str("user", sess.User().Username).Msg("restored session")
	}

	analyzer, err := vision.NewAnalyzer(ctx, cfg.Vision, logging.Component(log, "vision"))
	if err != nil {
		log.Warn().Err(err).Msg("vision analyzer disabled")
		analyzer = nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		api.WithLogger(logging.Component(log, "api")),
		api.WithMetrics(api.NewMetrics(reg)),
	}
	if analyzer != nil {
		opts = append(opts, api.WithAnalyzer(analyzer))
	}
	client := api.New(cfg.Backend.BaseURL, sess, opts...)

	l := ledger.New(client, cfg.Goals,
		ledger.WithLogger(logging.Component(log, "ledger")),
		ledger.WithWater(cfg.Water.StartML, cfg.Water.GoalML),
	)
	t := tracker.New(client, l, tracker.WithLogger(logging.Component(log, "tracker")))

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    db,
		Session:  sess,
		Client:   client,
		Ledger:   l,
		Tracker:  t,
		Registry: reg,
		analyzer: analyzer,
	}, nil
}

// Close releases the analyzer and the store.
func (a *App) Close() (err error) {
	if a.analyzer != nil {
		err = multierr.Append(err, errors.Wrap(a.analyzer.Close(), "close analyzer"))
	}
	return multierr.Append(err, errors.Wrap(a.Store.Close(), "close store"))
}
