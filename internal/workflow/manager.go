package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"seminar/internal/config"
	"seminar/internal/intake"
	"seminar/internal/logging"
	"seminar/internal/notifications"
	"seminar/internal/records"
	"seminar/internal/speakers"
	"seminar/internal/stage"
)

// Manager coordinates the periodic pipeline tick.
type Manager struct {
	cfg          *config.Config
	catalog      *records.Catalog
	logger       *slog.Logger
	notifier     notifications.Service
	scanner      *intake.Scanner
	transcriber  stage.Handler
	resolver     *speakers.Resolver
	tickInterval time.Duration
	stuckAfter   time.Duration
	callDelay    time.Duration
	sleep        func(time.Duration)
	now          func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
}

// NewManager constructs a workflow manager from its collaborators.
func NewManager(cfg *config.Config, catalog *records.Catalog, logger *slog.Logger, notifier notifications.Service, scanner *intake.Scanner, transcriber stage.Handler, resolver *speakers.Resolver) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Manager{
		cfg:          cfg,
		catalog:      catalog,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		notifier:     notifier,
		scanner:      scanner,
		transcriber:  transcriber,
		resolver:     resolver,
		tickInterval: time.Duration(cfg.Workflow.TickInterval) * time.Second,
		stuckAfter:   time.Duration(cfg.Workflow.TranscribingTimeoutMinutes) * time.Minute,
		callDelay:    time.Duration(cfg.Workflow.ExternalCallDelaySeconds) * time.Second,
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

// WithClock overrides time sources, for tests.
func (m *Manager) WithClock(now func() time.Time, sleep func(time.Duration)) *Manager {
	m.now = now
	m.sleep = sleep
	return m
}

// LastError reports the most recent tick-level failure.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Health reports readiness of the pipeline's external dependencies.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, 2)
	if m.transcriber != nil {
		checks = append(checks, m.transcriber.HealthCheck(ctx))
	}
	if _, err := m.catalog.Store().CheckHealth(ctx); err != nil {
		checks = append(checks, stage.Unhealthy("record store", err.Error()))
	} else {
		checks = append(checks, stage.Healthy("record store"))
	}
	return checks
}
