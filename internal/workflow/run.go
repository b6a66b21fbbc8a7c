package workflow

import (
	"context"
	"errors"
	"time"

	"seminar/internal/logging"
)

// Start begins the periodic tick in the background.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the tick in flight.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()
	interval := m.tickInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.setLastError(err)
			m.logger.Error("tick failed", logging.Args(
				logging.String(logging.FieldEventType, "tick_failed"),
				logging.Error(err))...)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce executes a single tick: stuck detection, ingest, transcription,
// and mapping advancement. Failures inside one discussion move that
// discussion to the error status and the tick continues; only record store
// failures abort the tick itself.
func (m *Manager) RunOnce(ctx context.Context) error {
	snapshot, err := m.catalog.SettingsSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := m.flagStuck(ctx); err != nil {
		return err
	}
	if err := m.ingest(ctx); err != nil {
		return err
	}
	if err := m.runTranscriptions(ctx); err != nil {
		return err
	}
	return m.advanceMappings(ctx, snapshot)
}

func (m *Manager) pause(ctx context.Context, first *bool) {
	if *first {
		*first = false
		return
	}
	if m.callDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	default:
		m.sleep(m.callDelay)
	}
}
