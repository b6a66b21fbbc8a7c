package daemon_test

import (
	"context"
	"testing"

	"seminar/internal/daemon"
	"seminar/internal/records"
	"seminar/internal/testsupport"
	"seminar/internal/workflow"
)

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	catalog := records.NewCatalog(st)
	manager := workflow.NewManager(cfg, catalog, nil, nil, nil, nil, nil)
	d, err := daemon.New(cfg, st, catalog, nil, manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestStartStop(t *testing.T) {
	d := newDaemon(t)
	ctx := context.Background()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Status().Running {
		t.Fatal("daemon should report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail")
	}
	d.Stop()
	if d.Status().Running {
		t.Fatal("daemon should report stopped")
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	catalog := records.NewCatalog(st)

	first, err := daemon.New(cfg, st, catalog, nil, workflow.NewManager(cfg, catalog, nil, nil, nil, nil, nil))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, st, catalog, nil, workflow.NewManager(cfg, catalog, nil, nil, nil, nil, nil))
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}
}
