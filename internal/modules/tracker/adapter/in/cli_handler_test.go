package in_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	trackerin "sleeptrack/internal/modules/tracker/adapter/in"
	trackerout "sleeptrack/internal/modules/tracker/adapter/out"
	"sleeptrack/internal/modules/tracker/service"
	"sleeptrack/internal/modules/tracker/usecase"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/id"
	"sleeptrack/internal/platform/logging"
)

func newHandler(t *testing.T, clk *clockwork.FakeClock) trackerin.CLIHandler {
	t.Helper()
	dir := t.TempDir()
	store, err := trackerout.NewSQLiteNightStore(filepath.Join(dir, "sleeptrack.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	svc := service.NewNightService(clk, store, trackerout.NewVaultNightExporter())
	tracker := usecase.NewCoordinator(svc, id.UUID{}, logging.Discard())
	rater := usecase.NewRater(svc, logging.Discard())
	t.Cleanup(tracker.Close)
	t.Cleanup(rater.Close)
	return trackerin.NewCLIHandler(tracker, rater, usecase.NewHistoryInteractor(svc, filepath.Join(dir, "export")))
}

func TestCLIHandlerNightCycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(time.Date(2026, 4, 2, 23, 0, 0, 0, time.UTC))
	h := newHandler(t, clk)

	opened, err := h.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !opened.Open {
		t.Fatalf("expected open night, got %+v", opened)
	}
	if _, err := h.Start(ctx); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected second start to be refused, got %v", err)
	}

	clk.Advance(8 * time.Hour)
	closed, err := h.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if closed.ID != opened.ID || closed.Open {
		t.Fatalf("unexpected closed night %+v", closed)
	}
	state, err := h.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if state.HasNavigateToRating || state.HasTonight {
		t.Fatalf("stop must leave no open night and no pending navigation: %+v", state)
	}

	rated, err := h.Rate(ctx, closed.ID, 5, "deep sleep")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.QualityLabel != "Excellent" {
		t.Fatalf("unexpected label %q", rated.QualityLabel)
	}

	out, err := h.Export(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(out.Paths) != 1 {
		t.Fatalf("expected one exported night, got %+v", out)
	}

	if err := h.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	state, err = h.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(state.History) != 0 || state.ShowNotification {
		t.Fatalf("clear must empty history and consume the notification: %+v", state)
	}
}

func TestCLIHandlerStopWithoutNight(t *testing.T) {
	t.Parallel()
	h := newHandler(t, clockwork.NewFakeClock())
	if _, err := h.Stop(context.Background()); !errors.Is(err, apperrors.ErrNoOpenNight) {
		t.Fatalf("expected ErrNoOpenNight, got %v", err)
	}
}

func TestCLIHandlerHistorySince(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	first := time.Date(2026, 4, 1, 23, 0, 0, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(first)
	h := newHandler(t, clk)

	for i := 0; i < 3; i++ {
		if _, err := h.Start(ctx); err != nil {
			t.Fatalf("start: %v", err)
		}
		clk.Advance(8 * time.Hour)
		if _, err := h.Stop(ctx); err != nil {
			t.Fatalf("stop: %v", err)
		}
		clk.Advance(16 * time.Hour)
	}

	all, err := h.History(ctx, time.Time{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 nights, got %d", len(all))
	}
	recent, err := h.History(ctx, first.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("history since: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 nights since the second evening, got %d", len(recent))
	}
}

func TestCLIHandlerShow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := clockwork.NewFakeClockAt(time.Date(2026, 4, 3, 22, 30, 0, 0, time.UTC))
	h := newHandler(t, clk)

	opened, err := h.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	shown, err := h.Show(ctx, opened.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if shown.ID != opened.ID || !shown.Open || !strings.HasPrefix(shown.Display, "Start: ") {
		t.Fatalf("unexpected night %+v", shown)
	}
	if _, err := h.Show(ctx, opened.ID+1); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
