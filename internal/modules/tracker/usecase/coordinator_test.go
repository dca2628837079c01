package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackerout "sleeptrack/internal/modules/tracker/adapter/out"
	"sleeptrack/internal/modules/tracker/domain"
	"sleeptrack/internal/modules/tracker/dto"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	trackerport "sleeptrack/internal/modules/tracker/port/out"
	"sleeptrack/internal/modules/tracker/service"
	"sleeptrack/internal/modules/tracker/usecase"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/logging"
)

var bedtime = time.Date(2026, 3, 1, 22, 15, 0, 0, time.UTC)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) New() string {
	return fmt.Sprintf("cmd-%d", s.n.Add(1))
}

// countingStore records how many writes reached the store.
type countingStore struct {
	trackerport.NightStore
	writes atomic.Int64
}

func (s *countingStore) Insert(ctx context.Context, night domain.Night) (int64, error) {
	s.writes.Add(1)
	return s.NightStore.Insert(ctx, night)
}

func (s *countingStore) Update(ctx context.Context, night domain.Night) error {
	s.writes.Add(1)
	return s.NightStore.Update(ctx, night)
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.writes.Add(1)
	return s.NightStore.Clear(ctx)
}

type fixture struct {
	store   *countingStore
	clock   *clockwork.FakeClock
	svc     *service.NightService
	tracker trackerin.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sqlite, err := trackerout.NewSQLiteNightStore(filepath.Join(t.TempDir(), "sleeptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	f := &fixture{store: &countingStore{NightStore: sqlite}, clock: clockwork.NewFakeClockAt(bedtime)}
	f.svc = service.NewNightService(f.clock, f.store, nil)
	f.tracker = usecase.NewCoordinator(f.svc, &seqIDs{}, logging.Discard())
	t.Cleanup(f.tracker.Close)
	require.NoError(t, f.tracker.Loaded().Wait(context.Background()))
	return f
}

func await(t *testing.T, task interface{ Wait(context.Context) error }) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))
}

func TestInitialStateIsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	state := f.tracker.Snapshot()
	assert.False(t, state.HasTonight)
	assert.Empty(t, state.History)
	assert.True(t, state.StartVisible)
	assert.False(t, state.StopVisible)
	assert.False(t, state.ClearVisible)
	assert.False(t, state.HasNavigateToRating)
	assert.False(t, state.ShowNotification)
}

func TestStartSessionPublishesOpenNight(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	await(t, f.tracker.StartSession())

	state := f.tracker.Snapshot()
	require.True(t, state.HasTonight)
	assert.True(t, state.Tonight.Open)
	assert.True(t, state.Tonight.StartedAt.Equal(state.Tonight.EndedAt))
	assert.True(t, state.Tonight.StartedAt.Equal(bedtime))
	assert.Equal(t, -1, state.Tonight.Quality)
	assert.False(t, state.StartVisible)
	assert.True(t, state.StopVisible)
	require.Len(t, state.History, 1, "history refreshes from the store watch")
	assert.True(t, state.ClearVisible)
}

func TestHistoryEntriesAreOpenOnlyWhenEndEqualsStart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		await(t, f.tracker.StartSession())
		if i < 2 {
			f.clock.Advance(time.Duration(i) * time.Hour)
			await(t, f.tracker.StopSession())
		}
	}

	history := f.tracker.Snapshot().History
	require.Len(t, history, 3)
	for _, night := range history {
		assert.Equal(t, night.StartedAt.Equal(night.EndedAt), night.Open, "night %d", night.ID)
	}
	assert.True(t, history[0].Open)
	assert.False(t, history[1].Open)
	assert.False(t, history[2].Open)
}

func TestStopWithoutOpenNightDoesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	task := f.tracker.StopSession()
	select {
	case <-task.Done():
	default:
		t.Fatal("stop with nothing open must finish immediately")
	}
	await(t, task)

	assert.Zero(t, f.store.writes.Load())
	assert.False(t, f.tracker.Snapshot().HasNavigateToRating)
}

func TestStopAfterClosedNightDoesNothing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())
	await(t, f.tracker.StopSession())
	f.tracker.AcknowledgeNavigation()
	writes := f.store.writes.Load()

	await(t, f.tracker.StopSession())

	assert.Equal(t, writes, f.store.writes.Load())
	assert.False(t, f.tracker.Snapshot().HasNavigateToRating)
}

func TestStopSessionRaisesNavigation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())
	opened := f.tracker.Snapshot().Tonight

	f.clock.Advance(7*time.Hour + 45*time.Minute)
	await(t, f.tracker.StopSession())

	state := f.tracker.Snapshot()
	require.True(t, state.HasNavigateToRating)
	assert.Equal(t, opened.ID, state.NavigateToRating.ID)
	assert.True(t, state.NavigateToRating.EndedAt.After(state.NavigateToRating.StartedAt))
	assert.Equal(t, 7*time.Hour+45*time.Minute, state.NavigateToRating.EndedAt.Sub(state.NavigateToRating.StartedAt))
	assert.False(t, state.HasTonight)
	assert.True(t, state.StartVisible)
	assert.False(t, state.StopVisible)
}

func TestStopAtSameInstantStillCloses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())

	await(t, f.tracker.StopSession())

	state := f.tracker.Snapshot()
	require.True(t, state.HasNavigateToRating)
	assert.Equal(t, time.Millisecond, state.NavigateToRating.EndedAt.Sub(state.NavigateToRating.StartedAt))
	assert.False(t, state.HasTonight)
	require.Len(t, state.History, 1)
	assert.False(t, state.History[0].Open)
}

func TestAcknowledgeNavigationIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())
	f.clock.Advance(time.Hour)
	await(t, f.tracker.StopSession())
	require.True(t, f.tracker.Snapshot().HasNavigateToRating)

	f.tracker.AcknowledgeNavigation()
	assert.False(t, f.tracker.Snapshot().HasNavigateToRating)
	f.tracker.AcknowledgeNavigation()
	assert.False(t, f.tracker.Snapshot().HasNavigateToRating)
}

func TestClearHistoryRaisesNotification(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())
	f.clock.Advance(time.Hour)
	await(t, f.tracker.StopSession())
	await(t, f.tracker.StartSession())

	await(t, f.tracker.ClearHistory())

	state := f.tracker.Snapshot()
	assert.Empty(t, state.History)
	assert.False(t, state.HasTonight)
	assert.False(t, state.ClearVisible)
	assert.True(t, state.StartVisible)
	assert.True(t, state.ShowNotification)

	f.tracker.AcknowledgeNotification()
	assert.False(t, f.tracker.Snapshot().ShowNotification)
	f.tracker.AcknowledgeNotification()
	assert.False(t, f.tracker.Snapshot().ShowNotification)
}

func TestFlagsFollowStateOnEveryObservation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	var mu sync.Mutex
	var seen []dto.TrackerState
	cancel := f.tracker.Subscribe(func(state dto.TrackerState) {
		mu.Lock()
		seen = append(seen, state)
		mu.Unlock()
	})
	defer cancel()

	await(t, f.tracker.StartSession())
	f.clock.Advance(time.Hour)
	await(t, f.tracker.StopSession())
	f.tracker.AcknowledgeNavigation()
	await(t, f.tracker.ClearHistory())
	f.tracker.AcknowledgeNotification()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	for i, state := range seen {
		assert.Equal(t, !state.HasTonight, state.StartVisible, "observation %d", i)
		assert.Equal(t, state.HasTonight, state.StopVisible, "observation %d", i)
		assert.Equal(t, len(state.History) > 0, state.ClearVisible, "observation %d", i)
	}
	last := seen[len(seen)-1]
	assert.False(t, last.ShowNotification)
	assert.False(t, last.HasNavigateToRating)
}

func TestSleepCycleEndToEnd(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	await(t, f.tracker.StartSession())
	require.True(t, f.tracker.Snapshot().StopVisible)

	f.clock.Advance(8 * time.Hour)
	await(t, f.tracker.StopSession())
	state := f.tracker.Snapshot()
	require.True(t, state.HasNavigateToRating)
	require.True(t, state.StartVisible)

	f.tracker.AcknowledgeNavigation()
	state = f.tracker.Snapshot()
	require.False(t, state.HasNavigateToRating)
	require.Len(t, state.History, 1)
	require.False(t, state.History[0].Open)
	assert.Contains(t, state.History[0].Display, "Hours:Minutes:Seconds: 8:00:00")

	await(t, f.tracker.ClearHistory())
	state = f.tracker.Snapshot()
	assert.Empty(t, state.History)
	assert.True(t, state.ShowNotification)
}

func TestClosedMostRecentNightLoadsAsAbsent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())
	f.clock.Advance(time.Hour)
	await(t, f.tracker.StopSession())

	reopened := usecase.NewCoordinator(f.svc, &seqIDs{}, logging.Discard())
	t.Cleanup(reopened.Close)
	await(t, reopened.Loaded())

	state := reopened.Snapshot()
	assert.False(t, state.HasTonight)
	assert.True(t, state.StartVisible)
	assert.Len(t, state.History, 1)
}

func TestOpenNightSurvivesRestart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	await(t, f.tracker.StartSession())

	reopened := usecase.NewCoordinator(f.svc, &seqIDs{}, logging.Discard())
	t.Cleanup(reopened.Close)
	await(t, reopened.Loaded())

	state := reopened.Snapshot()
	require.True(t, state.HasTonight)
	assert.Equal(t, f.tracker.Snapshot().Tonight.ID, state.Tonight.ID)
}

type failingStore struct {
	trackerport.NightStore
}

var errDiskFull = errors.New("disk full")

func (failingStore) Insert(context.Context, domain.Night) (int64, error) {
	return 0, errDiskFull
}

func TestStoreFailureIsReturnedNotPublished(t *testing.T) {
	t.Parallel()
	sqlite, err := trackerout.NewSQLiteNightStore(filepath.Join(t.TempDir(), "sleeptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	svc := service.NewNightService(clockwork.NewFakeClockAt(bedtime), failingStore{NightStore: sqlite}, nil)
	tracker := usecase.NewCoordinator(svc, &seqIDs{}, logging.Discard())
	t.Cleanup(tracker.Close)
	await(t, tracker.Loaded())

	err = tracker.StartSession().Wait(context.Background())
	require.ErrorIs(t, err, errDiskFull)
	state := tracker.Snapshot()
	assert.False(t, state.HasTonight)
	assert.Empty(t, state.History)
}

func TestCloseStopsPublishing(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	calls := atomic.Int64{}
	f.tracker.Subscribe(func(dto.TrackerState) { calls.Add(1) })

	f.tracker.Close()
	err := f.tracker.StartSession().Wait(context.Background())

	require.ErrorIs(t, err, apperrors.ErrClosed)
	assert.Zero(t, calls.Load())
	assert.Zero(t, f.store.writes.Load())
	assert.False(t, f.tracker.Snapshot().HasTonight)
}

// stallingStore parks Insert until its context is cancelled, then lets the
// real store see the cancelled context.
type stallingStore struct {
	trackerport.NightStore
	entered chan struct{}
}

func (s *stallingStore) Insert(ctx context.Context, night domain.Night) (int64, error) {
	close(s.entered)
	<-ctx.Done()
	return s.NightStore.Insert(ctx, night)
}

func TestCloseAbandonsInFlightCommand(t *testing.T) {
	t.Parallel()
	sqlite, err := trackerout.NewSQLiteNightStore(filepath.Join(t.TempDir(), "sleeptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	store := &stallingStore{NightStore: sqlite, entered: make(chan struct{})}
	svc := service.NewNightService(clockwork.NewFakeClockAt(bedtime), store, nil)
	tracker := usecase.NewCoordinator(svc, &seqIDs{}, logging.Discard())
	await(t, tracker.Loaded())

	publishes := atomic.Int64{}
	tracker.Subscribe(func(dto.TrackerState) { publishes.Add(1) })

	task := tracker.StartSession()
	select {
	case <-store.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("insert never started")
	}

	closed := make(chan struct{})
	go func() {
		tracker.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not wait for the running command")
	}

	require.ErrorIs(t, task.Wait(context.Background()), context.Canceled)
	assert.Zero(t, publishes.Load())
	state := tracker.Snapshot()
	assert.False(t, state.HasTonight)
	assert.Empty(t, state.History)

	nights, err := sqlite.AllDescending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, nights)
}
