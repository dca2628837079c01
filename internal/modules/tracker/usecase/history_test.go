package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	trackerout "sleeptrack/internal/modules/tracker/adapter/out"
	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/modules/tracker/service"
	"sleeptrack/internal/modules/tracker/usecase"
	apperrors "sleeptrack/internal/platform/errors"
	"sleeptrack/internal/platform/logging"
)

func TestHistoryListAndExport(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	sqlite, err := trackerout.NewSQLiteNightStore(filepath.Join(dir, "sleeptrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	clk := clockwork.NewFakeClockAt(bedtime)
	svc := service.NewNightService(clk, sqlite, trackerout.NewVaultNightExporter())
	tracker := usecase.NewCoordinator(svc, &seqIDs{}, logging.Discard())
	t.Cleanup(tracker.Close)
	await(t, tracker.Loaded())

	await(t, tracker.StartSession())
	clk.Advance(7 * time.Hour)
	await(t, tracker.StopSession())
	await(t, tracker.StartSession())

	history := usecase.NewHistoryInteractor(svc, filepath.Join(dir, "export"))
	nights, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, nights, 2)
	assert.True(t, nights[0].Open)
	assert.Equal(t, "--", nights[1].QualityLabel)

	got, err := history.Get(context.Background(), nights[1].ID)
	require.NoError(t, err)
	assert.Equal(t, nights[1].Display, got.Display)
	_, err = history.Get(context.Background(), 404)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	out, err := history.Export(context.Background(), dto.ExportInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Paths, 1)
	assert.True(t, strings.HasPrefix(out.Paths[0], filepath.Join(dir, "export")))
	_, err = os.Stat(out.Paths[0])
	require.NoError(t, err)
}

func TestHistoryExportNeedsDirectory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	history := usecase.NewHistoryInteractor(f.svc, "")

	_, err := history.Export(context.Background(), dto.ExportInput{})
	require.Error(t, err)
}
