package service

import (
	"context"
	"fmt"

	"sleeptrack/internal/modules/tracker/domain"
	trackerout "sleeptrack/internal/modules/tracker/port/out"
	"sleeptrack/internal/platform/clock"
)

type NightService struct {
	clock    clock.Clock
	store    trackerout.NightStore
	exporter trackerout.NightExporter
}

func NewNightService(clock clock.Clock, store trackerout.NightStore, exporter trackerout.NightExporter) *NightService {
	return &NightService{clock: clock, store: store, exporter: exporter}
}

// Tonight returns the night still in progress. The most recent row counts
// only while its end equals its start; a closed row reads as no night.
func (s *NightService) Tonight(ctx context.Context) (domain.Night, bool, error) {
	night, ok, err := s.store.MostRecent(ctx)
	if err != nil {
		return domain.Night{}, false, err
	}
	if !ok || !night.IsOpen() {
		return domain.Night{}, false, nil
	}
	return night, true, nil
}

func (s *NightService) Begin(ctx context.Context) (domain.Night, error) {
	night := domain.NewNight(s.clock.Now())
	id, err := s.store.Insert(ctx, night)
	if err != nil {
		return domain.Night{}, err
	}
	night.ID = id
	return night, nil
}

func (s *NightService) Finish(ctx context.Context, night domain.Night) (domain.Night, error) {
	closed := night.Stop(s.clock.Now())
	if err := s.store.Update(ctx, closed); err != nil {
		return domain.Night{}, err
	}
	return closed, nil
}

func (s *NightService) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

func (s *NightService) History(ctx context.Context) ([]domain.Night, error) {
	return s.store.AllDescending(ctx)
}

func (s *NightService) Get(ctx context.Context, id int64) (domain.Night, error) {
	return s.store.Get(ctx, id)
}

// Rate sets the quality of night id. Empty notes keep whatever the night
// already holds; notes can be replaced but never cleared.
func (s *NightService) Rate(ctx context.Context, id int64, quality domain.Quality, notes string) (domain.Night, error) {
	if err := quality.Validate(); err != nil {
		return domain.Night{}, err
	}
	night, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Night{}, err
	}
	night.Quality = quality
	if notes != "" {
		night.Notes = notes
	}
	if err := s.store.Update(ctx, night); err != nil {
		return domain.Night{}, err
	}
	return night, nil
}

// Export writes a note for every closed night and reports how many open
// nights were skipped.
func (s *NightService) Export(ctx context.Context, dir string) ([]string, int, error) {
	if s.exporter == nil {
		return nil, 0, fmt.Errorf("night exporter is not configured")
	}
	nights, err := s.store.AllDescending(ctx)
	if err != nil {
		return nil, 0, err
	}
	paths := make([]string, 0, len(nights))
	skipped := 0
	for _, night := range nights {
		if night.IsOpen() {
			skipped++
			continue
		}
		path, err := s.exporter.Export(ctx, dir, night)
		if err != nil {
			return paths, skipped, err
		}
		paths = append(paths, path)
	}
	return paths, skipped, nil
}

func (s *NightService) Watch(fn func(ctx context.Context)) func() {
	return s.store.Watch(fn)
}
