package in

import (
	"context"
	"fmt"
	"time"

	"sleeptrack/internal/modules/tracker/dto"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	apperrors "sleeptrack/internal/platform/errors"
)

// CLIHandler drives the tracker for one-shot commands: every call waits for
// the coordinator task it starts and consumes the event it raises.
type CLIHandler struct {
	tracker trackerin.Tracker
	rating  trackerin.Rating
	history trackerin.History
}

func NewCLIHandler(tracker trackerin.Tracker, rating trackerin.Rating, history trackerin.History) CLIHandler {
	return CLIHandler{tracker: tracker, rating: rating, history: history}
}

func (h CLIHandler) Status(ctx context.Context) (dto.TrackerState, error) {
	if err := h.tracker.Loaded().Wait(ctx); err != nil {
		return dto.TrackerState{}, err
	}
	return h.tracker.Snapshot(), nil
}

func (h CLIHandler) Start(ctx context.Context) (dto.NightOutput, error) {
	state, err := h.Status(ctx)
	if err != nil {
		return dto.NightOutput{}, err
	}
	if state.HasTonight {
		return dto.NightOutput{}, fmt.Errorf("night %d is already open: %w", state.Tonight.ID, apperrors.ErrInvalidInput)
	}
	if err := h.tracker.StartSession().Wait(ctx); err != nil {
		return dto.NightOutput{}, err
	}
	return h.tracker.Snapshot().Tonight, nil
}

func (h CLIHandler) Stop(ctx context.Context) (dto.NightOutput, error) {
	state, err := h.Status(ctx)
	if err != nil {
		return dto.NightOutput{}, err
	}
	if !state.HasTonight {
		return dto.NightOutput{}, apperrors.ErrNoOpenNight
	}
	if err := h.tracker.StopSession().Wait(ctx); err != nil {
		return dto.NightOutput{}, err
	}
	closed := h.tracker.Snapshot().NavigateToRating
	h.tracker.AcknowledgeNavigation()
	return closed, nil
}

func (h CLIHandler) Clear(ctx context.Context) error {
	if err := h.tracker.Loaded().Wait(ctx); err != nil {
		return err
	}
	if err := h.tracker.ClearHistory().Wait(ctx); err != nil {
		return err
	}
	h.tracker.AcknowledgeNotification()
	return nil
}

// History lists nights started at or after since. A zero since lists all.
func (h CLIHandler) History(ctx context.Context, since time.Time) ([]dto.NightOutput, error) {
	nights, err := h.history.List(ctx)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return nights, nil
	}
	filtered := nights[:0]
	for _, n := range nights {
		if !n.StartedAt.Before(since) {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

func (h CLIHandler) Show(ctx context.Context, nightID int64) (dto.NightOutput, error) {
	return h.history.Get(ctx, nightID)
}

func (h CLIHandler) Rate(ctx context.Context, nightID int64, quality int, notes string) (dto.NightOutput, error) {
	if err := h.rating.Rate(dto.RateInput{NightID: nightID, Quality: quality, Notes: notes}).Wait(ctx); err != nil {
		return dto.NightOutput{}, err
	}
	rated := h.rating.Snapshot().LastRated
	h.rating.AcknowledgeNavigation()
	return rated, nil
}

func (h CLIHandler) Export(ctx context.Context, dir string) (dto.ExportOutput, error) {
	return h.history.Export(ctx, dto.ExportInput{Dir: dir})
}
