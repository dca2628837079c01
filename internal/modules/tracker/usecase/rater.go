package usecase

import (
	"context"
	"log/slog"

	"sleeptrack/internal/modules/tracker/domain"
	"sleeptrack/internal/modules/tracker/dto"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	"sleeptrack/internal/modules/tracker/service"
	"sleeptrack/internal/platform/async"
	"sleeptrack/internal/platform/observable"
)

// Rater backs the quality screen. A successful rating raises a one-shot
// request to go back to the tracker.
type Rater struct {
	svc    *service.NightService
	logger *slog.Logger
	scope  *async.Scope

	lastRated *observable.Value[dto.NightOutput]
	navigate  *observable.Event[struct{}]

	listeners observable.Listeners[dto.RatingState]
	cancels   []func()
}

func NewRater(svc *service.NightService, logger *slog.Logger) trackerin.Rating {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Rater{
		svc:       svc,
		logger:    logger.With("component", "rating"),
		scope:     async.NewScope(context.Background()),
		lastRated: observable.NewValue(dto.NightOutput{}),
		navigate:  observable.NewEvent[struct{}](),
	}
	r.cancels = append(r.cancels,
		r.lastRated.Subscribe(func(dto.NightOutput) { r.broadcast() }),
		r.navigate.Subscribe(func(observable.EventState[struct{}]) { r.broadcast() }),
	)
	return r
}

// Rate stores the quality and notes for a night. An out-of-range quality
// fails immediately without reaching the store.
func (r *Rater) Rate(input dto.RateInput) *async.Task {
	quality := domain.Quality(input.Quality)
	if err := quality.Validate(); err != nil {
		return async.Done(err)
	}
	log := r.logger.With("command", "rate", "night_id", input.NightID)
	return r.scope.Go(func(ctx context.Context) error {
		night, err := r.svc.Rate(ctx, input.NightID, quality, input.Notes)
		if err != nil {
			log.Error("rate night", "err", err)
			return err
		}
		log.Info("night rated", "quality", quality.Label())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.lastRated.Set(toOutput(night))
		r.navigate.Raise(struct{}{})
		return nil
	})
}

// Options lists the ratings a night can be given, worst first.
func (r *Rater) Options() []dto.QualityOption {
	options := make([]dto.QualityOption, 0, domain.QualityExcellent-domain.QualityVeryBad+1)
	for q := domain.QualityVeryBad; q <= domain.QualityExcellent; q++ {
		options = append(options, dto.QualityOption{Value: int(q), Label: q.Label()})
	}
	return options
}

func (r *Rater) AcknowledgeNavigation() {
	r.navigate.Consume()
}

func (r *Rater) Snapshot() dto.RatingState {
	_, pending := r.navigate.Pending()
	return dto.RatingState{LastRated: r.lastRated.Get(), NavigateToTracker: pending}
}

func (r *Rater) Subscribe(fn func(dto.RatingState)) func() {
	return r.listeners.Add(fn)
}

func (r *Rater) Close() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.scope.Close()
}

func (r *Rater) broadcast() {
	if r.listeners.Len() == 0 {
		return
	}
	r.listeners.Notify(r.Snapshot())
}
