package usecase

import (
	"context"
	"log/slog"

	"sleeptrack/internal/modules/tracker/domain"
	"sleeptrack/internal/modules/tracker/dto"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	"sleeptrack/internal/modules/tracker/service"
	"sleeptrack/internal/platform/async"
	"sleeptrack/internal/platform/id"
	"sleeptrack/internal/platform/observable"
)

// Coordinator owns the tracker screen state. Commands run on the coordinator
// scope and publish only after their store call has returned.
type Coordinator struct {
	svc    *service.NightService
	ids    id.Generator
	logger *slog.Logger
	scope  *async.Scope

	tonight  *observable.Value[*domain.Night]
	history  *observable.Value[[]domain.Night]
	navigate *observable.Event[domain.Night]
	notify   *observable.Event[struct{}]

	listeners observable.Listeners[dto.TrackerState]
	cancels   []func()
	loaded    *async.Task
}

func NewCoordinator(svc *service.NightService, ids id.Generator, logger *slog.Logger) trackerin.Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		svc:      svc,
		ids:      ids,
		logger:   logger.With("component", "tracker"),
		scope:    async.NewScope(context.Background()),
		tonight:  observable.NewValue[*domain.Night](nil),
		history:  observable.NewValue([]domain.Night{}),
		navigate: observable.NewEvent[domain.Night](),
		notify:   observable.NewEvent[struct{}](),
	}
	c.cancels = append(c.cancels,
		c.tonight.Subscribe(func(*domain.Night) { c.broadcast() }),
		c.history.Subscribe(func([]domain.Night) { c.broadcast() }),
		c.navigate.Subscribe(func(observable.EventState[domain.Night]) { c.broadcast() }),
		c.notify.Subscribe(func(observable.EventState[struct{}]) { c.broadcast() }),
		svc.Watch(c.reloadHistory),
	)
	c.loaded = c.scope.Go(func(ctx context.Context) error {
		if err := c.loadTonight(ctx); err != nil {
			c.logger.Error("load tonight", "err", err)
			return err
		}
		nights, err := c.svc.History(ctx)
		if err != nil {
			c.logger.Error("load history", "err", err)
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.history.Set(nights)
		return nil
	})
	return c
}

// Loaded completes once the initial tonight and history reads have been
// published.
func (c *Coordinator) Loaded() *async.Task {
	return c.loaded
}

func (c *Coordinator) StartSession() *async.Task {
	log := c.logger.With("command", "start", "command_id", c.ids.New())
	log.Debug("dispatch")
	return c.scope.Go(func(ctx context.Context) error {
		night, err := c.svc.Begin(ctx)
		if err != nil {
			log.Error("insert night", "err", err)
			return err
		}
		log.Info("night started", "night_id", night.ID)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.loadTonight(ctx); err != nil {
			log.Error("reload tonight", "err", err)
			return err
		}
		return nil
	})
}

// StopSession closes the open night. With nothing open it returns a finished
// task and touches neither the store nor the navigation event.
func (c *Coordinator) StopSession() *async.Task {
	open := c.tonight.Get()
	if open == nil {
		return async.Done(nil)
	}
	night := *open
	log := c.logger.With("command", "stop", "command_id", c.ids.New(), "night_id", night.ID)
	log.Debug("dispatch")
	return c.scope.Go(func(ctx context.Context) error {
		closed, err := c.svc.Finish(ctx, night)
		if err != nil {
			log.Error("update night", "err", err)
			return err
		}
		log.Info("night stopped", "duration", closed.Duration())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.loadTonight(ctx); err != nil {
			log.Error("reload tonight", "err", err)
			return err
		}
		c.navigate.Raise(closed)
		return nil
	})
}

func (c *Coordinator) ClearHistory() *async.Task {
	log := c.logger.With("command", "clear", "command_id", c.ids.New())
	log.Debug("dispatch")
	return c.scope.Go(func(ctx context.Context) error {
		if err := c.svc.Clear(ctx); err != nil {
			log.Error("clear nights", "err", err)
			return err
		}
		log.Info("history cleared")
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.tonight.Set(nil)
		c.notify.Raise(struct{}{})
		return nil
	})
}

func (c *Coordinator) AcknowledgeNavigation() {
	c.navigate.Consume()
}

func (c *Coordinator) AcknowledgeNotification() {
	c.notify.Consume()
}

func (c *Coordinator) Snapshot() dto.TrackerState {
	state := dto.TrackerState{History: toOutputs(c.history.Get())}
	if open := c.tonight.Get(); open != nil {
		state.Tonight = toOutput(*open)
		state.HasTonight = true
	}
	if closed, ok := c.navigate.Pending(); ok {
		state.NavigateToRating = toOutput(closed)
		state.HasNavigateToRating = true
	}
	_, state.ShowNotification = c.notify.Pending()
	state.StartVisible = !state.HasTonight
	state.StopVisible = state.HasTonight
	state.ClearVisible = len(state.History) > 0
	return state
}

// Subscribe registers fn for every state change. Callbacks run on the
// goroutine that caused the change.
func (c *Coordinator) Subscribe(fn func(dto.TrackerState)) func() {
	return c.listeners.Add(fn)
}

// Close stops watching the store, cancels in-flight commands and waits for
// them to return. Nothing is published after Close returns.
func (c *Coordinator) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.scope.Close()
}

func (c *Coordinator) broadcast() {
	if c.listeners.Len() == 0 {
		return
	}
	c.listeners.Notify(c.Snapshot())
}

func (c *Coordinator) loadTonight(ctx context.Context) error {
	night, ok, err := c.svc.Tonight(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !ok {
		c.tonight.Set(nil)
		return nil
	}
	c.tonight.Set(&night)
	return nil
}

func (c *Coordinator) reloadHistory(ctx context.Context) {
	nights, err := c.svc.History(ctx)
	if err != nil {
		c.logger.Error("reload history", "err", err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.history.Set(nights)
}
