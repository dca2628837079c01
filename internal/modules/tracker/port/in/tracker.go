package in

import (
	"context"

	"sleeptrack/internal/modules/tracker/dto"
	"sleeptrack/internal/platform/async"
)

// Tracker is the coordinator behind the tracker screen.
type Tracker interface {
	Loaded() *async.Task
	StartSession() *async.Task
	StopSession() *async.Task
	ClearHistory() *async.Task
	AcknowledgeNavigation()
	AcknowledgeNotification()
	Snapshot() dto.TrackerState
	Subscribe(fn func(dto.TrackerState)) (cancel func())
	Close()
}

// Rating backs the quality screen reached after a night is stopped.
type Rating interface {
	Rate(input dto.RateInput) *async.Task
	Options() []dto.QualityOption
	AcknowledgeNavigation()
	Snapshot() dto.RatingState
	Subscribe(fn func(dto.RatingState)) (cancel func())
	Close()
}

type History interface {
	List(ctx context.Context) ([]dto.NightOutput, error)
	Get(ctx context.Context, id int64) (dto.NightOutput, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
