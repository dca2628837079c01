package out

import (
	"context"

	"sleeptrack/internal/modules/tracker/domain"
)

type NightStore interface {
	Insert(ctx context.Context, night domain.Night) (int64, error)
	Update(ctx context.Context, night domain.Night) error
	Get(ctx context.Context, id int64) (domain.Night, error)
	MostRecent(ctx context.Context) (domain.Night, bool, error)
	AllDescending(ctx context.Context) ([]domain.Night, error)
	Clear(ctx context.Context) error
	// Watch registers fn to run after every committed write, on the writing
	// goroutine and with the writer's context.
	Watch(fn func(ctx context.Context)) (cancel func())
}

type NightExporter interface {
	Export(ctx context.Context, dir string, night domain.Night) (string, error)
}
