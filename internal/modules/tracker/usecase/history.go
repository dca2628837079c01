package usecase

import (
	"context"
	"fmt"

	"sleeptrack/internal/modules/tracker/dto"
	trackerin "sleeptrack/internal/modules/tracker/port/in"
	"sleeptrack/internal/modules/tracker/service"
)

type HistoryInteractor struct {
	svc       *service.NightService
	exportDir string
}

func NewHistoryInteractor(svc *service.NightService, exportDir string) trackerin.History {
	return &HistoryInteractor{svc: svc, exportDir: exportDir}
}

func (h *HistoryInteractor) List(ctx context.Context) ([]dto.NightOutput, error) {
	nights, err := h.svc.History(ctx)
	if err != nil {
		return nil, err
	}
	return toOutputs(nights), nil
}

func (h *HistoryInteractor) Get(ctx context.Context, id int64) (dto.NightOutput, error) {
	night, err := h.svc.Get(ctx, id)
	if err != nil {
		return dto.NightOutput{}, err
	}
	return toOutput(night), nil
}

// Export writes closed nights to input.Dir, or to the configured export
// directory when it is empty.
func (h *HistoryInteractor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	dir := input.Dir
	if dir == "" {
		dir = h.exportDir
	}
	if dir == "" {
		return dto.ExportOutput{}, fmt.Errorf("export directory is required")
	}
	paths, skipped, err := h.svc.Export(ctx, dir)
	return dto.ExportOutput{Paths: paths, Skipped: skipped}, err
}
