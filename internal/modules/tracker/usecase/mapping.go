package usecase

import (
	"sleeptrack/internal/modules/tracker/domain"
	"sleeptrack/internal/modules/tracker/dto"
)

func toOutput(n domain.Night) dto.NightOutput {
	return dto.NightOutput{
		ID:           n.ID,
		StartedAt:    n.StartedAt,
		EndedAt:      n.EndedAt,
		Open:         n.IsOpen(),
		Quality:      int(n.Quality),
		QualityLabel: n.Quality.Label(),
		Notes:        n.Notes,
		Display:      domain.Describe(n),
	}
}

func toOutputs(nights []domain.Night) []dto.NightOutput {
	out := make([]dto.NightOutput, 0, len(nights))
	for _, n := range nights {
		out = append(out, toOutput(n))
	}
	return out
}
