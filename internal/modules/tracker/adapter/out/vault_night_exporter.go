package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleeptrack/internal/modules/tracker/domain"
	trackerout "sleeptrack/internal/modules/tracker/port/out"
	"sleeptrack/internal/platform/markdown"
)

type VaultNightExporter struct{}

func NewVaultNightExporter() trackerout.NightExporter {
	return VaultNightExporter{}
}

// Export writes night to dir/nights/YYYY/MM/DD/HHMMSS-night-<id>.md. An
// existing note keeps the body the user wrote; only the frontmatter and the
// generated summary block are refreshed.
func (VaultNightExporter) Export(_ context.Context, dir string, night domain.Night) (string, error) {
	date := night.StartedAt.Local()
	noteDir := filepath.Join(dir, "nights", date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(noteDir, 0o755); err != nil {
		return "", fmt.Errorf("create night dir: %w", err)
	}
	path := filepath.Join(noteDir, fmt.Sprintf("%s-night-%d.md", date.Format("150405"), night.ID))

	body := fmt.Sprintf("# Night %d\n", night.ID)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		note, parseErr := markdown.Parse(string(existing))
		if parseErr != nil {
			return "", fmt.Errorf("parse night note %s: %w", path, parseErr)
		}
		body = note.Body
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read night note: %w", err)
	}

	note := markdown.Note{
		Meta: map[string]any{
			"schema_version":   domain.SchemaVersion,
			"id":               night.ID,
			"started_at":       night.StartedAt.Format(time.RFC3339),
			"ended_at":         night.EndedAt.Format(time.RFC3339),
			"duration_minutes": int(night.Duration().Minutes()),
			"quality":          int(night.Quality),
			"quality_label":    night.Quality.Label(),
		},
		Body: markdown.ReplaceBlock(body, "summary", domain.Describe(night)),
	}
	rendered, err := note.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write night note: %w", err)
	}
	return path, nil
}
