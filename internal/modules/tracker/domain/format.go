package domain

import (
	"fmt"
	"strings"
	"time"
)

const stampLayout = "Monday Jan-02-2006 Time: 15:04"

// Describe renders a night the way the history list shows it.
func Describe(n Night) string {
	var sb strings.Builder
	sb.WriteString("Start: " + FormatStamp(n.StartedAt))
	if n.IsOpen() {
		return sb.String()
	}
	sb.WriteString("\nEnd: " + FormatStamp(n.EndedAt))
	sb.WriteString("\nQuality: " + n.Quality.Label())
	sb.WriteString("\nHours:Minutes:Seconds: " + FormatDuration(n.Duration()))
	if n.Notes != "" {
		sb.WriteString("\nNotes: " + n.Notes)
	}
	return sb.String()
}

// FormatStamp renders t in the local zone.
func FormatStamp(t time.Time) string {
	return t.Local().Format(stampLayout)
}

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
