// Package naturaldate turns expressions like "yesterday" or "a week ago" into
// timestamps for history filters.
package naturaldate

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	apperrors "sleeptrack/internal/platform/errors"
)

var layouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Parse resolves expr relative to now. Fixed layouts are tried first in the
// local zone; natural language only counts when it matches the whole input.
func Parse(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty date: %w", apperrors.ErrInvalidInput)
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, expr, now.Location()); err == nil {
			return t, nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	result, err := w.Parse(expr, now)
	if err == nil && result != nil && result.Index == 0 && len(result.Text) == len(expr) {
		return result.Time, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q: %w", expr, apperrors.ErrInvalidInput)
}
