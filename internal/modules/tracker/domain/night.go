package domain

import "time"

const SchemaVersion = 1

// Night is one tracked sleep interval. While EndedAt equals StartedAt the
// night is still in progress.
type Night struct {
	ID        int64
	StartedAt time.Time
	EndedAt   time.Time
	Quality   Quality
	Notes     string
}

// NewNight opens a night at now. Timestamps keep millisecond resolution so
// they survive a round trip through the store unchanged.
func NewNight(now time.Time) Night {
	start := truncate(now)
	return Night{StartedAt: start, EndedAt: start, Quality: Unrated}
}

func (n Night) IsOpen() bool {
	return n.EndedAt.Equal(n.StartedAt)
}

// Stop closes the night at now. A reading that is not after the start is
// moved one millisecond past it, otherwise the night would still read as open.
func (n Night) Stop(now time.Time) Night {
	end := truncate(now)
	if !end.After(n.StartedAt) {
		end = n.StartedAt.Add(time.Millisecond)
	}
	n.EndedAt = end
	return n
}

func (n Night) Duration() time.Duration {
	if n.IsOpen() {
		return 0
	}
	return n.EndedAt.Sub(n.StartedAt)
}

func truncate(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
