package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"sleeptrack/internal/modules/tracker/dto"
)

// changeFeed carries coordinator notifications into the Bubble Tea loop.
// Notifications arrive on store goroutines and are coalesced: the loop only
// learns that something changed and reads the snapshot itself.
type changeFeed struct {
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
	cancels []func()
}

func newChangeFeed(tracker trackerPort, rating ratingPort) *changeFeed {
	f := &changeFeed{signal: make(chan struct{}, 1), done: make(chan struct{})}
	f.cancels = append(f.cancels,
		tracker.Subscribe(func(dto.TrackerState) { f.notify() }),
		rating.Subscribe(func(dto.RatingState) { f.notify() }),
	)
	return f
}

func (f *changeFeed) notify() {
	select {
	case f.signal <- struct{}{}:
	default:
	}
}

// wait blocks until the next change. After close it returns nil so no more
// waits get scheduled.
func (f *changeFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.signal:
			return stateChangedMsg{}
		case <-f.done:
			return nil
		}
	}
}

func (f *changeFeed) close() {
	f.once.Do(func() {
		for _, cancel := range f.cancels {
			cancel()
		}
		close(f.done)
	})
}
