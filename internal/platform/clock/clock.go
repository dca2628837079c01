package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock abstracts time to keep usecases deterministic in tests.
// clockwork fake clocks satisfy it.
type Clock interface {
	Now() time.Time
}

func System() Clock {
	return clockwork.NewRealClock()
}
