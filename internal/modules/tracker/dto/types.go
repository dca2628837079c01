package dto

import "time"

type NightOutput struct {
	ID           int64
	StartedAt    time.Time
	EndedAt      time.Time
	Open         bool
	Quality      int
	QualityLabel string
	Notes        string
	Display      string
}

// TrackerState is one consistent observation of the tracker screen. The
// visibility flags are derived from Tonight and History at read time.
type TrackerState struct {
	Tonight    NightOutput
	HasTonight bool
	History    []NightOutput

	StartVisible bool
	StopVisible  bool
	ClearVisible bool

	NavigateToRating    NightOutput
	HasNavigateToRating bool
	ShowNotification    bool
}

type RateInput struct {
	NightID int64
	Quality int
	Notes   string // empty keeps the saved notes
}

type QualityOption struct {
	Value int
	Label string
}

type RatingState struct {
	LastRated         NightOutput
	NavigateToTracker bool
}

type ExportInput struct {
	Dir string
}

type ExportOutput struct {
	Paths   []string
	Skipped int
}
