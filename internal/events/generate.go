package events

import "time"

// GenerateStart is emitted before documents for one operation kind are
// rendered.
type GenerateStart struct {
	Kind string
}

// GenerateFinish is emitted after documents for one operation kind are
// rendered.
type GenerateFinish struct {
	Kind      string
	Documents int
	Duration  time.Duration
}

// DocumentWritten is emitted for every operation file written to disk.
type DocumentWritten struct {
	Kind  string
	Field string
	Path  string
}

// OutputWritten is emitted once all files of one operation kind are on disk.
type OutputWritten struct {
	Kind  string
	Dir   string
	Files int
}
