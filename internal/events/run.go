package events

import "time"

// RunStart is emitted when a generation run begins. The context carries the
// run ID.
type RunStart struct {
	Source string
	Output string
}

// RunFinish is emitted when a generation run ends.
type RunFinish struct {
	Documents int
	Err       error
	Duration  time.Duration
}
