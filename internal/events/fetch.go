package events

import "time"

// FetchStart is emitted before the schema is loaded from an endpoint or file.
type FetchStart struct {
	Source string // endpoint URL or file path
}

// FetchFinish is emitted after the schema source has been read.
type FetchFinish struct {
	Source   string
	Status   int // HTTP status; 0 for files and transport failures
	Bytes    int
	Err      error
	Duration time.Duration
}
