package events

// SchemaChanged is emitted by watch mode when the fetched schema differs from
// the previous poll.
type SchemaChanged struct {
	Hash     string
	Previous string
}

// WatchError is emitted when a watch cycle fails. Watching continues.
type WatchError struct {
	Err error
}
