package events

import "time"

// CoercionStart is emitted before input values are coerced. Call pairs it
// with its CoercionFinish; one request may run several coercions at once.
type CoercionStart struct {
	Call uint64
	Type string
}

// CoercionFinish is emitted after input values are coerced.
type CoercionFinish struct {
	Call     uint64
	Type     string
	Err      error
	Duration time.Duration
}
