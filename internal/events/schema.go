package events

import "time"

// SchemaBuildStart is emitted before SDL is loaded into a schema.
type SchemaBuildStart struct {
	Source string
}

// SchemaBuildFinish is emitted after a schema build completes.
type SchemaBuildFinish struct {
	Source   string
	Types    int
	Err      error
	Duration time.Duration
}

// OverlayApplied is emitted for every annotation applied to a target.
type OverlayApplied struct {
	Coordinate string
	Target     string
}
