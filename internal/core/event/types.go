package event

import "github.com/google/uuid"

// TrackBuilt is emitted after a build completes.
type TrackBuilt struct {
	BuildID    uuid.UUID
	Number     int
	Connectors int
	Segments   int
	Perils     int
	Branches   int
	Length     float64
}

// TrackReset is emitted after a run restarts without a new build.
type TrackReset struct {
	BuildID      uuid.UUID
	Collectables int
}

// RestartRequested asks the track system to restart the run on the next tick.
type RestartRequested struct {
	Rebuild bool
	Reason  string
}

// BuildFailed is emitted when a build aborts. The partial track has already
// been reset.
type BuildFailed struct {
	Err error
}
