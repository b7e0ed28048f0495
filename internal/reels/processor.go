package reels

import (
	"context"

	"github.com/rotisserie/eris"
)

// Clip describes an uploaded reel awaiting processing.
type Clip struct {
	Filename string
	Size     int64
}

// Summary is the eventual output of reel processing: a text summary of the
// traveller's preferences plus the locations mentioned across the clips.
type Summary struct {
	Text      string   `json:"summary"`
	Locations []string `json:"locations"`
}

// Processor extracts travel preferences from a collection of reels.
// No implementation exists yet; callers must be prepared for
// ErrNotImplemented until a media pipeline lands.
type Processor interface {
	Process(ctx context.Context, clips []Clip) (*Summary, error)
}

// ErrNotImplemented indicates the reel processing pipeline is not available.
var ErrNotImplemented = eris.New("reel processing is not implemented")

// UnimplementedProcessor rejects every request with ErrNotImplemented.
type UnimplementedProcessor struct{}

var _ Processor = (*UnimplementedProcessor)(nil)

// Process always fails; it exists so the transport layer has a concrete
// dependency to wire while the pipeline is unbuilt.
func (UnimplementedProcessor) Process(ctx context.Context, clips []Clip) (*Summary, error) {
	if len(clips) == 0 {
		return nil, eris.New("at least one clip is required")
	}
	return nil, ErrNotImplemented
}
