// Package stream owns the in-memory perception stream model.
//
// Responsibilities: frames, per-channel detection samples, annotations,
// and import/export of the stremf JSON schema. The matcher binds to one
// channel at a time; this package provides the channel projection.
package stream

import (
	"errors"
	"fmt"

	"github.com/cps-atlas/strem/internal/geom"
)

// ErrChannelNotFound reports that no frame in a stream carries the
// requested channel.
var ErrChannelNotFound = errors.New("channel not found in stream")

// Annotation is one labeled detection within a frame. Identity is the
// frame-local position; Score is retained from the input but never
// consulted by the pattern language.
type Annotation struct {
	Class string
	Score float64
	Box   geom.Box
}

// Image holds the metadata of the frame capture a sample annotates.
type Image struct {
	Path   string
	Width  int
	Height int
}

// Sample is the set of detections one sensor channel produced for a
// frame.
type Sample struct {
	Channel     string
	Image       Image
	Annotations []Annotation
}

// Frame is one time step of the perception stream. Index values are
// nonnegative and strictly increasing across a stream but need not be
// contiguous.
type Frame struct {
	Index   int
	Samples []Sample
}

// Sample returns the sample on the named channel, or nil if the frame
// does not carry it.
func (f *Frame) Sample(channel string) *Sample {
	for i := range f.Samples {
		if f.Samples[i].Channel == channel {
			return &f.Samples[i]
		}
	}
	return nil
}

// Channel projects the frames that carry the named channel, preserving
// frame order. Frames without the channel are skipped; if no frame
// carries it, ErrChannelNotFound is returned.
func Channel(frames []Frame, channel string) ([]Frame, error) {
	var out []Frame
	for _, f := range frames {
		if f.Sample(channel) != nil {
			out = append(out, f)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, channel)
	}

	return out, nil
}
