// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common stream-building helpers to reduce
// duplication across test files.
package testutil

import (
	"testing"

	"github.com/cps-atlas/strem/internal/geom"
	"github.com/cps-atlas/strem/internal/stream"
)

// Annotation builds a detection with a unit-score axis-aligned box.
func Annotation(class string, cx, cy, w, h float64) stream.Annotation {
	return stream.Annotation{Class: class, Score: 1, Box: geom.NewAABB(cx, cy, w, h)}
}

// Frame builds a single-channel frame carrying one annotation per
// listed class, spaced out horizontally so they never intersect.
func Frame(index int, channel string, classes ...string) stream.Frame {
	s := stream.Sample{Channel: channel}
	for i, class := range classes {
		s.Annotations = append(s.Annotations, Annotation(class, float64(100*i), 0, 10, 10))
	}
	return stream.Frame{Index: index, Samples: []stream.Sample{s}}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
