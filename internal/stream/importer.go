package stream

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cps-atlas/strem/internal/geom"
)

// Schema type tags. Unknown tags are fatal.
const (
	sampleDetectionTag = "@stremf/sample/detection"
	bboxAABBTag        = "@stremf/bbox/aabb"
	bboxOBBTag         = "@stremf/bbox/obb"
)

// SchemaError reports that input data failed stremf schema checks.
type SchemaError struct {
	Msg string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("stremf: %s", e.Msg)
}

func schemaErrorf(format string, args ...any) *SchemaError {
	return &SchemaError{Msg: fmt.Sprintf(format, args...)}
}

// Wire representation of the stremf schema.

type wireStream struct {
	Version string      `json:"version"`
	Frames  []wireFrame `json:"frames"`
}

type wireFrame struct {
	Index   int          `json:"index"`
	Samples []wireSample `json:"samples"`
}

type wireSample struct {
	Type        string           `json:"type"`
	Channel     string           `json:"channel"`
	Image       wireImage        `json:"image"`
	Annotations []wireAnnotation `json:"annotations"`
}

type wireImage struct {
	Path       string `json:"path"`
	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`
}

type wireAnnotation struct {
	Class string   `json:"class"`
	Score float64  `json:"score"`
	BBox  wireBBox `json:"bbox"`
}

type wireBBox struct {
	Type   string     `json:"type"`
	Region wireRegion `json:"region"`
}

type wireRegion struct {
	Center struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"center"`
	Dimensions struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"dimensions"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Import decodes one stremf document from r into frames. Frame indices
// are preserved as-is; multiple documents are concatenated by the
// caller in argument order.
func Import(r io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(r)

	var ws wireStream
	if err := dec.Decode(&ws); err != nil {
		return nil, schemaErrorf("decode: %v", err)
	}

	frames := make([]Frame, 0, len(ws.Frames))
	for _, wf := range ws.Frames {
		if wf.Index < 0 {
			return nil, schemaErrorf("frame index %d: must be nonnegative", wf.Index)
		}

		frame := Frame{Index: wf.Index}
		for _, s := range wf.Samples {
			if s.Type != sampleDetectionTag {
				return nil, schemaErrorf("frame %d: unknown sample type %q", wf.Index, s.Type)
			}
			if s.Channel == "" {
				return nil, schemaErrorf("frame %d: sample missing channel", wf.Index)
			}

			sample := Sample{
				Channel: s.Channel,
				Image: Image{
					Path:   s.Image.Path,
					Width:  s.Image.Dimensions.Width,
					Height: s.Image.Dimensions.Height,
				},
			}

			for i, a := range s.Annotations {
				box, err := importBBox(a.BBox)
				if err != nil {
					return nil, schemaErrorf("frame %d: annotation %d: %v", wf.Index, i, err)
				}
				sample.Annotations = append(sample.Annotations, Annotation{
					Class: a.Class,
					Score: a.Score,
					Box:   box,
				})
			}

			frame.Samples = append(frame.Samples, sample)
		}

		frames = append(frames, frame)
	}

	return frames, nil
}

func importBBox(w wireBBox) (geom.Box, error) {
	switch w.Type {
	case bboxAABBTag:
		return geom.NewAABB(
			w.Region.Center.X, w.Region.Center.Y,
			w.Region.Dimensions.W, w.Region.Dimensions.H,
		), nil
	case bboxOBBTag:
		return geom.NewOBB(
			w.Region.Center.X, w.Region.Center.Y,
			w.Region.Dimensions.W, w.Region.Dimensions.H,
			w.Region.Rotation,
		), nil
	}

	return geom.Box{}, fmt.Errorf("unknown bbox type %q", w.Type)
}
