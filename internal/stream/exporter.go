package stream

import (
	"encoding/json"
	"io"
)

// ExportVersion is the stremf schema version written by Export.
const ExportVersion = "0.2.0"

// Export writes frames back out as one stremf document. The inverse of
// Import up to field ordering.
func Export(w io.Writer, frames []Frame) error {
	ws := wireStream{Version: ExportVersion}

	for _, f := range frames {
		wf := wireFrame{Index: f.Index}
		for _, s := range f.Samples {
			wsample := wireSample{
				Type:    sampleDetectionTag,
				Channel: s.Channel,
			}
			wsample.Image.Path = s.Image.Path
			wsample.Image.Dimensions.Width = s.Image.Width
			wsample.Image.Dimensions.Height = s.Image.Height

			for _, a := range s.Annotations {
				wa := wireAnnotation{Class: a.Class, Score: a.Score}
				wa.BBox.Region.Center.X = a.Box.CX
				wa.BBox.Region.Center.Y = a.Box.CY
				wa.BBox.Region.Dimensions.W = a.Box.W
				wa.BBox.Region.Dimensions.H = a.Box.H
				if a.Box.Oriented {
					wa.BBox.Type = bboxOBBTag
					wa.BBox.Region.Rotation = a.Box.Theta
				} else {
					wa.BBox.Type = bboxAABBTag
				}
				wsample.Annotations = append(wsample.Annotations, wa)
			}

			wf.Samples = append(wf.Samples, wsample)
		}
		ws.Frames = append(ws.Frames, wf)
	}

	return json.NewEncoder(w).Encode(&ws)
}
