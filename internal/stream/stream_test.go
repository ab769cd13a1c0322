package stream

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleDoc = `{
  "version": "0.2.0",
  "frames": [
    {
      "index": 0,
      "samples": [
        {
          "type": "@stremf/sample/detection",
          "channel": "camera",
          "image": {"path": "frames/000.png", "dimensions": {"width": 1920, "height": 1080}},
          "annotations": [
            {
              "class": "car",
              "score": 0.91,
              "bbox": {"type": "@stremf/bbox/aabb", "region": {"center": {"x": 100, "y": 50}, "dimensions": {"w": 40, "h": 20}}}
            },
            {
              "class": "pedestrian",
              "score": 0.74,
              "bbox": {"type": "@stremf/bbox/obb", "region": {"center": {"x": 300, "y": 80}, "dimensions": {"w": 10, "h": 30}, "rotation": 0.5}}
            }
          ]
        }
      ]
    },
    {
      "index": 2,
      "samples": [
        {
          "type": "@stremf/sample/detection",
          "channel": "lidar",
          "image": {"path": "frames/002.png", "dimensions": {"width": 1920, "height": 1080}},
          "annotations": []
        }
      ]
    }
  ]
}`

func TestImport(t *testing.T) {
	frames, err := Import(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Index != 0 || frames[1].Index != 2 {
		t.Errorf("indices = %d, %d; want 0, 2", frames[0].Index, frames[1].Index)
	}

	s := frames[0].Sample("camera")
	if s == nil {
		t.Fatal("frame 0 missing camera sample")
	}
	if len(s.Annotations) != 2 {
		t.Fatalf("got %d annotations, want 2", len(s.Annotations))
	}

	car := s.Annotations[0]
	if car.Class != "car" || car.Score != 0.91 {
		t.Errorf("annotation 0 = %+v", car)
	}
	if car.Box.CX != 100 || car.Box.W != 40 || car.Box.Oriented {
		t.Errorf("car box = %+v", car.Box)
	}

	ped := s.Annotations[1]
	if !ped.Box.Oriented || ped.Box.Theta != 0.5 {
		t.Errorf("pedestrian box = %+v", ped.Box)
	}

	if s := frames[0].Sample("lidar"); s != nil {
		t.Error("frame 0 should not carry lidar")
	}
}

func TestImport_SchemaErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"bad json", `{`},
		{"negative index", `{"version":"0.2.0","frames":[{"index":-1,"samples":[]}]}`},
		{
			"unknown sample type",
			`{"version":"0.2.0","frames":[{"index":0,"samples":[{"type":"@stremf/sample/pointcloud","channel":"c"}]}]}`,
		},
		{
			"missing channel",
			`{"version":"0.2.0","frames":[{"index":0,"samples":[{"type":"@stremf/sample/detection","channel":""}]}]}`,
		},
		{
			"unknown bbox type",
			`{"version":"0.2.0","frames":[{"index":0,"samples":[{"type":"@stremf/sample/detection","channel":"c",
			  "annotations":[{"class":"car","score":1,"bbox":{"type":"@stremf/bbox/sphere","region":{}}}]}]}]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tc.doc))
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Errorf("Import() error = %v, want SchemaError", err)
			}
		})
	}
}

func TestChannel(t *testing.T) {
	frames, err := Import(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	camera, err := Channel(frames, "camera")
	if err != nil {
		t.Fatalf("Channel() error: %v", err)
	}
	if len(camera) != 1 || camera[0].Index != 0 {
		t.Errorf("camera frames = %+v", camera)
	}

	if _, err := Channel(frames, "radar"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("Channel(radar) error = %v, want ErrChannelNotFound", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	frames, err := Import(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	var buf bytes.Buffer
	if err := Export(&buf, frames); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	again, err := Import(&buf)
	if err != nil {
		t.Fatalf("re-Import() error: %v", err)
	}

	if diff := cmp.Diff(frames, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
