package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cps-atlas/strem/internal/config"
	"github.com/cps-atlas/strem/internal/db"
	"github.com/cps-atlas/strem/internal/stream"
	"github.com/cps-atlas/strem/internal/testutil"
)

// writeStream serializes frames to a temp stremf file and returns its
// path.
func writeStream(t *testing.T, frames []stream.Frame) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stream.json")
	f, err := os.Create(path)
	testutil.AssertNoError(t, err)
	defer f.Close()

	testutil.AssertNoError(t, stream.Export(f, frames))
	return path
}

func crossingFixture(t *testing.T) string {
	t.Helper()
	return writeStream(t, []stream.Frame{
		testutil.Frame(0, "camera", "car"),
		testutil.Frame(1, "camera", "pedestrian"),
		testutil.Frame(2, "camera", "car"),
		testutil.Frame(3, "camera", "pedestrian"),
	})
}

func TestRun_Offline(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera"}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	want := path + ":camera:0..1\n" + path + ":camera:2..3\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_Online(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", Online: true}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	if !strings.Contains(out.String(), "camera:0..1") {
		t.Errorf("online output missing first match: %q", out.String())
	}
}

func TestRun_MaxCount(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", MaxCount: 1}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	if n := strings.Count(out.String(), "\n"); n != 1 {
		t.Errorf("got %d matches, want 1", n)
	}
}

func TestRun_Skip(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", Skip: 2}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	want := path + ":camera:2..3\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestRun_Quiet(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", Quiet: true}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	if out.Len() != 0 {
		t.Errorf("quiet run wrote output: %q", out.String())
	}
}

func TestRun_ExportWritesStremf(t *testing.T) {
	path := crossingFixture(t)

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", Export: true, MaxCount: 1}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	frames, err := stream.Import(&out)
	testutil.AssertNoError(t, err)
	if len(frames) != 2 || frames[0].Index != 0 || frames[1].Index != 1 {
		t.Errorf("exported frames = %+v", frames)
	}
}

func TestRun_RecordsToDatabase(t *testing.T) {
	path := crossingFixture(t)
	dbFile := filepath.Join(t.TempDir(), "matches.db")

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera", DBPath: dbFile, Quiet: true}
	err := run(cfg, "[:car:][:pedestrian:]", []string{path}, &out)
	testutil.AssertNoError(t, err)

	store, err := db.NewDB(dbFile)
	testutil.AssertNoError(t, err)
	defer store.Close()

	matches, err := store.Matches("")
	testutil.AssertNoError(t, err)
	if len(matches) != 2 {
		t.Errorf("recorded %d matches, want 2", len(matches))
	}
}

func TestRun_MultipleFilesConcatenate(t *testing.T) {
	first := writeStream(t, []stream.Frame{
		testutil.Frame(0, "camera", "car"),
	})
	second := writeStream(t, []stream.Frame{
		testutil.Frame(1, "camera", "pedestrian"),
	})

	var out bytes.Buffer
	cfg := &config.Configuration{Channel: "camera"}
	err := run(cfg, "[:car:][:pedestrian:]", []string{first, second}, &out)
	testutil.AssertNoError(t, err)

	// No file prefix with multiple inputs.
	if out.String() != "camera:0..1\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestExitCode(t *testing.T) {
	path := crossingFixture(t)
	cfg := &config.Configuration{Channel: "camera", Quiet: true}

	cases := []struct {
		name    string
		pattern string
		paths   []string
		channel string
		want    int
	}{
		{"syntax error", "[:car:", []string{path}, "camera", exitSyntax},
		{"channel not found", "[:car:]", []string{path}, "radar", exitChannel},
		{"unbound variable", "[NE(v)]", []string{path}, "camera", exitUnboundVar},
		{"repeat too large", "[:car:]{1,9999}", []string{path}, "camera", exitRepeatTooLarge},
		{"missing file", "[:car:]", []string{filepath.Join(t.TempDir(), "missing.json")}, "camera", exitIO},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := *cfg
			c.Channel = tc.channel

			var out bytes.Buffer
			err := run(&c, tc.pattern, tc.paths, &out)
			testutil.AssertError(t, err)
			if got := exitCode(err); got != tc.want {
				t.Errorf("exitCode = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestExitCode_SchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	testutil.AssertNoError(t, os.WriteFile(path, []byte(`{"frames": [{"index": -4}]}`), 0o644))

	cfg := &config.Configuration{Channel: "camera", Quiet: true}
	var out bytes.Buffer
	err := run(cfg, "[:car:]", []string{path}, &out)
	testutil.AssertError(t, err)
	if got := exitCode(err); got != exitSchema {
		t.Errorf("exitCode = %d, want %d", got, exitSchema)
	}
}

func TestExitCode_AtomLimit(t *testing.T) {
	path := crossingFixture(t)

	var b strings.Builder
	for i := 0; i <= 64; i++ {
		b.WriteString("[:c")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteString(string(rune('a' + i%26)))
		b.WriteString(strings.Repeat("z", i/26))
		b.WriteString(":]")
	}

	cfg := &config.Configuration{Channel: "camera", Quiet: true}
	var out bytes.Buffer
	err := run(cfg, b.String(), []string{path}, &out)
	testutil.AssertError(t, err)
	if got := exitCode(err); got != exitAtomLimit {
		t.Errorf("exitCode = %d, want %d", got, exitAtomLimit)
	}
}
