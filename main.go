// Command strem matches Spatial Regular Expressions (SpREs) against
// annotated perception streams and reports the matching frame
// intervals.
//
// Usage:
//
//	strem --channel NAME [flags] PATTERN [FILE...]
//
// With no files, the stream is read from standard input. Matches print
// one per line as channel:start..end (prefixed with the file path when
// a single file is searched). The exit code is 0 on success and a
// distinct nonzero value per error kind.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cps-atlas/strem/internal/automata"
	"github.com/cps-atlas/strem/internal/config"
	"github.com/cps-atlas/strem/internal/db"
	"github.com/cps-atlas/strem/internal/match"
	"github.com/cps-atlas/strem/internal/spre"
	"github.com/cps-atlas/strem/internal/stream"
	"github.com/cps-atlas/strem/internal/version"
)

// Exit codes, one per error kind.
const (
	exitOK             = 0
	exitUsage          = 1
	exitSyntax         = 2
	exitSchema         = 3
	exitChannel        = 4
	exitUnboundVar     = 5
	exitAtomLimit      = 6
	exitRepeatTooLarge = 7
	exitIO             = 8
)

var (
	channel     = flag.String("channel", "", "The channel to consider in the search (required)")
	online      = flag.Bool("online", false, "Use the online algorithm")
	maxCount    = flag.Int("max-count", 0, "Stop searching after NUM matches found (0 = unlimited)")
	skip        = flag.Int("skip", 0, "Skip the first NUM frames")
	quiet       = flag.Bool("quiet", false, "Do not write matches to standard output")
	export      = flag.Bool("export", false, "Print the frames of each match as stremf JSON")
	dbPath      = flag.String("db", "", "Record the run and its matches to a SQLite database")
	verbose     = flag.Bool("verbose", false, "Log progress details")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"usage: strem --channel NAME [flags] PATTERN [FILE...]\n\n"+
				"Match a Spatial Regular Expression against perception data streams.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("strem %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(exitOK)
	}

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(exitUsage)
	}

	cfg := &config.Configuration{
		Channel:  *channel,
		Online:   *online,
		MaxCount: *maxCount,
		Skip:     *skip,
		Quiet:    *quiet,
		Export:   *export,
		DBPath:   *dbPath,
		Verbose:  *verbose,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "strem: %v\n", err)
		flag.Usage()
		os.Exit(exitUsage)
	}

	if err := run(cfg, flag.Arg(0), flag.Args()[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "strem: %v\n", err)
		os.Exit(exitCode(err))
	}

	os.Exit(exitOK)
}

// run compiles the pattern, loads the streams, and drives the selected
// matcher, writing results to out.
func run(cfg *config.Configuration, pattern string, paths []string, out io.Writer) error {
	compiled, err := match.Compile(pattern)
	if err != nil {
		return err
	}

	frames, err := load(cfg, paths)
	if err != nil {
		return err
	}

	if cfg.Verbose {
		log.Printf("loaded %d frames; pattern uses %d atoms", len(frames), compiled.Atoms())
	}

	var matches []match.Match
	mode := "offline"
	if cfg.Online {
		mode = "online"
		matches, err = match.NewOnline(compiled, cfg.Channel).Run(frames)
	} else {
		matches, err = match.Offline(compiled, frames, cfg.Channel)
	}
	if err != nil {
		return err
	}

	if cfg.MaxCount > 0 && len(matches) > cfg.MaxCount {
		matches = matches[:cfg.MaxCount]
	}

	if cfg.DBPath != "" {
		if err := record(cfg, pattern, mode, matches); err != nil {
			return err
		}
	}

	return printMatches(cfg, paths, frames, matches, out)
}

// load reads and concatenates the stremf inputs in argument order,
// applying the frame skip. Frame indices are preserved as-is.
func load(cfg *config.Configuration, paths []string) ([]stream.Frame, error) {
	var frames []stream.Frame

	if len(paths) == 0 {
		frames, err := stream.Import(os.Stdin)
		if err != nil {
			return nil, err
		}
		return applySkip(cfg, frames), nil
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		imported, err := stream.Import(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		frames = append(frames, imported...)
	}

	return applySkip(cfg, frames), nil
}

func applySkip(cfg *config.Configuration, frames []stream.Frame) []stream.Frame {
	if cfg.Skip >= len(frames) {
		return nil
	}
	return frames[cfg.Skip:]
}

// record persists the run and its matches to the SQLite match store.
func record(cfg *config.Configuration, pattern, mode string, matches []match.Match) error {
	store, err := db.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.RecordRun(pattern, cfg.Channel, mode)
	if err != nil {
		return err
	}

	for _, m := range matches {
		if err := store.RecordMatch(runID, m); err != nil {
			return err
		}
	}

	if cfg.Verbose {
		log.Printf("recorded %d matches under run %s", len(matches), runID)
	}

	return nil
}

// printMatches writes one line per match: channel:start..end, prefixed with
// the searched file when there is exactly one. With --export, the
// matched frames are written as stremf JSON instead.
func printMatches(cfg *config.Configuration, paths []string, frames []stream.Frame, matches []match.Match, out io.Writer) error {
	if cfg.Quiet {
		return nil
	}

	prefix := ""
	if len(paths) == 1 {
		prefix = paths[0] + ":"
	}

	for _, m := range matches {
		if cfg.Export {
			if err := stream.Export(out, interval(frames, m)); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "%s%s\n", prefix, m)
	}

	return nil
}

// interval selects the frames spanned by a match.
func interval(frames []stream.Frame, m match.Match) []stream.Frame {
	var out []stream.Frame
	for _, f := range frames {
		if f.Index >= m.Start && f.Index <= m.End {
			out = append(out, f)
		}
	}
	return out
}

// exitCode maps an error to its documented exit code.
func exitCode(err error) int {
	var (
		syntaxErr  *spre.SyntaxError
		schemaErr  *stream.SchemaError
		unboundErr *spre.UnboundVariableError
		atomErr    *spre.AtomLimitError
		repeatErr  *automata.RepeatTooLargeError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return exitSyntax
	case errors.As(err, &schemaErr):
		return exitSchema
	case errors.Is(err, stream.ErrChannelNotFound):
		return exitChannel
	case errors.As(err, &unboundErr):
		return exitUnboundVar
	case errors.As(err, &atomErr):
		return exitAtomLimit
	case errors.As(err, &repeatErr):
		return exitRepeatTooLarge
	}

	return exitIO
}
