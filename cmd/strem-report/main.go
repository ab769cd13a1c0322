// Command strem-report summarises a strem match database.
//
// It prints per-channel interval statistics and can render an HTML
// timeline (--html) or a match-length histogram PNG (--plot).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cps-atlas/strem/internal/db"
)

var (
	dbPath   = flag.String("db", "", "Path to the match database (required)")
	runID    = flag.String("run", "", "Restrict the report to one run id")
	htmlPath = flag.String("html", "", "Write an HTML timeline to this path")
	plotPath = flag.String("plot", "", "Write a match-length histogram PNG to this path")
)

func main() {
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "strem-report: --db is required")
		flag.Usage()
		os.Exit(1)
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("failed to open match database: %v", err)
	}
	defer store.Close()

	matches, err := store.Matches(*runID)
	if err != nil {
		log.Fatalf("failed to load matches: %v", err)
	}
	if len(matches) == 0 {
		fmt.Println("no matches recorded")
		return
	}

	summarise(matches)

	if *htmlPath != "" {
		if err := renderTimeline(matches, *htmlPath); err != nil {
			log.Fatalf("failed to render timeline: %v", err)
		}
	}

	if *plotPath != "" {
		if err := renderHistogram(matches, *plotPath); err != nil {
			log.Fatalf("failed to render histogram: %v", err)
		}
	}
}

// length is the number of frame indices an interval spans, inclusive.
func length(m db.StoredMatch) float64 {
	return float64(m.End - m.Start + 1)
}

// summarise prints per-channel count and interval-length percentiles.
func summarise(matches []db.StoredMatch) {
	byChannel := make(map[string][]float64)
	var channels []string
	for _, m := range matches {
		if _, ok := byChannel[m.Channel]; !ok {
			channels = append(channels, m.Channel)
		}
		byChannel[m.Channel] = append(byChannel[m.Channel], length(m))
	}
	sort.Strings(channels)

	fmt.Printf("%-16s %8s %8s %8s %8s %8s\n", "channel", "matches", "mean", "p50", "p85", "p95")
	for _, ch := range channels {
		lengths := byChannel[ch]
		sort.Float64s(lengths)

		fmt.Printf("%-16s %8d %8.2f %8.1f %8.1f %8.1f\n",
			ch,
			len(lengths),
			stat.Mean(lengths, nil),
			stat.Quantile(0.50, stat.Empirical, lengths, nil),
			stat.Quantile(0.85, stat.Empirical, lengths, nil),
			stat.Quantile(0.95, stat.Empirical, lengths, nil),
		)
	}
}

// renderTimeline writes an HTML scatter of match intervals: x is the
// frame index span, one horizontal band per channel.
func renderTimeline(matches []db.StoredMatch, path string) error {
	channelRow := make(map[string]int)
	var channels []string
	for _, m := range matches {
		if _, ok := channelRow[m.Channel]; !ok {
			channelRow[m.Channel] = len(channels)
			channels = append(channels, m.Channel)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "strem matches", Width: "1200px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Match timeline", Subtitle: fmt.Sprintf("%d matches", len(matches))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "channel", Min: -1, Max: len(channels)}),
	)

	for _, ch := range channels {
		var data []opts.ScatterData
		for _, m := range matches {
			if m.Channel != ch {
				continue
			}
			row := channelRow[ch]
			data = append(data,
				opts.ScatterData{Value: []interface{}{m.Start, row}},
				opts.ScatterData{Value: []interface{}{m.End, row}},
			)
		}
		scatter.AddSeries(ch, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return scatter.Render(f)
}

// renderHistogram writes a PNG histogram of match lengths.
func renderHistogram(matches []db.StoredMatch, path string) error {
	values := make(plotter.Values, len(matches))
	for i, m := range matches {
		values[i] = length(m)
	}

	p := plot.New()
	p.Title.Text = "Match lengths"
	p.X.Label.Text = "frames"
	p.Y.Label.Text = "count"

	bins := 10
	if len(values) < bins {
		bins = len(values)
	}
	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
