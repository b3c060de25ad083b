package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/andreiashu/safemap"
)

// Chart implements the "chart" subcommand: a bar chart of a borough's
// canonical crime types, colored by palette slot.
func Chart(args []string) {
	cfg, l := setup()
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	var df dataFlags
	df.register(fs, cfg)
	out := fs.String("o", "", "output image path (default <borough>.png)")
	accessible := fs.Bool("accessible", false, "use the accessible palette")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: safemap chart [-city london|nyc] [-data dir] [-o out.png] <borough>\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	snap := df.open(l)
	b, ok := snap.Dataset.Borough(fs.Arg(0))
	if !ok {
		fatal(fmt.Errorf("%w: %q", safemap.ErrBoroughNotFound, fs.Arg(0)))
	}
	palette := safemap.StandardPalette
	if *accessible {
		palette = safemap.AccessiblePalette
	}
	summary, err := safemap.Aggregate(b, nil).Decorate(palette)
	if err != nil {
		fatal(err)
	}
	if len(summary.Totals) == 0 {
		fatal(fmt.Errorf("%s has no crime types to chart", b.Name))
	}

	path := *out
	if path == "" {
		path = b.Key() + ".png"
	}
	if err := renderChart(path, b.Name, summary); err != nil {
		fatal(err)
	}
	fmt.Printf("wrote %s\n", path)
}

func renderChart(path, title string, s safemap.CrimeSummary) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Crimes"

	names := make([]string, len(s.Totals))
	for i, t := range s.Totals {
		names[i] = t.Type.Label
		bar, err := plotter.NewBarChart(oneAt(len(s.Totals), i, float64(t.Count)), vg.Points(18))
		if err != nil {
			return err
		}
		bar.Color = parseHex(t.Color)
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	p.Add(plotter.NewGrid())
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = draw.XRight

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// oneAt returns n values, all zero except v at i, so each bar can carry its
// own color.
func oneAt(n, i int, v float64) plotter.Values {
	vals := make(plotter.Values, n)
	vals[i] = v
	return vals
}

func parseHex(s string) color.Color {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Gray{Y: 128}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
