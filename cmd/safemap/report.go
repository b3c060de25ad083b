package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/andreiashu/safemap"
)

// Report implements the "report" subcommand: a summary of one or both
// cities, optionally with scores recomputed from crime-total quantiles.
func Report(args []string) {
	cfg, l := setup()
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	dir := fs.String("data", cfg.DataDir, "directory with <city>/boroughs.json; empty uses the bundled samples")
	rescore := fs.Int("rescore", 0, "recompute scores from crime totals using this many quantiles (0 keeps the published scores)")
	describe := fs.Bool("describe", false, "print one line per borough")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: safemap report [-data dir] [-rescore q] [-describe] [city...]\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cities := safemap.Cities()
	if fs.NArg() > 0 {
		cities = cities[:0]
		for _, a := range fs.Args() {
			c, err := safemap.ParseCityKey(a)
			if err != nil {
				fatal(err)
			}
			cities = append(cities, c)
		}
	}

	var analyses []safemap.CityAnalysis
	for _, c := range cities {
		df := dataFlags{city: string(c), dir: *dir}
		d := df.open(l).Dataset
		if *rescore > 0 {
			d = safemap.Rescore(d, *rescore)
		}
		analyses = append(analyses, safemap.Analyze(d))
		if *describe {
			for _, b := range d.Boroughs() {
				fmt.Println(safemap.Describe(b))
			}
			fmt.Println()
		}
	}
	fmt.Print(safemap.SummaryReport(analyses...))
}
