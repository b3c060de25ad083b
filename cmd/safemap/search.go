package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/andreiashu/safemap"
)

// Search implements the "search" subcommand.
func Search(args []string) {
	cfg, l := setup()
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var df dataFlags
	df.register(fs, cfg)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: safemap search [-city london|nyc] [-data dir] <query>\n\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	snap := df.open(l)
	results, err := safemap.DecorateResults(snap.Query(strings.Join(fs.Args(), " ")), safemap.StandardPalette, nil)
	if err != nil {
		fatal(err)
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tBOROUGH\tSCORE\tCATEGORY\tTOP CRIME")
	for _, r := range results {
		owner := r.OwnerBorough
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.DisplayName, r.Kind, owner, r.SortScore, r.Category, r.TopCrime)
	}
	tw.Flush()
}
