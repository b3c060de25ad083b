// Command check-data loads every city dataset and reports data-quality
// problems before the files are deployed.
//
// Usage:
//
//	go run ./cmd/check-data [dir]
//
// With no dir the bundled samples are checked. The exit status is non-zero
// when any city fails to load.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andreiashu/safemap"
)

func main() {
	dir := ""
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	src := safemap.DirSource(dir)

	failed := false
	for _, city := range safemap.Cities() {
		fmt.Printf("Checking %s...\n", city)
		if err := check(src, city); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	fmt.Println("All datasets loaded successfully.")
}

func check(src safemap.DataSource, city safemap.CityKey) error {
	b, g, err := src.Documents(context.Background(), city)
	if err != nil {
		return err
	}
	d, err := safemap.Load(city, b, g)
	if err != nil {
		return err
	}
	label, _ := safemap.AreaLabel(city)
	_, rep := safemap.BuildIndexReport(d, label)
	fmt.Printf("  %d boroughs, %d index entries, %d aliased\n", d.Len(), rep.Entries, rep.Aliased)
	for _, s := range rep.Skipped {
		fmt.Printf("  warning: unnamed record %s skipped\n", s)
	}
	for _, br := range d.Boroughs() {
		if !br.Score.IsSet() {
			fmt.Printf("  warning: %s has no safety score\n", br.Name)
		}
		if br.Geometry == nil {
			fmt.Printf("  note: %s has no boundary\n", br.Name)
		}
		if sum := safemap.Aggregate(br, nil); len(sum.Totals) > 0 && sum.Total != br.TotalCrimes {
			fmt.Printf("  warning: %s declares %d crimes, crime types sum to %d\n", br.Name, br.TotalCrimes, sum.Total)
		}
	}
	return nil
}
