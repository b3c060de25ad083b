package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/andreiashu/safemap"
	"github.com/andreiashu/safemap/internal/config"
	"github.com/andreiashu/safemap/internal/logger"
)

// dataFlags are shared by every subcommand.
type dataFlags struct {
	city string
	dir  string
}

func (f *dataFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&f.city, "city", cfg.DefaultCity, "city to load (london or nyc)")
	fs.StringVar(&f.dir, "data", cfg.DataDir, "directory with <city>/boroughs.json; empty uses the bundled samples")
}

// open loads the selected city into a fresh Atlas.
func (f *dataFlags) open(l *slog.Logger) *safemap.Snapshot {
	city, err := safemap.ParseCityKey(f.city)
	if err != nil {
		fatal(err)
	}
	atlas := safemap.NewAtlas(safemap.WithLogger(l))
	snap, err := atlas.SwitchCityFrom(context.Background(), safemap.DirSource(f.dir), city)
	if err != nil {
		fatal(err)
	}
	return snap
}

func setup() (*config.Config, *slog.Logger) {
	return config.Load(), logger.Setup()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
