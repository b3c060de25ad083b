package safemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrSwitchInProgress is returned when a city switch is requested while
	// another is still building. Switches are never interleaved.
	ErrSwitchInProgress = errors.New("safemap: city switch already in progress")
	// ErrNotLoaded is returned before the first successful city switch.
	ErrNotLoaded = errors.New("safemap: no city loaded")
	// ErrBoroughNotFound is returned by Atlas.Borough for unknown names.
	ErrBoroughNotFound = errors.New("safemap: borough not found")
)

// Preference keys written to the PreferenceStore.
const (
	PrefCity       = "city"
	PrefAccessible = "accessible"
)

// PreferenceStore is the user-preference key-value store. Implementations
// live outside this package.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Observer receives timing for switches and queries, e.g. to export
// metrics. Methods must not block.
type Observer interface {
	SwitchDone(city CityKey, d time.Duration, err error)
	QueryDone(city CityKey, d time.Duration, results int)
}

// Snapshot is one loaded city: the dataset and the index built from it. A
// snapshot is immutable and is replaced, never modified, on a city switch.
type Snapshot struct {
	City      CityKey
	AreaLabel string
	Dataset   *CityDataset
	Index     []SearchEntry
	Report    IndexReport
	BuiltAt   time.Time
}

// Query runs Query against the snapshot's own index.
func (s *Snapshot) Query(text string) []SearchEntry {
	if s == nil {
		return nil
	}
	return Query(s.Index, text)
}

// Locate returns the borough whose boundary contains the point. Boroughs are
// checked in dataset order; the first hit wins.
func (s *Snapshot) Locate(lat, lng float64) (*BoroughRecord, bool) {
	if s == nil {
		return nil, false
	}
	for _, b := range s.Dataset.order {
		if b.Geometry.ContainsLatLng(lat, lng) {
			return b, true
		}
	}
	return nil, false
}

type atlasConfig struct {
	logger   *slog.Logger
	prefs    PreferenceStore
	observer Observer
	canon    *Canonicalizer
	now      func() time.Time
}

// Option configures an Atlas.
type Option func(*atlasConfig)

// WithLogger sets the logger for data-quality warnings and switch events.
func WithLogger(l *slog.Logger) Option {
	return func(c *atlasConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPreferences records the selected city in the given store.
func WithPreferences(p PreferenceStore) Option {
	return func(c *atlasConfig) {
		c.prefs = p
	}
}

// WithObserver reports switch and query timings.
func WithObserver(o Observer) Option {
	return func(c *atlasConfig) {
		c.observer = o
	}
}

// WithCanonicalizer replaces the default crime-type rules.
func WithCanonicalizer(cz *Canonicalizer) Option {
	return func(c *atlasConfig) {
		if cz != nil {
			c.canon = cz
		}
	}
}

func defaultAtlasConfig() *atlasConfig {
	return &atlasConfig{
		logger: slog.New(slog.DiscardHandler),
		canon:  defaultCanonicalizer,
		now:    time.Now,
	}
}

// Atlas owns the live city: its dataset and index. It is the one place a
// city switch happens; everything else reads the current snapshot. Safe for
// concurrent use.
type Atlas struct {
	cfg      *atlasConfig
	switchMu sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewAtlas returns an Atlas with no city loaded.
func NewAtlas(opts ...Option) *Atlas {
	cfg := defaultAtlasConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Atlas{cfg: cfg}
}

// Canonicalizer returns the crime-type canonicalizer in use.
func (a *Atlas) Canonicalizer() *Canonicalizer { return a.cfg.canon }

// SwitchCity loads a city and makes it current. The new dataset and index
// are built into a fresh snapshot and published with a single pointer swap,
// so readers see either the old city or the new one, never a mix. A switch
// requested while another is building fails with ErrSwitchInProgress. On a
// load error the previous city stays current.
func (a *Atlas) SwitchCity(ctx context.Context, city CityKey, boroughDoc, geometryDoc []byte) (*Snapshot, error) {
	if !a.switchMu.TryLock() {
		return nil, ErrSwitchInProgress
	}
	defer a.switchMu.Unlock()

	start := a.cfg.now()
	snap, err := a.build(city, boroughDoc, geometryDoc)
	if a.cfg.observer != nil {
		a.cfg.observer.SwitchDone(city, a.cfg.now().Sub(start), err)
	}
	if err != nil {
		a.cfg.logger.Error("city_switch_failed", "city", city, "err", err)
		return nil, fmt.Errorf("switching to %s: %w", city, err)
	}
	a.current.Store(snap)
	a.cfg.logger.Info("city_switched",
		"city", city,
		"boroughs", snap.Dataset.Len(),
		"entries", snap.Report.Entries,
		"aliased", snap.Report.Aliased,
	)

	if a.cfg.prefs != nil {
		if err := a.cfg.prefs.Set(ctx, PrefCity, string(city)); err != nil {
			a.cfg.logger.Warn("preference_save_failed", "key", PrefCity, "err", err)
		}
	}
	return snap, nil
}

// SwitchCityFrom fetches the documents from src and switches to city.
func (a *Atlas) SwitchCityFrom(ctx context.Context, src DataSource, city CityKey) (*Snapshot, error) {
	boroughDoc, geometryDoc, err := src.Documents(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("fetching %s documents: %w", city, err)
	}
	return a.SwitchCity(ctx, city, boroughDoc, geometryDoc)
}

// Restore switches to the city saved in the preference store, or to
// fallback when none is saved or the saved value is unknown.
func (a *Atlas) Restore(ctx context.Context, src DataSource, fallback CityKey) (*Snapshot, error) {
	city := fallback
	if a.cfg.prefs != nil {
		v, ok, err := a.cfg.prefs.Get(ctx, PrefCity)
		switch {
		case err != nil:
			a.cfg.logger.Warn("preference_load_failed", "key", PrefCity, "err", err)
		case ok:
			if saved, perr := ParseCityKey(v); perr == nil {
				city = saved
			} else {
				a.cfg.logger.Warn("preference_invalid", "key", PrefCity, "value", v)
			}
		}
	}
	return a.SwitchCityFrom(ctx, src, city)
}

// build loads and indexes a city without touching the live snapshot.
func (a *Atlas) build(city CityKey, boroughDoc, geometryDoc []byte) (*Snapshot, error) {
	label, err := AreaLabel(city)
	if err != nil {
		return nil, err
	}
	d, err := Load(city, boroughDoc, geometryDoc)
	if err != nil {
		return nil, err
	}
	index, rep := BuildIndexReport(d, label)
	for _, s := range rep.Skipped {
		a.cfg.logger.Warn("index_skipped_unnamed", "city", city, "record", s)
	}
	a.checkTotals(d)
	return &Snapshot{
		City:      city,
		AreaLabel: label,
		Dataset:   d,
		Index:     index,
		Report:    rep,
		BuiltAt:   a.cfg.now(),
	}, nil
}

// checkTotals logs boroughs whose declared total differs from their crime
// types. The declared total is kept; this is a data-quality signal only.
func (a *Atlas) checkTotals(d *CityDataset) {
	for _, b := range d.order {
		s := Aggregate(b, a.cfg.canon)
		if len(s.Totals) > 0 && s.Total != b.TotalCrimes {
			a.cfg.logger.Warn("borough_total_mismatch",
				"city", d.City,
				"borough", b.Name,
				"declared", b.TotalCrimes,
				"aggregated", s.Total,
			)
		}
	}
}

// Current returns the live snapshot.
func (a *Atlas) Current() (*Snapshot, error) {
	s := a.current.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}
	return s, nil
}

// Query answers text against the live city. Before the first switch it
// returns nil.
func (a *Atlas) Query(text string) []SearchEntry {
	s := a.current.Load()
	if s == nil {
		return nil
	}
	start := a.cfg.now()
	res := s.Query(text)
	if a.cfg.observer != nil {
		a.cfg.observer.QueryDone(s.City, a.cfg.now().Sub(start), len(res))
	}
	return res
}

// Borough looks up a borough of the live city by name.
func (a *Atlas) Borough(name string) (*BoroughRecord, error) {
	s, err := a.Current()
	if err != nil {
		return nil, err
	}
	b, ok := s.Dataset.Borough(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBoroughNotFound, name)
	}
	return b, nil
}

// Locate returns the live city's borough containing the point.
func (a *Atlas) Locate(lat, lng float64) (*BoroughRecord, bool) {
	return a.current.Load().Locate(lat, lng)
}
