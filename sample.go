package safemap

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed data
var sampleFS embed.FS

// Document file names inside a city directory.
const (
	BoroughDocName  = "boroughs.json"
	GeometryDocName = "areas.geojson"
)

// DataSource supplies the raw documents for a city. The geometry document is
// optional and may be nil.
type DataSource interface {
	Documents(ctx context.Context, city CityKey) (boroughDoc, geometryDoc []byte, err error)
}

// FSSource reads "<city>/boroughs.json" and "<city>/areas.geojson" from a
// file system.
type FSSource struct {
	FS fs.FS
}

// Documents implements DataSource.
func (s FSSource) Documents(ctx context.Context, city CityKey) ([]byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if _, err := AreaLabel(city); err != nil {
		return nil, nil, err
	}
	boroughDoc, err := fs.ReadFile(s.FS, path.Join(string(city), BoroughDocName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	geometryDoc, gerr := fs.ReadFile(s.FS, path.Join(string(city), GeometryDocName))
	if gerr != nil && !errors.Is(gerr, fs.ErrNotExist) {
		return nil, nil, gerr
	}
	if boroughDoc == nil && geometryDoc == nil {
		return nil, nil, fmt.Errorf("no documents for %s: %w", city, fs.ErrNotExist)
	}
	return boroughDoc, geometryDoc, nil
}

var sampleSource = func() FSSource {
	sub, err := fs.Sub(sampleFS, "data")
	if err != nil {
		panic(err)
	}
	return FSSource{FS: sub}
}()

// SampleSource returns the embedded sample datasets.
func SampleSource() DataSource { return sampleSource }

// DirSource reads city documents from dir and falls back to the embedded
// samples for a city with no documents on disk. An empty dir means samples
// only.
func DirSource(dir string) DataSource {
	if dir == "" {
		return sampleSource
	}
	return fallbackSource{primary: FSSource{FS: os.DirFS(dir)}, fallback: sampleSource}
}

type fallbackSource struct {
	primary, fallback DataSource
}

func (s fallbackSource) Documents(ctx context.Context, city CityKey) ([]byte, []byte, error) {
	b, g, err := s.primary.Documents(ctx, city)
	if errors.Is(err, fs.ErrNotExist) {
		return s.fallback.Documents(ctx, city)
	}
	return b, g, err
}

// LoadSample loads the embedded sample dataset for a city.
func LoadSample(city CityKey) (*CityDataset, error) {
	b, g, err := sampleSource.Documents(context.Background(), city)
	if err != nil {
		return nil, err
	}
	return Load(city, b, g)
}
