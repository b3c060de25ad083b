package safemap

import (
	"errors"
)

// NotAvailableLabel is shown in place of a category or color for unscored
// entities.
const NotAvailableLabel = "N/A"

// AreaDetail is one row of the detail panel's area list.
type AreaDetail struct {
	Name        string       `json:"name"`
	TotalCrimes int          `json:"totalCrimes"`
	TopCrime    string       `json:"topCrime"`
	Crimes      CrimeSummary `json:"crimes"`
}

// BoroughDetail is the view model behind the detail panel. TotalCrimes is
// the declared total and is shown as is; TotalsDisagree flags a declared
// total that differs from the aggregated crime types.
type BoroughDetail struct {
	Name           string       `json:"name"`
	AreaLabel      string       `json:"areaLabel"`
	Score          Score        `json:"score"`
	Category       string       `json:"category"`
	Color          string       `json:"color,omitempty"`
	Level          string       `json:"level"`
	SafetyLevel    string       `json:"safetyLevel,omitempty"`
	TotalCrimes    int          `json:"totalCrimes"`
	TotalsDisagree bool         `json:"totalsDisagree,omitempty"`
	Description    string       `json:"description"`
	Crimes         CrimeSummary `json:"crimes"`
	Areas          []AreaDetail `json:"areas"`
	Centroid       []float64    `json:"centroid,omitempty"` // [lat, lng]
	Geohash        string       `json:"geohash,omitempty"`
}

// Detail assembles the detail view for a borough. An unscored borough gets
// "N/A" for its category and no color; only an invalid palette fails.
func Detail(b *BoroughRecord, areaLabel string, p Palette, c *Canonicalizer) (BoroughDetail, error) {
	if err := p.Validate(); err != nil {
		return BoroughDetail{}, err
	}
	d := BoroughDetail{
		Name:        b.Name,
		AreaLabel:   areaLabel,
		Score:       b.Score,
		Category:    NotAvailableLabel,
		Level:       LevelFor(b.Score),
		SafetyLevel: b.SafetyLevel,
		TotalCrimes: b.TotalCrimes,
		Description: Describe(b),
		Areas:       make([]AreaDetail, 0, len(b.Areas)),
	}
	if cat, err := categoryFor(b.Name, b.Score); err == nil {
		d.Category = cat.String()
		d.Color, _ = ColorFor(b.Score, p)
	} else if !isUnscored(err) {
		return BoroughDetail{}, err
	}

	crimes := Aggregate(b, c)
	d.Crimes, _ = crimes.Decorate(p)
	d.TotalsDisagree = len(crimes.Totals) > 0 && crimes.Total != b.TotalCrimes

	for _, a := range b.Areas {
		s := Aggregate(a, c)
		s, _ = s.Decorate(p)
		d.Areas = append(d.Areas, AreaDetail{
			Name:        a.Name,
			TotalCrimes: a.TotalCrimes,
			TopCrime:    s.TopType.Label,
			Crimes:      s,
		})
	}
	if b.Geometry != nil {
		lat, lng := b.Geometry.Centroid()
		d.Centroid = []float64{lat, lng}
		d.Geohash = b.Geometry.Geohash()
	}
	return d, nil
}

// SearchResult is a search entry decorated for display.
type SearchResult struct {
	SearchEntry
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
	TopCrime string `json:"topCrime"`
}

// DecorateResults attaches category, color and top crime type to query
// results. Area entries use their own crime types; borough entries use the
// borough aggregate.
func DecorateResults(entries []SearchEntry, p Palette, c *Canonicalizer) ([]SearchResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(entries))
	for _, e := range entries {
		r := SearchResult{SearchEntry: e, Category: NotAvailableLabel, TopCrime: NotAvailable.Label}
		if cat, err := CategoryFor(e.SortScore); err == nil {
			r.Category = cat.String()
			r.Color, _ = ColorFor(e.SortScore, p)
		}
		if e.Borough != nil {
			var src CrimeSource = e.Borough
			if !e.IsBorough() {
				if a, ok := e.Borough.Area(e.DisplayName); ok {
					src = a
				}
			}
			r.TopCrime = Aggregate(src, c).TopType.Label
		}
		out = append(out, r)
	}
	return out, nil
}

// FillColors maps each borough's upper-cased name to its map fill color.
// Unscored boroughs get fallback.
func FillColors(d *CityDataset, p Palette, fallback string) (map[string]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := make(map[string]string, d.Len())
	for _, b := range d.Boroughs() {
		col, err := ColorFor(b.Score, p)
		if err != nil {
			col = fallback
		}
		out[b.Key()] = col
	}
	return out, nil
}

func isUnscored(err error) bool {
	var ue *UnscoredEntityError
	return errors.As(err, &ue)
}
