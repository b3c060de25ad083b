package safemap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// cityAdapter turns one city's raw documents into a CityDataset.
type cityAdapter struct {
	areaLabel string // "Ward", "Precinct"
	load      func(boroughDoc, geometryDoc []byte) (*CityDataset, error)
}

// adapters is keyed by CityKey only. Adding a city means adding an entry
// here; Load never inspects a document to guess which city it is.
var adapters = map[CityKey]cityAdapter{
	London:  {areaLabel: "Ward", load: loadLondon},
	NewYork: {areaLabel: "Precinct", load: loadNewYork},
}

// AreaLabel returns the area-type label for a city ("Ward", "Precinct").
func AreaLabel(city CityKey) (string, error) {
	a, ok := adapters[city]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return a.areaLabel, nil
}

// Cities returns the supported city keys in a fixed order.
func Cities() []CityKey {
	return []CityKey{London, NewYork}
}

// Load normalizes a city's raw documents into a new dataset. boroughDoc is
// the borough-level JSON document; geometryDoc is an optional GeoJSON
// FeatureCollection. The returned dataset satisfies the model invariants, or
// the call fails with *MalformedDatasetError. Load has no side effects.
func Load(city CityKey, boroughDoc, geometryDoc []byte) (*CityDataset, error) {
	a, ok := adapters[city]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return a.load(boroughDoc, geometryDoc)
}

// OptionalCount is a count that may be absent from the source. Fractional
// values are rounded.
type OptionalCount struct {
	n   int
	set bool
}

// CountOf returns a present count.
func CountOf(n int) OptionalCount { return OptionalCount{n: n, set: true} }

// Value returns the count and whether it was present.
func (c OptionalCount) Value() (int, bool) { return c.n, c.set }

func (c *OptionalCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = OptionalCount{}
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("invalid count %s", b)
	}
	n, err := countFromNumber(num)
	if err != nil {
		return err
	}
	*c = OptionalCount{n: n, set: true}
	return nil
}

// London: {"boroughs":[{"name","score","totalCrimes","wards":[...]}]}

type londonDoc struct {
	Boroughs []londonBorough `json:"boroughs"`
}

type londonBorough struct {
	Name        string        `json:"name"`
	Score       Score         `json:"score"`
	TotalCrimes OptionalCount `json:"totalCrimes"`
	Wards       []londonWard  `json:"wards"`
}

type londonWard struct {
	Name        string        `json:"name"`
	TotalCrimes OptionalCount `json:"totalCrimes"`
	CrimeTypes  CrimeCounts   `json:"crimeTypes"`
}

func loadLondon(boroughDoc, geometryDoc []byte) (*CityDataset, error) {
	if len(bytes.TrimSpace(boroughDoc)) == 0 {
		return nil, malformedDoc(London, "boroughs", fmt.Errorf("empty document"))
	}
	var doc londonDoc
	if err := json.Unmarshal(boroughDoc, &doc); err != nil {
		return nil, malformedDoc(London, "boroughs", err)
	}

	d := newCityDataset(London)
	for i, rb := range doc.Boroughs {
		areas := make([]rawArea, len(rb.Wards))
		for j, w := range rb.Wards {
			areas[j] = rawArea{name: w.Name, total: w.TotalCrimes, types: w.CrimeTypes}
		}
		b, err := normalizeBorough(London, i, rb.Name, rb.Score, rb.TotalCrimes, areas)
		if err != nil {
			return nil, err
		}
		if err := d.add(b, i); err != nil {
			return nil, withSource(err, "boroughs")
		}
	}

	// Boundary files cover more than London; features for boroughs not in
	// the crime data are ignored.
	if len(bytes.TrimSpace(geometryDoc)) > 0 {
		fc, err := ParseFeatureCollection(geometryDoc)
		if err != nil {
			return nil, malformedDoc(London, "geometry", err)
		}
		for i, f := range fc.Features {
			b, ok := d.Borough(f.Properties.featureName())
			if !ok {
				continue
			}
			if err := attachGeometry(London, i, b, f); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// New York: {"boroughs":[{"borough","precincts":[{"precinct","total_crimes","crime_types"}]}]}
// plus a FeatureCollection with borough-level crime properties.

type nycDoc struct {
	Boroughs []nycBorough `json:"boroughs"`
}

type nycBorough struct {
	Borough     string        `json:"borough"`
	SafetyScore Score         `json:"safety_score"`
	TotalCrimes OptionalCount `json:"total_crimes"`
	Precincts   []nycPrecinct `json:"precincts"`
}

type nycPrecinct struct {
	Precinct    string        `json:"precinct"`
	TotalCrimes OptionalCount `json:"total_crimes"`
	CrimeTypes  CrimeCounts   `json:"crime_types"`
}

func loadNewYork(boroughDoc, geometryDoc []byte) (*CityDataset, error) {
	hasBoroughs := len(bytes.TrimSpace(boroughDoc)) > 0
	hasGeometry := len(bytes.TrimSpace(geometryDoc)) > 0
	if !hasBoroughs && !hasGeometry {
		return nil, malformedDoc(NewYork, "boroughs", fmt.Errorf("empty document"))
	}

	d := newCityDataset(NewYork)
	if hasBoroughs {
		var doc nycDoc
		if err := json.Unmarshal(boroughDoc, &doc); err != nil {
			return nil, malformedDoc(NewYork, "boroughs", err)
		}
		for i, rb := range doc.Boroughs {
			areas := make([]rawArea, len(rb.Precincts))
			for j, p := range rb.Precincts {
				areas[j] = rawArea{name: p.Precinct, total: p.TotalCrimes, types: p.CrimeTypes}
			}
			b, err := normalizeBorough(NewYork, i, rb.Borough, rb.SafetyScore, rb.TotalCrimes, areas)
			if err != nil {
				return nil, err
			}
			if err := d.add(b, i); err != nil {
				return nil, withSource(err, "boroughs")
			}
		}
	}

	if !hasGeometry {
		return d, nil
	}
	fc, err := ParseFeatureCollection(geometryDoc)
	if err != nil {
		return nil, malformedDoc(NewYork, "geometry", err)
	}
	seen := make(map[string]bool, len(fc.Features))
	for i, f := range fc.Features {
		p := f.Properties
		name := p.featureName()
		if name == "" {
			return nil, &MalformedDatasetError{City: NewYork, Source: "geometry", Position: i, AreaPosition: -1, Reason: "feature has no name"}
		}
		if seen[boroughKey(name)] {
			return nil, &MalformedDatasetError{City: NewYork, Source: "geometry", Borough: name, Position: i, AreaPosition: -1, Reason: "duplicate feature"}
		}
		seen[boroughKey(name)] = true

		b, ok := d.Borough(name)
		if !ok {
			b = &BoroughRecord{Name: name}
			if err := d.add(b, i); err != nil {
				return nil, withSource(err, "geometry")
			}
		}
		if p.SafetyScore.IsSet() {
			b.Score = p.SafetyScore
		}
		if p.SafetyLevel != "" {
			b.SafetyLevel = p.SafetyLevel
		}
		if n, ok := p.TotalCrimes.Value(); ok {
			if n < 0 {
				return nil, &MalformedDatasetError{City: NewYork, Source: "geometry", Borough: name, Position: i, AreaPosition: -1, Reason: "negative total_crimes"}
			}
			b.TotalCrimes = n
		}
		if len(p.CrimeBreakdown) > 0 {
			if msg := checkCounts(p.CrimeBreakdown); msg != "" {
				return nil, &MalformedDatasetError{City: NewYork, Source: "geometry", Borough: name, Position: i, AreaPosition: -1, Reason: msg}
			}
			b.Breakdown = p.CrimeBreakdown
		}
		if err := attachGeometry(NewYork, i, b, f); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// rawArea is the city-independent view of a source area record.
type rawArea struct {
	name  string
	total OptionalCount
	types CrimeCounts
}

// normalizeBorough validates one source borough and its areas. A missing
// borough total defaults to the sum of the areas' totals; a missing area
// total defaults to the sum of its crime types. A missing score stays unset.
func normalizeBorough(city CityKey, pos int, name string, score Score, total OptionalCount, areas []rawArea) (*BoroughRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &MalformedDatasetError{City: city, Source: "boroughs", Position: pos, AreaPosition: -1, Reason: "borough has no name"}
	}
	if total.set && total.n < 0 {
		return nil, &MalformedDatasetError{City: city, Source: "boroughs", Borough: name, Position: pos, AreaPosition: -1, Reason: "negative total crimes"}
	}

	b := &BoroughRecord{Name: name, Score: score, Areas: make([]AreaRecord, 0, len(areas))}
	seen := make(map[string]bool, len(areas))
	for j, ra := range areas {
		areaName := strings.TrimSpace(ra.name)
		fail := func(reason string) error {
			return &MalformedDatasetError{City: city, Source: "boroughs", Borough: name, Area: areaName, Position: pos, AreaPosition: j, Reason: reason}
		}
		// Unnamed areas are kept; the index skips them.
		if areaName != "" {
			key := toLower(areaName)
			if seen[key] {
				return nil, fail("duplicate area name")
			}
			seen[key] = true
		}
		if msg := checkCounts(ra.types); msg != "" {
			return nil, fail(msg)
		}
		a := AreaRecord{Name: areaName, CrimeTypes: ra.types}
		switch {
		case ra.total.set && ra.total.n < 0:
			return nil, fail("negative total crimes")
		case ra.total.set:
			a.TotalCrimes = ra.total.n
		default:
			a.TotalCrimes = ra.types.Sum()
		}
		b.Areas = append(b.Areas, a)
	}
	if total.set {
		b.TotalCrimes = total.n
	} else {
		b.TotalCrimes = b.AreaCrimeSum()
	}
	return b, nil
}

// checkCounts returns a reason when a breakdown has a negative count.
func checkCounts(cc CrimeCounts) string {
	for _, c := range cc {
		if c.Count < 0 {
			return fmt.Sprintf("negative count for %q", c.Label)
		}
	}
	return ""
}

func attachGeometry(city CityKey, pos int, b *BoroughRecord, f Feature) error {
	g, err := NewAreaGeometry(f.Geometry)
	if err != nil {
		return &MalformedDatasetError{City: city, Source: "geometry", Borough: b.Name, Position: pos, AreaPosition: -1, Err: err}
	}
	if g != nil {
		b.Geometry = g
	}
	return nil
}

func malformedDoc(city CityKey, source string, err error) error {
	return &MalformedDatasetError{City: city, Source: source, Position: -1, AreaPosition: -1, Reason: "unreadable document", Err: err}
}

func withSource(err error, source string) error {
	if me, ok := err.(*MalformedDatasetError); ok && me.Source == "" {
		me.Source = source
	}
	return err
}
