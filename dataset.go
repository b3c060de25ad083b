package safemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// CityKey identifies a supported city. It selects the schema adapter and the
// area-type label.
type CityKey string

const (
	London  CityKey = "london"
	NewYork CityKey = "nyc"
)

// ErrUnknownCity is returned for a CityKey without a registered adapter.
var ErrUnknownCity = errors.New("safemap: unknown city")

// ParseCityKey accepts the canonical keys plus a few common spellings.
func ParseCityKey(s string) (CityKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "london", "ldn":
		return London, nil
	case "nyc", "newyork", "new-york", "new york", "ny":
		return NewYork, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCity, s)
}

// CrimeCount is one raw crime-type label and its count.
type CrimeCount struct {
	Label string
	Count int
}

// CrimeCounts is a crime-type breakdown in source order. It decodes from a
// JSON object and keeps the key order of the document, which aggregation
// relies on for first-seen tie-breaks.
type CrimeCounts []CrimeCount

// Sum returns the total of all counts.
func (cc CrimeCounts) Sum() int {
	n := 0
	for _, c := range cc {
		n += c.Count
	}
	return n
}

// UnmarshalJSON decodes {"LABEL": count, ...} preserving key order. Null
// decodes to an empty breakdown.
func (cc *CrimeCounts) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*cc = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("crime breakdown: expected object, got %v", tok)
	}
	var out CrimeCounts
	seen := make(map[string]int)
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := kt.(string)
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("crime breakdown %q: %w", label, err)
		}
		count, err := countFromNumber(n)
		if err != nil {
			return fmt.Errorf("crime breakdown %q: %w", label, err)
		}
		// A repeated label keeps its first position and its last value.
		if i, dup := seen[label]; dup {
			out[i].Count = count
			continue
		}
		seen[label] = len(out)
		out = append(out, CrimeCount{Label: label, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*cc = out
	return nil
}

// MarshalJSON encodes the breakdown as an object in stored order.
func (cc CrimeCounts) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range cc {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		fmt.Fprintf(&b, ":%d", c.Count)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// MaxCount bounds crime counts and totals. Larger values are rejected
// rather than overflowing int.
const MaxCount = 1_000_000_000

func countFromNumber(n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	if i, err := n.Int64(); err == nil {
		if i > MaxCount || i < -MaxCount {
			return 0, fmt.Errorf("count %s out of range", n.String())
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if math.IsInf(f, 0) || math.Abs(f) > MaxCount {
		return 0, fmt.Errorf("count %s out of range", n.String())
	}
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid count %q", n.String())
	}
	return int(math.Round(f)), nil
}

// AreaRecord is a ward or precinct. TotalCrimes is authoritative for display
// even when it disagrees with the sum of CrimeTypes.
type AreaRecord struct {
	Name        string      `json:"name"`
	TotalCrimes int         `json:"totalCrimes"`
	CrimeTypes  CrimeCounts `json:"crimeTypes,omitempty"`
}

// BoroughRecord is a top-level administrative area. It exclusively owns its
// areas, kept in source order.
type BoroughRecord struct {
	Name        string        `json:"name"`
	Score       Score         `json:"score"`
	SafetyLevel string        `json:"safetyLevel,omitempty"`
	TotalCrimes int           `json:"totalCrimes"`
	Areas       []AreaRecord  `json:"areas,omitempty"`
	Breakdown   CrimeCounts   `json:"breakdown,omitempty"` // flat breakdown from geometry features
	Geometry    *AreaGeometry `json:"-"`
}

// Key returns the lookup key for the borough.
func (b *BoroughRecord) Key() string { return boroughKey(b.Name) }

// Area returns the named area, matched case-insensitively.
func (b *BoroughRecord) Area(name string) (AreaRecord, bool) {
	for _, a := range b.Areas {
		if strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(name)) {
			return a, true
		}
	}
	return AreaRecord{}, false
}

// AreaCrimeSum returns the sum of the areas' declared totals.
func (b *BoroughRecord) AreaCrimeSum() int {
	n := 0
	for _, a := range b.Areas {
		n += a.TotalCrimes
	}
	return n
}

// CityDataset is the normalized data for exactly one city. It is built whole
// by Load and never merged into; a city switch replaces it.
type CityDataset struct {
	City     CityKey
	boroughs map[string]*BoroughRecord // upper-cased name -> record
	order    []*BoroughRecord          // source order
}

func newCityDataset(city CityKey) *CityDataset {
	return &CityDataset{City: city, boroughs: make(map[string]*BoroughRecord)}
}

// boroughKey normalizes a borough name for lookup.
func boroughKey(name string) string {
	return toUpper(strings.TrimSpace(name))
}

// Borough returns the named borough, matched case-insensitively.
func (d *CityDataset) Borough(name string) (*BoroughRecord, bool) {
	if d == nil {
		return nil, false
	}
	b, ok := d.boroughs[boroughKey(name)]
	return b, ok
}

// Boroughs returns the boroughs in source order. The slice is a copy; the
// records are shared and must not be mutated.
func (d *CityDataset) Boroughs() []*BoroughRecord {
	if d == nil {
		return nil
	}
	out := make([]*BoroughRecord, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of boroughs.
func (d *CityDataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Owns reports whether b is a record of this dataset (pointer identity, not
// name equality).
func (d *CityDataset) Owns(b *BoroughRecord) bool {
	if d == nil || b == nil {
		return false
	}
	cur, ok := d.boroughs[b.Key()]
	return ok && cur == b
}

// AreaLabel returns the area-type label for the dataset's city.
func (d *CityDataset) AreaLabel() string {
	if a, ok := adapters[d.City]; ok {
		return a.areaLabel
	}
	return "Area"
}

// add inserts a borough, failing on a duplicate name.
func (d *CityDataset) add(b *BoroughRecord, pos int) error {
	key := b.Key()
	if _, dup := d.boroughs[key]; dup {
		return &MalformedDatasetError{City: d.City, Borough: b.Name, Position: pos, AreaPosition: -1, Reason: "duplicate borough name"}
	}
	d.boroughs[key] = b
	d.order = append(d.order, b)
	return nil
}

// MalformedDatasetError reports a source record that breaks the dataset
// invariants. Position is the zero-based index of the record in its source
// list; AreaPosition is set for area-level problems and -1 otherwise.
type MalformedDatasetError struct {
	City         CityKey
	Source       string // "boroughs" or "geometry"
	Borough      string
	Area         string
	Position     int
	AreaPosition int
	Reason       string
	Err          error
}

func (e *MalformedDatasetError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "safemap: malformed %s dataset", e.City)
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	fmt.Fprintf(&b, ": record %d", e.Position)
	if e.Borough != "" {
		fmt.Fprintf(&b, " borough %q", e.Borough)
	}
	if e.AreaPosition >= 0 {
		fmt.Fprintf(&b, " area %d", e.AreaPosition)
		if e.Area != "" {
			fmt.Fprintf(&b, " %q", e.Area)
		}
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedDatasetError) Unwrap() error { return e.Err }

// toUpper converts a string to uppercase. Borough names include non-ASCII
// characters, so this must stay Unicode-aware.
func toUpper(s string) string {
	return strings.ToUpper(s)
}

// toLower is the lower-case counterpart of toUpper.
func toLower(s string) string {
	return strings.ToLower(s)
}
