package safemap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is an optional safety score. The zero value is unset, which is
// distinct from ScoreOf(0): zero is a valid (very safe) score.
type Score struct {
	value int
	set   bool
}

// Unscored is the unset score.
var Unscored = Score{}

// ScoreOf returns a set score with value n.
func ScoreOf(n int) Score {
	return Score{value: n, set: true}
}

// Value returns the score and whether it is set.
func (s Score) Value() (int, bool) { return s.value, s.set }

// IsSet reports whether the score carries a value.
func (s Score) IsSet() bool { return s.set }

// String returns the score as a decimal, or "N/A" when unset.
func (s Score) String() string {
	if !s.set {
		return "N/A"
	}
	return strconv.Itoa(s.value)
}

// MarshalJSON encodes an unset score as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.value)), nil
}

// UnmarshalJSON accepts null, a JSON number or a numeric string. Non-integer
// numbers are rounded to the nearest integer.
func (s *Score) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = Unscored
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
		if raw == "" {
			*s = Unscored
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid score %s", b)
	}
	// Bounded before converting so huge scores clamp instead of overflowing.
	f = math.Max(-MaxCount, math.Min(MaxCount, f))
	*s = ScoreOf(int(math.Round(f)))
	return nil
}

// SafetyCategory buckets a score for display.
type SafetyCategory int

const (
	VerySafe SafetyCategory = iota
	Safe
	Moderate
	Caution
	HighRisk
)

func (c SafetyCategory) String() string {
	switch c {
	case VerySafe:
		return "Very Safe"
	case Safe:
		return "Safe"
	case Moderate:
		return "Moderate"
	case Caution:
		return "Caution"
	case HighRisk:
		return "High Risk"
	}
	return "Unknown"
}

// MarshalText lets categories appear by name in JSON output.
func (c SafetyCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Score bounds. Values outside are clamped rather than rejected.
const (
	MinScore = 1
	MaxScore = 10
)

// UnscoredEntityError is returned when a category or color is requested for
// an entity without a score. Callers display "N/A" instead.
type UnscoredEntityError struct {
	Name string
}

func (e *UnscoredEntityError) Error() string {
	if e.Name == "" {
		return "safemap: entity has no safety score"
	}
	return fmt.Sprintf("safemap: %q has no safety score", e.Name)
}

// ErrInvalidPalette is returned for palettes without exactly ten slots.
var ErrInvalidPalette = errors.New("safemap: palette must have 10 colors")

// Palette is an ordered list of ten color tokens: index 0 is score 1 and
// index 9 is score 10.
type Palette []string

// StandardPalette runs from green (safe) to red (high risk).
var StandardPalette = Palette{
	"#1a9850", "#66bd63", "#a6d96a", "#d9ef8b", "#ffffbf",
	"#fee08b", "#fdae61", "#f46d43", "#d73027", "#a50026",
}

// AccessiblePalette is a blue/orange ramp distinguishable with common color
// vision deficiencies.
var AccessiblePalette = Palette{
	"#08306b", "#08519c", "#2171b5", "#4292c6", "#6baed6",
	"#fdd0a2", "#fdae6b", "#fd8d3c", "#e6550d", "#a63603",
}

// Validate checks the slot count.
func (p Palette) Validate() error {
	if len(p) != MaxScore {
		return fmt.Errorf("%w: got %d", ErrInvalidPalette, len(p))
	}
	return nil
}

// clamp limits n to [MinScore, MaxScore].
func clamp(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}

// CategoryFor maps a score to its category. Boundaries are inclusive upper
// bounds: <=3 VerySafe, <=5 Safe, <=7 Moderate, <=8 Caution, else HighRisk.
func CategoryFor(s Score) (SafetyCategory, error) {
	n, ok := s.Value()
	if !ok {
		return 0, &UnscoredEntityError{}
	}
	switch n = clamp(n); {
	case n <= 3:
		return VerySafe, nil
	case n <= 5:
		return Safe, nil
	case n <= 7:
		return Moderate, nil
	case n <= 8:
		return Caution, nil
	}
	return HighRisk, nil
}

// ColorFor looks up the palette color for a score. The palette is owned by
// the caller.
func ColorFor(s Score, p Palette) (string, error) {
	n, ok := s.Value()
	if !ok {
		return "", &UnscoredEntityError{}
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p[clamp(n)-1], nil
}

// LevelFor returns the legend label used on the map: Low, Moderate, High or
// Very High. Unset scores yield "N/A".
func LevelFor(s Score) string {
	n, ok := s.Value()
	if !ok {
		return "N/A"
	}
	switch {
	case n <= 3:
		return "Low"
	case n <= 6:
		return "Moderate"
	case n <= 8:
		return "High"
	}
	return "Very High"
}

// categoryFor is CategoryFor with the entity name attached to the error.
func categoryFor(name string, s Score) (SafetyCategory, error) {
	c, err := CategoryFor(s)
	var ue *UnscoredEntityError
	if errors.As(err, &ue) {
		ue.Name = name
	}
	return c, err
}
