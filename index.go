package safemap

import (
	"regexp"
	"strconv"
	"strings"
)

// KindBorough is the SearchEntry kind for boroughs. Area entries use the
// lower-cased area label ("ward", "precinct").
const KindBorough = "borough"

// SearchEntry is one queryable borough or area. Entries are derived from a
// CityDataset and never mutated after BuildIndex returns.
type SearchEntry struct {
	Kind         string         `json:"kind"`
	DisplayName  string         `json:"displayName"`
	SearchKey    string         `json:"-"`
	AliasKeys    []string       `json:"aliases,omitempty"`
	OwnerBorough string         `json:"borough,omitempty"` // set for area entries only
	SortScore    Score          `json:"score"`             // owning borough's score, display only
	Borough      *BoroughRecord `json:"-"`
}

// IsBorough reports whether the entry is a borough rather than an area.
func (e SearchEntry) IsBorough() bool { return e.Kind == KindBorough }

// IndexReport describes a build. Skipped lists the positions of records
// with a blank name, as "BOROUGH/area#N" or "borough#N", so the caller can
// log a data-quality warning.
type IndexReport struct {
	Entries int
	Aliased int
	Skipped []string
}

// BuildIndex derives the search entries for a dataset: every borough in
// dataset order, then every area in borough order and area order. The build
// is pure; the same dataset always yields the same entries in the same
// order.
func BuildIndex(d *CityDataset, areaLabel string) []SearchEntry {
	entries, _ := BuildIndexReport(d, areaLabel)
	return entries
}

// BuildIndexReport is BuildIndex plus a report of skipped records.
func BuildIndexReport(d *CityDataset, areaLabel string) ([]SearchEntry, IndexReport) {
	var rep IndexReport
	if d == nil {
		return nil, rep
	}
	areaLabel = strings.TrimSpace(areaLabel)
	areaKind := toLower(areaLabel)
	if areaKind == "" {
		areaKind = "area"
	}
	aliasRe := aliasPattern(areaLabel)

	boroughs := d.order
	entries := make([]SearchEntry, 0, len(boroughs))
	for i, b := range boroughs {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			rep.Skipped = append(rep.Skipped, "borough#"+strconv.Itoa(i))
			continue
		}
		entries = append(entries, SearchEntry{
			Kind:        KindBorough,
			DisplayName: name,
			SearchKey:   toLower(name),
			SortScore:   b.Score,
			Borough:     b,
		})
	}
	for _, b := range boroughs {
		for j, a := range b.Areas {
			name := strings.TrimSpace(a.Name)
			if name == "" {
				rep.Skipped = append(rep.Skipped, b.Name+"/"+areaKind+"#"+strconv.Itoa(j))
				continue
			}
			e := SearchEntry{
				Kind:         areaKind,
				DisplayName:  name,
				SearchKey:    toLower(name),
				AliasKeys:    areaAliases(aliasRe, areaKind, name),
				OwnerBorough: b.Name,
				SortScore:    b.Score,
				Borough:      b,
			}
			if len(e.AliasKeys) > 0 {
				rep.Aliased++
			}
			entries = append(entries, e)
		}
	}
	rep.Entries = len(entries)
	return entries, rep
}

// aliasPattern matches "<label> <token>" case-insensitively. A blank label
// never matches.
func aliasPattern(label string) *regexp.Regexp {
	if label == "" {
		return nil
	}
	return regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(label) + `\s+(\S+)$`)
}

// areaAliases derives the alias keys for an area named "<label> <token>":
// the bare token, "pct <token>" and "<label> <token>", all lower case.
// Names that don't match get no aliases.
func areaAliases(re *regexp.Regexp, areaKind, name string) []string {
	if re == nil {
		return nil
	}
	m := re.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	token := toLower(m[1])
	candidates := []string{token, "pct " + token, areaKind + " " + token}
	aliases := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			aliases = append(aliases, c)
		}
	}
	return aliases
}
