package safemap

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// MaxResults caps the number of entries Query returns.
const MaxResults = 8

// candidate is a matching entry with its ranking inputs.
type candidate struct {
	pos    int // position in the index, the final tie-break
	prefix bool
}

// Query answers free text against an index. The query is trimmed and
// lower-cased; an entry matches when the query is a substring of its search
// key or of any alias key. Matches are ranked by:
//
//  1. prefix matches (on the key or any alias) before plain substrings
//  2. boroughs before areas
//  3. display name, ascending, with English collation
//
// and truncated to MaxResults after ranking. Blank input yields nil, which
// callers treat as "no query" rather than "no results". Query is a pure
// function of its arguments and never fails.
func Query(index []SearchEntry, text string) []SearchEntry {
	q := normalizeQuery(text)
	if q == "" {
		return nil
	}

	var cands []candidate
	for i := range index {
		if ok, prefix := matchEntry(&index[i], q); ok {
			cands = append(cands, candidate{pos: i, prefix: prefix})
		}
	}
	if len(cands) == 0 {
		return []SearchEntry{}
	}

	// Collators keep internal buffers; one per call keeps Query safe for
	// concurrent readers.
	col := collate.New(language.English, collate.Loose)
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.prefix != b.prefix {
			return a.prefix
		}
		ea, eb := &index[a.pos], &index[b.pos]
		if ea.IsBorough() != eb.IsBorough() {
			return ea.IsBorough()
		}
		if c := col.CompareString(ea.DisplayName, eb.DisplayName); c != 0 {
			return c < 0
		}
		return a.pos < b.pos
	})

	if len(cands) > MaxResults {
		cands = cands[:MaxResults]
	}
	out := make([]SearchEntry, len(cands))
	for i, c := range cands {
		out[i] = index[c.pos]
	}
	return out
}

// normalizeQuery trims and lower-cases the raw query.
func normalizeQuery(text string) string {
	return toLower(strings.TrimSpace(text))
}

// matchEntry reports whether q matches the entry and whether any match is a
// prefix match.
func matchEntry(e *SearchEntry, q string) (matched, prefix bool) {
	if strings.HasPrefix(e.SearchKey, q) {
		return true, true
	}
	matched = strings.Contains(e.SearchKey, q)
	for _, alias := range e.AliasKeys {
		if strings.HasPrefix(alias, q) {
			return true, true
		}
		if !matched && strings.Contains(alias, q) {
			matched = true
		}
	}
	return matched, false
}
