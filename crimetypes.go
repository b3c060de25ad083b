package safemap

import (
	"strings"
	"unicode"
)

// CrimeTypeRule maps raw crime-type labels to a canonical label. A raw label
// matches when its compacted form (upper case, letters and digits only)
// contains any of the compacted keywords.
//
// The rule list is a heuristic over the labels seen in the London and NYPD
// sources, not a controlled vocabulary. Unseen labels may land in the wrong
// bucket or fall through to Other.
type CrimeTypeRule struct {
	Key      string   // stable bucket key, e.g. "vehicle"
	Label    string   // display label
	Keywords []string // matched against the compacted raw label
	Slot     int      // palette slot (0-9) used for color decoration
}

// DefaultCrimeTypeRules are evaluated in order; the first match wins, so
// "GRAND LARCENY OF MOTOR VEHICLE" is a vehicle offence, not a theft.
var DefaultCrimeTypeRules = []CrimeTypeRule{
	{Key: "vehicle", Label: "Vehicle Offences", Keywords: []string{"VEHICLE", "MOTOR"}, Slot: 4},
	// police.uk publishes "Violence and sexual offences" as one category.
	{Key: "violence", Label: "Violence", Keywords: []string{"VIOLENCEANDSEXUAL"}, Slot: 8},
	{Key: "sexual", Label: "Sexual Offences", Keywords: []string{"SEX", "RAPE"}, Slot: 9},
	{Key: "violence", Label: "Violence", Keywords: []string{"VIOLENCE", "ASSAULT", "MURDER", "HOMICIDE", "MANSLAUGHTER", "HARASS", "HARRASS"}, Slot: 8},
	{Key: "robbery", Label: "Robbery", Keywords: []string{"ROBBERY"}, Slot: 7},
	{Key: "weapons", Label: "Weapons", Keywords: []string{"WEAPON", "FIREARM"}, Slot: 6},
	{Key: "burglary", Label: "Burglary", Keywords: []string{"BURGLARY"}, Slot: 5},
	{Key: "theft", Label: "Theft", Keywords: []string{"THEFT", "LARCENY", "SHOPLIFT", "STOLEN"}, Slot: 3},
	{Key: "drugs", Label: "Drug Offences", Keywords: []string{"DRUG", "NARCOTIC"}, Slot: 2},
	{Key: "damage", Label: "Criminal Damage & Arson", Keywords: []string{"DAMAGE", "ARSON", "MISCHIEF"}, Slot: 1},
	{Key: "public-order", Label: "Public Order", Keywords: []string{"PUBLICORDER", "PUBORD", "DISORDER"}, Slot: 1},
}

// OtherBucket is the bucket key for labels no rule matches.
const OtherBucket = "other"

// otherSlot is the palette slot for OtherBucket.
const otherSlot = 0

// CrimeType is the canonical form of a raw label.
type CrimeType struct {
	Key    string // aggregation key; equal keys aggregate together
	Label  string // display label
	Bucket string // color bucket; a rule key or OtherBucket
	Slot   int    // palette slot for Bucket
}

// Canonicalizer normalizes raw crime-type labels. Safe for concurrent use.
type Canonicalizer struct {
	rules []CrimeTypeRule
}

// NewCanonicalizer returns a canonicalizer over the given rules, in order.
// Keywords are compacted once here.
func NewCanonicalizer(rules []CrimeTypeRule) *Canonicalizer {
	cp := make([]CrimeTypeRule, len(rules))
	for i, r := range rules {
		kw := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = compactLabel(k); k != "" {
				kw = append(kw, k)
			}
		}
		r.Keywords = kw
		if r.Slot < 0 || r.Slot >= MaxScore {
			r.Slot = otherSlot
		}
		cp[i] = r
	}
	return &Canonicalizer{rules: cp}
}

var defaultCanonicalizer = NewCanonicalizer(DefaultCrimeTypeRules)

// DefaultCanonicalizer returns the canonicalizer over DefaultCrimeTypeRules.
func DefaultCanonicalizer() *Canonicalizer { return defaultCanonicalizer }

// Canonicalize maps a raw label to its canonical type. Labels matching no
// rule keep their own identity (so "Dog Fouling" and "DOG  FOULING"
// aggregate together) but share the Other color bucket.
func (c *Canonicalizer) Canonicalize(raw string) CrimeType {
	compact := compactLabel(raw)
	if compact == "" {
		return CrimeType{Key: OtherBucket, Label: "Other", Bucket: OtherBucket, Slot: otherSlot}
	}
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(compact, kw) {
				return CrimeType{Key: r.Key, Label: r.Label, Bucket: r.Key, Slot: r.Slot}
			}
		}
	}
	return CrimeType{
		Key:    OtherBucket + ":" + strings.ToLower(compact),
		Label:  titleLabel(raw),
		Bucket: OtherBucket,
		Slot:   otherSlot,
	}
}

// compactLabel upper-cases s and drops everything but letters and digits,
// so "Vehicle Offences", "VEHICLE OFFENCES" and "VEHICLEOFFENCES" compare
// equal.
func compactLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// titleLabel collapses whitespace and title-cases each word.
func titleLabel(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		rs := []rune(strings.ToLower(w))
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
