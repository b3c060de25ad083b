package safemap

// CrimeSource is anything crime types can be aggregated over: a borough or a
// single area.
type CrimeSource interface {
	// FlatBreakdown returns a breakdown carried directly on the record, if
	// any.
	FlatBreakdown() (CrimeCounts, bool)
	// SubAreas returns the areas to sum when there is no flat breakdown.
	SubAreas() []AreaRecord
}

// FlatBreakdown returns the geometry-sourced breakdown when present.
func (b *BoroughRecord) FlatBreakdown() (CrimeCounts, bool) {
	return b.Breakdown, len(b.Breakdown) > 0
}

// SubAreas returns the borough's areas.
func (b *BoroughRecord) SubAreas() []AreaRecord { return b.Areas }

// FlatBreakdown returns the area's own crime types.
func (a AreaRecord) FlatBreakdown() (CrimeCounts, bool) { return a.CrimeTypes, true }

// SubAreas returns nil; areas have no children.
func (a AreaRecord) SubAreas() []AreaRecord { return nil }

// NotAvailable is the TopType of a summary with no counted crimes.
var NotAvailable = CrimeType{Key: "n/a", Label: "N/A", Bucket: OtherBucket, Slot: otherSlot}

// CrimeTotal is the aggregated count of one canonical type.
type CrimeTotal struct {
	Type  CrimeType `json:"type"`
	Count int       `json:"count"`
	Color string    `json:"color,omitempty"`
}

// CrimeSummary is the result of Aggregate. Totals are in first-seen order.
type CrimeSummary struct {
	Totals  []CrimeTotal `json:"totals"`
	TopType CrimeType    `json:"topType"`
	Total   int          `json:"total"` // sum of Totals, not the declared total
}

// HasTop reports whether TopType is a real type rather than NotAvailable.
func (s CrimeSummary) HasTop() bool { return s.TopType != NotAvailable }

// Count returns the aggregated count for a canonical key.
func (s CrimeSummary) Count(key string) (int, bool) {
	for _, t := range s.Totals {
		if t.Type.Key == key {
			return t.Count, true
		}
	}
	return 0, false
}

// Decorate returns a copy of the summary with each total colored from the
// caller's palette by its bucket slot.
func (s CrimeSummary) Decorate(p Palette) (CrimeSummary, error) {
	if err := p.Validate(); err != nil {
		return s, err
	}
	out := s
	out.Totals = make([]CrimeTotal, len(s.Totals))
	for i, t := range s.Totals {
		t.Color = p[t.Type.Slot]
		out.Totals[i] = t
	}
	return out, nil
}

// Aggregate rolls crime-type counts up under canonical types. A flat
// breakdown on the record is used as is; otherwise the areas' crime types
// are summed. Labels that canonicalize to the same key share one total.
//
// TopType is the type with the highest count. Ties go to the type seen
// first during aggregation; totals are never re-sorted by name. With no
// positive counts TopType is NotAvailable. Aggregate never fails.
func Aggregate(src CrimeSource, c *Canonicalizer) CrimeSummary {
	if c == nil {
		c = defaultCanonicalizer
	}
	var agg aggregator
	if flat, ok := src.FlatBreakdown(); ok {
		agg.addAll(c, flat)
	} else {
		for _, a := range src.SubAreas() {
			agg.addAll(c, a.CrimeTypes)
		}
	}
	return agg.summary()
}

// aggregator accumulates totals keyed by canonical type in first-seen order.
type aggregator struct {
	index  map[string]int
	totals []CrimeTotal
}

func (a *aggregator) addAll(c *Canonicalizer, cc CrimeCounts) {
	for _, cnt := range cc {
		a.add(c.Canonicalize(cnt.Label), cnt.Count)
	}
}

func (a *aggregator) add(t CrimeType, n int) {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	if i, ok := a.index[t.Key]; ok {
		a.totals[i].Count += n
		return
	}
	a.index[t.Key] = len(a.totals)
	a.totals = append(a.totals, CrimeTotal{Type: t, Count: n})
}

func (a *aggregator) summary() CrimeSummary {
	s := CrimeSummary{Totals: a.totals, TopType: NotAvailable}
	best := 0
	for _, t := range a.totals {
		s.Total += t.Count
		// Strictly greater keeps the first-seen type on ties.
		if t.Count > best {
			best = t.Count
			s.TopType = t.Type
		}
	}
	return s
}
