package safemap

import (
	"testing"

	. "gopkg.in/check.v1"
)

type AggregateSuite struct{}

var _ = Suite(&AggregateSuite{})

func (s *AggregateSuite) TestSpellingVariantsShareABucket(c *C) {
	b := &BoroughRecord{Name: "B", Areas: []AreaRecord{
		{Name: "A1", CrimeTypes: CrimeCounts{{"VEHICLE OFFENCES", 3}}},
		{Name: "A2", CrimeTypes: CrimeCounts{{"VEHICLEOFFENCES", 2}}},
	}}
	sum := Aggregate(b, nil)
	c.Assert(sum.Totals, HasLen, 1)
	n, ok := sum.Count("vehicle")
	c.Assert(ok, Equals, true)
	c.Assert(n, Equals, 5)
	c.Assert(sum.TopType.Key, Equals, "vehicle")
	c.Assert(sum.Total, Equals, 5)
	c.Assert(sum.HasTop(), Equals, true)
}

func (s *AggregateSuite) TestTiesGoToFirstSeen(c *C) {
	a := AreaRecord{Name: "A", CrimeTypes: CrimeCounts{{"ROBBERY", 4}, {"BURGLARY", 4}, {"THEFT", 1}}}
	c.Assert(Aggregate(a, nil).TopType.Key, Equals, "robbery")

	a.CrimeTypes = CrimeCounts{{"BURGLARY", 4}, {"ROBBERY", 4}}
	c.Assert(Aggregate(a, nil).TopType.Key, Equals, "burglary")
}

func (s *AggregateSuite) TestNoCrimes(c *C) {
	sum := Aggregate(&BoroughRecord{Name: "Empty"}, nil)
	c.Assert(sum.Totals, HasLen, 0)
	c.Assert(sum.TopType, Equals, NotAvailable)
	c.Assert(sum.HasTop(), Equals, false)

	zero := Aggregate(AreaRecord{CrimeTypes: CrimeCounts{{"THEFT", 0}}}, nil)
	c.Assert(zero.Totals, HasLen, 1)
	c.Assert(zero.HasTop(), Equals, false)
}

func (s *AggregateSuite) TestFlatBreakdownWins(c *C) {
	b := &BoroughRecord{
		Name:      "Brooklyn",
		Breakdown: CrimeCounts{{"ROBBERY", 10}},
		Areas:     []AreaRecord{{Name: "Precinct 75", CrimeTypes: CrimeCounts{{"BURGLARY", 99}}}},
	}
	sum := Aggregate(b, nil)
	c.Assert(sum.Totals, HasLen, 1)
	c.Assert(sum.TopType.Key, Equals, "robbery")
}

func (s *AggregateSuite) TestDecorate(c *C) {
	sum := Aggregate(AreaRecord{CrimeTypes: CrimeCounts{{"SEX CRIMES", 1}, {"Dog fouling", 2}}}, nil)
	dec, err := sum.Decorate(StandardPalette)
	c.Assert(err, IsNil)
	c.Assert(dec.Totals[0].Color, Equals, StandardPalette[9])
	c.Assert(dec.Totals[1].Color, Equals, StandardPalette[otherSlot])
	c.Assert(sum.Totals[0].Color, Equals, "")

	_, err = sum.Decorate(nil)
	c.Assert(err, NotNil)
}

func TestAggregateCustomCanonicalizer(t *testing.T) {
	cz := NewCanonicalizer([]CrimeTypeRule{{Key: "all", Label: "All", Keywords: []string{"E"}, Slot: 5}})
	a := AreaRecord{CrimeTypes: CrimeCounts{{"THEFT", 1}, {"ROBBERY", 2}, {"ARSON", 3}}}
	sum := Aggregate(a, cz)
	if n, _ := sum.Count("all"); n != 3 {
		t.Errorf("all = %d, want 3", n)
	}
	if len(sum.Totals) != 2 || sum.TopType.Key != "all" {
		t.Errorf("unexpected summary: %+v", sum)
	}
}
