package safemap

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "gopkg.in/check.v1"
)

type DatasetSuite struct{}

var _ = Suite(&DatasetSuite{})

func (s *DatasetSuite) TestCrimeCountsKeepOrder(c *C) {
	var cc CrimeCounts
	err := json.Unmarshal([]byte(`{"ZEBRA": 1, "APPLE": 2.4, "MANGO": 3}`), &cc)
	c.Assert(err, IsNil)
	c.Assert(cc, DeepEquals, CrimeCounts{{"ZEBRA", 1}, {"APPLE", 2}, {"MANGO", 3}})
	c.Assert(cc.Sum(), Equals, 6)

	out, err := json.Marshal(cc)
	c.Assert(err, IsNil)
	c.Assert(string(out), Equals, `{"ZEBRA":1,"APPLE":2,"MANGO":3}`)
}

func (s *DatasetSuite) TestCrimeCountsRepeatedLabelKeepsLastValue(c *C) {
	var cc CrimeCounts
	err := json.Unmarshal([]byte(`{"THEFT": 1, "ARSON": 4, "THEFT": 2}`), &cc)
	c.Assert(err, IsNil)
	c.Assert(cc, DeepEquals, CrimeCounts{{"THEFT", 2}, {"ARSON", 4}})
	c.Assert(cc.Sum(), Equals, 6)
}

func (s *DatasetSuite) TestCrimeCountsRejectHugeValues(c *C) {
	var cc CrimeCounts
	c.Assert(json.Unmarshal([]byte(`{"THEFT": 1e20}`), &cc), ErrorMatches, `.*out of range`)
	c.Assert(json.Unmarshal([]byte(`{"THEFT": 1000000001}`), &cc), ErrorMatches, `.*out of range`)
	c.Assert(json.Unmarshal([]byte(`{"THEFT": 1000000000}`), &cc), IsNil)
	c.Assert(cc.Sum(), Equals, MaxCount)
}

func (s *DatasetSuite) TestCrimeCountsNullAndErrors(c *C) {
	var cc CrimeCounts
	c.Assert(json.Unmarshal([]byte(`null`), &cc), IsNil)
	c.Assert(cc, IsNil)

	c.Assert(json.Unmarshal([]byte(`[1,2]`), &cc), NotNil)
	c.Assert(json.Unmarshal([]byte(`{"A": "many"}`), &cc), NotNil)
}

func (s *DatasetSuite) TestParseCityKey(c *C) {
	for in, want := range map[string]CityKey{"London": London, " nyc ": NewYork, "New York": NewYork} {
		got, err := ParseCityKey(in)
		c.Assert(err, IsNil)
		c.Assert(got, Equals, want)
	}
	_, err := ParseCityKey("paris")
	c.Assert(errors.Is(err, ErrUnknownCity), Equals, true)
}

func (s *DatasetSuite) TestBoroughLookupIsCaseInsensitive(c *C) {
	d := newCityDataset(London)
	b := &BoroughRecord{Name: "Tower Hamlets", Areas: []AreaRecord{{Name: "Poplar", TotalCrimes: 4}}}
	c.Assert(d.add(b, 0), IsNil)

	got, ok := d.Borough("  tower hamlets")
	c.Assert(ok, Equals, true)
	c.Assert(got, Equals, b)
	c.Assert(d.Owns(got), Equals, true)
	c.Assert(d.Owns(&BoroughRecord{Name: "Tower Hamlets"}), Equals, false)

	a, ok := b.Area("POPLAR")
	c.Assert(ok, Equals, true)
	c.Assert(a.TotalCrimes, Equals, 4)
}

func (s *DatasetSuite) TestDuplicateBorough(c *C) {
	d := newCityDataset(London)
	c.Assert(d.add(&BoroughRecord{Name: "Camden"}, 0), IsNil)
	err := d.add(&BoroughRecord{Name: "CAMDEN"}, 3)
	var me *MalformedDatasetError
	c.Assert(errors.As(err, &me), Equals, true)
	c.Assert(me.Position, Equals, 3)
	c.Assert(me.AreaPosition, Equals, -1)
}

func TestMalformedDatasetErrorMessage(t *testing.T) {
	err := &MalformedDatasetError{
		City: London, Source: "boroughs", Borough: "Camden", Area: "Kentish Town",
		Position: 2, AreaPosition: 1, Reason: "duplicate area name",
	}
	want := `safemap: malformed london dataset (boroughs): record 2 borough "Camden" area 1 "Kentish Town": duplicate area name`
	if got := err.Error(); got != want {
		t.Errorf("Error() =\n%s\nwant\n%s", got, want)
	}

	wrapped := &MalformedDatasetError{City: NewYork, Position: -1, AreaPosition: -1, Err: errors.New("eof")}
	if !strings.HasSuffix(wrapped.Error(), ": eof") || errors.Unwrap(wrapped) == nil {
		t.Errorf("wrapped error = %q", wrapped.Error())
	}
}
