package safemap

import (
	"errors"
	"testing"

	. "gopkg.in/check.v1"
)

type DetailSuite struct {
	d *CityDataset
}

var _ = Suite(&DetailSuite{})

func (s *DetailSuite) SetUpSuite(c *C) {
	var err error
	s.d, err = Load(London, []byte(londonFixture), []byte(londonGeometryFixture))
	c.Assert(err, IsNil)
}

func (s *DetailSuite) TestScoredBorough(c *C) {
	b, _ := s.d.Borough("Greenwich")
	d, err := Detail(b, "Ward", StandardPalette, nil)
	c.Assert(err, IsNil)
	c.Assert(d.Category, Equals, "Moderate")
	c.Assert(d.Color, Equals, StandardPalette[5])
	c.Assert(d.Level, Equals, "Moderate")
	c.Assert(d.TotalCrimes, Equals, 100)
	c.Assert(d.TotalsDisagree, Equals, true)
	c.Assert(d.Description, Equals, "GREENWICH: 100 crimes reported (Safety Score: 6/10 - Moderate)")
	c.Assert(d.Crimes.TopType.Label, Equals, "Vehicle Offences")
	c.Assert(d.Crimes.Totals[0].Color, Equals, StandardPalette[4])
	c.Assert(d.Areas, HasLen, 2)
	c.Assert(d.Areas[0].TopCrime, Equals, "Vehicle Offences")
	c.Assert(d.Centroid, HasLen, 2)
	c.Assert(d.Geohash, Not(Equals), "")
}

func (s *DetailSuite) TestUnscoredBorough(c *C) {
	b, _ := s.d.Borough("Unscored")
	d, err := Detail(b, "Ward", AccessiblePalette, nil)
	c.Assert(err, IsNil)
	c.Assert(d.Category, Equals, NotAvailableLabel)
	c.Assert(d.Color, Equals, "")
	c.Assert(d.Level, Equals, "N/A")
	c.Assert(d.Crimes.HasTop(), Equals, false)
	c.Assert(d.Centroid, IsNil)
}

func (s *DetailSuite) TestInvalidPalette(c *C) {
	b, _ := s.d.Borough("Greenwich")
	_, err := Detail(b, "Ward", Palette{"#000"}, nil)
	c.Assert(errors.Is(err, ErrInvalidPalette), Equals, true)
	_, err = DecorateResults(nil, nil, nil)
	c.Assert(errors.Is(err, ErrInvalidPalette), Equals, true)
	_, err = FillColors(s.d, Palette{}, "#ccc")
	c.Assert(errors.Is(err, ErrInvalidPalette), Equals, true)
}

func (s *DetailSuite) TestDecorateResults(c *C) {
	index := BuildIndex(s.d, "Ward")
	res, err := DecorateResults(Query(index, "green"), StandardPalette, nil)
	c.Assert(err, IsNil)
	c.Assert(res, HasLen, 2)
	c.Assert(res[0].DisplayName, Equals, "Greenwich")
	c.Assert(res[0].Category, Equals, "Moderate")
	c.Assert(res[0].TopCrime, Equals, "Vehicle Offences")
	c.Assert(res[1].DisplayName, Equals, "Green Ward")
	c.Assert(res[1].Color, Equals, StandardPalette[5])

	res, err = DecorateResults(Query(index, "unscored"), StandardPalette, nil)
	c.Assert(err, IsNil)
	c.Assert(res[0].Category, Equals, NotAvailableLabel)
	c.Assert(res[0].Color, Equals, "")
	c.Assert(res[0].TopCrime, Equals, "N/A")
}

func TestFillColors(t *testing.T) {
	d, err := Load(London, []byte(londonFixture), nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := FillColors(d, StandardPalette, "#cccccc")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"GREENWICH":   StandardPalette[5],
		"LONDONDERRY": StandardPalette[1],
		"WEST LONDON": StandardPalette[8],
		"UNSCORED":    "#cccccc",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d colors, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}
