package safemap

import (
	"reflect"
	"strings"
	"testing"

	. "gopkg.in/check.v1"
)

type ReportSuite struct{}

var _ = Suite(&ReportSuite{})

func (s *ReportSuite) TestAnalyze(c *C) {
	d, err := Load(London, []byte(londonFixture), nil)
	c.Assert(err, IsNil)
	a := Analyze(d)
	c.Assert(a.TotalBoroughs, Equals, 4)
	c.Assert(a.ScoredBoroughs, Equals, 3)
	c.Assert(a.SafestBorough, Equals, "Londonderry")
	c.Assert(a.HighestRiskBorough, Equals, "West London")
	c.Assert(a.TotalCrimes, Equals, 106)
	c.Assert(a.AverageScore > 5.66 && a.AverageScore < 5.67, Equals, true)
	c.Assert(a.ScoreDistribution, DeepEquals, map[int]int{2: 1, 6: 1, 9: 1})

	out := SummaryReport(a)
	for _, want := range []string{
		"Crime Data Summary\n" + strings.Repeat("=", 40),
		"LONDON Data:",
		"Boroughs processed: 4",
		"Total crimes: 106",
		"Average safety score: 5.7/10",
		"Safest area: Londonderry",
		"Highest risk area: West London",
		"Score distribution: 2:1 6:1 9:1",
	} {
		c.Assert(strings.Contains(out, want), Equals, true, Commentf("missing %q in\n%s", want, out))
	}
}

func (s *ReportSuite) TestAnalyzeTiesGoToFirst(c *C) {
	d := newCityDataset(NewYork)
	c.Assert(d.add(&BoroughRecord{Name: "A", Score: ScoreOf(3)}, 0), IsNil)
	c.Assert(d.add(&BoroughRecord{Name: "B", Score: ScoreOf(3)}, 1), IsNil)
	a := Analyze(d)
	c.Assert(a.SafestBorough, Equals, "A")
	c.Assert(a.HighestRiskBorough, Equals, "A")
}

func (s *ReportSuite) TestUnscoredCity(c *C) {
	d := newCityDataset(NewYork)
	c.Assert(d.add(&BoroughRecord{Name: "A", TotalCrimes: 1234567}, 0), IsNil)
	out := SummaryReport(Analyze(d))
	c.Assert(strings.Contains(out, "Average safety score: N/A"), Equals, true)
	c.Assert(strings.Contains(out, "Total crimes: 1,234,567"), Equals, true, Commentf("%s", out))
}

func (s *ReportSuite) TestDescribe(c *C) {
	b := &BoroughRecord{Name: "Camden", TotalCrimes: 12345, Score: ScoreOf(7)}
	c.Assert(Describe(b), Equals, "CAMDEN: 12,345 crimes reported (Safety Score: 7/10 - High)")
}

func TestQuantileScores(t *testing.T) {
	tests := []struct {
		name   string
		totals []int
		q      int
		want   []int
	}{
		{"quintiles", []int{10, 20, 30, 40, 50}, 5, []int{2, 4, 6, 8, 10}},
		{"deciles", []int{50, 40, 30, 20, 10}, 10, []int{9, 7, 5, 3, 1}},
		{"ties share a score", []int{5, 5, 1}, 10, []int{4, 4, 1}},
		{"bad q means deciles", []int{1, 2}, 0, []int{1, 6}},
		{"empty", nil, 5, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuantileScores(tt.totals, tt.q)
			ints := make([]int, len(got))
			for i, s := range got {
				ints[i], _ = s.Value()
			}
			if !reflect.DeepEqual(ints, tt.want) {
				t.Errorf("QuantileScores(%v, %d) = %v, want %v", tt.totals, tt.q, ints, tt.want)
			}
		})
	}
}

func TestRescoreLeavesOriginal(t *testing.T) {
	d, err := Load(London, []byte(londonFixture), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := Rescore(d, 5)
	if r.Len() != d.Len() {
		t.Fatalf("rescored %d boroughs, want %d", r.Len(), d.Len())
	}
	orig, _ := d.Borough("Greenwich")
	if orig.Score != ScoreOf(6) {
		t.Errorf("original score changed to %v", orig.Score)
	}
	// Greenwich has the highest total of four boroughs.
	g, _ := r.Borough("Greenwich")
	if g.Score != ScoreOf(8) {
		t.Errorf("rescored Greenwich = %v, want 8", g.Score)
	}
	if r.Owns(orig) {
		t.Error("rescored dataset shares borough records")
	}
}
