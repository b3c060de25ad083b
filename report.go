package safemap

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CityAnalysis summarizes a dataset. Score statistics cover scored
// boroughs only.
type CityAnalysis struct {
	City               CityKey     `json:"city"`
	TotalBoroughs      int         `json:"totalBoroughs"`
	ScoredBoroughs     int         `json:"scoredBoroughs"`
	SafestBorough      string      `json:"safestBorough,omitempty"`
	HighestRiskBorough string      `json:"highestRiskBorough,omitempty"`
	AverageScore       float64     `json:"averageScore"`
	TotalCrimes        int         `json:"totalCrimes"`
	ScoreDistribution  map[int]int `json:"scoreDistribution"`
}

// Analyze computes the city analysis. Ties for safest and highest risk go to
// the borough that comes first in the dataset.
func Analyze(d *CityDataset) CityAnalysis {
	a := CityAnalysis{City: d.City, ScoreDistribution: make(map[int]int)}
	var (
		sum        int
		minS, maxS int
	)
	for _, b := range d.Boroughs() {
		a.TotalBoroughs++
		a.TotalCrimes += b.TotalCrimes
		n, ok := b.Score.Value()
		if !ok {
			continue
		}
		if a.ScoredBoroughs == 0 || n < minS {
			minS, a.SafestBorough = n, b.Name
		}
		if a.ScoredBoroughs == 0 || n > maxS {
			maxS, a.HighestRiskBorough = n, b.Name
		}
		a.ScoredBoroughs++
		sum += n
		a.ScoreDistribution[n]++
	}
	if a.ScoredBoroughs > 0 {
		a.AverageScore = float64(sum) / float64(a.ScoredBoroughs)
	}
	return a
}

var printer = message.NewPrinter(language.English)

// Describe returns the one-line borough description used in map popups, e.g.
// "CAMDEN: 12,345 crimes reported (Safety Score: 7/10 - High)".
func Describe(b *BoroughRecord) string {
	return printer.Sprintf("%s: %d crimes reported (Safety Score: %s/10 - %s)",
		toUpper(b.Name), b.TotalCrimes, b.Score, LevelFor(b.Score))
}

// SummaryReport renders a plain-text summary of one or more analyses.
func SummaryReport(analyses ...CityAnalysis) string {
	var sb strings.Builder
	sb.WriteString("Crime Data Summary\n")
	sb.WriteString(strings.Repeat("=", 40))
	sb.WriteString("\n")
	for _, a := range analyses {
		fmt.Fprintf(&sb, "\n%s Data:\n", toUpper(string(a.City)))
		fmt.Fprintf(&sb, "  - Boroughs processed: %d\n", a.TotalBoroughs)
		sb.WriteString(printer.Sprintf("  - Total crimes: %d\n", a.TotalCrimes))
		if a.ScoredBoroughs == 0 {
			sb.WriteString("  - Average safety score: N/A\n")
			continue
		}
		fmt.Fprintf(&sb, "  - Average safety score: %.1f/10\n", a.AverageScore)
		fmt.Fprintf(&sb, "  - Safest area: %s\n", a.SafestBorough)
		fmt.Fprintf(&sb, "  - Highest risk area: %s\n", a.HighestRiskBorough)
		if len(a.ScoreDistribution) > 0 {
			scores := make([]int, 0, len(a.ScoreDistribution))
			for s := range a.ScoreDistribution {
				scores = append(scores, s)
			}
			sort.Ints(scores)
			parts := make([]string, len(scores))
			for i, s := range scores {
				parts[i] = fmt.Sprintf("%d:%d", s, a.ScoreDistribution[s])
			}
			fmt.Fprintf(&sb, "  - Score distribution: %s\n", strings.Join(parts, " "))
		}
	}
	return sb.String()
}

// QuantileScores buckets crime totals into q quantiles by rank, lowest
// totals first, and scales the bucket to the 1-10 range (q=10 gives 1..10,
// q=5 gives 2,4,..,10). Equal totals always share a score. q outside 1..10
// is treated as 10.
func QuantileScores(totals []int, q int) []Score {
	if q < 1 || q > MaxScore {
		q = MaxScore
	}
	n := len(totals)
	out := make([]Score, n)
	if n == 0 {
		return out
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]] < totals[order[j]] })

	scale := MaxScore / q
	rank := 0
	for i, idx := range order {
		if i == 0 || totals[idx] != totals[order[i-1]] {
			rank = i
		}
		bucket := rank*q/n + 1
		out[idx] = ScoreOf(bucket * scale)
	}
	return out
}

// Rescore returns a copy of the dataset with borough scores recomputed from
// declared totals by QuantileScores. Area records are shared with d.
func Rescore(d *CityDataset, q int) *CityDataset {
	boroughs := d.Boroughs()
	totals := make([]int, len(boroughs))
	for i, b := range boroughs {
		totals[i] = b.TotalCrimes
	}
	scores := QuantileScores(totals, q)
	out := newCityDataset(d.City)
	for i, b := range boroughs {
		cp := *b
		cp.Score = scores[i]
		out.boroughs[cp.Key()] = &cp
		out.order = append(out.order, &cp)
	}
	return out
}
