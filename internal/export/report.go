package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/partsdesk/compare-cli/internal/model"
)

// topMovers caps the "largest price changes" section of the report.
const topMovers = 5

// FormatReport renders a human-readable summary of a comparison run.
func FormatReport(sourceA, sourceB string, r model.ComparisonResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Inventory Comparison\n")
	fmt.Fprintf(&b, "File A: %s\n", sourceA)
	fmt.Fprintf(&b, "File B: %s\n\n", sourceB)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Total file A: %d\n", r.TotalA)
	fmt.Fprintf(&b, "- Total file B: %d\n", r.TotalB)
	fmt.Fprintf(&b, "- Matches: %d\n", len(r.Matches))
	fmt.Fprintf(&b, "- Only in A (removed): %d\n", len(r.OnlyA))
	fmt.Fprintf(&b, "- Only in B (added): %d\n\n", len(r.OnlyB))

	if len(r.Matches) > 0 {
		writePriceMovers(&b, r.Matches)
	}

	return b.String()
}

// writePriceMovers lists the matched keys with the largest absolute
// price change, ties broken by key for reproducible output.
func writePriceMovers(b *strings.Builder, matches []model.MatchRecord) {
	movers := make([]model.MatchRecord, 0, len(matches))
	for _, m := range matches {
		if m.PriceDiff != 0 {
			movers = append(movers, m)
		}
	}
	if len(movers) == 0 {
		b.WriteString("## Price Changes\nNo price changes among matched keys.\n")
		return
	}

	sort.SliceStable(movers, func(i, j int) bool {
		di, dj := abs(movers[i].PriceDiff), abs(movers[j].PriceDiff)
		if di != dj {
			return di > dj
		}
		return movers[i].Key < movers[j].Key
	})
	if len(movers) > topMovers {
		movers = movers[:topMovers]
	}

	b.WriteString("## Largest Price Changes\n")
	for _, m := range movers {
		fmt.Fprintf(b, "- %s: $%.2f -> $%.2f (%+.2f, %+.2f%%, similarity %.1f%%)\n",
			m.Key, m.PriceA, m.PriceB, m.PriceDiff, m.PriceDiffPct, m.Similarity)
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
