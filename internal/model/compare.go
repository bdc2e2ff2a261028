// Package model defines the value objects shared across the comparison
// pipeline: canonical inventory records and the reconciliation result.
package model

// Side identifies which input file an exclusive record came from.
type Side string

const (
	SideA Side = "a" // only in file A: removed/deprecated part
	SideB Side = "b" // only in file B: new/added part
)

// CanonicalRecord is one inventory row reduced to the canonical schema.
// Key is trimmed, Price is rounded to 2 decimals by the normalizer.
type CanonicalRecord struct {
	Key         string  `json:"key"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// CanonicalTable is an ordered sequence of canonical records, built once
// per input file and never mutated afterwards. Keys may repeat; the
// reconciler resolves duplicates (last occurrence wins).
type CanonicalTable []CanonicalRecord

// MatchRecord describes a key present in both files.
type MatchRecord struct {
	Key          string  `json:"key"`
	DescriptionA string  `json:"description_a"`
	DescriptionB string  `json:"description_b"`
	PriceA       float64 `json:"price_a"`
	PriceB       float64 `json:"price_b"`
	PriceDiff    float64 `json:"price_diff"`     // PriceB - PriceA, 2-decimal rounded
	PriceDiffPct float64 `json:"price_diff_pct"` // 0 when PriceA == 0
	Similarity   float64 `json:"similarity"`     // description similarity in [0,100]
}

// ExclusiveRecord describes a key present in exactly one file.
type ExclusiveRecord struct {
	Key         string  `json:"key"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Side        Side    `json:"side"`
}

// ComparisonResult is the output of one reconciliation run.
//
// TotalA and TotalB count distinct keys (after duplicate resolution),
// so TotalA == len(Matches)+len(OnlyA) and TotalB == len(Matches)+len(OnlyB)
// always hold, and the three key sets partition the union of both inputs.
type ComparisonResult struct {
	TotalA  int               `json:"total_a"`
	TotalB  int               `json:"total_b"`
	Matches []MatchRecord     `json:"matches"`
	OnlyA   []ExclusiveRecord `json:"only_a"`
	OnlyB   []ExclusiveRecord `json:"only_b"`
}

// Summarize collapses a result into the five report metrics.
func (r ComparisonResult) Summarize() RunSummary {
	return RunSummary{
		TotalA:  r.TotalA,
		TotalB:  r.TotalB,
		Matches: len(r.Matches),
		OnlyA:   len(r.OnlyA),
		OnlyB:   len(r.OnlyB),
	}
}
