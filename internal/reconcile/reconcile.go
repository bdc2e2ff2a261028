// Package reconcile joins two canonical inventory tables on key
// equality and computes per-key price deltas and description
// similarity.
package reconcile

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/partsdesk/compare-cli/internal/model"
	"github.com/partsdesk/compare-cli/internal/similarity"
)

// Options configures a reconciliation pass.
type Options struct {
	// Concurrency bounds the goroutines scoring matched descriptions.
	// Zero or negative means GOMAXPROCS.
	Concurrency int
}

// keyed is a key->record mapping plus first-seen key order.
type keyed struct {
	order   []string
	records map[string]model.CanonicalRecord
}

// buildKeyed resolves duplicate keys: the last occurrence wins the
// record value, the first occurrence fixes the output position.
// Inventory exports append corrections at the bottom, so the later row
// is the operative one.
func buildKeyed(t model.CanonicalTable) keyed {
	k := keyed{records: make(map[string]model.CanonicalRecord, len(t))}
	for _, rec := range t {
		if _, seen := k.records[rec.Key]; !seen {
			k.order = append(k.order, rec.Key)
		}
		k.records[rec.Key] = rec
	}
	return k
}

// Reconcile performs a full outer join on exact key equality. It is a
// total function: any key value, including the empty string, is valid,
// and no input can make it fail. Output ordering is first-seen key
// order (matches and only-A follow A, only-B follows B), so results
// are diffable across runs.
func Reconcile(a, b model.CanonicalTable, opts Options) model.ComparisonResult {
	ka, kb := buildKeyed(a), buildKeyed(b)

	res := model.ComparisonResult{
		TotalA: len(ka.order),
		TotalB: len(kb.order),
	}

	var matched []string
	for _, key := range ka.order {
		if _, ok := kb.records[key]; ok {
			matched = append(matched, key)
			continue
		}
		ra := ka.records[key]
		res.OnlyA = append(res.OnlyA, model.ExclusiveRecord{
			Key:         key,
			Description: ra.Description,
			Price:       ra.Price,
			Side:        model.SideA,
		})
	}
	for _, key := range kb.order {
		if _, ok := ka.records[key]; ok {
			continue
		}
		rb := kb.records[key]
		res.OnlyB = append(res.OnlyB, model.ExclusiveRecord{
			Key:         key,
			Description: rb.Description,
			Price:       rb.Price,
			Side:        model.SideB,
		})
	}

	res.Matches = scoreMatches(matched, ka.records, kb.records, opts.Concurrency)
	return res
}

// scoreMatches builds the match records concurrently. Similarity is the
// dominant cost and each pair is independent, so the loop fans out with
// a bounded errgroup; writes go to fixed indexes, keeping output order
// stable regardless of scheduling.
func scoreMatches(keys []string, ra, rb map[string]model.CanonicalRecord, concurrency int) []model.MatchRecord {
	if len(keys) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	matches := make([]model.MatchRecord, len(keys))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			a, b := ra[key], rb[key]
			matches[i] = buildMatch(key, a, b)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return matches
}

func buildMatch(key string, a, b model.CanonicalRecord) model.MatchRecord {
	diff := round2(b.Price - a.Price)

	// Division guard: a zero price in A yields 0%, never Inf/NaN.
	pct := 0.0
	if a.Price != 0 {
		pct = diff / a.Price * 100
	}

	return model.MatchRecord{
		Key:          key,
		DescriptionA: a.Description,
		DescriptionB: b.Description,
		PriceA:       a.Price,
		PriceB:       b.Price,
		PriceDiff:    diff,
		PriceDiffPct: pct,
		Similarity:   similarity.Score(a.Description, b.Description),
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
