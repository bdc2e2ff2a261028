// Package normalize maps heterogeneous inventory tables onto the
// canonical three-field schema (key, description, price).
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/partsdesk/compare-cli/internal/fetcher"
	"github.com/partsdesk/compare-cli/internal/model"
)

// ErrNoKeyColumn is returned when none of the accepted key header
// spellings appear in the input. Callers wrap it with which side failed.
var ErrNoKeyColumn = eris.New("no key column found among accepted header spellings")

// priceJunk matches everything that is not a digit, a decimal point,
// or a minus sign.
var priceJunk = regexp.MustCompile(`[^0-9.-]`)

// Normalize reduces a raw table to the canonical schema. The key
// column is required; description and price columns default to ""
// and 0.0 when unresolved. Extra columns are dropped.
func Normalize(t fetcher.Table, m Mapping) (model.CanonicalTable, error) {
	keyIdx := resolveColumn(t.Headers, m.Key)
	if keyIdx < 0 {
		return nil, ErrNoKeyColumn
	}
	descIdx := resolveColumn(t.Headers, m.Description)
	priceIdx := resolveColumn(t.Headers, m.Price)

	out := make(model.CanonicalTable, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, model.CanonicalRecord{
			Key:         CleanKey(cellAt(row, keyIdx)),
			Description: CleanDescription(cellAt(row, descIdx)),
			Price:       round2(CleanPrice(cellAt(row, priceIdx))),
		})
	}
	return out, nil
}

// resolveColumn returns the index of the first candidate spelling found
// among the trimmed headers, or -1. Matching is exact: case and accent
// variants must be listed explicitly in the mapping.
func resolveColumn(headers, candidates []string) int {
	byName := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if _, seen := byName[h]; !seen {
			byName[h] = i
		}
	}
	for _, c := range candidates {
		if i, ok := byName[c]; ok {
			return i
		}
	}
	return -1
}

// cellAt fetches a cell, treating unresolved columns and short rows as
// missing values.
func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

// CleanPrice coerces a cell to a price. Numeric types pass through;
// strings are stripped of everything but digits, '.' and '-', then
// parsed. Anything unparsable resolves to 0.0 — never an error. The
// stripping trusts the surviving digits, so thousands separators
// adjacent to digits are simply dropped ("$1,234.56" -> 1234.56); this
// is a documented accepted loss, not a defect to fix here.
func CleanPrice(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := priceJunk.ReplaceAllString(n, "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return CleanPrice(fmt.Sprint(n))
	}
}

// CleanKey coerces a cell to a trimmed key string. Empty keys are
// retained — the reconciler treats "" as a valid key.
func CleanKey(v any) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

// CleanDescription coerces a cell to a description string; missing
// cells become "".
func CleanDescription(v any) string {
	if v == nil {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
