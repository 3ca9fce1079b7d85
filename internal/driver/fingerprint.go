// Package driver implements the query-translation layer: it lowers ORM
// predicate trees to native datastore queries, drives them through a
// cursor with continuation, and maintains a write-through entity cache
// keyed by unique-constraint fingerprints.
package driver

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// FieldValue pairs a column with the value a fingerprint covers.
type FieldValue struct {
	Column string
	Value  any
}

// UniqueCombinations enumerates the model's unique constraints as
// column-tuples: every composite unique_together declaration plus a
// single-column tuple per unique field. Tuples already present (a
// single-column unique repeated inside the composites) are deduplicated.
func UniqueCombinations(m *types.Model) [][]string {
	var combos [][]string
	seen := make(map[string]bool)

	add := func(columns []string) {
		sig := strings.Join(columns, "\x00")
		if seen[sig] {
			return
		}
		seen[sig] = true
		combos = append(combos, columns)
	}

	for _, names := range m.UniqueTogether {
		columns := make([]string, 0, len(names))
		for _, name := range names {
			if f := m.FieldByName(name); f != nil {
				columns = append(columns, f.Column)
			}
		}
		add(columns)
	}
	for _, f := range m.Fields {
		if f.Unique {
			add([]string{f.Column})
		}
	}
	return combos
}

// FingerprintKey hashes (model, columns, values) into the cache key
// "<app>.<kind>|col1:val1|col2:val2", pairs sorted by column name. The
// input order of pairs does not matter; the output is deterministic.
func FingerprintKey(m *types.Model, pairs []FieldValue) string {
	sorted := make([]FieldValue, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Column < sorted[j].Column })

	label := m.AppLabel
	if label == "" {
		label = types.DefaultAppLabel
	}

	var b strings.Builder
	b.WriteString(label)
	b.WriteByte('.')
	b.WriteString(m.Kind)
	for _, p := range sorted {
		b.WriteByte('|')
		b.WriteString(p.Column)
		b.WriteByte(':')
		b.WriteString(canonicalValue(p.Value))
	}
	return b.String()
}

// canonicalValue renders a value into the one stable string form used in
// fingerprint keys: strings verbatim, integers base-10, floats in Go's
// shortest 'g' form, bools true/false, times RFC 3339 with nanoseconds,
// byte slices hex-encoded, nil as "<nil>". Anything else falls back to
// fmt's default formatting.
func canonicalValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case []byte:
		return hex.EncodeToString(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}
