package datastore

import (
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// matchEntity reports whether the entity satisfies every filter of the
// query's conjunction. The reserved key column compares against the
// entity's id-or-name.
func matchEntity(e *types.Entity, filters []types.Filter) bool {
	for _, f := range filters {
		var stored any
		if f.Column == types.KeyColumn {
			stored = e.Key.IDOrName()
		} else {
			stored = e.Properties[f.Column]
		}
		if !matchFilter(stored, f.Op, f.Value) {
			return false
		}
	}
	return true
}

// matchFilter applies one native operator. Equality handles nil operands;
// inequalities over incomparable or nil values never match, mirroring the
// datastore's behavior of excluding unindexed values from range scans.
func matchFilter(stored any, op string, operand any) bool {
	if op == types.OpEqual {
		return equalValues(stored, operand)
	}
	c, ok := compareValues(stored, operand)
	if !ok {
		return false
	}
	switch op {
	case types.OpGT:
		return c > 0
	case types.OpGTE:
		return c >= 0
	case types.OpLT:
		return c < 0
	case types.OpLTE:
		return c <= 0
	}
	return false
}

// equalValues compares two values for datastore equality: nil equals nil,
// numerics compare across integer and float representations, and times
// compare across their JSON string encoding.
func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, ok := compareValues(a, b)
	return ok && c == 0
}

// compareValues orders two property values. JSON decoding turns every
// number into float64 and every time into an RFC 3339 string, so both
// representations are normalized before comparing. Mixed or unordered
// types report ok=false.
func compareValues(a, b any) (int, bool) {
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			return ta.Compare(tb), true
		}
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1, true
			case fa > fb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			switch {
			case sa < sb:
				return -1, true
			case sa > sb:
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0, true
			case bb:
				return -1, true
			}
			return 1, true
		}
	}
	return 0, false
}

// asFloat widens any numeric value to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// asTime recognizes time values, either native or in their JSON string
// encoding when the other side of the comparison is a time.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
