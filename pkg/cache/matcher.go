package cache

import "reflect"

// Key identifies a cache entry: the ordered argument sequence of a call, or
// a single transformed value. Two keys of different lengths never match
// under element-wise comparison.
type Key []any

// EqualFunc reports whether two key elements are equal. It is applied
// pairwise across key elements during lookup.
type EqualFunc func(a, b any) bool

// MatchFunc reports whether a stored key matches a candidate key as a
// whole, replacing element-wise comparison entirely.
type MatchFunc func(stored, candidate Key) bool

// Equal is the default element equality, with same-value-zero semantics:
// two nils match, values of different or uncomparable dynamic types never
// match, comparable values match under ==, and NaN matches NaN.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	if a == b {
		return true
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		return x != x && y != y
	case float32:
		y := b.(float32)
		return x != x && y != y
	}
	return false
}

// findIndex returns the position of the first stored key matching candidate,
// or -1 when none matches. Keys are scanned front to back, so with
// most-recently-used ordering the hottest entries are checked first.
func findIndex(keys []Key, candidate Key, equals EqualFunc, matcher MatchFunc) int {
	for i, stored := range keys {
		if matches(stored, candidate, equals, matcher) {
			return i
		}
	}
	return -1
}

// matches reports whether stored matches candidate: via the wholesale
// matcher when one is configured, element-wise equality otherwise.
func matches(stored, candidate Key, equals EqualFunc, matcher MatchFunc) bool {
	if matcher != nil {
		return matcher(stored, candidate)
	}
	if len(stored) != len(candidate) {
		return false
	}
	for i := range stored {
		if !equals(stored[i], candidate[i]) {
			return false
		}
	}
	return true
}
