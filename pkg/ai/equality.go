package ai

import "reflect"

// partialsEqual reports whether two decoded JSON values (maps, slices,
// primitives, or nil) are structurally identical. It is used to suppress
// emitting a new partial-object snapshot when the repaired parse produced
// the same value as the last one published.
func partialsEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}
