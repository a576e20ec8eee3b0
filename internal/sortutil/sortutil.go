// Package sortutil holds small ordering helpers shared by the CLI and the
// indexer.
package sortutil

import (
	"cmp"
	"slices"
)

// SortedUnique returns a new slice holding the distinct values of in in
// ascending order. The input is not modified.
func SortedUnique[T cmp.Ordered](in []T) []T {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
