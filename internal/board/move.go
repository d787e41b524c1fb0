package board

import "slices"

// ArrayMove returns a copy of items with the element at from moved to index
// to. Every other element keeps its relative order. Out of range indexes
// return an unchanged copy.
func ArrayMove[T any](items []T, from, to int) []T {
	out := slices.Clone(items)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
