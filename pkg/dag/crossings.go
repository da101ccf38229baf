package dag

import (
	"cmp"
	"maps"
	"slices"
)

// CountCrossings sums the edge crossings between every pair of consecutive
// rows in orders. A row missing from orders counts as empty.
func CountCrossings(g *DAG, orders map[int][]string) int {
	total := 0
	for _, r := range slices.Sorted(maps.Keys(orders)) {
		if next, ok := orders[r+1]; ok {
			total += CountLayerCrossings(g, orders[r], next)
		}
	}
	return total
}

// CountLayerCrossings counts the crossings of the edges running from upper
// to lower. Edges (a,b) and (c,d) cross when a is left of c but b is right
// of d, so once edges are sorted by upper position the answer is the number
// of inversions among their lower positions.
func CountLayerCrossings(g *DAG, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	at := PosMap(lower)

	type span struct{ from, to int }
	var spans []span
	for i, id := range upper {
		for _, child := range g.Children(id) {
			if j, ok := at[child]; ok {
				spans = append(spans, span{i, j})
			}
		}
	}
	if len(spans) < 2 {
		return 0
	}
	slices.SortFunc(spans, func(a, b span) int {
		return cmp.Or(cmp.Compare(a.from, b.from), cmp.Compare(a.to, b.to))
	})

	targets := make([]int, len(spans))
	for i, s := range spans {
		targets[i] = s.to
	}
	return inversions(targets, make([]int, len(targets)))
}

// inversions counts pairs i<j with xs[i] > xs[j], sorting xs in place.
func inversions(xs, buf []int) int {
	if len(xs) < 2 {
		return 0
	}
	mid := len(xs) / 2
	n := inversions(xs[:mid], buf[:mid]) + inversions(xs[mid:], buf[mid:])

	merged := buf[:0]
	i, j := 0, mid
	for i < mid && j < len(xs) {
		if xs[j] < xs[i] {
			n += mid - i
			merged = append(merged, xs[j])
			j++
		} else {
			merged = append(merged, xs[i])
			i++
		}
	}
	merged = append(merged, xs[i:mid]...)
	merged = append(merged, xs[j:]...)
	copy(xs, merged)
	return n
}

// CountPairCrossings counts crossings between the edges of left and right
// when left is placed before right in its row. Parents are compared when
// useParents is set, children otherwise; adjPos holds positions in that
// neighbouring row. Compare with the swapped call to decide whether
// exchanging the two nodes helps.
func CountPairCrossings(g *DAG, left, right string, adjPos map[string]int, useParents bool) int {
	neighbours := g.Children
	if useParents {
		neighbours = g.Parents
	}
	n := 0
	for _, a := range neighbours(left) {
		pa, ok := adjPos[a]
		if !ok {
			continue
		}
		for _, b := range neighbours(right) {
			if pb, ok := adjPos[b]; ok && pa > pb {
				n++
			}
		}
	}
	return n
}
