package layout

import (
	"context"
	"maps"
	"slices"

	"github.com/Sohailsaifi/CodeFlow/pkg/dag"
)

const defaultSweeps = 24

// orderRows orders every row to reduce edge crossings. Sweeps alternate
// downward (barycenter of parents) and upward (barycenter of children),
// each followed by adjacent transpositions; the ordering with the fewest
// crossings seen is returned. Rows start in insertion order, so ties
// resolve the same way on every run.
func orderRows(ctx context.Context, g *dag.DAG, sweeps int) (map[int][]string, error) {
	orders := make(map[int][]string, g.RowCount())
	for _, r := range g.RowIDs() {
		orders[r] = dag.NodeIDs(g.NodesInRow(r))
	}

	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)
	maxRow := g.MaxRow()

	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i%2 == 0 {
			for r := 1; r <= maxRow; r++ {
				orders[r] = byBarycenter(orders[r], dag.PosMap(orders[r-1]), func(id string) []string {
					return g.ParentsInRow(id, r-1)
				})
			}
		} else {
			for r := maxRow - 1; r >= 0; r-- {
				orders[r] = byBarycenter(orders[r], dag.PosMap(orders[r+1]), func(id string) []string {
					return g.ChildrenInRow(id, r+1)
				})
			}
		}
		transpose(g, orders, maxRow)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best, nil
}

// byBarycenter sorts row by the mean position of each node's neighbors in
// the adjacent row. Nodes without neighbors keep their slot.
func byBarycenter(row []string, adjPos map[string]int, neighbors func(string) []string) []string {
	type entry struct {
		id     string
		center float64
	}
	var movable []entry
	var slots []int
	for i, id := range row {
		sum, n := 0, 0
		for _, nb := range neighbors(id) {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			continue
		}
		movable = append(movable, entry{id, float64(sum) / float64(n)})
		slots = append(slots, i)
	}

	slices.SortStableFunc(movable, func(a, b entry) int {
		switch {
		case a.center < b.center:
			return -1
		case a.center > b.center:
			return 1
		}
		return 0
	})

	out := slices.Clone(row)
	for i, slot := range slots {
		out[slot] = movable[i].id
	}
	return out
}

// transpose swaps adjacent nodes while that lowers the crossings with both
// neighboring rows.
func transpose(g *dag.DAG, orders map[int][]string, maxRow int) {
	for improved, guard := true, 0; improved && guard < 8; guard++ {
		improved = false
		for r := 0; r <= maxRow; r++ {
			row := orders[r]
			var above, below map[string]int
			if r > 0 {
				above = dag.PosMap(orders[r-1])
			}
			if r < maxRow {
				below = dag.PosMap(orders[r+1])
			}
			for i := 0; i+1 < len(row); i++ {
				u, v := row[i], row[i+1]
				keep := dag.CountPairCrossings(g, u, v, above, true) + dag.CountPairCrossings(g, u, v, below, false)
				swap := dag.CountPairCrossings(g, v, u, above, true) + dag.CountPairCrossings(g, v, u, below, false)
				if swap < keep {
					row[i], row[i+1] = v, u
					improved = true
				}
			}
		}
	}
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := maps.Clone(orders)
	for r, row := range out {
		out[r] = slices.Clone(row)
	}
	return out
}
