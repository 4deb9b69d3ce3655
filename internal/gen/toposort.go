package gen

import (
	"sort"

	"github.com/cockroachdb/errors"

	"pyglue-generator/internal/model"
)

// orderByBases moves every class after the sibling classes it derives from,
// since pybind11 needs a base registered before its subclasses. Everything
// else keeps its relative order. On a cycle the input order is kept.
func orderByBases(items []*item) []*item {
	index := map[string]int{}

	for i, it := range items {
		if s, ok := it.decl.(*model.Struct); ok {
			index[s.CppName()] = i
			index[s.Name] = i
		}
	}

	order, err := topoSort(len(items), func(i int) []int {
		s, ok := items[i].decl.(*model.Struct)
		if !ok {
			return nil
		}

		var deps []int

		for _, b := range s.Bases {
			if j, found := index[b]; found && j != i {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return items
	}

	out := make([]*item, 0, len(items))
	for _, i := range order {
		out = append(out, items[i])
	}

	return out
}

// topoSort returns indices in dependency order.
//
// Nodes are by index in the input slice.
// depsFn(i) yields indices that must come before i.
//
// The result is deterministic: when multiple nodes are available, we pick the
// smallest index. If a cycle exists, an error is returned.
func topoSort(n int, depsFn func(i int) []int) ([]int, error) {
	if n <= 0 {
		return nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		deps := depsFn(i)
		for _, d := range deps {
			if d < 0 || d >= n {
				return nil, errors.Newf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	// Deterministic traversal.
	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)
		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = append(ready, 0)
				copy(ready[k+1:], ready[k:])
				ready[k] = j
			}
		}
	}

	if len(order) != n {
		return nil, errors.New("cycle detected")
	}

	return order, nil
}
