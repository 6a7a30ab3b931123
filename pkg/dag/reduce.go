package dag

// TransitiveReduction removes every edge (u, v) for which v is also
// reachable from u through another child of u, so only direct
// dependencies remain. If A→B, B→C and A→C all exist, A→C is removed.
// It returns the number of removed edges. Metadata on kept edges is
// preserved.
//
// A graph with a cycle is left unchanged: inside a cycle every edge is
// implied by the others and removing them would change reachability.
//
// The reachability matrix costs O(V²) memory.
func (d *DAG) TransitiveReduction() int {
	if len(d.nodes) == 0 || d.HasCycle() {
		return 0
	}

	nodes := d.Nodes()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	adjacency := make([][]int, len(nodes))
	for _, e := range d.edges {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}
	reachable := reachability(adjacency)

	removed := 0
	for _, e := range d.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, mid := range adjacency[src] {
			if mid != dst && reachable[mid][dst] {
				d.RemoveEdge(e.From, e.To)
				removed++
				break
			}
		}
	}
	return removed
}

func reachability(adjacency [][]int) [][]bool {
	reachable := make([][]bool, len(adjacency))
	for i := range reachable {
		reachable[i] = make([]bool, len(adjacency))
	}

	var visit func(source, current int)
	visit = func(source, current int) {
		if reachable[source][current] {
			return
		}
		reachable[source][current] = true
		for _, next := range adjacency[current] {
			visit(source, next)
		}
	}
	for i := range reachable {
		visit(i, i)
	}
	return reachable
}
