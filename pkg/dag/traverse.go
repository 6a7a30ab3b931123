package dag

import (
	"maps"
	"sort"
)

// Direction selects which edges a traversal follows.
type Direction int

const (
	// Forward follows edges from source to target (descendants).
	Forward Direction = iota
	// Backward follows edges from target to source (ancestors).
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "ancestors"
	}
	return "descendants"
}

// Reachable returns the IDs reachable from the start node, sorted. The
// start node itself is excluded even when a cycle leads back to it.
// maxDepth bounds the number of edge hops; 0 or less means unlimited.
// An unknown start ID yields nil.
//
// The walk is breadth-first with a visited set, so every node is reported
// once and cycles terminate.
func (d *DAG) Reachable(from string, dir Direction, maxDepth int) []string {
	if _, ok := d.nodes[from]; !ok {
		return nil
	}

	next := d.Children
	if dir == Backward {
		next = d.Parents
	}

	visited := map[string]bool{from: true}
	frontier := []string{from}
	var out []string
	for depth := 1; len(frontier) > 0 && (maxDepth <= 0 || depth <= maxDepth); depth++ {
		var layer []string
		for _, id := range frontier {
			for _, n := range next(id) {
				if visited[n] {
					continue
				}
				visited[n] = true
				layer = append(layer, n)
				out = append(out, n)
			}
		}
		frontier = layer
	}

	sort.Strings(out)
	return out
}

// HasCycle reports whether any directed cycle exists.
func (d *DAG) HasCycle() bool {
	return len(d.Cycles()) > 0
}

// Cycles returns the back edges found by a depth-first search started from
// the sources and then from any node left unvisited, in insertion order.
// Removing them would leave the graph acyclic; Cycles does not remove them.
func (d *DAG) Cycles() []Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var backEdges []Edge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				e, _ := d.Edge(id, child)
				backEdges = append(backEdges, e)
			}
		}
		color[id] = black
	}

	for _, n := range d.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
		}
	}
	return backEdges
}

// Subgraph returns a new graph holding the given nodes and every edge
// between them. Unknown IDs are skipped. Nodes keep the order of this
// graph; metadata maps are copied.
func (d *DAG) Subgraph(ids []string) *DAG {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	sub := New(maps.Clone(d.meta))
	for _, id := range d.order {
		if !keep[id] {
			continue
		}
		n := *d.nodes[id]
		n.Meta = maps.Clone(n.Meta)
		_ = sub.AddNode(n)
	}
	for _, e := range d.edges {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}
