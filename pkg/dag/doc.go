// Package dag provides an identity-keyed directed graph with cycle-safe
// traversal, the structure underneath every dependency graph in grapes.
//
// # Overview
//
// Nodes are keyed by a caller-chosen string identity. Edges are directed and
// unique per (from, to) pair: declaring the same dependency twice collapses
// into one edge whose metadata absorbs both declarations. Self-loops are
// rejected.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "app"})
//	g.AddNode(dag.Node{ID: "lib", Kind: dag.NodeKindArtifact})
//	g.AddEdge(dag.Edge{From: "app", To: "lib"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents], [DAG.Sources],
// [DAG.Sinks] and walk it with [DAG.Reachable].
//
// # Cycles
//
// Real module graphs contain cycles (A depends on B, B on A). The package
// treats them as a fact to report, not an error: [DAG.Reachable] keeps a
// visited set so every walk terminates, and [DAG.Cycles] lists the back
// edges a depth-first search meets. Only [DAG.Validate] rejects cyclic
// graphs, for callers that need a true DAG.
//
// # Node Kinds
//
//   - [NodeKindModule]: a catalogued module
//   - [NodeKindArtifact]: a catalogued artifact
//   - [NodeKindUnknown]: a dependency target missing from the catalog
//
// # Metadata
//
// Nodes, edges and the graph carry [Metadata] maps, never nil after
// creation. The dependency graph stores the raw gavc of unknown nodes and
// the merged scopes of edges there.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Graphs are built per request
// and discarded, so no locking is needed in practice.
package dag
