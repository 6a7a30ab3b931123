// Package depgraph turns a catalog snapshot into a traversable dependency
// graph.
//
// Node IDs come from an injected [Identity]: [ModuleIdentity] for module
// graphs, [ArtifactIdentity] for artifact graphs and [GavcIdentity] when
// artifact versions must stay apart. [Build] applies a
// [filter.Pipeline] while materializing nodes and edges:
//
//   - every module passing the pipeline becomes a node
//   - each visible dependency of a loaded module becomes an edge; a target
//     found in the snapshot becomes an artifact node (if the pipeline keeps
//     it), a target missing from the snapshot becomes an unknown node
//   - an artifact owned by a loaded module points to its owner, so walks
//     continue through the owner's own dependencies
//
// Ancestor and descendant walks are bounded by the pipeline's depth and
// terminate on cycles.
package depgraph

import (
	"slices"
	"sort"

	"github.com/matzehuels/grapes/pkg/dag"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
)

// Metadata keys set on nodes and edges.
const (
	MetaGavc    = "gavc"    // node: raw or canonical gavc
	MetaName    = "name"    // module node: module name
	MetaVersion = "version" // module node: module version
	MetaScopes  = "scopes"  // edge: sorted []string of declared scopes
	MetaOwner   = "owner"   // edge: artifact → owning module
)

// Snapshot is the catalog data a graph is built from. Artifacts declared
// by modules are indexed too, so Artifacts may be partial.
type Snapshot struct {
	Modules   []model.Module
	Artifacts []model.Artifact
}

// Graph is a built dependency graph.
type Graph struct {
	dag       *dag.DAG
	identity  Identity
	depth     int
	modules   map[string]*model.Module
	artifacts map[string][]*model.Artifact
}

// Build constructs the graph of snap as seen through p. A nil pipeline
// keeps everything.
func Build(snap Snapshot, p *filter.Pipeline, id Identity) *Graph {
	g := &Graph{
		dag:       dag.New(dag.Metadata{"identity": id.Name()}),
		identity:  id,
		depth:     p.Depth(),
		modules:   make(map[string]*model.Module),
		artifacts: make(map[string][]*model.Artifact),
	}

	byGavc := make(map[string]*model.Artifact)
	for i := range snap.Artifacts {
		byGavc[snap.Artifacts[i].Gavc()] = &snap.Artifacts[i]
	}
	owners := make(map[string]*model.Module)
	for i := range snap.Modules {
		m := &snap.Modules[i]
		for _, a := range m.AllArtifacts() {
			key := a.Gavc()
			owners[key] = m
			if _, ok := byGavc[key]; !ok {
				byGavc[key] = &a
			}
		}
	}

	var loaded []*model.Module
	for i := range snap.Modules {
		m := &snap.Modules[i]
		if !p.MatchModule(m) {
			continue
		}
		mid := id.Module(m)
		node, err := g.dag.EnsureNode(dag.Node{ID: mid, Kind: dag.NodeKindModule})
		if err != nil {
			continue
		}
		node.Kind = dag.NodeKindModule
		node.Meta[MetaName] = m.Name
		node.Meta[MetaVersion] = m.Version
		g.modules[mid] = m
		loaded = append(loaded, m)
	}

	for _, m := range loaded {
		mid := id.Module(m)
		for _, dep := range m.AllDependencies() {
			target, resolved := byGavc[model.Canonical(dep.Target)]
			if !p.MatchDependency(&dep, target) {
				continue
			}

			var tid string
			if resolved {
				if !p.MatchArtifact(target) {
					continue
				}
				tid = g.addArtifact(target, owners)
			} else {
				tid = id.Target(dep.Target)
				if _, err := g.dag.EnsureNode(dag.Node{
					ID:   tid,
					Kind: dag.NodeKindUnknown,
					Meta: dag.Metadata{MetaGavc: dep.Target},
				}); err != nil {
					continue
				}
			}
			g.addDependencyEdge(mid, tid, dep.Scope)
		}
	}
	return g
}

// addArtifact materializes a resolved target and links it to its owner. A
// node first created for a missing target with the same ID becomes an
// artifact node.
func (g *Graph) addArtifact(a *model.Artifact, owners map[string]*model.Module) string {
	aid := g.identity.Artifact(a)
	node, err := g.dag.EnsureNode(dag.Node{
		ID:   aid,
		Kind: dag.NodeKindArtifact,
		Meta: dag.Metadata{MetaGavc: a.Gavc()},
	})
	if err != nil {
		return aid
	}
	if node.Kind == dag.NodeKindUnknown {
		node.Kind = dag.NodeKindArtifact
		node.Meta[MetaGavc] = a.Gavc()
	}
	if !slices.ContainsFunc(g.artifacts[aid], func(x *model.Artifact) bool { return x.Gavc() == a.Gavc() }) {
		g.artifacts[aid] = append(g.artifacts[aid], a)
	}

	if owner, ok := owners[a.Gavc()]; ok {
		oid := g.identity.Module(owner)
		if _, loaded := g.modules[oid]; loaded && oid != aid {
			_ = g.dag.AddEdge(dag.Edge{From: aid, To: oid, Meta: dag.Metadata{MetaOwner: true}})
		}
	}
	return aid
}

// addDependencyEdge adds from→to, merging the scope into an existing edge.
func (g *Graph) addDependencyEdge(from, to string, scope model.Scope) {
	if from == to {
		return
	}
	if scope == "" {
		scope = model.ScopeCompile
	}
	scopes := []string{string(scope)}
	if e, ok := g.dag.Edge(from, to); ok {
		if prev, ok := e.Meta[MetaScopes].([]string); ok {
			scopes = append(scopes, prev...)
		}
	}
	sort.Strings(scopes)
	_ = g.dag.AddEdge(dag.Edge{From: from, To: to, Meta: dag.Metadata{MetaScopes: slices.Compact(scopes)}})
}

// AncestorsOf returns the sorted IDs of nodes with a path to id, bounded
// by the pipeline depth. The start node is excluded; an unknown id yields
// an empty slice.
func (g *Graph) AncestorsOf(id string) []string {
	return nonNil(g.dag.Reachable(id, dag.Backward, g.depth))
}

// DescendantsOf returns the sorted IDs of nodes reachable from id, bounded
// by the pipeline depth.
func (g *Graph) DescendantsOf(id string) []string {
	return nonNil(g.dag.Reachable(id, dag.Forward, g.depth))
}

// Cycles reports the back edges of the graph.
func (g *Graph) Cycles() []dag.Edge { return g.dag.Cycles() }

// Artifacts returns the catalogued artifacts materialized at the given
// nodes, sorted by gavc. Module and unknown nodes contribute nothing.
func (g *Graph) Artifacts(ids []string) []model.Artifact {
	seen := make(map[string]bool)
	var out []model.Artifact
	for _, id := range ids {
		for _, a := range g.artifacts[id] {
			if key := a.Gavc(); !seen[key] {
				seen[key] = true
				out = append(out, *a)
			}
		}
	}
	model.SortArtifacts(out)
	return out
}

// Module returns the loaded module stored at node id.
func (g *Graph) Module(id string) (*model.Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

// ModuleNodeID returns the node ID the graph's identity assigns to m.
func (g *Graph) ModuleNodeID(m *model.Module) string { return g.identity.Module(m) }

// ArtifactNodeID returns the node ID the graph's identity assigns to a.
func (g *Graph) ArtifactNodeID(a *model.Artifact) string { return g.identity.Artifact(a) }

// Has reports whether a node with the ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.dag.Node(id)
	return ok
}

// DAG exposes the underlying graph for rendering and export.
func (g *Graph) DAG() *dag.DAG { return g.dag }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.dag.NodeCount() }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.dag.EdgeCount() }

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
