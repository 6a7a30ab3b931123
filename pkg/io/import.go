package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/grapes/pkg/dag"
)

var kindFromString = map[string]dag.NodeKind{
	"artifact": dag.NodeKindArtifact,
	"unknown":  dag.NodeKindUnknown,
}

// ReadJSON decodes a JSON graph from r into a DAG.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "app"}, {"id": "lib", "kind": "artifact"}],
//	  "edges": [{"from": "app", "to": "lib", "meta": {"scopes": ["compile"]}}]
//	}
//
// Each node must have an "id" field. Optional fields:
//   - kind: "artifact" or "unknown" (defaults to module)
//   - meta: object with arbitrary key-value pairs
//
// Each edge must have "from" and "to" fields that reference node IDs.
//
// ReadJSON returns an error if the JSON is malformed, a node has a duplicate
// ID, or an edge references an unknown node ID or loops onto its source.
// Cycles are accepted. Errors are wrapped with context describing which node
// or edge caused the problem.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(data.Meta)
	for _, n := range data.Nodes {
		nd := dag.Node{ID: n.ID, Meta: n.Meta}
		if k, ok := kindFromString[n.Kind]; ok {
			nd.Kind = k
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}

	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded DAG.
// The error wraps the underlying cause with the file path for context.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
