package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/grapes/pkg/dag"
)

var kindToString = map[dag.NodeKind]string{
	dag.NodeKindArtifact: "artifact",
	dag.NodeKindUnknown:  "unknown",
}

type graph struct {
	Meta  dag.Metadata `json:"meta,omitempty"`
	Nodes []node       `json:"nodes"`
	Edges []edge       `json:"edges"`
}

type node struct {
	ID   string       `json:"id"`
	Kind string       `json:"kind,omitempty"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Meta dag.Metadata `json:"meta,omitempty"`
}

// WriteJSON encodes a graph as JSON and writes it to w.
// The output includes all nodes (with metadata and kind) and edges (with
// metadata such as merged scopes). Module nodes carry no kind field.
// This format can be re-imported with [ReadJSON].
func WriteJSON(g *dag.DAG, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	if len(g.Meta()) > 0 {
		out.Meta = g.Meta()
	}

	for i, n := range nodes {
		nd := node{ID: n.ID}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		if s, ok := kindToString[n.Kind]; ok {
			nd.Kind = s
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		ed := edge{From: e.From, To: e.To}
		if len(e.Meta) > 0 {
			ed.Meta = e.Meta
		}
		out.Edges[i] = ed
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *dag.DAG, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}
