package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/grapes/pkg/dag"
	"github.com/matzehuels/grapes/pkg/depgraph"
)

func testDAG(t *testing.T) *dag.DAG {
	t.Helper()
	g := dag.New(nil)
	for _, n := range []dag.Node{
		{ID: "app:1.0", Kind: dag.NodeKindModule, Meta: dag.Metadata{depgraph.MetaName: "app"}},
		{ID: "lib:1.0", Kind: dag.NodeKindModule},
		{ID: "lib", Kind: dag.NodeKindArtifact, Meta: dag.Metadata{depgraph.MetaGavc: "com.acme:lib:1.0::"}},
		{ID: "ghost", Kind: dag.NodeKindUnknown, Meta: dag.Metadata{depgraph.MetaGavc: "org.missing:ghost:1.0"}},
	} {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []dag.Edge{
		{From: "app:1.0", To: "lib", Meta: dag.Metadata{depgraph.MetaScopes: []string{"compile", "test"}}},
		{From: "lib", To: "lib:1.0", Meta: dag.Metadata{depgraph.MetaOwner: true}},
		{From: "app:1.0", To: "ghost", Meta: dag.Metadata{depgraph.MetaScopes: []string{"compile"}}},
	} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testDAG(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"app:1.0" -> "lib";`,
		`"lib" -> "lib:1.0" [style=dotted, arrowhead=empty];`,
		`tooltip="org.missing:ghost:1.0"`,
		"dashed",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "label=\"compile") {
		t.Error("ToDOT() labels scopes without Options.Scopes")
	}
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(testDAG(t), Options{Scopes: true, Detailed: true, Highlight: "app:1.0"})

	for _, want := range []string{
		`"app:1.0" -> "lib" [label="compile,test"];`,
		`kind: unknown\ngavc: org.missing:ghost:1.0`,
		"penwidth=3",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		node     dag.Node
		detailed bool
		want     string
	}{
		{"simple", dag.Node{ID: "lib", Meta: dag.Metadata{"gavc": "g:lib:1::"}}, false, "lib"},
		{"no metadata", dag.Node{ID: "lib"}, true, "lib"},
		{"detailed", dag.Node{ID: "lib", Kind: dag.NodeKindArtifact, Meta: dag.Metadata{"gavc": "g:lib:1::"}}, true,
			"lib\nkind: artifact\ngavc: g:lib:1::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.node, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("normalizeViewBox() changed an SVG without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(testDAG(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
