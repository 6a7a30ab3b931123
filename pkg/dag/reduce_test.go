package dag

import (
	"reflect"
	"testing"
)

func edgePairs(g *DAG) [][2]string {
	var out [][2]string
	for _, e := range g.Edges() {
		out = append(out, [2]string{e.From, e.To})
	}
	return out
}

func TestTransitiveReduction(t *testing.T) {
	tests := []struct {
		name        string
		ids         []string
		edges       [][2]string
		wantRemoved int
		want        [][2]string
	}{
		{
			name:        "diamond with shortcut",
			ids:         []string{"app", "auth", "cache", "db"},
			edges:       [][2]string{{"app", "auth"}, {"app", "cache"}, {"app", "db"}, {"auth", "db"}, {"cache", "db"}},
			wantRemoved: 1,
			want:        [][2]string{{"app", "auth"}, {"app", "cache"}, {"auth", "db"}, {"cache", "db"}},
		},
		{
			name:        "long chain shortcut",
			ids:         []string{"a", "b", "c", "d"},
			edges:       [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"}},
			wantRemoved: 1,
			want:        [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}},
		},
		{
			name:        "already reduced",
			ids:         []string{"a", "b", "c"},
			edges:       [][2]string{{"a", "b"}, {"a", "c"}},
			wantRemoved: 0,
			want:        [][2]string{{"a", "b"}, {"a", "c"}},
		},
		{
			name:        "cycle left alone",
			ids:         []string{"a", "b", "c"},
			edges:       [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "c"}},
			wantRemoved: 0,
			want:        [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"a", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.ids, tt.edges)
			if got := g.TransitiveReduction(); got != tt.wantRemoved {
				t.Errorf("TransitiveReduction() = %d, want %d", got, tt.wantRemoved)
			}
			if got := edgePairs(g); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("edges = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransitiveReductionKeepsMeta(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"b", "c"}, {"a", "c"}})
	if err := g.AddEdge(Edge{From: "a", To: "b", Meta: Metadata{"scopes": []string{"test"}}}); err != nil {
		t.Fatal(err)
	}
	g.TransitiveReduction()

	e, ok := g.Edge("a", "b")
	if !ok {
		t.Fatal("a -> b removed")
	}
	if !reflect.DeepEqual(e.Meta["scopes"], []string{"test"}) {
		t.Errorf("a -> b meta = %v, want scopes [test]", e.Meta)
	}
	if g.HasEdge("a", "c") {
		t.Error("a -> c should be removed")
	}
}

func TestTransitiveReductionEmpty(t *testing.T) {
	if got := New(nil).TransitiveReduction(); got != 0 {
		t.Errorf("TransitiveReduction() on empty graph = %d, want 0", got)
	}
}
