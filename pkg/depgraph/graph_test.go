package depgraph

import (
	"reflect"
	"testing"

	"github.com/matzehuels/grapes/pkg/dag"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
)

func art(group, id, version string) model.Artifact {
	return model.Artifact{GroupID: group, ArtifactID: id, Version: version, Extension: "jar"}
}

func mod(name, version string, owns []model.Artifact, deps ...model.Dependency) model.Module {
	return model.Module{Name: name, Version: version, Artifacts: owns, Dependencies: deps}
}

func dep(target string, scope model.Scope) model.Dependency {
	return model.Dependency{Target: target, Scope: scope}
}

func TestBuildCycleSafe(t *testing.T) {
	a, b := art("g", "A", "1"), art("g", "B", "1")
	snap := Snapshot{Modules: []model.Module{
		mod("A", "1", []model.Artifact{a}, dep(b.Gavc(), model.ScopeCompile)),
		mod("B", "1", []model.Artifact{b}, dep(a.Gavc(), model.ScopeCompile)),
	}}

	g := Build(snap, nil, ModuleIdentity{})

	if got := g.DescendantsOf("A"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("DescendantsOf(A) = %v, want [B]", got)
	}
	if got := g.AncestorsOf("A"); !reflect.DeepEqual(got, []string{"B"}) {
		t.Errorf("AncestorsOf(A) = %v, want [B]", got)
	}
	if len(g.Cycles()) != 1 {
		t.Errorf("Cycles() = %v, want one back edge", g.Cycles())
	}
}

func TestBuildDanglingEdge(t *testing.T) {
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1.0", nil, dep("org.gone:missing:2.0", model.ScopeRuntime)),
	}}

	g := Build(snap, filter.New(), ModuleIdentity{})

	if got := g.DescendantsOf("app"); !reflect.DeepEqual(got, []string{"missing"}) {
		t.Fatalf("DescendantsOf(app) = %v, want [missing]", got)
	}
	n, ok := g.DAG().Node("missing")
	if !ok || !n.IsUnknown() || n.Meta[MetaGavc] != "org.gone:missing:2.0" {
		t.Errorf("unknown node = %+v", n)
	}
	if got := g.AncestorsOf("missing"); !reflect.DeepEqual(got, []string{"app"}) {
		t.Errorf("AncestorsOf(missing) = %v, want [app]", got)
	}
	if got := g.Artifacts([]string{"missing"}); len(got) != 0 {
		t.Errorf("Artifacts(unknown) = %v, want none", got)
	}
}

func TestBuildFilteredTargetHasNoEdge(t *testing.T) {
	lib := art("g", "lib", "1")
	lib.DoNotUse = true
	snap := Snapshot{
		Modules:   []model.Module{mod("app", "1", nil, dep(lib.Gavc(), model.ScopeCompile))},
		Artifacts: []model.Artifact{lib},
	}

	g := Build(snap, filter.FromParams(map[string]string{"do-not-use": "false"}), ModuleIdentity{})

	if got := g.DescendantsOf("app"); len(got) != 0 {
		t.Errorf("DescendantsOf(app) = %v, want none", got)
	}
	if g.Has("lib") {
		t.Error("filtered artifact must not become a node")
	}
}

func TestBuildCollapsesDuplicateEdges(t *testing.T) {
	lib := art("g", "lib", "1")
	snap := Snapshot{
		Modules: []model.Module{
			mod("app", "1", nil,
				dep(lib.Gavc(), model.ScopeCompile),
				dep("g:lib:1", model.ScopeTest),
				dep(lib.Gavc(), ""),
			),
		},
		Artifacts: []model.Artifact{lib},
	}

	g := Build(snap, nil, ModuleIdentity{})

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	e, _ := g.DAG().Edge("app", "lib")
	if got := e.Meta[MetaScopes]; !reflect.DeepEqual(got, []string{"compile", "test"}) {
		t.Errorf("scopes = %v, want [compile test]", got)
	}
}

func TestBuildTransitiveThroughOwner(t *testing.T) {
	lib, core := art("g", "lib", "1"), art("g", "core", "1")
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1", nil, dep(lib.Gavc(), model.ScopeCompile)),
		mod("libmod", "1", []model.Artifact{lib}, dep(core.Gavc(), model.ScopeCompile)),
		mod("coremod", "1", []model.Artifact{core}),
	}}

	g := Build(snap, nil, ArtifactIdentity{})

	want := []string{"core", "coremod:1", "lib", "libmod:1"}
	if got := g.DescendantsOf("app:1"); !reflect.DeepEqual(got, want) {
		t.Errorf("DescendantsOf(app:1) = %v, want %v", got, want)
	}
	if got := g.AncestorsOf("core"); !reflect.DeepEqual(got, []string{"app:1", "lib", "libmod:1"}) {
		t.Errorf("AncestorsOf(core) = %v", got)
	}

	arts := g.Artifacts(g.DescendantsOf("app:1"))
	if len(arts) != 2 || arts[0].ArtifactID != "core" || arts[1].ArtifactID != "lib" {
		t.Errorf("Artifacts() = %v, want core and lib", arts)
	}
	if e, ok := g.DAG().Edge("lib", "libmod:1"); !ok || e.Meta[MetaOwner] != true {
		t.Error("missing owner edge lib → libmod:1")
	}
}

func TestBuildDepthBound(t *testing.T) {
	lib, core := art("g", "lib", "1"), art("g", "core", "1")
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1", nil, dep(lib.Gavc(), model.ScopeCompile)),
		mod("lib", "1", []model.Artifact{lib}, dep(core.Gavc(), model.ScopeCompile)),
		mod("core", "1", []model.Artifact{core}),
	}}

	tests := []struct {
		depth string
		want  []string
	}{
		{"1", []string{"lib"}},
		{"2", []string{"core", "lib"}},
		{"0", []string{"core", "lib"}},
	}
	for _, tt := range tests {
		g := Build(snap, filter.FromParams(map[string]string{"depth": tt.depth}), ModuleIdentity{})
		if got := g.DescendantsOf("app"); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("depth %s: DescendantsOf(app) = %v, want %v", tt.depth, got, tt.want)
		}
	}
}

func TestBuildModuleIdentityCollapsesVersions(t *testing.T) {
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1", nil, dep("g:x:1", model.ScopeCompile)),
		mod("app", "2", nil, dep("g:y:1", model.ScopeCompile)),
	}}

	byModule := Build(snap, nil, ModuleIdentity{})
	if got := byModule.DescendantsOf("app"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("module identity: DescendantsOf(app) = %v, want [x y]", got)
	}

	byArtifact := Build(snap, nil, ArtifactIdentity{})
	if got := byArtifact.DescendantsOf("app:2"); !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("artifact identity: DescendantsOf(app:2) = %v, want [y]", got)
	}
}

func TestBuildScopeAndCorporateFilters(t *testing.T) {
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1", nil,
			dep("com.corporate.test:internal:1", model.ScopeCompile),
			dep("org.apache:commons:1", model.ScopeCompile),
			dep("junit:junit:4", model.ScopeTest),
		),
	}}

	p := filter.FromParams(map[string]string{"scope-test": "false", "show-third-party": "false"})
	p.SetCorporate(&model.Organization{Name: "corp", CorporateGroupIDPrefixes: []string{"com.corporate.test"}})

	g := Build(snap, p, ModuleIdentity{})
	if got := g.DescendantsOf("app"); !reflect.DeepEqual(got, []string{"internal"}) {
		t.Errorf("DescendantsOf(app) = %v, want [internal]", got)
	}
}

func TestBuildModuleFilter(t *testing.T) {
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1", nil, dep("g:x:1", model.ScopeCompile)),
		mod("other", "1", nil, dep("g:y:1", model.ScopeCompile)),
	}}

	g := Build(snap, filter.FromParams(map[string]string{"module-name": "app"}), ModuleIdentity{})
	if g.Has("other") || g.Has("y") {
		t.Error("filtered module and its dependencies must be absent")
	}
	if _, ok := g.Module("app"); !ok {
		t.Error("Module(app) not found")
	}
}

func TestUnknownStartIsEmpty(t *testing.T) {
	g := Build(Snapshot{}, nil, ModuleIdentity{})
	if got := g.AncestorsOf("ghost"); got == nil || len(got) != 0 {
		t.Errorf("AncestorsOf(ghost) = %#v, want empty slice", got)
	}
	if g.DAG().Meta()["identity"] != "module" {
		t.Error("graph metadata should record the identity")
	}
}

func TestSubmoduleDependencies(t *testing.T) {
	parent := model.Module{
		Name:    "parent",
		Version: "1",
		Submodules: []model.Module{
			{Name: "child", Version: "1", Submodule: true, Dependencies: []model.Dependency{dep("g:leaf:1", model.ScopeCompile)}},
		},
	}
	g := Build(Snapshot{Modules: []model.Module{parent}}, nil, ModuleIdentity{})
	if got := g.DescendantsOf("parent"); !reflect.DeepEqual(got, []string{"leaf"}) {
		t.Errorf("DescendantsOf(parent) = %v, want [leaf]", got)
	}
	n, _ := g.DAG().Node("parent")
	if n.Kind != dag.NodeKindModule {
		t.Errorf("parent kind = %v", n.Kind)
	}
}

func TestBuildGavcIdentityKeepsVersionsApart(t *testing.T) {
	lib1, lib2, evil := art("g", "lib", "1.0"), art("g", "lib", "2.0"), art("x", "evil", "6.6")
	snap := Snapshot{Modules: []model.Module{
		mod("app", "1.0", nil, dep(lib1.Gavc(), model.ScopeCompile)),
		mod("other", "1.0", nil, dep(lib2.Gavc(), model.ScopeCompile)),
		mod("lib", "1.0", []model.Artifact{lib1}),
		mod("lib", "2.0", []model.Artifact{lib2}, dep(evil.Gavc(), model.ScopeCompile)),
		mod("evil", "6.6", []model.Artifact{evil}),
	}}

	g := Build(snap, nil, GavcIdentity{})

	want := []string{lib1.Gavc(), "lib:1.0"}
	if got := g.DescendantsOf("app:1.0"); !reflect.DeepEqual(got, want) {
		t.Errorf("DescendantsOf(app:1.0) = %v, want %v", got, want)
	}
	if got := g.Artifacts(g.DescendantsOf("app:1.0")); len(got) != 1 || got[0].Gavc() != lib1.Gavc() {
		t.Errorf("Artifacts(descendants of app:1.0) = %v, want only %s", got, lib1.Gavc())
	}
	if got := g.AncestorsOf(lib2.Gavc()); !reflect.DeepEqual(got, []string{"other:1.0"}) {
		t.Errorf("AncestorsOf(%s) = %v, want [other:1.0]", lib2.Gavc(), got)
	}

	shared := Build(snap, nil, ArtifactIdentity{})
	if got := shared.Artifacts([]string{"lib"}); len(got) != 2 {
		t.Errorf("artifact identity keeps both versions at one node, got %v", got)
	}
}

func TestBuildUpgradesUnknownNode(t *testing.T) {
	lib2 := art("g", "lib", "2.0")
	snap := Snapshot{
		Modules: []model.Module{
			mod("app", "1", nil, dep("g:lib:1.0", model.ScopeCompile)),
			mod("other", "1", nil, dep(lib2.Gavc(), model.ScopeCompile)),
		},
		Artifacts: []model.Artifact{lib2},
	}

	g := Build(snap, nil, ArtifactIdentity{})

	n, ok := g.DAG().Node("lib")
	if !ok {
		t.Fatal("lib node missing")
	}
	if n.Kind != dag.NodeKindArtifact {
		t.Errorf("lib kind = %v, want artifact", n.Kind)
	}
	if n.Meta[MetaGavc] != lib2.Gavc() {
		t.Errorf("lib gavc = %v, want %s", n.Meta[MetaGavc], lib2.Gavc())
	}
}
