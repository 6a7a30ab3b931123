package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/grapes/pkg/dag"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/store/memory"
)

func approved(v bool) *bool { return &v }

func art(group, id, version string, licenses ...string) model.Artifact {
	return model.Artifact{GroupID: group, ArtifactID: id, Version: version, Licenses: licenses}
}

// newTestService builds the catalog:
//
//	app:1.0 ── compile ──▶ com.acme:lib:1.0 (owned by lib:1.0)
//	        ── test ─────▶ org.ext:util:2.0 (owned by ext:1.0)
//	        ── compile ──▶ org.missing:ghost:1.0 (not catalogued)
//	lib:1.0 ── compile ──▶ org.ext:core:3.0 (owned by ext:1.0)
func newTestService(t *testing.T) *Service {
	t.Helper()
	snap := &pkgio.Snapshot{
		Modules: []model.Module{
			{
				Name:      "app",
				Version:   "1.0",
				Artifacts: []model.Artifact{art("com.acme", "app", "1.0", "Apache-2.0")},
				Dependencies: []model.Dependency{
					{Target: "com.acme:lib:1.0", Scope: model.ScopeCompile},
					{Target: "org.ext:util:2.0", Scope: model.ScopeTest},
					{Target: "org.missing:ghost:1.0", Scope: model.ScopeCompile},
				},
			},
			{
				Name:         "lib",
				Version:      "1.0",
				Artifacts:    []model.Artifact{art("com.acme", "lib", "1.0", "MIT License")},
				Dependencies: []model.Dependency{{Target: "org.ext:core:3.0"}},
			},
			{
				Name:      "ext",
				Version:   "1.0",
				Artifacts: []model.Artifact{art("org.ext", "util", "2.0"), art("org.ext", "core", "3.0", "GPL")},
			},
		},
		Artifacts: []model.Artifact{
			art("com.acme", "lib", "0.9"),
			art("com.acme", "lib", "1.1-SNAPSHOT"),
			art("com.opaque", "thing", "AAAAA"),
			art("com.opaque", "thing", "ZZZZZ"),
			art("com.opaque", "thing", "EEEEE"),
		},
		Licenses: []model.License{
			{Name: "Apache-2.0", Approved: approved(true)},
			{Name: "MIT", Regexp: "MIT.*"},
			{Name: "bad", Regexp: "("},
		},
		Organizations: []model.Organization{{Name: "acme", CorporateGroupIDPrefixes: []string{"com.acme"}}},
	}
	return New(memory.FromSnapshot(snap), nil)
}

func wantCode(t *testing.T, err error, code grapeserrors.Code) {
	t.Helper()
	if !grapeserrors.Is(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func TestVersions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	versions, err := s.ArtifactVersions(ctx, "com.acme:lib:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"0.9", "1.0", "1.1-SNAPSHOT"}; !reflect.DeepEqual(versions, want) {
		t.Errorf("ArtifactVersions() = %v, want %v", versions, want)
	}

	if v, err := s.LastVersion(ctx, "com.acme:lib"); err != nil || v != "1.1-SNAPSHOT" {
		t.Errorf("LastVersion() = %q, %v; want 1.1-SNAPSHOT", v, err)
	}
	if v, err := s.LastRelease(ctx, "com.acme:lib"); err != nil || v != "1.0" {
		t.Errorf("LastRelease() = %q, %v; want 1.0", v, err)
	}

	tests := []struct {
		gavc string
		want bool
	}{
		{"com.acme:lib:1.0", true},
		{"com.acme:lib:1.1-SNAPSHOT", true},
		{"com.acme:lib:0.9", false},
	}
	for _, tt := range tests {
		t.Run(tt.gavc, func(t *testing.T) {
			got, err := s.IsUpToDate(ctx, tt.gavc)
			if err != nil || got != tt.want {
				t.Errorf("IsUpToDate(%s) = %v, %v; want %v", tt.gavc, got, err, tt.want)
			}
		})
	}
}

func TestLastVersionFallsBackToLexicographicMax(t *testing.T) {
	s := newTestService(t)
	v, err := s.LastVersion(context.Background(), "com.opaque:thing")
	if err != nil || v != "ZZZZZ" {
		t.Errorf("LastVersion() = %q, %v; want ZZZZZ", v, err)
	}
}

func TestLastReleaseIncomparable(t *testing.T) {
	s := newTestService(t)
	_, err := s.LastRelease(context.Background(), "com.opaque:thing")
	wantCode(t, err, grapeserrors.ErrCodeUnsupportedVersion)
}

func TestVersionsNotFound(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.LastVersion(ctx, "org.nothing:here")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
	if got := grapeserrors.UserMessage(err); got != "Artifact org.nothing:here does not exist." {
		t.Errorf("message = %q", got)
	}

	_, err = s.IsUpToDate(ctx, "org.nothing:here:1.0")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)

	_, err = s.ArtifactVersions(ctx, "no-colon")
	wantCode(t, err, grapeserrors.ErrCodeInvalidGavc)
}

func TestDependencies(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		params      map[string]string
		wantGavcs   []string
		wantUnknown []string
	}{
		{
			name:        "all",
			wantGavcs:   []string{"com.acme:lib:1.0::", "org.ext:core:3.0::", "org.ext:util:2.0::"},
			wantUnknown: []string{"org.missing:ghost:1.0"},
		},
		{
			name:        "no test scope",
			params:      map[string]string{filter.KeyScopeTest: "false"},
			wantGavcs:   []string{"com.acme:lib:1.0::", "org.ext:core:3.0::"},
			wantUnknown: []string{"org.missing:ghost:1.0"},
		},
		{
			name:      "corporate only",
			params:    map[string]string{filter.KeyShowThirdParty: "false"},
			wantGavcs: []string{"com.acme:lib:1.0::"},
		},
		{
			name:        "depth one",
			params:      map[string]string{filter.KeyDepth: "1"},
			wantGavcs:   []string{"com.acme:lib:1.0::", "org.ext:util:2.0::"},
			wantUnknown: []string{"org.missing:ghost:1.0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, err := s.Dependencies(ctx, "app:1.0", filter.FromParams(tt.params))
			if err != nil {
				t.Fatal(err)
			}
			var gavcs []string
			for _, a := range deps.Artifacts {
				gavcs = append(gavcs, a.Gavc())
			}
			if !reflect.DeepEqual(gavcs, tt.wantGavcs) {
				t.Errorf("artifacts = %v, want %v", gavcs, tt.wantGavcs)
			}
			if !reflect.DeepEqual(deps.Unknown, tt.wantUnknown) {
				t.Errorf("unknown = %v, want %v", deps.Unknown, tt.wantUnknown)
			}
		})
	}

	_, err := s.Dependencies(ctx, "nope:1.0", nil)
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
}

func TestDependencyGraph(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	g, err := s.DependencyGraph(ctx, "app:1.0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 7 {
		t.Errorf("nodes = %v, want app, its three targets, their owners and core", dag.NodeIDs(g.Nodes()))
	}
	if n, ok := g.Node("ghost"); !ok || !n.IsUnknown() {
		t.Error("unknown target missing from dependency graph")
	}

	g, err = s.DependencyGraph(ctx, "app:1.0", filter.FromParams(map[string]string{filter.KeyDepth: "1"}))
	if err != nil {
		t.Fatal(err)
	}
	if got := dag.NodeIDs(g.Nodes()); len(got) != 4 {
		t.Errorf("depth one nodes = %v", got)
	}

	_, err = s.DependencyGraph(ctx, "nope:1.0", nil)
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
}

func TestAncestors(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		gavc string
		want []string
	}{
		{"com.acme:lib:1.0", []string{"app:1.0"}},
		{"org.ext:core:3.0", []string{"app:1.0", "lib:1.0"}},
		{"org.missing:ghost:1.0", []string{"app:1.0"}},
		{"com.acme:app:1.0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.gavc, func(t *testing.T) {
			mods, err := s.Ancestors(ctx, tt.gavc, filter.New())
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, m := range mods {
				ids = append(ids, m.ID())
			}
			if !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("Ancestors(%s) = %v, want %v", tt.gavc, ids, tt.want)
			}
		})
	}
}

func TestModuleLicenses(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	names := func(ls []model.License) []string {
		var out []string
		for _, l := range ls {
			out = append(out, l.Name)
		}
		return out
	}

	got, err := s.ModuleLicenses(ctx, "app:1.0", filter.New())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Apache-2.0", "GPL", "MIT"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("ModuleLicenses() = %v, want %v", names(got), want)
	}
	for _, l := range got {
		if l.Name == "GPL" && !l.ToBeValidated() {
			t.Error("unresolved label should be reported as to be validated")
		}
	}

	got, err = s.ModuleLicenses(ctx, "app:1.0", filter.FromParams(map[string]string{"approved": "true"}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Apache-2.0"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("ModuleLicenses(approved) = %v, want %v", names(got), want)
	}

	got, err = s.ModuleLicenses(ctx, "app:1.0", filter.FromParams(map[string]string{"to-be-validated": "true"}))
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"GPL", "MIT"}; !reflect.DeepEqual(names(got), want) {
		t.Errorf("ModuleLicenses(to-be-validated) = %v, want %v", names(got), want)
	}
}

func TestResolveLicense(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		label string
		want  string
	}{
		{"Apache-2.0", "Apache-2.0"},
		{"MIT License", "MIT"},
		{"apache", ""},
		{"(", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			l, err := s.ResolveLicense(ctx, tt.label)
			if err != nil {
				t.Fatal(err)
			}
			var got string
			if l != nil {
				got = l.Name
			}
			if got != tt.want {
				t.Errorf("ResolveLicense(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestAddAndRemoveLicense(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	const gavc = "com.acme:lib:0.9"

	licenses := func() []string {
		a, err := s.Artifact(ctx, gavc)
		if err != nil {
			t.Fatal(err)
		}
		return a.Licenses
	}

	if err := s.AddLicense(ctx, gavc, "Custom"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLicense(ctx, gavc, "Other"); err != nil {
		t.Fatal(err)
	}
	if got, want := licenses(), []string{"Custom"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after unknown labels = %v, want %v", got, want)
	}

	if err := s.AddLicense(ctx, gavc, "MIT v2"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLicense(ctx, gavc, "MIT"); err != nil {
		t.Fatal(err)
	}
	if got, want := licenses(), []string{"Custom", "MIT"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after known label = %v, want %v", got, want)
	}

	if err := s.RemoveLicense(ctx, gavc, "MIT License"); err != nil {
		t.Fatal(err)
	}
	if got, want := licenses(), []string{"Custom"}; !reflect.DeepEqual(got, want) {
		t.Errorf("after remove = %v, want %v", got, want)
	}

	wantCode(t, s.AddLicense(ctx, "org.nothing:here:1.0", "MIT"), grapeserrors.ErrCodeNotFound)
}

func TestDeleteLicenseRemovesReferences(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.DeleteLicense(ctx, "Apache-2.0"); err != nil {
		t.Fatal(err)
	}
	a, err := s.Artifact(ctx, "com.acme:app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if a.HasLicense("Apache-2.0") {
		t.Error("reference to deleted license kept")
	}
	_, err = s.License(ctx, "Apache-2.0")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
	wantCode(t, s.DeleteLicense(ctx, "Apache-2.0"), grapeserrors.ErrCodeNotFound)
}

func TestApproveLicense(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.ApproveLicense(ctx, "MIT", false); err != nil {
		t.Fatal(err)
	}
	l, err := s.License(ctx, "MIT")
	if err != nil {
		t.Fatal(err)
	}
	if l.ToBeValidated() || l.IsApproved() {
		t.Errorf("MIT approved = %v, want explicit false", l.Approved)
	}
}

func TestPromoteModuleReachesTransitiveDependencies(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	report, err := s.PromotionReport(ctx, "app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"com.acme:lib:1.0::", "org.ext:core:3.0::", "org.ext:util:2.0::"}; !reflect.DeepEqual(report.Unpromoted, want) {
		t.Errorf("Unpromoted = %v, want %v", report.Unpromoted, want)
	}
	if report.Promotable() {
		t.Error("Promotable() = true before promotion")
	}

	if err := s.PromoteModule(ctx, "app:1.0"); err != nil {
		t.Fatal(err)
	}
	for _, gavc := range []string{"com.acme:app:1.0", "com.acme:lib:1.0", "org.ext:core:3.0", "org.ext:util:2.0"} {
		a, err := s.Artifact(ctx, gavc)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Promoted {
			t.Errorf("%s not promoted", gavc)
		}
	}
	if a, _ := s.Artifact(ctx, "com.acme:lib:0.9"); a.Promoted {
		t.Error("unrelated artifact promoted")
	}
	m, err := s.Module(ctx, "app:1.0")
	if err != nil || !m.Promoted {
		t.Errorf("module promoted = %v, %v", m, err)
	}

	if err := s.SetDoNotUse(ctx, "org.ext:util:2.0", true); err != nil {
		t.Fatal(err)
	}
	report, err = s.PromotionReport(ctx, "app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Unpromoted) != 0 || !reflect.DeepEqual(report.DoNotUse, []string{"org.ext:util:2.0::"}) {
		t.Errorf("report = %+v", report)
	}

	wantCode(t, s.PromoteModule(ctx, "nope:1.0"), grapeserrors.ErrCodeNotFound)
}

// newVersionedService builds a catalog where two modules depend on
// different versions of one artifact:
//
//	app:1.0   ──▶ com.acme:lib:1.0 (owned by lib:1.0)
//	other:1.0 ──▶ com.acme:lib:2.0 (owned by lib:2.0) ──▶ org.evil:evil:6.6
func newVersionedService(t *testing.T) *Service {
	t.Helper()
	snap := &pkgio.Snapshot{
		Modules: []model.Module{
			{
				Name: "app", Version: "1.0",
				Artifacts:    []model.Artifact{art("com.acme", "app", "1.0")},
				Dependencies: []model.Dependency{{Target: "com.acme:lib:1.0"}},
			},
			{
				Name: "other", Version: "1.0",
				Artifacts:    []model.Artifact{art("com.acme", "other", "1.0")},
				Dependencies: []model.Dependency{{Target: "com.acme:lib:2.0"}},
			},
			{Name: "lib", Version: "1.0", Artifacts: []model.Artifact{art("com.acme", "lib", "1.0", "MIT")}},
			{
				Name: "lib", Version: "2.0",
				Artifacts:    []model.Artifact{art("com.acme", "lib", "2.0", "GPL")},
				Dependencies: []model.Dependency{{Target: "org.evil:evil:6.6"}},
			},
			{Name: "evil", Version: "6.6", Artifacts: []model.Artifact{art("org.evil", "evil", "6.6", "AGPL")}},
		},
	}
	return New(memory.FromSnapshot(snap), nil)
}

func TestRollupsFollowDeclaredVersions(t *testing.T) {
	ctx := context.Background()

	t.Run("promote", func(t *testing.T) {
		s := newVersionedService(t)
		if err := s.PromoteModule(ctx, "app:1.0"); err != nil {
			t.Fatal(err)
		}
		for gavc, want := range map[string]bool{
			"com.acme:lib:1.0":  true,
			"com.acme:lib:2.0":  false,
			"org.evil:evil:6.6": false,
		} {
			a, err := s.Artifact(ctx, gavc)
			if err != nil {
				t.Fatal(err)
			}
			if a.Promoted != want {
				t.Errorf("%s promoted = %v, want %v", gavc, a.Promoted, want)
			}
		}
	})

	t.Run("licenses", func(t *testing.T) {
		s := newVersionedService(t)
		got, err := s.ModuleLicenses(ctx, "app:1.0", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].Name != "MIT" {
			t.Errorf("ModuleLicenses(app:1.0) = %v, want [MIT]", got)
		}
	})

	t.Run("dependencies", func(t *testing.T) {
		s := newVersionedService(t)
		deps, err := s.Dependencies(ctx, "app:1.0", nil)
		if err != nil {
			t.Fatal(err)
		}
		var gavcs []string
		for _, a := range deps.Artifacts {
			gavcs = append(gavcs, a.Gavc())
		}
		if want := []string{"com.acme:lib:1.0::"}; !reflect.DeepEqual(gavcs, want) {
			t.Errorf("Dependencies(app:1.0) = %v, want %v", gavcs, want)
		}
	})

	t.Run("ancestors", func(t *testing.T) {
		s := newVersionedService(t)
		mods, err := s.Ancestors(ctx, "com.acme:lib:2.0", nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(mods) != 1 || mods[0].ID() != "other:1.0" {
			t.Errorf("Ancestors(lib:2.0) = %v, want [other:1.0]", mods)
		}
	})
}

func TestOrganizations(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	app, err := s.Module(ctx, "app:1.0")
	if err != nil {
		t.Fatal(err)
	}
	org, err := s.MatchingOrganization(ctx, app)
	if err != nil || org == nil || org.Name != "acme" {
		t.Errorf("MatchingOrganization(app) = %v, %v; want acme", org, err)
	}
	ext, _ := s.Module(ctx, "ext:1.0")
	if org, err := s.MatchingOrganization(ctx, ext); err != nil || org != nil {
		t.Errorf("MatchingOrganization(ext) = %v, %v; want nil", org, err)
	}

	if org, err := s.ModuleOrganization(ctx, "app:1.0"); err != nil || org.Name != NoOrganization {
		t.Errorf("ModuleOrganization() = %v, %v", org, err)
	}
	if org, err := s.ArtifactOrganization(ctx, "com.acme:app:1.0"); err != nil || org != nil {
		t.Errorf("ArtifactOrganization() before assignment = %v, %v", org, err)
	}

	if err := s.StoreOrganization(ctx, &model.Organization{Name: "ext"}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCorporateGroupID(ctx, "ext", "org.ext"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCorporateGroupID(ctx, "ext", "org.ext"); err != nil {
		t.Fatal(err)
	}
	o, _ := s.Organization(ctx, "ext")
	if !reflect.DeepEqual(o.CorporateGroupIDPrefixes, []string{"org.ext"}) {
		t.Errorf("prefixes = %v, want [org.ext]", o.CorporateGroupIDPrefixes)
	}
	if org, err := s.ArtifactOrganization(ctx, "org.ext:core:3.0"); err != nil || org == nil || org.Name != "ext" {
		t.Errorf("ArtifactOrganization() after assignment = %v, %v; want ext", org, err)
	}

	if err := s.RemoveCorporateGroupID(ctx, "ext", "org.ext"); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveCorporateGroupID(ctx, "ext", "org.ext"); err != nil {
		t.Fatal(err)
	}
	if m, _ := s.Module(ctx, "ext:1.0"); m.Organization != "" {
		t.Errorf("organization kept after prefix removal: %q", m.Organization)
	}

	_, err = s.ArtifactOrganization(ctx, "org.nothing:here:1.0")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
	wantCode(t, s.AddCorporateGroupID(ctx, "nope", "x"), grapeserrors.ErrCodeNotFound)
	if err := s.DeleteOrganization(ctx, "ext"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Organization(ctx, "ext")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
}

func TestModules(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if v, err := s.ModuleVersions(ctx, "app"); err != nil || !reflect.DeepEqual(v, []string{"1.0"}) {
		t.Errorf("ModuleVersions(app) = %v, %v", v, err)
	}
	_, err := s.ModuleVersions(ctx, "nope")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)

	if err := s.DeleteModule(ctx, "lib:1.0"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Module(ctx, "lib:1.0")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
	_, err = s.Artifact(ctx, "com.acme:lib:1.0")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)

	wantCode(t, s.StoreModule(ctx, &model.Module{Name: "../etc"}), grapeserrors.ErrCodeInvalidInput)
}

func TestStoreIfNew(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	a := art("com.acme", "lib", "1.0")
	stored, err := s.StoreIfNew(ctx, &a)
	if err != nil || stored {
		t.Errorf("StoreIfNew(existing) = %v, %v", stored, err)
	}
	got, _ := s.Artifact(ctx, "com.acme:lib:1.0")
	if !got.HasLicense("MIT License") {
		t.Error("existing artifact overwritten")
	}

	b := art("com.acme", "new", "1.0")
	if stored, err := s.StoreIfNew(ctx, &b); err != nil || !stored {
		t.Errorf("StoreIfNew(new) = %v, %v", stored, err)
	}
}

func TestArtifactFieldUpdates(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	const gavc = "com.acme:lib:1.0"

	if err := s.UpdateProvider(ctx, gavc, "acme"); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateDownloadURL(ctx, gavc, "https://repo.acme.com/lib-1.0.jar"); err != nil {
		t.Fatal(err)
	}
	a, _ := s.Artifact(ctx, gavc)
	if a.Provider != "acme" || a.DownloadURL != "https://repo.acme.com/lib-1.0.jar" {
		t.Errorf("artifact = %+v", a)
	}

	wantCode(t, s.UpdateDownloadURL(ctx, gavc, "ftp://x"), grapeserrors.ErrCodeInvalidInput)
	wantCode(t, s.UpdateProvider(ctx, "org.nothing:here:1.0", "x"), grapeserrors.ErrCodeNotFound)
}

func TestProducts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if err := s.CreateProduct(ctx, "suite"); err != nil {
		t.Fatal(err)
	}
	wantCode(t, s.CreateProduct(ctx, "suite"), grapeserrors.ErrCodeInvalidInput)

	if err := s.SetProductModules(ctx, "suite", []string{"app", "lib"}); err != nil {
		t.Fatal(err)
	}
	p, err := s.Product(ctx, "suite")
	if err != nil || !reflect.DeepEqual(p.Modules, []string{"app", "lib"}) {
		t.Errorf("Product() = %v, %v", p, err)
	}

	if err := s.DeleteProduct(ctx, "suite"); err != nil {
		t.Fatal(err)
	}
	_, err = s.Product(ctx, "suite")
	wantCode(t, err, grapeserrors.ErrCodeNotFound)
}
