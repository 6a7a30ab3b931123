package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
)

// testEnv is an isolated config file and catalog snapshot.
type testEnv struct {
	dir     string
	config  string
	catalog string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "grapes.toml"),
		catalog: filepath.Join(dir, "catalog.json"),
	}
	env.writeConfig(t, "[cache]\nbackend = \"none\"\n")
	return env
}

func (e *testEnv) writeConfig(t *testing.T, body string) {
	t.Helper()
	if err := os.WriteFile(e.config, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// run executes one grapes invocation and returns what it wrote to the
// command's stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config, "--catalog", e.catalog}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("grapes %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func approved(v bool) *bool { return &v }

// writeFixture saves the catalog:
//
//	app:1.0 ── compile ──▶ com.acme:lib:1.0 (owned by lib:1.0)
//	        ── compile ──▶ org.missing:ghost:1.0 (not catalogued)
func (e *testEnv) writeFixture(t *testing.T, libDoNotUse bool) string {
	t.Helper()
	snap := &pkgio.Snapshot{
		Modules: []model.Module{
			{
				Name:      "app",
				Version:   "1.0",
				Artifacts: []model.Artifact{{GroupID: "com.acme", ArtifactID: "app", Version: "1.0", Licenses: []string{"Apache-2.0"}}},
				Dependencies: []model.Dependency{
					{Target: "com.acme:lib:1.0", Scope: model.ScopeCompile},
					{Target: "org.missing:ghost:1.0", Scope: model.ScopeCompile},
				},
			},
			{
				Name:      "lib",
				Version:   "1.0",
				Artifacts: []model.Artifact{{GroupID: "com.acme", ArtifactID: "lib", Version: "1.0", Licenses: []string{"MIT"}, DoNotUse: libDoNotUse}},
			},
		},
		Artifacts: []model.Artifact{
			{GroupID: "com.acme", ArtifactID: "lib", Version: "1.1"},
			{GroupID: "com.acme", ArtifactID: "lib", Version: "1.2-SNAPSHOT"},
		},
		Licenses: []model.License{
			{Name: "Apache-2.0", Approved: approved(true), URL: "https://www.apache.org/licenses/LICENSE-2.0"},
			{Name: "MIT"},
		},
		Organizations: []model.Organization{{Name: "acme", CorporateGroupIDPrefixes: []string{"com.acme"}}},
	}
	path := filepath.Join(e.dir, "fixture.json")
	if err := pkgio.SaveSnapshot(snap, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *testEnv) export(t *testing.T) *pkgio.Snapshot {
	t.Helper()
	snap, err := pkgio.ReadSnapshot(strings.NewReader(e.mustRun(t, "export")))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"serve", "import", "export", "graph", "versions", "licenses", "promote", "browse", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestImportExport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "import", env.writeFixture(t, false))

	if _, err := os.Stat(env.catalog); err != nil {
		t.Fatalf("catalog not persisted: %v", err)
	}

	snap := env.export(t)
	if len(snap.Modules) != 2 {
		t.Errorf("exported %d modules, want 2", len(snap.Modules))
	}
	if len(snap.Artifacts) != 4 {
		t.Errorf("exported %d artifacts, want 4", len(snap.Artifacts))
	}

	out := filepath.Join(env.dir, "dump.json")
	env.mustRun(t, "export", "-o", out)
	saved, err := pkgio.LoadSnapshot(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(saved.Licenses) != 2 {
		t.Errorf("export -o wrote %d licenses, want 2", len(saved.Licenses))
	}
}

func TestImportInvalidGavc(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "import", "not-a-gavc")
	if !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidGavc) {
		t.Errorf("import error = %v, want INVALID_GAVC", err)
	}
}

func TestGraphCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "import", env.writeFixture(t, false))

	t.Run("dot", func(t *testing.T) {
		out := env.mustRun(t, "graph", "app:1.0")
		for _, want := range []string{"digraph G {", `"app:1.0"`, `"lib"`, `"ghost"`, "dashed"} {
			if !strings.Contains(out, want) {
				t.Errorf("dot output missing %s", want)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		out := env.mustRun(t, "graph", "app:1.0", "--format", "json")
		var g struct {
			Nodes []struct {
				ID string `json:"id"`
			} `json:"nodes"`
		}
		if err := json.Unmarshal([]byte(out), &g); err != nil {
			t.Fatalf("graph json: %v", err)
		}
		ids := map[string]bool{}
		for _, n := range g.Nodes {
			ids[n.ID] = true
		}
		for _, want := range []string{"app:1.0", "lib", "lib:1.0", "ghost"} {
			if !ids[want] {
				t.Errorf("graph json missing node %q (have %v)", want, ids)
			}
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(env.dir, "modules.dot")
		if out := env.mustRun(t, "graph", "-o", path); out != "" {
			t.Errorf("graph -o wrote to stdout: %q", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"app" -> "lib"`) {
			t.Errorf("module graph missing app -> lib:\n%s", data)
		}
	})

	t.Run("input", func(t *testing.T) {
		path := filepath.Join(env.dir, "app.json")
		env.mustRun(t, "graph", "app:1.0", "-o", path)
		out := env.mustRun(t, "graph", "--input", path, "--format", "dot")
		if !strings.Contains(out, `"app:1.0" -> "lib"`) {
			t.Errorf("re-rendered graph missing app:1.0 -> lib:\n%s", out)
		}
		if _, err := env.run(t, "graph", "app:1.0", "--input", path); !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("reduce", func(t *testing.T) {
		out := env.mustRun(t, "graph", "app:1.0", "--reduce")
		if !strings.Contains(out, `"app:1.0" -> "lib"`) {
			t.Errorf("reduced graph lost a direct edge:\n%s", out)
		}
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := env.run(t, "graph", "--format", "xml")
		if !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidFormat) {
			t.Errorf("error = %v, want INVALID_FORMAT", err)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := env.run(t, "graph", "nope:1.0")
		if !grapeserrors.Is(err, grapeserrors.ErrCodeNotFound) {
			t.Errorf("error = %v, want NOT_FOUND", err)
		}
	})
}

func TestVersionsCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "import", env.writeFixture(t, false))

	out := env.mustRun(t, "versions", "com.acme:lib:1.0")
	if want := "1.0\n1.1\n1.2-SNAPSHOT\n"; out != want {
		t.Errorf("versions = %q, want %q", out, want)
	}

	_, err := env.run(t, "versions", "com.nobody:thing")
	if !grapeserrors.Is(err, grapeserrors.ErrCodeNotFound) {
		t.Errorf("unknown artifact error = %v, want NOT_FOUND", err)
	}
}

func TestLicensesCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "import", env.writeFixture(t, false))

	out := env.mustRun(t, "licenses", "app:1.0")
	for _, want := range []string{"Apache-2.0", "approved", "MIT", "to validate"} {
		if !strings.Contains(out, want) {
			t.Errorf("licenses output missing %q:\n%s", want, out)
		}
	}

	out = env.mustRun(t, "licenses", "--filter", "approved=true")
	if !strings.Contains(out, "Apache-2.0") || strings.Contains(out, "MIT") {
		t.Errorf("approved filter not applied:\n%s", out)
	}
}

func TestPromoteCommand(t *testing.T) {
	promoted := func(snap *pkgio.Snapshot, gavc string) bool {
		for _, a := range snap.Artifacts {
			if a.Gavc() == gavc {
				return a.Promoted
			}
		}
		return false
	}

	t.Run("dry run", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "import", env.writeFixture(t, false))
		env.mustRun(t, "promote", "app:1.0", "--dry-run")
		if promoted(env.export(t), "com.acme:lib:1.0::") {
			t.Error("dry run promoted a dependency")
		}
	})

	t.Run("promote", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "import", env.writeFixture(t, false))
		env.mustRun(t, "promote", "app:1.0")
		snap := env.export(t)
		if !promoted(snap, "com.acme:lib:1.0::") || !promoted(snap, "com.acme:app:1.0::") {
			t.Error("promote did not reach the module closure")
		}
	})

	t.Run("do not use", func(t *testing.T) {
		env := newTestEnv(t)
		env.mustRun(t, "import", env.writeFixture(t, true))
		_, err := env.run(t, "promote", "app:1.0")
		if !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidInput) {
			t.Fatalf("error = %v, want INVALID_INPUT", err)
		}
		if promoted(env.export(t), "com.acme:lib:1.0::") {
			t.Error("refused promotion still promoted a dependency")
		}
		env.mustRun(t, "promote", "app:1.0", "--force")
		if !promoted(env.export(t), "com.acme:lib:1.0::") {
			t.Error("--force did not promote")
		}
	})
}

const appMetadata = `<metadata><versioning><versions><version>1.0</version></versions></versioning></metadata>`

const appPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency><groupId>org.example</groupId><artifactId>lib</artifactId><version>2.0</version></dependency>
    <dependency><groupId>org.example</groupId><artifactId>gone</artifactId><version>1.0</version></dependency>
    <dependency><groupId>junit</groupId><artifactId>junit</artifactId><version>4.13</version><scope>test</scope></dependency>
  </dependencies>
</project>`

const libPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>lib</artifactId>
  <version>2.0</version>
</project>`

func TestImportFromMaven(t *testing.T) {
	var (
		mu        sync.Mutex
		requested []string
	)
	files := map[string]string{
		"/org/example/app/maven-metadata.xml": appMetadata,
		"/org/example/app/1.0/app-1.0.pom":    appPOM,
		"/org/example/lib/2.0/lib-2.0.pom":    libPOM,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.Path)
		mu.Unlock()
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	env := newTestEnv(t)
	env.writeConfig(t, "[cache]\nbackend = \"none\"\n\n[maven]\nrepository = \""+srv.URL+"\"\n")

	env.mustRun(t, "import", "org.example:app", "--depth", "1")

	snap := env.export(t)
	var ids []string
	for _, m := range snap.Modules {
		ids = append(ids, m.ID())
	}
	if strings.Join(ids, ",") != "app:1.0,lib:2.0" {
		t.Errorf("imported modules = %v, want [app:1.0 lib:2.0]", ids)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, p := range requested {
		if strings.HasPrefix(p, "/junit/") {
			t.Errorf("test-scoped dependency was fetched: %s", p)
		}
	}
}

func TestImportLocalPOM(t *testing.T) {
	var fetchedApp atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/org/example/lib/2.0/lib-2.0.pom":
			w.Write([]byte(libPOM))
		case "/org/example/app/1.0/app-1.0.pom":
			fetchedApp.Store(true)
			w.Write([]byte(appPOM))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	env := newTestEnv(t)
	env.writeConfig(t, "[cache]\nbackend = \"none\"\n\n[maven]\nrepository = \""+srv.URL+"\"\n")
	path := filepath.Join(env.dir, "pom.xml")
	if err := os.WriteFile(path, []byte(appPOM), 0o644); err != nil {
		t.Fatal(err)
	}

	env.mustRun(t, "import", path, "--depth", "1")

	var ids []string
	for _, m := range env.export(t).Modules {
		ids = append(ids, m.ID())
	}
	if strings.Join(ids, ",") != "app:1.0,lib:2.0" {
		t.Errorf("imported modules = %v, want [app:1.0 lib:2.0]", ids)
	}
	if fetchedApp.Load() {
		t.Error("local project was fetched from the repository")
	}
}

func TestImportLocalPOMWithoutVersion(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "pom.xml")
	if err := os.WriteFile(path, []byte("<project><groupId>g</groupId><artifactId>a</artifactId></project>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run(t, "import", path); !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestConfigCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "config")
	for _, want := range []string{`addr = ":8074"`, `backend = "none"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %s:\n%s", want, out)
		}
	}

	if out := env.mustRun(t, "config", "--path"); out != env.config+"\n" {
		t.Errorf("config --path = %q, want %q", out, env.config)
	}

	env.writeConfig(t, "[server]\nport = 1\n")
	if _, err := env.run(t, "config"); !grapeserrors.Is(err, grapeserrors.ErrCodeInvalidConfig) {
		t.Errorf("unknown key error = %v, want INVALID_CONFIG", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out := env.mustRun(t, "completion", shell)
			if !strings.Contains(out, "grapes") {
				t.Errorf("%s completion does not mention grapes", shell)
			}
		})
	}
}
