package depgraph

import "github.com/matzehuels/grapes/pkg/model"

// Identity maps each entity shape to a node ID. Entities with equal IDs
// share a node.
type Identity interface {
	// Name labels the strategy in graph metadata.
	Name() string
	Module(m *model.Module) string
	Artifact(a *model.Artifact) string
	// Target maps a raw dependency target (a gavc that may not resolve).
	Target(raw string) string
}

// ModuleIdentity keys modules by name and artifacts by artifact-id, so all
// versions of a module collapse into one node, and a module whose name
// equals its artifact-id is the same node as that artifact.
type ModuleIdentity struct{}

func (ModuleIdentity) Name() string                      { return "module" }
func (ModuleIdentity) Module(m *model.Module) string     { return m.Name }
func (ModuleIdentity) Artifact(a *model.Artifact) string { return a.ArtifactID }
func (ModuleIdentity) Target(raw string) string          { return targetID(raw) }

// ArtifactIdentity keys modules by "name:version" and artifacts by
// artifact-id, keeping module versions apart.
type ArtifactIdentity struct{}

func (ArtifactIdentity) Name() string                      { return "artifact" }
func (ArtifactIdentity) Module(m *model.Module) string     { return m.ID() }
func (ArtifactIdentity) Artifact(a *model.Artifact) string { return a.ArtifactID }
func (ArtifactIdentity) Target(raw string) string          { return targetID(raw) }

// GavcIdentity keys modules by "name:version" and artifacts by their
// canonical gavc, so every artifact version is a node of its own. Walks
// over it only reach the versions a module actually declares.
type GavcIdentity struct{}

func (GavcIdentity) Name() string                      { return "gavc" }
func (GavcIdentity) Module(m *model.Module) string     { return m.ID() }
func (GavcIdentity) Artifact(a *model.Artifact) string { return a.Gavc() }
func (GavcIdentity) Target(raw string) string          { return model.Canonical(raw) }

// targetID is the artifact-id of a raw target, or the raw string itself
// when it carries none.
func targetID(raw string) string {
	if id := model.ParseGavc(raw).ArtifactID; id != "" {
		return id
	}
	return raw
}
