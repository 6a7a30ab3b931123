// Package model defines the catalog entities: artifacts, modules, the
// dependency edges between them, licenses, organizations and products.
//
// An [Artifact] is identified by its gavc key
// (groupId:artifactId:version:classifier:extension). A [Module] owns
// artifacts, declares [Dependency] edges to gavc targets and may contain
// sub-modules. Dependency targets are shared, not owned: any number of
// modules may point at the same gavc, and a target need not exist in the
// catalog at all.
//
// Entities are plain values. They carry bson and json tags so the same
// structs travel through the Mongo store, snapshot files and the HTTP API.
package model

import (
	"regexp"
	"sort"
	"strings"
)

// Scope is the usage context of a dependency edge.
type Scope string

// Known dependency scopes. Unknown scope strings are kept verbatim.
const (
	ScopeCompile  Scope = "compile"
	ScopeRuntime  Scope = "runtime"
	ScopeTest     Scope = "test"
	ScopeProvided Scope = "provided"
)

// Scopes lists the known scopes in display order.
var Scopes = []Scope{ScopeCompile, ScopeRuntime, ScopeTest, ScopeProvided}

// Artifact is a single published file of a module.
type Artifact struct {
	GroupID     string   `json:"groupId" bson:"groupId"`
	ArtifactID  string   `json:"artifactId" bson:"artifactId"`
	Version     string   `json:"version" bson:"version"`
	Classifier  string   `json:"classifier,omitempty" bson:"classifier,omitempty"`
	Extension   string   `json:"extension,omitempty" bson:"extension,omitempty"`
	Type        string   `json:"type,omitempty" bson:"type,omitempty"`
	Origin      string   `json:"origin,omitempty" bson:"origin,omitempty"`
	Promoted    bool     `json:"promoted" bson:"promoted"`
	DoNotUse    bool     `json:"doNotUse" bson:"doNotUse"`
	Licenses    []string `json:"licenses,omitempty" bson:"licenses,omitempty"`
	Provider    string   `json:"provider,omitempty" bson:"provider,omitempty"`
	DownloadURL string   `json:"downloadUrl,omitempty" bson:"downloadUrl,omitempty"`
}

// Gavc returns the canonical identity key of the artifact.
func (a *Artifact) Gavc() string {
	return Gavc{
		GroupID:    a.GroupID,
		ArtifactID: a.ArtifactID,
		Version:    a.Version,
		Classifier: a.Classifier,
		Extension:  a.Extension,
	}.String()
}

// HasLicense reports whether the artifact references the license label.
func (a *Artifact) HasLicense(name string) bool {
	for _, l := range a.Licenses {
		if l == name {
			return true
		}
	}
	return false
}

// Dependency is a directed edge from a module to a target gavc.
type Dependency struct {
	Target string `json:"target" bson:"target"`
	Scope  Scope  `json:"scope,omitempty" bson:"scope,omitempty"`
}

// Module is a named, versioned unit owning artifacts and declaring
// dependencies. Sub-modules inherit nothing; they are walked by
// [Module.AllArtifacts] and [Module.AllDependencies].
type Module struct {
	Name         string       `json:"name" bson:"name"`
	Version      string       `json:"version" bson:"version"`
	Organization string       `json:"organization,omitempty" bson:"organization,omitempty"`
	Promoted     bool         `json:"promoted" bson:"promoted"`
	Submodule    bool         `json:"submodule,omitempty" bson:"submodule,omitempty"`
	Artifacts    []Artifact   `json:"artifacts,omitempty" bson:"artifacts,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Submodules   []Module     `json:"submodules,omitempty" bson:"submodules,omitempty"`
}

// ID returns the module's unique key "name:version".
func (m *Module) ID() string {
	return ModuleID(m.Name, m.Version)
}

// ModuleID builds a module key from its name and version.
func ModuleID(name, version string) string {
	return name + ":" + version
}

// SplitModuleID splits a "name:version" key. A key without ':' is a bare
// name with an empty version.
func SplitModuleID(id string) (name, version string) {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[:i], id[i+1:]
	}
	return id, ""
}

// AllArtifacts returns the module's artifacts followed by those of its
// sub-modules, depth first.
func (m *Module) AllArtifacts() []Artifact {
	out := append([]Artifact(nil), m.Artifacts...)
	for i := range m.Submodules {
		out = append(out, m.Submodules[i].AllArtifacts()...)
	}
	return out
}

// AllDependencies returns the module's dependencies followed by those of
// its sub-modules, depth first.
func (m *Module) AllDependencies() []Dependency {
	out := append([]Dependency(nil), m.Dependencies...)
	for i := range m.Submodules {
		out = append(out, m.Submodules[i].AllDependencies()...)
	}
	return out
}

// Owns reports whether the module or one of its sub-modules declares the
// artifact with the given gavc.
func (m *Module) Owns(gavc string) bool {
	for _, a := range m.AllArtifacts() {
		if a.Gavc() == gavc {
			return true
		}
	}
	return false
}

// License is a canonical license. Approved is nil while the license is
// still to be validated.
type License struct {
	Name     string `json:"name" bson:"name"`
	LongName string `json:"longName,omitempty" bson:"longName,omitempty"`
	URL      string `json:"url,omitempty" bson:"url,omitempty"`
	Comments string `json:"comments,omitempty" bson:"comments,omitempty"`
	Regexp   string `json:"regexp,omitempty" bson:"regexp,omitempty"`
	Approved *bool  `json:"approved,omitempty" bson:"approved,omitempty"`
}

// ToBeValidated reports whether nobody has approved or rejected the license.
func (l *License) ToBeValidated() bool {
	return l.Approved == nil
}

// IsApproved reports whether the license was explicitly approved.
func (l *License) IsApproved() bool {
	return l.Approved != nil && *l.Approved
}

// Matches reports whether a free-text license label designates this
// license. Without a pattern the label must equal the name. With a pattern
// the whole label must match it; a pattern that does not compile never
// matches.
func (l *License) Matches(label string) bool {
	if l.Regexp == "" {
		return l.Name == label
	}
	re, err := regexp.Compile("^(?:" + l.Regexp + ")$")
	if err != nil {
		return false
	}
	return re.MatchString(label)
}

// Organization groups corporate group-id prefixes under a name.
type Organization struct {
	Name                     string   `json:"name" bson:"name"`
	CorporateGroupIDPrefixes []string `json:"corporateGroupIdPrefixes,omitempty" bson:"corporateGroupIdPrefixes,omitempty"`
}

// IsCorporate reports whether groupID starts with one of the
// organization's prefixes.
func (o *Organization) IsCorporate(groupID string) bool {
	if o == nil || groupID == "" {
		return false
	}
	for _, p := range o.CorporateGroupIDPrefixes {
		if p != "" && strings.HasPrefix(groupID, p) {
			return true
		}
	}
	return false
}

// Product is a named list of module names.
type Product struct {
	Name    string   `json:"name" bson:"name"`
	Modules []string `json:"modules,omitempty" bson:"modules,omitempty"`
}

// SortArtifacts orders artifacts by gavc.
func SortArtifacts(arts []Artifact) {
	sort.Slice(arts, func(i, j int) bool { return arts[i].Gavc() < arts[j].Gavc() })
}

// SortLicenses orders licenses by name.
func SortLicenses(ls []License) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].Name < ls[j].Name })
}
