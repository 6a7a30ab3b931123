package maven

import (
	"encoding/xml"
	"strings"

	"github.com/matzehuels/grapes/pkg/model"
)

type metadata struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Versioning struct {
		Latest   string   `xml:"latest"`
		Release  string   `xml:"release"`
		Versions []string `xml:"versions>version"`
	} `xml:"versioning"`
}

// POM is the subset of a Maven project model grapes imports.
type POM struct {
	GroupID     string     `xml:"groupId" json:"groupId,omitempty"`
	ArtifactID  string     `xml:"artifactId" json:"artifactId"`
	Version     string     `xml:"version" json:"version,omitempty"`
	Packaging   string     `xml:"packaging" json:"packaging,omitempty"`
	Name        string     `xml:"name" json:"name,omitempty"`
	Description string     `xml:"description" json:"description,omitempty"`
	Parent      Parent     `xml:"parent" json:"parent"`
	Properties  Properties `xml:"properties" json:"properties,omitempty"`
	Licenses    []License  `xml:"licenses>license" json:"licenses,omitempty"`

	Dependencies []Dependency `xml:"dependencies>dependency" json:"dependencies,omitempty"`
	Managed      []Dependency `xml:"dependencyManagement>dependencies>dependency" json:"managed,omitempty"`
}

// Parent is the parent POM reference.
type Parent struct {
	GroupID    string `xml:"groupId" json:"groupId,omitempty"`
	ArtifactID string `xml:"artifactId" json:"artifactId,omitempty"`
	Version    string `xml:"version" json:"version,omitempty"`
}

// License is a license declared by a POM.
type License struct {
	Name string `xml:"name" json:"name"`
	URL  string `xml:"url" json:"url,omitempty"`
}

// Dependency is a POM dependency declaration.
type Dependency struct {
	GroupID    string `xml:"groupId" json:"groupId"`
	ArtifactID string `xml:"artifactId" json:"artifactId"`
	Version    string `xml:"version" json:"version,omitempty"`
	Classifier string `xml:"classifier" json:"classifier,omitempty"`
	Type       string `xml:"type" json:"type,omitempty"`
	Scope      string `xml:"scope" json:"scope,omitempty"`
	Optional   string `xml:"optional" json:"optional,omitempty"`
}

// Properties holds the free-form <properties> block.
type Properties map[string]string

// UnmarshalXML reads every child element of <properties> as a key/value
// pair.
func (p *Properties) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	*p = Properties{}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var v string
			if err := d.DecodeElement(&v, &t); err != nil {
				return err
			}
			(*p)[t.Name.Local] = strings.TrimSpace(v)
		case xml.EndElement:
			return nil
		}
	}
}

// properties resolves ${name} references against the POM's properties and
// its project coordinates.
type properties map[string]string

func (pom *POM) resolver() properties {
	props := properties{}
	for k, v := range pom.Properties {
		props[k] = v
	}
	groupID := firstNonEmpty(pom.GroupID, pom.Parent.GroupID)
	version := firstNonEmpty(pom.Version, pom.Parent.Version)
	props["project.groupId"] = groupID
	props["project.artifactId"] = pom.ArtifactID
	props["project.version"] = version
	props["pom.groupId"] = groupID
	props["pom.version"] = version
	props["version"] = version
	props["project.parent.version"] = pom.Parent.Version
	props["project.parent.groupId"] = pom.Parent.GroupID
	return props
}

// resolve substitutes ${...} references. It gives up after a few rounds so
// self-referencing properties terminate; the result may still contain
// unresolved references.
func (p properties) resolve(s string) string {
	for range 8 {
		start := strings.Index(s, "${")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return s
		}
		name := s[start+2 : start+end]
		v, ok := p[name]
		if !ok {
			return s
		}
		s = s[:start] + v + s[start+end+1:]
	}
	return s
}

func unresolved(s string) bool {
	return strings.Contains(s, "${")
}

// dependencies converts the POM's dependency list. Optional dependencies
// and those whose coordinates cannot be resolved are skipped. Versions
// missing from a declaration come from dependencyManagement.
func (pom *POM) dependencies(props properties) []model.Dependency {
	managed := make(map[string]string)
	for _, d := range pom.Managed {
		managed[props.resolve(d.GroupID)+":"+props.resolve(d.ArtifactID)] = props.resolve(d.Version)
	}

	var deps []model.Dependency
	seen := make(map[string]bool)
	for _, d := range pom.Dependencies {
		if d.Optional == "true" {
			continue
		}
		groupID, artifactID := props.resolve(d.GroupID), props.resolve(d.ArtifactID)
		version := props.resolve(d.Version)
		if version == "" {
			version = managed[groupID+":"+artifactID]
		}
		if groupID == "" || artifactID == "" || unresolved(groupID+artifactID+version) {
			continue
		}

		ext := ""
		if d.Type != "" && d.Type != "jar" {
			ext = d.Type
		}
		target := model.Gavc{
			GroupID:    groupID,
			ArtifactID: artifactID,
			Version:    version,
			Classifier: d.Classifier,
			Extension:  ext,
		}.String()
		if seen[target] {
			continue
		}
		seen[target] = true

		scope := model.Scope(d.Scope)
		if scope == "" {
			scope = model.ScopeCompile
		}
		deps = append(deps, model.Dependency{Target: target, Scope: scope})
	}
	return deps
}
