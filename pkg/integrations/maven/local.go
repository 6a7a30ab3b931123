package maven

import (
	"encoding/xml"
	"os"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/model"
)

// ReadPOM parses a project model from a local file such as a checked out
// project's pom.xml.
func ReadPOM(path string) (*POM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pom POM
	if err := xml.Unmarshal(data, &pom); err != nil {
		return nil, grapeserrors.Wrap(grapeserrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return &pom, nil
}

// ModuleFromPOM builds a module from a POM that was not fetched from the
// repository. Group and version fall back to the parent's; a POM that
// still lacks either is rejected.
func (c *Client) ModuleFromPOM(pom *POM) (*model.Module, error) {
	if pom.ArtifactID == "" {
		return nil, grapeserrors.New(grapeserrors.ErrCodeInvalidInput, "pom has no artifactId")
	}
	m := c.toModule(pom, model.Gavc{ArtifactID: pom.ArtifactID})
	a := m.Artifacts[0]
	if a.GroupID == "" || a.Version == "" || unresolved(a.Version) {
		return nil, grapeserrors.New(grapeserrors.ErrCodeInvalidInput,
			"pom %s has no resolvable groupId and version", pom.ArtifactID)
	}
	return m, nil
}
