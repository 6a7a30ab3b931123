package maven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/grapes/pkg/cache"
	"github.com/matzehuels/grapes/pkg/integrations"
	"github.com/matzehuels/grapes/pkg/model"
)

// DefaultRepository is Maven Central.
const DefaultRepository = "https://repo1.maven.org/maven2"

// Client reads maven-metadata.xml documents and POMs from a Maven
// repository. It is safe for concurrent use.
type Client struct {
	*integrations.Client
	repository string
}

// NewClient creates a client for the repository base URL; an empty URL
// selects [DefaultRepository]. Responses are cached in c for ttl.
func NewClient(c cache.Cache, repository string, ttl time.Duration) *Client {
	if repository == "" {
		repository = DefaultRepository
	}
	return &Client{
		Client:     integrations.NewClient(c, "maven", ttl, nil),
		repository: strings.TrimSuffix(repository, "/"),
	}
}

// Repository returns the repository base URL.
func (c *Client) Repository() string { return c.repository }

// Versions lists the versions published for groupID:artifactID, in the
// order the repository's metadata declares them.
func (c *Client) Versions(ctx context.Context, groupID, artifactID string, refresh bool) ([]string, error) {
	if groupID == "" || artifactID == "" {
		return nil, fmt.Errorf("invalid maven coordinate %s:%s (expected groupId:artifactId)", groupID, artifactID)
	}

	var versions []string
	err := c.Cached(ctx, "metadata:"+groupID+":"+artifactID, refresh, &versions, func() error {
		var meta metadata
		if err := c.GetXML(ctx, c.metadataURL(groupID, artifactID), &meta); err != nil {
			return notFound(err, groupID, artifactID)
		}
		versions = meta.Versioning.Versions
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FetchPOM retrieves and parses the POM of one artifact version.
func (c *Client) FetchPOM(ctx context.Context, groupID, artifactID, version string, refresh bool) (*POM, error) {
	var pom POM
	key := "pom:" + groupID + ":" + artifactID + ":" + version
	err := c.Cached(ctx, key, refresh, &pom, func() error {
		if err := c.GetXML(ctx, c.pomURL(groupID, artifactID, version), &pom); err != nil {
			return notFound(err, groupID, artifactID+":"+version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pom, nil
}

// ImportModule builds a module from the POM of gavc. A gavc without a
// version imports the latest version listed in the repository metadata.
func (c *Client) ImportModule(ctx context.Context, gavc string, refresh bool) (*model.Module, error) {
	g := model.ParseGavc(gavc)
	if g.GroupID == "" || g.ArtifactID == "" {
		return nil, fmt.Errorf("invalid gavc %q (expected groupId:artifactId[:version])", gavc)
	}
	if g.Version == "" {
		versions, err := c.Versions(ctx, g.GroupID, g.ArtifactID, refresh)
		if err != nil {
			return nil, err
		}
		if len(versions) == 0 {
			return nil, fmt.Errorf("%w: no versions for %s:%s", integrations.ErrNotFound, g.GroupID, g.ArtifactID)
		}
		g.Version = versions[len(versions)-1]
	}

	pom, err := c.FetchPOM(ctx, g.GroupID, g.ArtifactID, g.Version, refresh)
	if err != nil {
		return nil, err
	}
	return c.toModule(pom, g), nil
}

func (c *Client) toModule(pom *POM, g model.Gavc) *model.Module {
	props := pom.resolver()
	groupID := firstNonEmpty(props.resolve(pom.GroupID), props.resolve(pom.Parent.GroupID), g.GroupID)
	version := firstNonEmpty(props.resolve(pom.Version), props.resolve(pom.Parent.Version), g.Version)
	packaging := firstNonEmpty(pom.Packaging, "jar")

	a := model.Artifact{
		GroupID:    groupID,
		ArtifactID: g.ArtifactID,
		Version:    version,
		Extension:  extension(packaging),
		Type:       packaging,
		Origin:     "maven",
	}
	for _, l := range pom.Licenses {
		if l.Name != "" {
			a.Licenses = append(a.Licenses, strings.TrimSpace(l.Name))
		}
	}
	if packaging != "pom" {
		a.DownloadURL = c.fileURL(groupID, g.ArtifactID, version, a.Extension)
	}

	m := &model.Module{
		Name:      firstNonEmpty(pom.ArtifactID, g.ArtifactID),
		Version:   version,
		Artifacts: []model.Artifact{a},
	}
	m.Dependencies = pom.dependencies(props)
	return m
}

func (c *Client) metadataURL(groupID, artifactID string) string {
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", c.repository, groupPath(groupID), artifactID)
}

func (c *Client) pomURL(groupID, artifactID, version string) string {
	return c.fileURL(groupID, artifactID, version, "pom")
}

func (c *Client) fileURL(groupID, artifactID, version, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.%s",
		c.repository, groupPath(groupID), artifactID, version, artifactID, version, ext)
}

func groupPath(groupID string) string {
	return strings.ReplaceAll(groupID, ".", "/")
}

func extension(packaging string) string {
	switch packaging {
	case "bundle", "maven-plugin", "ejb":
		return "jar"
	default:
		return packaging
	}
}

func notFound(err error, groupID, rest string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return fmt.Errorf("%w: maven artifact %s:%s", err, groupID, rest)
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
