package service

import (
	"context"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/version"
)

// ArtifactVersions lists the catalogued versions of the artifact's
// groupId:artifactId.
func (s *Service) ArtifactVersions(ctx context.Context, gavc string) ([]string, error) {
	if err := grapeserrors.ValidateGavc(gavc); err != nil {
		return nil, err
	}
	g := model.ParseGavc(gavc)
	versions, err := s.store.ArtifactVersions(ctx, g.GroupID, g.ArtifactID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, grapeserrors.NotFound("Artifact", gavc)
	}
	return versions, nil
}

// LastVersion returns the newest catalogued version, falling back to the
// lexicographic maximum when the versions cannot be ordered.
func (s *Service) LastVersion(ctx context.Context, gavc string) (string, error) {
	versions, err := s.ArtifactVersions(ctx, gavc)
	if err != nil {
		return "", err
	}
	return version.Newest(versions), nil
}

// LastRelease returns the newest release version. It fails with the
// comparator's error when the versions cannot be ordered.
func (s *Service) LastRelease(ctx context.Context, gavc string) (string, error) {
	versions, err := s.ArtifactVersions(ctx, gavc)
	if err != nil {
		return "", err
	}
	latest, ok, err := version.LatestRelease(versions)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", grapeserrors.New(grapeserrors.ErrCodeNotFound, "Artifact %s has no release.", gavc)
	}
	return latest, nil
}

// IsUpToDate reports whether the artifact's version is the newest known
// version or the newest release.
func (s *Service) IsUpToDate(ctx context.Context, gavc string) (bool, error) {
	a, err := s.Artifact(ctx, gavc)
	if err != nil {
		return false, err
	}
	versions, err := s.store.ArtifactVersions(ctx, a.GroupID, a.ArtifactID)
	if err != nil {
		return false, err
	}
	return version.IsUpToDate(a.Version, versions), nil
}
