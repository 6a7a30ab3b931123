package service

import (
	"context"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
)

// License returns the license with the given name.
func (s *Service) License(ctx context.Context, name string) (*model.License, error) {
	l, err := s.store.License(ctx, name)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, grapeserrors.NotFound("License", name)
	}
	return l, nil
}

// Licenses lists the licenses accepted by p.
func (s *Service) Licenses(ctx context.Context, p *filter.Pipeline) ([]model.License, error) {
	return s.store.Licenses(ctx, p)
}

// StoreLicense inserts or replaces a license.
func (s *Service) StoreLicense(ctx context.Context, l *model.License) error {
	if err := grapeserrors.ValidateName("license", l.Name); err != nil {
		return err
	}
	return s.store.StoreLicense(ctx, l)
}

// ResolveLicense returns the first license, by name, whose name or pattern
// matches label, or nil when none does. Licenses with a broken pattern are
// skipped.
func (s *Service) ResolveLicense(ctx context.Context, label string) (*model.License, error) {
	all, err := s.store.Licenses(ctx, nil)
	if err != nil {
		return nil, err
	}
	return resolve(all, label), nil
}

func resolve(all []model.License, label string) *model.License {
	for i := range all {
		if all[i].Matches(label) {
			return &all[i]
		}
	}
	return nil
}

// ApproveLicense records an approval decision.
func (s *Service) ApproveLicense(ctx context.Context, name string, approved bool) error {
	l, err := s.License(ctx, name)
	if err != nil {
		return err
	}
	l.Approved = &approved
	return s.store.StoreLicense(ctx, l)
}

// DeleteLicense removes the license and every artifact reference to it.
func (s *Service) DeleteLicense(ctx context.Context, name string) error {
	if _, err := s.License(ctx, name); err != nil {
		return err
	}
	arts, err := s.store.Artifacts(ctx, filter.FromParams(map[string]string{filter.KindLicenseID.Key(): name}))
	if err != nil {
		return err
	}
	for _, a := range arts {
		if err := s.store.RemoveLicenseRef(ctx, a.Gavc(), name); err != nil {
			return err
		}
	}
	s.logger.Debug("deleted license", "name", name, "references", len(arts))
	return s.store.DeleteLicense(ctx, name)
}

// ModuleLicenses rolls up the licenses of a module: the labels carried by
// its own artifacts and by every catalogued artifact it transitively
// depends on, each resolved to a known license. Labels that match no
// license are reported as synthetic licenses still to be validated. The
// result is filtered by p and sorted by name.
func (s *Service) ModuleLicenses(ctx context.Context, moduleID string, p *filter.Pipeline) ([]model.License, error) {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.withCorporate(ctx, p, m); err != nil {
		return nil, err
	}
	g, err := s.closureGraph(ctx, p)
	if err != nil {
		return nil, err
	}
	known, err := s.store.Licenses(ctx, nil)
	if err != nil {
		return nil, err
	}

	arts := append(m.AllArtifacts(), g.Artifacts(g.DescendantsOf(g.ModuleNodeID(m)))...)
	seen := make(map[string]bool)
	out := []model.License{}
	for _, a := range arts {
		for _, label := range a.Licenses {
			l := resolve(known, label)
			if l == nil {
				l = &model.License{Name: label}
			}
			if seen[l.Name] || !p.MatchLicense(l) {
				continue
			}
			seen[l.Name] = true
			out = append(out, *l)
		}
	}
	model.SortLicenses(out)
	return out, nil
}
