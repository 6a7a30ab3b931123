package service

import (
	"context"
	"slices"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/model"
)

// NoOrganization names the placeholder returned for modules without an
// organization.
const NoOrganization = "No organization registered"

// Organization returns the named organization.
func (s *Service) Organization(ctx context.Context, name string) (*model.Organization, error) {
	o, err := s.store.Organization(ctx, name)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, grapeserrors.NotFound("Organization", name)
	}
	return o, nil
}

// Organizations lists every organization.
func (s *Service) Organizations(ctx context.Context) ([]model.Organization, error) {
	return s.store.Organizations(ctx)
}

// StoreOrganization inserts or replaces an organization.
func (s *Service) StoreOrganization(ctx context.Context, o *model.Organization) error {
	if err := grapeserrors.ValidateName("organization", o.Name); err != nil {
		return err
	}
	return s.store.StoreOrganization(ctx, o)
}

// DeleteOrganization removes the organization.
func (s *Service) DeleteOrganization(ctx context.Context, name string) error {
	if _, err := s.Organization(ctx, name); err != nil {
		return err
	}
	return s.store.DeleteOrganization(ctx, name)
}

// AddCorporateGroupID registers a group-id prefix as corporate for the
// organization and assigns the organization to every module without one
// that owns an artifact under the prefix. Adding a known prefix is a no-op
// for the organization itself.
func (s *Service) AddCorporateGroupID(ctx context.Context, name, prefix string) error {
	if err := grapeserrors.ValidateName("group-id prefix", prefix); err != nil {
		return err
	}
	o, err := s.Organization(ctx, name)
	if err != nil {
		return err
	}
	if !slices.Contains(o.CorporateGroupIDPrefixes, prefix) {
		o.CorporateGroupIDPrefixes = append(o.CorporateGroupIDPrefixes, prefix)
		if err := s.store.StoreOrganization(ctx, o); err != nil {
			return err
		}
	}

	scope := &model.Organization{Name: name, CorporateGroupIDPrefixes: []string{prefix}}
	return s.reassign(ctx, func(m *model.Module) bool {
		if m.Organization != "" || !ownsCorporate(m, scope) {
			return false
		}
		m.Organization = name
		return true
	})
}

// RemoveCorporateGroupID unregisters the prefix and detaches the
// organization from the modules it was assigned to through that prefix.
// Removing an unknown prefix is a no-op for the organization itself.
func (s *Service) RemoveCorporateGroupID(ctx context.Context, name, prefix string) error {
	o, err := s.Organization(ctx, name)
	if err != nil {
		return err
	}
	if i := slices.Index(o.CorporateGroupIDPrefixes, prefix); i >= 0 {
		o.CorporateGroupIDPrefixes = slices.Delete(o.CorporateGroupIDPrefixes, i, i+1)
		if err := s.store.StoreOrganization(ctx, o); err != nil {
			return err
		}
	}

	scope := &model.Organization{Name: name, CorporateGroupIDPrefixes: []string{prefix}}
	return s.reassign(ctx, func(m *model.Module) bool {
		if m.Organization != name || !ownsCorporate(m, scope) {
			return false
		}
		m.Organization = ""
		return true
	})
}

// reassign stores every module fn changed.
func (s *Service) reassign(ctx context.Context, fn func(m *model.Module) bool) error {
	mods, err := s.store.Modules(ctx, nil)
	if err != nil {
		return err
	}
	for i := range mods {
		if !fn(&mods[i]) {
			continue
		}
		s.logger.Debug("updated module organization", "module", mods[i].ID(), "organization", mods[i].Organization)
		if err := s.store.StoreModule(ctx, &mods[i]); err != nil {
			return err
		}
	}
	return nil
}

// MatchingOrganization returns the module's explicit organization or else
// the first organization owning one of the module's artifacts by group-id
// prefix. It returns nil when none applies.
func (s *Service) MatchingOrganization(ctx context.Context, m *model.Module) (*model.Organization, error) {
	if m.Organization != "" {
		return s.Organization(ctx, m.Organization)
	}
	orgs, err := s.store.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orgs {
		if ownsCorporate(m, &orgs[i]) {
			return &orgs[i], nil
		}
	}
	return nil, nil
}

// ModuleOrganization returns the organization the module declares, or a
// placeholder named [NoOrganization].
func (s *Service) ModuleOrganization(ctx context.Context, moduleID string) (*model.Organization, error) {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if m.Organization == "" {
		return &model.Organization{Name: NoOrganization}, nil
	}
	return s.Organization(ctx, m.Organization)
}

// ArtifactOrganization returns the organization of the artifact's root
// module, or nil when the artifact belongs to no module or the module to no
// organization.
func (s *Service) ArtifactOrganization(ctx context.Context, gavc string) (*model.Organization, error) {
	if _, err := s.Artifact(ctx, gavc); err != nil {
		return nil, err
	}
	m, err := s.store.RootModule(ctx, gavc)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Organization == "" {
		return nil, nil
	}
	return s.Organization(ctx, m.Organization)
}

func ownsCorporate(m *model.Module, org *model.Organization) bool {
	for _, a := range m.AllArtifacts() {
		if org.IsCorporate(a.GroupID) {
			return true
		}
	}
	return false
}
