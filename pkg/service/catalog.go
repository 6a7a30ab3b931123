package service

import (
	"context"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
)

// =============================================================================
// Artifacts
// =============================================================================

// Artifact returns the artifact with the given gavc.
func (s *Service) Artifact(ctx context.Context, gavc string) (*model.Artifact, error) {
	if err := grapeserrors.ValidateGavc(gavc); err != nil {
		return nil, err
	}
	a, err := s.store.Artifact(ctx, gavc)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, grapeserrors.NotFound("Artifact", gavc)
	}
	return a, nil
}

// Artifacts lists the artifacts accepted by p.
func (s *Service) Artifacts(ctx context.Context, p *filter.Pipeline) ([]model.Artifact, error) {
	return s.store.Artifacts(ctx, p)
}

// StoreIfNew stores the artifact unless its gavc is already catalogued. It
// reports whether it stored anything.
func (s *Service) StoreIfNew(ctx context.Context, a *model.Artifact) (bool, error) {
	if err := grapeserrors.ValidateGavc(a.Gavc()); err != nil {
		return false, err
	}
	existing, err := s.store.Artifact(ctx, a.Gavc())
	if err != nil || existing != nil {
		return false, err
	}
	return true, s.store.StoreArtifact(ctx, a)
}

// AddLicense attaches a license label to the artifact. A label resolving to
// a known license adds that license's name unless already present. An
// unknown label is only recorded when the artifact has no license yet.
func (s *Service) AddLicense(ctx context.Context, gavc, label string) error {
	a, err := s.Artifact(ctx, gavc)
	if err != nil {
		return err
	}
	l, err := s.ResolveLicense(ctx, label)
	if err != nil {
		return err
	}
	switch {
	case l != nil && !a.HasLicense(l.Name):
		return s.store.AddLicenseRef(ctx, gavc, l.Name)
	case l == nil && len(a.Licenses) == 0:
		return s.store.AddLicenseRef(ctx, gavc, label)
	}
	return nil
}

// RemoveLicense detaches a license label, and the license it resolves to,
// from the artifact.
func (s *Service) RemoveLicense(ctx context.Context, gavc, label string) error {
	if _, err := s.Artifact(ctx, gavc); err != nil {
		return err
	}
	if err := s.store.RemoveLicenseRef(ctx, gavc, label); err != nil {
		return err
	}
	l, err := s.ResolveLicense(ctx, label)
	if err != nil || l == nil || l.Name == label {
		return err
	}
	return s.store.RemoveLicenseRef(ctx, gavc, l.Name)
}

// UpdateProvider sets the artifact's provider.
func (s *Service) UpdateProvider(ctx context.Context, gavc, provider string) error {
	return s.store.SetProvider(ctx, gavc, provider)
}

// UpdateDownloadURL sets the artifact's download URL.
func (s *Service) UpdateDownloadURL(ctx context.Context, gavc, url string) error {
	if err := grapeserrors.ValidateURL(url); err != nil {
		return err
	}
	return s.store.SetDownloadURL(ctx, gavc, url)
}

// SetDoNotUse flags or clears the artifact's do-not-use marker.
func (s *Service) SetDoNotUse(ctx context.Context, gavc string, doNotUse bool) error {
	return s.store.SetDoNotUse(ctx, gavc, doNotUse)
}

// =============================================================================
// Modules
// =============================================================================

// Module returns the module with the given "name:version" id.
func (s *Service) Module(ctx context.Context, id string) (*model.Module, error) {
	m, err := s.store.Module(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, grapeserrors.NotFound("Module", id)
	}
	return m, nil
}

// Modules lists the modules accepted by p.
func (s *Service) Modules(ctx context.Context, p *filter.Pipeline) ([]model.Module, error) {
	return s.store.Modules(ctx, p)
}

// ModuleVersions lists the catalogued versions of a module name.
func (s *Service) ModuleVersions(ctx context.Context, name string) ([]string, error) {
	versions, err := s.store.ModuleVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, grapeserrors.NotFound("Module", name)
	}
	return versions, nil
}

// StoreModule inserts or replaces a module and its artifacts.
func (s *Service) StoreModule(ctx context.Context, m *model.Module) error {
	if err := grapeserrors.ValidateName("module", m.Name); err != nil {
		return err
	}
	for _, a := range m.AllArtifacts() {
		if err := grapeserrors.ValidateGavc(a.Gavc()); err != nil {
			return err
		}
	}
	return s.store.StoreModule(ctx, m)
}

// DeleteModule removes the module and the artifacts it owns.
func (s *Service) DeleteModule(ctx context.Context, id string) error {
	m, err := s.Module(ctx, id)
	if err != nil {
		return err
	}
	for _, a := range m.AllArtifacts() {
		if err := s.store.DeleteArtifact(ctx, a.Gavc()); err != nil {
			return err
		}
	}
	s.logger.Debug("deleted module", "module", id, "artifacts", len(m.AllArtifacts()))
	return s.store.DeleteModule(ctx, id)
}

// =============================================================================
// Products
// =============================================================================

// CreateProduct registers a new, empty product.
func (s *Service) CreateProduct(ctx context.Context, name string) error {
	if err := grapeserrors.ValidateName("product", name); err != nil {
		return err
	}
	existing, err := s.store.Product(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return grapeserrors.New(grapeserrors.ErrCodeInvalidInput, "Product %s already exists.", name)
	}
	return s.store.StoreProduct(ctx, &model.Product{Name: name})
}

// Product returns the named product.
func (s *Service) Product(ctx context.Context, name string) (*model.Product, error) {
	p, err := s.store.Product(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, grapeserrors.NotFound("Product", name)
	}
	return p, nil
}

// Products lists every product.
func (s *Service) Products(ctx context.Context) ([]model.Product, error) {
	return s.store.Products(ctx)
}

// SetProductModules replaces the product's module list.
func (s *Service) SetProductModules(ctx context.Context, name string, modules []string) error {
	p, err := s.Product(ctx, name)
	if err != nil {
		return err
	}
	p.Modules = modules
	return s.store.StoreProduct(ctx, p)
}

// DeleteProduct removes the product.
func (s *Service) DeleteProduct(ctx context.Context, name string) error {
	if _, err := s.Product(ctx, name); err != nil {
		return err
	}
	return s.store.DeleteProduct(ctx, name)
}
