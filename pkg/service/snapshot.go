package service

import (
	"context"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
)

// ImportStats counts the entities written by [Service.Import].
type ImportStats struct {
	Modules       int
	Artifacts     int
	Licenses      int
	Organizations int
	Products      int
}

// Import writes every entity of the snapshot into the catalog, replacing
// entities with the same key. It stops at the first invalid entity;
// entities stored before it stay stored.
func (s *Service) Import(ctx context.Context, snap *pkgio.Snapshot) (ImportStats, error) {
	var st ImportStats
	for i := range snap.Organizations {
		if err := s.StoreOrganization(ctx, &snap.Organizations[i]); err != nil {
			return st, err
		}
		st.Organizations++
	}
	for i := range snap.Licenses {
		if err := s.StoreLicense(ctx, &snap.Licenses[i]); err != nil {
			return st, err
		}
		st.Licenses++
	}
	for i := range snap.Modules {
		if err := s.StoreModule(ctx, &snap.Modules[i]); err != nil {
			return st, err
		}
		st.Modules++
	}
	for i := range snap.Artifacts {
		a := &snap.Artifacts[i]
		if err := grapeserrors.ValidateGavc(a.Gavc()); err != nil {
			return st, err
		}
		if err := s.store.StoreArtifact(ctx, a); err != nil {
			return st, err
		}
		st.Artifacts++
	}
	for i := range snap.Products {
		p := &snap.Products[i]
		if err := grapeserrors.ValidateName("product", p.Name); err != nil {
			return st, err
		}
		if err := s.store.StoreProduct(ctx, p); err != nil {
			return st, err
		}
		st.Products++
	}
	s.logger.Debug("imported snapshot", "modules", st.Modules, "artifacts", st.Artifacts, "licenses", st.Licenses)
	return st, nil
}

// Export dumps the whole catalog. Module artifacts also appear in the
// artifact list, so the dump re-imports into the same catalog.
func (s *Service) Export(ctx context.Context) (*pkgio.Snapshot, error) {
	mods, err := s.store.Modules(ctx, nil)
	if err != nil {
		return nil, err
	}
	arts, err := s.store.Artifacts(ctx, nil)
	if err != nil {
		return nil, err
	}
	lics, err := s.store.Licenses(ctx, nil)
	if err != nil {
		return nil, err
	}
	orgs, err := s.store.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	prods, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	model.SortArtifacts(arts)
	model.SortLicenses(lics)
	return &pkgio.Snapshot{
		Modules:       mods,
		Artifacts:     arts,
		Licenses:      lics,
		Organizations: orgs,
		Products:      prods,
	}, nil
}
