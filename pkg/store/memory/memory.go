// Package memory provides an in-memory store, optionally backed by a JSON
// snapshot file.
package memory

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/store"
)

// Store keeps the catalog in maps guarded by a RWMutex. Values are copied
// on the way in and out, so callers never share memory with the store.
type Store struct {
	mu            sync.RWMutex
	path          string
	artifacts     map[string]model.Artifact
	modules       map[string]model.Module
	licenses      map[string]model.License
	organizations map[string]model.Organization
	products      map[string]model.Product
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		artifacts:     make(map[string]model.Artifact),
		modules:       make(map[string]model.Module),
		licenses:      make(map[string]model.License),
		organizations: make(map[string]model.Organization),
		products:      make(map[string]model.Product),
	}
}

// FromSnapshot returns a store holding the snapshot's entities. Artifacts
// declared by modules are indexed as artifacts too.
func FromSnapshot(snap *pkgio.Snapshot) *Store {
	s := New()
	for _, m := range snap.Modules {
		s.putModule(m)
	}
	for _, a := range snap.Artifacts {
		s.artifacts[a.Gavc()] = cloneArtifact(a)
	}
	for _, l := range snap.Licenses {
		s.licenses[l.Name] = l
	}
	for _, o := range snap.Organizations {
		s.organizations[o.Name] = o
	}
	for _, p := range snap.Products {
		s.products[p.Name] = p
	}
	return s
}

// Open loads the snapshot at path. Close writes the catalog back to it.
// A missing file starts an empty catalog.
func Open(path string) (*Store, error) {
	snap, err := pkgio.LoadSnapshot(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s := New()
			s.path = path
			return s, nil
		}
		return nil, err
	}
	s := FromSnapshot(snap)
	s.path = path
	return s, nil
}

// Snapshot dumps the catalog, every collection sorted by key.
func (s *Store) Snapshot() *pkgio.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &pkgio.Snapshot{}
	for _, k := range sortedKeys(s.modules) {
		snap.Modules = append(snap.Modules, cloneModule(s.modules[k]))
	}
	for _, k := range sortedKeys(s.artifacts) {
		snap.Artifacts = append(snap.Artifacts, cloneArtifact(s.artifacts[k]))
	}
	for _, k := range sortedKeys(s.licenses) {
		snap.Licenses = append(snap.Licenses, s.licenses[k])
	}
	for _, k := range sortedKeys(s.organizations) {
		snap.Organizations = append(snap.Organizations, s.organizations[k])
	}
	for _, k := range sortedKeys(s.products) {
		snap.Products = append(snap.Products, s.products[k])
	}
	return snap
}

// Close persists the catalog when the store was opened from a file.
func (s *Store) Close(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	return pkgio.SaveSnapshot(s.Snapshot(), s.path)
}

// Path returns the backing snapshot file, if any.
func (s *Store) Path() string { return s.path }

// =============================================================================
// Artifacts
// =============================================================================

func (s *Store) Artifact(_ context.Context, gavc string) (*model.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[model.Canonical(gavc)]
	if !ok {
		return nil, nil
	}
	a = cloneArtifact(a)
	return &a, nil
}

func (s *Store) Artifacts(_ context.Context, p *filter.Pipeline) ([]model.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Artifact{}
	for _, k := range sortedKeys(s.artifacts) {
		a := s.artifacts[k]
		if p.MatchArtifact(&a) {
			out = append(out, cloneArtifact(a))
		}
	}
	return out, nil
}

func (s *Store) ArtifactVersions(_ context.Context, groupID, artifactID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	versions := []string{}
	for _, k := range sortedKeys(s.artifacts) {
		a := s.artifacts[k]
		if a.GroupID == groupID && a.ArtifactID == artifactID && !seen[a.Version] {
			seen[a.Version] = true
			versions = append(versions, a.Version)
		}
	}
	return versions, nil
}

func (s *Store) RootModule(_ context.Context, gavc string) (*model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := model.Canonical(gavc)
	for _, k := range sortedKeys(s.modules) {
		m := s.modules[k]
		if m.Owns(key) {
			m = cloneModule(m)
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Store) StoreArtifact(_ context.Context, a *model.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.Gavc()] = cloneArtifact(*a)
	return nil
}

func (s *Store) DeleteArtifact(_ context.Context, gavc string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, model.Canonical(gavc))
	return nil
}

// =============================================================================
// Modules
// =============================================================================

func (s *Store) Module(_ context.Context, id string) (*model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.modules[id]
	if !ok {
		return nil, nil
	}
	m = cloneModule(m)
	return &m, nil
}

func (s *Store) Modules(_ context.Context, p *filter.Pipeline) ([]model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Module{}
	for _, k := range sortedKeys(s.modules) {
		m := s.modules[k]
		if p.MatchModule(&m) {
			out = append(out, cloneModule(m))
		}
	}
	return out, nil
}

func (s *Store) ModuleVersions(_ context.Context, name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := []string{}
	for _, k := range sortedKeys(s.modules) {
		if m := s.modules[k]; m.Name == name {
			versions = append(versions, m.Version)
		}
	}
	return versions, nil
}

func (s *Store) StoreModule(_ context.Context, m *model.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putModule(*m)
	return nil
}

// putModule stores m and indexes its artifacts. Callers hold the lock.
func (s *Store) putModule(m model.Module) {
	s.modules[m.ID()] = cloneModule(m)
	for _, a := range m.AllArtifacts() {
		if _, ok := s.artifacts[a.Gavc()]; !ok {
			s.artifacts[a.Gavc()] = cloneArtifact(a)
		}
	}
}

func (s *Store) DeleteModule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.modules, id)
	return nil
}

func (s *Store) SetModulePromoted(_ context.Context, id string, promoted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.modules[id]
	if !ok {
		return grapeserrors.NotFound("Module", id)
	}
	m.Promoted = promoted
	s.modules[id] = m
	return nil
}

// =============================================================================
// Licenses, organizations, products
// =============================================================================

func (s *Store) License(_ context.Context, name string) (*model.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.licenses[name]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *Store) Licenses(_ context.Context, p *filter.Pipeline) ([]model.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.License{}
	for _, k := range sortedKeys(s.licenses) {
		l := s.licenses[k]
		if p.MatchLicense(&l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) StoreLicense(_ context.Context, l *model.License) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.licenses[l.Name] = *l
	return nil
}

func (s *Store) DeleteLicense(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.licenses, name)
	return nil
}

func (s *Store) Organization(_ context.Context, name string) (*model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.organizations[name]
	if !ok {
		return nil, nil
	}
	o.CorporateGroupIDPrefixes = append([]string(nil), o.CorporateGroupIDPrefixes...)
	return &o, nil
}

func (s *Store) Organizations(_ context.Context) ([]model.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Organization{}
	for _, k := range sortedKeys(s.organizations) {
		o := s.organizations[k]
		o.CorporateGroupIDPrefixes = append([]string(nil), o.CorporateGroupIDPrefixes...)
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) StoreOrganization(_ context.Context, o *model.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o2 := *o
	o2.CorporateGroupIDPrefixes = append([]string(nil), o.CorporateGroupIDPrefixes...)
	s.organizations[o.Name] = o2
	return nil
}

func (s *Store) DeleteOrganization(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.organizations, name)
	return nil
}

func (s *Store) Product(_ context.Context, name string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[name]
	if !ok {
		return nil, nil
	}
	p.Modules = append([]string(nil), p.Modules...)
	return &p, nil
}

func (s *Store) Products(_ context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Product{}
	for _, k := range sortedKeys(s.products) {
		p := s.products[k]
		p.Modules = append([]string(nil), p.Modules...)
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) StoreProduct(_ context.Context, p *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p2 := *p
	p2.Modules = append([]string(nil), p.Modules...)
	s.products[p.Name] = p2
	return nil
}

func (s *Store) DeleteProduct(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, name)
	return nil
}

// =============================================================================
// Field updates
// =============================================================================

// updateArtifact applies fn to the stored artifact and to every module copy
// of it, so module documents stay consistent with the artifact collection.
func (s *Store) updateArtifact(gavc string, fn func(a *model.Artifact)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.Canonical(gavc)
	a, ok := s.artifacts[key]
	if !ok {
		return grapeserrors.NotFound("Artifact", gavc)
	}
	fn(&a)
	s.artifacts[key] = a

	for id, m := range s.modules {
		if m.Owns(key) {
			m = cloneModule(m)
			updateOwned(&m, key, fn)
			s.modules[id] = m
		}
	}
	return nil
}

func updateOwned(m *model.Module, key string, fn func(a *model.Artifact)) {
	for i := range m.Artifacts {
		if m.Artifacts[i].Gavc() == key {
			fn(&m.Artifacts[i])
		}
	}
	for i := range m.Submodules {
		updateOwned(&m.Submodules[i], key, fn)
	}
}

func (s *Store) SetArtifactPromoted(_ context.Context, gavc string, promoted bool) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) { a.Promoted = promoted })
}

func (s *Store) SetDoNotUse(_ context.Context, gavc string, doNotUse bool) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) { a.DoNotUse = doNotUse })
}

func (s *Store) AddLicenseRef(_ context.Context, gavc, license string) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) {
		if !a.HasLicense(license) {
			a.Licenses = append(a.Licenses, license)
		}
	})
}

func (s *Store) RemoveLicenseRef(_ context.Context, gavc, license string) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) {
		kept := a.Licenses[:0]
		for _, l := range a.Licenses {
			if l != license {
				kept = append(kept, l)
			}
		}
		a.Licenses = kept
	})
}

func (s *Store) SetProvider(_ context.Context, gavc, provider string) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) { a.Provider = provider })
}

func (s *Store) SetDownloadURL(_ context.Context, gavc, url string) error {
	return s.updateArtifact(gavc, func(a *model.Artifact) { a.DownloadURL = url })
}

// =============================================================================
// Helpers
// =============================================================================

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneArtifact(a model.Artifact) model.Artifact {
	a.Licenses = append([]string(nil), a.Licenses...)
	return a
}

func cloneModule(m model.Module) model.Module {
	arts := make([]model.Artifact, len(m.Artifacts))
	for i, a := range m.Artifacts {
		arts[i] = cloneArtifact(a)
	}
	m.Artifacts = arts
	m.Dependencies = append([]model.Dependency(nil), m.Dependencies...)
	subs := make([]model.Module, len(m.Submodules))
	for i, sub := range m.Submodules {
		subs[i] = cloneModule(sub)
	}
	m.Submodules = subs
	return m
}
