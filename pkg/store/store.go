// Package store defines the storage collaborator the service layer reads
// catalog entities from and writes them back to.
//
// Lookups of a single entity return (nil, nil) when it is absent; the
// service layer turns that into a NOT_FOUND error. Targeted field updates
// on an absent entity return a NOT_FOUND [errors.Error].
//
// Two implementations exist: [memory.Store], backed by a JSON snapshot, and
// [mongo.Store], backed by MongoDB.
//
// [errors.Error]: github.com/matzehuels/grapes/pkg/errors
// [memory.Store]: github.com/matzehuels/grapes/pkg/store/memory
// [mongo.Store]: github.com/matzehuels/grapes/pkg/store/mongo
package store

import (
	"context"

	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
)

// Reader is the read side of a store. Collection reads take a pipeline;
// a nil pipeline returns everything.
type Reader interface {
	Artifact(ctx context.Context, gavc string) (*model.Artifact, error)
	Artifacts(ctx context.Context, p *filter.Pipeline) ([]model.Artifact, error)
	// ArtifactVersions lists the versions catalogued for groupID:artifactID.
	ArtifactVersions(ctx context.Context, groupID, artifactID string) ([]string, error)
	// RootModule returns the top-level module owning the artifact, or nil.
	RootModule(ctx context.Context, gavc string) (*model.Module, error)

	Module(ctx context.Context, id string) (*model.Module, error)
	Modules(ctx context.Context, p *filter.Pipeline) ([]model.Module, error)
	ModuleVersions(ctx context.Context, name string) ([]string, error)

	License(ctx context.Context, name string) (*model.License, error)
	Licenses(ctx context.Context, p *filter.Pipeline) ([]model.License, error)

	Organization(ctx context.Context, name string) (*model.Organization, error)
	Organizations(ctx context.Context) ([]model.Organization, error)

	Product(ctx context.Context, name string) (*model.Product, error)
	Products(ctx context.Context) ([]model.Product, error)
}

// Writer is the write side of a store. Store* calls insert or replace.
type Writer interface {
	StoreArtifact(ctx context.Context, a *model.Artifact) error
	DeleteArtifact(ctx context.Context, gavc string) error
	StoreModule(ctx context.Context, m *model.Module) error
	DeleteModule(ctx context.Context, id string) error
	StoreLicense(ctx context.Context, l *model.License) error
	DeleteLicense(ctx context.Context, name string) error
	StoreOrganization(ctx context.Context, o *model.Organization) error
	DeleteOrganization(ctx context.Context, name string) error
	StoreProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, name string) error
}

// Updater applies targeted field updates.
type Updater interface {
	SetArtifactPromoted(ctx context.Context, gavc string, promoted bool) error
	SetModulePromoted(ctx context.Context, id string, promoted bool) error
	SetDoNotUse(ctx context.Context, gavc string, doNotUse bool) error
	AddLicenseRef(ctx context.Context, gavc, license string) error
	RemoveLicenseRef(ctx context.Context, gavc, license string) error
	SetProvider(ctx context.Context, gavc, provider string) error
	SetDownloadURL(ctx context.Context, gavc, url string) error
}

// Store is a complete storage backend.
type Store interface {
	Reader
	Writer
	Updater
	// Close releases the backend. It must be called once.
	Close(ctx context.Context) error
}
