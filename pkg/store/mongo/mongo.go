// Package mongo provides a MongoDB-backed store.
//
// Each entity kind lives in its own collection keyed by its natural ID
// (gavc, "name:version", or name). Module documents embed their artifacts
// but the artifacts collection is authoritative for artifact fields: module
// reads re-hydrate embedded artifacts from it, so field updates only touch
// one document.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/store"
)

// Collection names.
const (
	ArtifactsCollection     = "artifacts"
	ModulesCollection       = "modules"
	LicensesCollection      = "licenses"
	OrganizationsCollection = "organizations"
	ProductsCollection      = "products"
)

// Store is a MongoDB store. It is safe for concurrent use; the driver pools
// connections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

type artifactDoc struct {
	ID             string `bson:"_id"`
	model.Artifact `bson:",inline"`
}

type moduleDoc struct {
	ID           string `bson:"_id"`
	model.Module `bson:",inline"`
	// Gavcs lists every artifact the module or its sub-modules own, for
	// root-module lookups.
	Gavcs []string `bson:"gavcs"`
}

type licenseDoc struct {
	ID            string `bson:"_id"`
	model.License `bson:",inline"`
}

type organizationDoc struct {
	ID                 string `bson:"_id"`
	model.Organization `bson:",inline"`
}

type productDoc struct {
	ID            string `bson:"_id"`
	model.Product `bson:",inline"`
}

// Connect dials uri, verifies the connection and ensures indexes on the
// named database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, grapeserrors.Wrap(grapeserrors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, grapeserrors.Wrap(grapeserrors.ErrCodeNetwork, err, "ping mongodb")
	}
	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the secondary indexes lookups rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		ArtifactsCollection: {
			{Keys: bson.D{{Key: "groupId", Value: 1}, {Key: "artifactId", Value: 1}}},
		},
		ModulesCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "gavcs", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// =============================================================================
// Generic helpers
// =============================================================================

// findOne decodes the document with the given _id into out. It reports
// false when no document matches.
func (s *Store) findOne(ctx context.Context, coll, id string, out any) (bool, error) {
	err := s.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find %s %s: %w", coll, id, err)
	}
	return true, nil
}

func (s *Store) findAll(ctx context.Context, coll string, query bson.M, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(coll).Find(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("find %s: %w", coll, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}

func (s *Store) replace(ctx context.Context, coll, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.db.Collection(coll).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		return fmt.Errorf("store %s %s: %w", coll, id, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, coll, id string) error {
	if _, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s %s: %w", coll, id, err)
	}
	return nil
}

func (s *Store) distinct(ctx context.Context, coll, field string, query bson.M) ([]string, error) {
	values, err := s.db.Collection(coll).Distinct(ctx, field, query)
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", coll, field, err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

// toFilter turns pipeline field projections into a query document.
func toFilter(params map[string]any) bson.M {
	query := bson.M{}
	for k, v := range params {
		query[k] = v
	}
	return query
}

// =============================================================================
// Artifacts
// =============================================================================

func (s *Store) Artifact(ctx context.Context, gavc string) (*model.Artifact, error) {
	var doc artifactDoc
	found, err := s.findOne(ctx, ArtifactsCollection, model.Canonical(gavc), &doc)
	if err != nil || !found {
		return nil, err
	}
	return &doc.Artifact, nil
}

func (s *Store) Artifacts(ctx context.Context, p *filter.Pipeline) ([]model.Artifact, error) {
	var docs []artifactDoc
	if err := s.findAll(ctx, ArtifactsCollection, toFilter(p.ArtifactParams()), &docs); err != nil {
		return nil, err
	}
	out := []model.Artifact{}
	for i := range docs {
		if p.MatchArtifact(&docs[i].Artifact) {
			out = append(out, docs[i].Artifact)
		}
	}
	return out, nil
}

func (s *Store) ArtifactVersions(ctx context.Context, groupID, artifactID string) ([]string, error) {
	return s.distinct(ctx, ArtifactsCollection, "version", bson.M{"groupId": groupID, "artifactId": artifactID})
}

func (s *Store) RootModule(ctx context.Context, gavc string) (*model.Module, error) {
	var docs []moduleDoc
	if err := s.findAll(ctx, ModulesCollection, bson.M{"gavcs": model.Canonical(gavc)}, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	m := docs[0].Module
	if err := s.hydrate(ctx, []*model.Module{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) StoreArtifact(ctx context.Context, a *model.Artifact) error {
	return s.replace(ctx, ArtifactsCollection, a.Gavc(), artifactDoc{ID: a.Gavc(), Artifact: *a})
}

func (s *Store) DeleteArtifact(ctx context.Context, gavc string) error {
	return s.delete(ctx, ArtifactsCollection, model.Canonical(gavc))
}

// =============================================================================
// Modules
// =============================================================================

func (s *Store) Module(ctx context.Context, id string) (*model.Module, error) {
	var doc moduleDoc
	found, err := s.findOne(ctx, ModulesCollection, id, &doc)
	if err != nil || !found {
		return nil, err
	}
	m := doc.Module
	if err := s.hydrate(ctx, []*model.Module{&m}); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Modules(ctx context.Context, p *filter.Pipeline) ([]model.Module, error) {
	var docs []moduleDoc
	if err := s.findAll(ctx, ModulesCollection, toFilter(p.ModuleParams()), &docs); err != nil {
		return nil, err
	}
	out := []model.Module{}
	for i := range docs {
		if p.MatchModule(&docs[i].Module) {
			out = append(out, docs[i].Module)
		}
	}
	ptrs := make([]*model.Module, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := s.hydrate(ctx, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ModuleVersions(ctx context.Context, name string) ([]string, error) {
	return s.distinct(ctx, ModulesCollection, "version", bson.M{"name": name})
}

// StoreModule stores the module document and upserts each owned artifact
// that is not catalogued yet.
func (s *Store) StoreModule(ctx context.Context, m *model.Module) error {
	arts := m.AllArtifacts()
	gavcs := make([]string, len(arts))
	for i := range arts {
		gavcs[i] = arts[i].Gavc()
		existing, err := s.Artifact(ctx, gavcs[i])
		if err != nil {
			return err
		}
		if existing == nil {
			if err := s.StoreArtifact(ctx, &arts[i]); err != nil {
				return err
			}
		}
	}
	return s.replace(ctx, ModulesCollection, m.ID(), moduleDoc{ID: m.ID(), Module: *m, Gavcs: gavcs})
}

func (s *Store) DeleteModule(ctx context.Context, id string) error {
	return s.delete(ctx, ModulesCollection, id)
}

func (s *Store) SetModulePromoted(ctx context.Context, id string, promoted bool) error {
	res, err := s.db.Collection(ModulesCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"promoted": promoted}})
	if err != nil {
		return fmt.Errorf("update module %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return grapeserrors.NotFound("Module", id)
	}
	return nil
}

// hydrate replaces embedded artifacts with their authoritative copies.
func (s *Store) hydrate(ctx context.Context, mods []*model.Module) error {
	var ids []string
	for _, m := range mods {
		for _, a := range m.AllArtifacts() {
			ids = append(ids, a.Gavc())
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var docs []artifactDoc
	if err := s.findAll(ctx, ArtifactsCollection, bson.M{"_id": bson.M{"$in": ids}}, &docs); err != nil {
		return err
	}
	byID := make(map[string]model.Artifact, len(docs))
	for _, d := range docs {
		byID[d.ID] = d.Artifact
	}
	for _, m := range mods {
		applyArtifacts(m, byID)
	}
	return nil
}

func applyArtifacts(m *model.Module, byID map[string]model.Artifact) {
	for i := range m.Artifacts {
		if a, ok := byID[m.Artifacts[i].Gavc()]; ok {
			m.Artifacts[i] = a
		}
	}
	for i := range m.Submodules {
		applyArtifacts(&m.Submodules[i], byID)
	}
}

// =============================================================================
// Licenses, organizations, products
// =============================================================================

func (s *Store) License(ctx context.Context, name string) (*model.License, error) {
	var doc licenseDoc
	found, err := s.findOne(ctx, LicensesCollection, name, &doc)
	if err != nil || !found {
		return nil, err
	}
	return &doc.License, nil
}

func (s *Store) Licenses(ctx context.Context, p *filter.Pipeline) ([]model.License, error) {
	var docs []licenseDoc
	if err := s.findAll(ctx, LicensesCollection, bson.M{}, &docs); err != nil {
		return nil, err
	}
	out := []model.License{}
	for i := range docs {
		if p.MatchLicense(&docs[i].License) {
			out = append(out, docs[i].License)
		}
	}
	return out, nil
}

func (s *Store) StoreLicense(ctx context.Context, l *model.License) error {
	return s.replace(ctx, LicensesCollection, l.Name, licenseDoc{ID: l.Name, License: *l})
}

func (s *Store) DeleteLicense(ctx context.Context, name string) error {
	return s.delete(ctx, LicensesCollection, name)
}

func (s *Store) Organization(ctx context.Context, name string) (*model.Organization, error) {
	var doc organizationDoc
	found, err := s.findOne(ctx, OrganizationsCollection, name, &doc)
	if err != nil || !found {
		return nil, err
	}
	return &doc.Organization, nil
}

func (s *Store) Organizations(ctx context.Context) ([]model.Organization, error) {
	var docs []organizationDoc
	if err := s.findAll(ctx, OrganizationsCollection, bson.M{}, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Organization, len(docs))
	for i := range docs {
		out[i] = docs[i].Organization
	}
	return out, nil
}

func (s *Store) StoreOrganization(ctx context.Context, o *model.Organization) error {
	return s.replace(ctx, OrganizationsCollection, o.Name, organizationDoc{ID: o.Name, Organization: *o})
}

func (s *Store) DeleteOrganization(ctx context.Context, name string) error {
	return s.delete(ctx, OrganizationsCollection, name)
}

func (s *Store) Product(ctx context.Context, name string) (*model.Product, error) {
	var doc productDoc
	found, err := s.findOne(ctx, ProductsCollection, name, &doc)
	if err != nil || !found {
		return nil, err
	}
	return &doc.Product, nil
}

func (s *Store) Products(ctx context.Context) ([]model.Product, error) {
	var docs []productDoc
	if err := s.findAll(ctx, ProductsCollection, bson.M{}, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Product, len(docs))
	for i := range docs {
		out[i] = docs[i].Product
	}
	return out, nil
}

func (s *Store) StoreProduct(ctx context.Context, p *model.Product) error {
	return s.replace(ctx, ProductsCollection, p.Name, productDoc{ID: p.Name, Product: *p})
}

func (s *Store) DeleteProduct(ctx context.Context, name string) error {
	return s.delete(ctx, ProductsCollection, name)
}

// =============================================================================
// Field updates
// =============================================================================

func (s *Store) updateArtifact(ctx context.Context, gavc string, update bson.M) error {
	id := model.Canonical(gavc)
	res, err := s.db.Collection(ArtifactsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update artifact %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return grapeserrors.NotFound("Artifact", gavc)
	}
	return nil
}

func (s *Store) SetArtifactPromoted(ctx context.Context, gavc string, promoted bool) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$set": bson.M{"promoted": promoted}})
}

func (s *Store) SetDoNotUse(ctx context.Context, gavc string, doNotUse bool) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$set": bson.M{"doNotUse": doNotUse}})
}

func (s *Store) AddLicenseRef(ctx context.Context, gavc, license string) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$addToSet": bson.M{"licenses": license}})
}

func (s *Store) RemoveLicenseRef(ctx context.Context, gavc, license string) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$pull": bson.M{"licenses": license}})
}

func (s *Store) SetProvider(ctx context.Context, gavc, provider string) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$set": bson.M{"provider": provider}})
}

func (s *Store) SetDownloadURL(ctx context.Context, gavc, url string) error {
	return s.updateArtifact(ctx, gavc, bson.M{"$set": bson.M{"downloadUrl": url}})
}
