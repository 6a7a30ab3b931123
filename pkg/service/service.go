// Package service implements the catalog operations exposed by the HTTP API
// and the CLI: version queries, graph traversals, license roll-ups,
// promotion, organizations, licenses, artifact field updates, modules and
// products.
//
// A [Service] is stateless apart from its store and logger. Every graph
// query loads the catalog from the store and builds a fresh
// [depgraph.Graph] for the request's [filter.Pipeline], so one Service can
// be shared across goroutines as long as the store can.
//
// Missing entities are reported as NOT_FOUND [errors.Error] values carrying
// the message "<Kind> <id> does not exist.".
package service

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/grapes/pkg/dag"
	"github.com/matzehuels/grapes/pkg/depgraph"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/observability"
	"github.com/matzehuels/grapes/pkg/store"
)

// Service runs catalog operations against a store.
type Service struct {
	store  store.Store
	logger *log.Logger
}

// New creates a service. A nil logger discards output.
func New(s store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Service{store: s, logger: logger}
}

// Store returns the underlying store.
func (s *Service) Store() store.Store { return s.store }

// snapshot loads every module and artifact. Filtering happens while the
// graph is built, not at load time, so dependency targets hidden by the
// pipeline still resolve instead of turning into unknown nodes.
func (s *Service) snapshot(ctx context.Context) (depgraph.Snapshot, error) {
	mods, err := s.store.Modules(ctx, nil)
	if err != nil {
		return depgraph.Snapshot{}, grapeserrors.Wrap(grapeserrors.ErrCodeInternal, err, "load modules")
	}
	arts, err := s.store.Artifacts(ctx, nil)
	if err != nil {
		return depgraph.Snapshot{}, grapeserrors.Wrap(grapeserrors.ErrCodeInternal, err, "load artifacts")
	}
	return depgraph.Snapshot{Modules: mods, Artifacts: arts}, nil
}

func (s *Service) build(ctx context.Context, p *filter.Pipeline, id depgraph.Identity) (*depgraph.Graph, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	g := depgraph.Build(snap, p, id)
	elapsed := time.Since(start)

	observability.Graph().OnBuild(ctx, id.Name(), g.NodeCount(), g.EdgeCount(), elapsed)
	s.logger.Debug("built graph",
		"identity", id.Name(),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", elapsed)
	return g, nil
}

// ModuleGraph builds the graph whose nodes are module names: every version
// of a module collapses into one node.
func (s *Service) ModuleGraph(ctx context.Context, p *filter.Pipeline) (*depgraph.Graph, error) {
	return s.build(ctx, p, depgraph.ModuleIdentity{})
}

// ArtifactGraph builds the graph whose module nodes are "name:version".
func (s *Service) ArtifactGraph(ctx context.Context, p *filter.Pipeline) (*depgraph.Graph, error) {
	return s.build(ctx, p, depgraph.ArtifactIdentity{})
}

// closureGraph builds the graph that roll-ups walk. Artifact versions are
// separate nodes there, so a module only reaches what it declares.
func (s *Service) closureGraph(ctx context.Context, p *filter.Pipeline) (*depgraph.Graph, error) {
	return s.build(ctx, p, depgraph.GavcIdentity{})
}

// Ancestors returns the modules that depend, directly or transitively, on
// the artifact. An artifact missing from the catalog is still looked up by
// its raw target so dangling references can be traced back.
func (s *Service) Ancestors(ctx context.Context, gavc string, p *filter.Pipeline) ([]model.Module, error) {
	if err := grapeserrors.ValidateGavc(gavc); err != nil {
		return nil, err
	}
	g, err := s.closureGraph(ctx, p)
	if err != nil {
		return nil, err
	}

	id := depgraph.GavcIdentity{}.Target(gavc)
	a, err := s.store.Artifact(ctx, gavc)
	if err != nil {
		return nil, err
	}
	if a != nil {
		id = g.ArtifactNodeID(a)
	}

	ids := g.AncestorsOf(id)
	observability.Graph().OnTraverse(ctx, "ancestors", len(ids))

	out := []model.Module{}
	for _, nid := range ids {
		if m, ok := g.Module(nid); ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

// Dependencies is the transitive dependency set of a module.
type Dependencies struct {
	Module    string           `json:"module"`
	Artifacts []model.Artifact `json:"artifacts"`
	// Unknown lists targets referenced but missing from the catalog.
	Unknown []string `json:"unknown,omitempty"`
}

// Dependencies walks the module's descendants. Without an explicit
// corporate organization on p, the module's matching organization decides
// which edges count as corporate.
func (s *Service) Dependencies(ctx context.Context, moduleID string, p *filter.Pipeline) (*Dependencies, error) {
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

	ids := g.DescendantsOf(g.ModuleNodeID(m))
	observability.Graph().OnTraverse(ctx, "descendants", len(ids))

	deps := &Dependencies{Module: m.ID(), Artifacts: g.Artifacts(ids)}
	for _, id := range ids {
		if n, ok := g.DAG().Node(id); ok && n.IsUnknown() {
			if raw, ok := n.Meta[depgraph.MetaGavc].(string); ok {
				deps.Unknown = append(deps.Unknown, raw)
			}
		}
	}
	return deps, nil
}

// DependencyGraph returns the module and its descendants as a standalone
// graph, ready for rendering or export.
func (s *Service) DependencyGraph(ctx context.Context, moduleID string, p *filter.Pipeline) (*dag.DAG, error) {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := s.withCorporate(ctx, p, m); err != nil {
		return nil, err
	}
	g, err := s.ArtifactGraph(ctx, p)
	if err != nil {
		return nil, err
	}
	root := g.ModuleNodeID(m)
	return g.DAG().Subgraph(append(g.DescendantsOf(root), root)), nil
}

func (s *Service) withCorporate(ctx context.Context, p *filter.Pipeline, m *model.Module) error {
	if p == nil || p.Corporate() != nil {
		return nil
	}
	org, err := s.MatchingOrganization(ctx, m)
	if err != nil {
		return err
	}
	if org != nil {
		p.SetCorporate(org)
	}
	return nil
}
