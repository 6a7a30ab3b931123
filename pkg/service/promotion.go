package service

import (
	"context"

	"github.com/matzehuels/grapes/pkg/model"
)

// PromotionReport lists the transitive dependencies holding a module back
// from promotion.
type PromotionReport struct {
	Module     string   `json:"module"`
	Unpromoted []string `json:"unpromoted"`
	DoNotUse   []string `json:"doNotUse"`
}

// Promotable reports whether nothing blocks the promotion.
func (r *PromotionReport) Promotable() bool {
	return len(r.Unpromoted) == 0 && len(r.DoNotUse) == 0
}

// closure returns the module's own artifacts and the catalogued artifacts
// it transitively depends on, unfiltered.
func (s *Service) closure(ctx context.Context, m *model.Module) (own, deps []model.Artifact, err error) {
	g, err := s.closureGraph(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	return m.AllArtifacts(), g.Artifacts(g.DescendantsOf(g.ModuleNodeID(m))), nil
}

// PromoteModule promotes the module's own artifacts and every catalogued
// artifact it transitively depends on, then marks the module promoted.
func (s *Service) PromoteModule(ctx context.Context, moduleID string) error {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return err
	}
	own, deps, err := s.closure(ctx, m)
	if err != nil {
		return err
	}

	for _, a := range append(own, deps...) {
		if a.Promoted {
			continue
		}
		s.logger.Debug("promoting artifact", "module", moduleID, "gavc", a.Gavc())
		if err := s.store.SetArtifactPromoted(ctx, a.Gavc(), true); err != nil {
			return err
		}
	}
	s.logger.Debug("promoted module", "module", moduleID, "artifacts", len(own), "dependencies", len(deps))
	return s.store.SetModulePromoted(ctx, moduleID, true)
}

// PromotionReport lists the module's transitive dependencies that are not
// promoted or are flagged do-not-use.
func (s *Service) PromotionReport(ctx context.Context, moduleID string) (*PromotionReport, error) {
	m, err := s.Module(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	_, deps, err := s.closure(ctx, m)
	if err != nil {
		return nil, err
	}

	r := &PromotionReport{Module: m.ID(), Unpromoted: []string{}, DoNotUse: []string{}}
	for _, a := range deps {
		if !a.Promoted {
			r.Unpromoted = append(r.Unpromoted, a.Gavc())
		}
		if a.DoNotUse {
			r.DoNotUse = append(r.DoNotUse, a.Gavc())
		}
	}
	return r, nil
}
