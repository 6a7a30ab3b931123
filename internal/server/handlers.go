package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/grapes/pkg/buildinfo"
	"github.com/matzehuels/grapes/pkg/config"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/render"
	"github.com/matzehuels/grapes/pkg/service"
)

// params flattens the query string, keeping the first value of each key.
func params(r *http.Request) map[string]string {
	out := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func pipeline(r *http.Request) *filter.Pipeline {
	return filter.FromParams(params(r))
}

// boolParam reads a boolean query parameter; a missing parameter is true.
func boolParam(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, grapeserrors.New(grapeserrors.ErrCodeInvalidInput, "%s must be true or false, got %q", key, raw)
	}
	return v, nil
}

// reply writes v as JSON, or the error.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// cached serves a graph query from the response cache when possible.
// Responses are keyed by path, query parameters and the write generation
// seen before compute runs.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, compute func() (any, error)) {
	if s.cache == nil {
		v, err := compute()
		s.reply(w, r, v, err)
		return
	}

	ctx := r.Context()
	key := s.keyer.QueryKey(r.URL.Path, params(r)) + ":" + strconv.FormatUint(s.generation.Load(), 10)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(data)
		return
	}

	v, err := compute()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, grapeserrors.Wrap(grapeserrors.ErrCodeInternal, err, "encode response"))
		return
	}
	data = append(data, '\n')
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("response cache write failed", "key", key, "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(data)
}

// =============================================================================
// About
// =============================================================================

type about struct {
	Build     buildinfo.Info         `json:"build"`
	Community config.CommunityConfig `json:"community"`
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, about{Build: buildinfo.Get(), Community: s.community})
}

// =============================================================================
// Artifacts
// =============================================================================

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	arts, err := s.svc.Artifacts(r.Context(), pipeline(r))
	s.reply(w, r, nonNil(arts), err)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Artifact(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, a, err)
}

func (s *Server) handleArtifactVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := s.svc.ArtifactVersions(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, versions, err)
}

type versionBody struct {
	Version string `json:"version"`
}

func (s *Server) handleLastVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.LastVersion(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, versionBody{v}, err)
}

func (s *Server) handleLastRelease(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.LastRelease(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, versionBody{v}, err)
}

func (s *Server) handleUpToDate(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.IsUpToDate(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, map[string]bool{"upToDate": ok}, err)
}

func (s *Server) handleAncestors(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, func() (any, error) {
		mods, err := s.svc.Ancestors(r.Context(), chi.URLParam(r, "gavc"), pipeline(r))
		return nonNil(mods), err
	})
}

func (s *Server) handleArtifactOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.svc.ArtifactOrganization(r.Context(), chi.URLParam(r, "gavc"))
	s.reply(w, r, org, err)
}

type licenseRequest struct {
	License string `json:"license"`
}

func (s *Server) handleAddLicense(w http.ResponseWriter, r *http.Request) {
	var req licenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.License == "" {
		writeStatus(w, http.StatusBadRequest, string(grapeserrors.ErrCodeInvalidFormat), `expected {"license": "<name>"}`)
		return
	}
	if err := s.svc.AddLicense(r.Context(), chi.URLParam(r, "gavc"), req.License); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveLicense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveLicense(r.Context(), chi.URLParam(r, "gavc"), chi.URLParam(r, "license")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDoNotUse(w http.ResponseWriter, r *http.Request) {
	v, err := boolParam(r, "value")
	if err == nil {
		err = s.svc.SetDoNotUse(r.Context(), chi.URLParam(r, "gavc"), v)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Modules
// =============================================================================

func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	mods, err := s.svc.Modules(r.Context(), pipeline(r))
	s.reply(w, r, nonNil(mods), err)
}

func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.Module(r.Context(), chi.URLParam(r, "id"))
	s.reply(w, r, m, err)
}

// handleModuleVersions accepts either a module name or a name:version id.
func (s *Server) handleModuleVersions(w http.ResponseWriter, r *http.Request) {
	name, _ := model.SplitModuleID(chi.URLParam(r, "id"))
	versions, err := s.svc.ModuleVersions(r.Context(), name)
	s.reply(w, r, versions, err)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, func() (any, error) {
		return s.svc.Dependencies(r.Context(), chi.URLParam(r, "id"), pipeline(r))
	})
}

func (s *Server) handleModuleLicenses(w http.ResponseWriter, r *http.Request) {
	s.cached(w, r, func() (any, error) {
		ls, err := s.svc.ModuleLicenses(r.Context(), chi.URLParam(r, "id"), pipeline(r))
		return nonNil(ls), err
	})
}

func (s *Server) handleModuleOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.svc.ModuleOrganization(r.Context(), chi.URLParam(r, "id"))
	s.reply(w, r, org, err)
}

// handleModuleGraph renders the module's dependency closure as JSON
// (default), DOT or SVG. reduce=true drops edges implied by longer paths.
func (s *Server) handleModuleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.DependencyGraph(r.Context(), chi.URLParam(r, "id"), pipeline(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, ok := r.URL.Query()["reduce"]; ok {
		reduce, err := boolParam(r, "reduce")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if reduce {
			g.TransitiveReduction()
		}
	}
	opts := render.Options{Scopes: true, Highlight: chi.URLParam(r, "id")}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := pkgio.WriteJSON(g, w); err != nil {
			s.logger.Warn("write graph", "err", err)
		}
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(render.ToDOT(g, opts)))
	case "svg":
		svg, err := render.RenderSVG(r.Context(), render.ToDOT(g, opts))
		if err != nil {
			s.writeError(w, r, grapeserrors.Wrap(grapeserrors.ErrCodeInternal, err, "render graph"))
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeStatus(w, http.StatusBadRequest, string(grapeserrors.ErrCodeInvalidFormat),
			"format must be json, dot or svg, got "+strconv.Quote(format))
	}
}

type promotionBody struct {
	*service.PromotionReport
	Promotable bool `json:"promotable"`
}

func (s *Server) handlePromotionReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.PromotionReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, promotionBody{PromotionReport: report, Promotable: report.Promotable()})
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.PromoteModule(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	m, err := s.svc.Module(r.Context(), id)
	s.reply(w, r, m, err)
}

// =============================================================================
// Licenses, organizations, products
// =============================================================================

func (s *Server) handleLicenses(w http.ResponseWriter, r *http.Request) {
	ls, err := s.svc.Licenses(r.Context(), pipeline(r))
	s.reply(w, r, nonNil(ls), err)
}

func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.License(r.Context(), chi.URLParam(r, "name"))
	s.reply(w, r, l, err)
}

func (s *Server) handleApproveLicense(w http.ResponseWriter, r *http.Request) {
	v, err := boolParam(r, "approved")
	if err == nil {
		err = s.svc.ApproveLicense(r.Context(), chi.URLParam(r, "name"), v)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.svc.Organizations(r.Context())
	s.reply(w, r, nonNil(orgs), err)
}

func (s *Server) handleOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.svc.Organization(r.Context(), chi.URLParam(r, "name"))
	s.reply(w, r, org, err)
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.svc.Products(r.Context())
	s.reply(w, r, nonNil(ps), err)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Product(r.Context(), chi.URLParam(r, "name"))
	s.reply(w, r, p, err)
}

// nonNil makes empty lists encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
