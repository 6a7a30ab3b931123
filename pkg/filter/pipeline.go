// Package filter decides which artifacts, modules, licenses and dependency
// edges belong in a result set.
//
// A [Pipeline] holds at most one [Criterion] per [Kind]: adding a criterion
// of a kind already present replaces it. Alongside the criteria sit three
// controllers: a scope controller hiding dependency scopes, a [Decorator]
// toggling third-party/corporate visibility and a depth bound for graph
// traversal. Pipelines are built per request, usually from query
// parameters:
//
//	p := filter.FromParams(map[string]string{
//	    "promoted":         "true",
//	    "scope-test":       "false",
//	    "show-third-party": "false",
//	})
//	p.SetCorporate(org)
//
// A nil *Pipeline behaves like an empty one and matches everything. Its
// setters are no-ops.
package filter

import (
	"maps"
	"sort"
	"strconv"

	"github.com/matzehuels/grapes/pkg/model"
)

// Pipeline is a set of criteria plus the scope, decorator and depth
// controllers. It is not safe for concurrent mutation.
type Pipeline struct {
	criteria  map[Kind]Criterion
	scope     ScopeController
	decorator Decorator
	depth     int
	corporate *model.Organization
}

// New returns an empty pipeline: no criteria, all scopes visible, every
// decorator toggle on and unlimited depth.
func New() *Pipeline {
	return &Pipeline{
		criteria:  make(map[Kind]Criterion),
		decorator: defaultDecorator(),
	}
}

// FromParams builds a pipeline from query parameters.
func FromParams(params map[string]string) *Pipeline {
	p := New()
	p.Init(params)
	return p
}

// Init applies query parameters. Absent keys leave the pipeline untouched,
// unknown keys are ignored. The result does not depend on map iteration
// order.
func (p *Pipeline) Init(params map[string]string) {
	if p == nil {
		return
	}
	for _, k := range Kinds() {
		if raw, ok := params[k.Key()]; ok {
			p.Add(newCriterion(k, raw))
		}
	}

	for scope, key := range scopeKeys {
		if raw, ok := params[key]; ok {
			p.scope.Show(scope, parseBool(raw))
		}
	}

	if raw, ok := params[KeyShowThirdParty]; ok {
		p.decorator.ShowThirdParty = parseBool(raw)
	}
	if raw, ok := params[KeyShowCorporate]; ok {
		p.decorator.ShowCorporate = parseBool(raw)
	}
	if raw, ok := params[KeyShowLicenses]; ok {
		p.decorator.ShowLicenses = parseBool(raw)
	}
	if raw, ok := params[KeyDepth]; ok {
		p.depth = parseDepth(raw)
	}
}

// Add installs c, replacing any criterion of the same kind.
func (p *Pipeline) Add(c Criterion) {
	if p == nil || c == nil {
		return
	}
	if p.criteria == nil {
		p.criteria = make(map[Kind]Criterion)
	}
	p.criteria[c.Kind()] = c
}

// Remove drops the criterion of kind k, if any.
func (p *Pipeline) Remove(k Kind) {
	if p == nil {
		return
	}
	delete(p.criteria, k)
}

// Get returns the active criterion of kind k.
func (p *Pipeline) Get(k Kind) (Criterion, bool) {
	if p == nil {
		return nil, false
	}
	c, ok := p.criteria[k]
	return c, ok
}

// Criteria returns the active criteria in kind order.
func (p *Pipeline) Criteria() []Criterion {
	if p == nil {
		return nil
	}
	kinds := make([]Kind, 0, len(p.criteria))
	for k := range p.criteria {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	out := make([]Criterion, len(kinds))
	for i, k := range kinds {
		out[i] = p.criteria[k]
	}
	return out
}

// Scope returns the scope controller. A nil pipeline hands out a detached
// controller that shows every scope.
func (p *Pipeline) Scope() *ScopeController {
	if p == nil {
		return &ScopeController{}
	}
	return &p.scope
}

// Decorator returns the decoration toggles.
func (p *Pipeline) Decorator() Decorator {
	if p == nil {
		return defaultDecorator()
	}
	return p.decorator
}

// SetDecorator replaces the decoration toggles.
func (p *Pipeline) SetDecorator(d Decorator) {
	if p != nil {
		p.decorator = d
	}
}

// Depth returns the traversal bound in edge hops; 0 means unlimited.
func (p *Pipeline) Depth() int {
	if p == nil {
		return 0
	}
	return p.depth
}

// SetDepth sets the traversal bound. Values below 1 mean unlimited.
func (p *Pipeline) SetDepth(n int) {
	if p == nil {
		return
	}
	if n < 0 {
		n = 0
	}
	p.depth = n
}

// SetCorporate installs the organization whose group-id prefixes decide
// whether a dependency edge is corporate. nil disables the rule.
func (p *Pipeline) SetCorporate(org *model.Organization) {
	if p != nil {
		p.corporate = org
	}
}

// Corporate returns the configured organization, or nil.
func (p *Pipeline) Corporate() *model.Organization {
	if p == nil {
		return nil
	}
	return p.corporate
}

// MatchArtifact reports whether every criterion accepts a.
func (p *Pipeline) MatchArtifact(a *model.Artifact) bool {
	if a == nil {
		return false
	}
	for _, c := range p.Criteria() {
		if !c.Artifact(a) {
			return false
		}
	}
	return true
}

// MatchModule reports whether every criterion accepts m.
func (p *Pipeline) MatchModule(m *model.Module) bool {
	if m == nil {
		return false
	}
	for _, c := range p.Criteria() {
		if !c.Module(m) {
			return false
		}
	}
	return true
}

// MatchLicense reports whether every criterion accepts l.
func (p *Pipeline) MatchLicense(l *model.License) bool {
	if l == nil {
		return false
	}
	for _, c := range p.Criteria() {
		if !c.License(l) {
			return false
		}
	}
	return true
}

// MatchDependency decides whether a dependency edge is visible. target is
// the resolved artifact, or nil when the edge dangles; the group-id is then
// read from the raw gavc.
//
// With a corporate organization configured, edges to third-party artifacts
// need ShowThirdParty and edges to corporate artifacts need ShowCorporate.
// The scope controller has the last word.
func (p *Pipeline) MatchDependency(dep *model.Dependency, target *model.Artifact) bool {
	if dep == nil || dep.Target == "" {
		return false
	}
	if p == nil {
		return true
	}

	if p.corporate != nil {
		groupID := model.ParseGavc(dep.Target).GroupID
		if target != nil {
			groupID = target.GroupID
		}
		corporate := p.corporate.IsCorporate(groupID)
		if !p.decorator.ShowThirdParty && !corporate {
			return false
		}
		if !p.decorator.ShowCorporate && corporate {
			return false
		}
	}

	return p.scope.Accept(dep.Scope)
}

// ArtifactParams merges the artifact field constraints of every criterion,
// in kind order. When two kinds constrain the same field the later kind
// wins.
func (p *Pipeline) ArtifactParams() map[string]any {
	params := make(map[string]any)
	for _, c := range p.Criteria() {
		maps.Copy(params, c.ArtifactParams())
	}
	return params
}

// ModuleParams merges the module field constraints of every criterion, in
// kind order.
func (p *Pipeline) ModuleParams() map[string]any {
	params := make(map[string]any)
	for _, c := range p.Criteria() {
		maps.Copy(params, c.ModuleParams())
	}
	return params
}

// Params projects the pipeline back onto query parameters. Only
// non-default state is emitted, so FromParams(p.Params()) rebuilds an
// equivalent pipeline.
func (p *Pipeline) Params() map[string]string {
	params := make(map[string]string)
	if p == nil {
		return params
	}
	for _, c := range p.Criteria() {
		params[c.Kind().Key()] = c.Param()
	}
	for scope, key := range scopeKeys {
		if !p.scope.Accept(scope) {
			params[key] = "false"
		}
	}
	if !p.decorator.ShowThirdParty {
		params[KeyShowThirdParty] = "false"
	}
	if !p.decorator.ShowCorporate {
		params[KeyShowCorporate] = "false"
	}
	if !p.decorator.ShowLicenses {
		params[KeyShowLicenses] = "false"
	}
	if p.depth > 0 {
		params[KeyDepth] = strconv.Itoa(p.depth)
	}
	return params
}
