package filter

import (
	"strconv"

	"github.com/matzehuels/grapes/pkg/model"
)

var scopeKeys = map[model.Scope]string{
	model.ScopeCompile:  KeyScopeCompile,
	model.ScopeRuntime:  KeyScopeRuntime,
	model.ScopeTest:     KeyScopeTest,
	model.ScopeProvided: KeyScopeProvided,
}

// ScopeController hides dependency scopes. Scopes never configured, and
// scopes it does not know, stay visible.
type ScopeController struct {
	hidden map[model.Scope]bool
}

// Show sets the visibility of a scope.
func (s *ScopeController) Show(scope model.Scope, visible bool) {
	if s.hidden == nil {
		s.hidden = make(map[model.Scope]bool)
	}
	s.hidden[scope] = !visible
}

// Accept reports whether edges of the scope are visible. An empty scope
// is the compile scope.
func (s *ScopeController) Accept(scope model.Scope) bool {
	if scope == "" {
		scope = model.ScopeCompile
	}
	return !s.hidden[scope]
}

// Decorator toggles what a report shows. New pipelines start with every
// toggle on.
type Decorator struct {
	ShowThirdParty bool
	ShowCorporate  bool
	ShowLicenses   bool
}

func defaultDecorator() Decorator {
	return Decorator{ShowThirdParty: true, ShowCorporate: true, ShowLicenses: true}
}

// parseDepth reads the depth key. Anything that is not a positive integer
// means unlimited.
func parseDepth(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseBool is lenient the way query strings need: unparsable means false.
func parseBool(raw string) bool {
	b, err := strconv.ParseBool(raw)
	return err == nil && b
}
