package model

import "strings"

// Wildcard matches any value in a gavc part.
const Wildcard = "*"

// Gavc is a parsed artifact identity key.
type Gavc struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Extension  string
}

// ParseGavc splits a raw key on ':' into at most five parts. Missing parts
// are empty; anything after the fifth separator stays in the extension.
// ParseGavc never fails: validation lives in the errors package.
func ParseGavc(raw string) Gavc {
	parts := strings.SplitN(raw, ":", 5)
	var g Gavc
	fields := []*string{&g.GroupID, &g.ArtifactID, &g.Version, &g.Classifier, &g.Extension}
	for i, p := range parts {
		*fields[i] = p
	}
	return g
}

// String renders the canonical five-part form.
func (g Gavc) String() string {
	return g.GroupID + ":" + g.ArtifactID + ":" + g.Version + ":" + g.Classifier + ":" + g.Extension
}

// Canonical normalizes a raw key to its five-part form so that
// "g:a:1.0" and "g:a:1.0::" designate the same artifact.
func Canonical(raw string) string {
	return ParseGavc(raw).String()
}

// Match reports whether the artifact satisfies the pattern. Empty or "*"
// pattern parts match anything.
func (g Gavc) Match(a *Artifact) bool {
	return matchPart(g.GroupID, a.GroupID) &&
		matchPart(g.ArtifactID, a.ArtifactID) &&
		matchPart(g.Version, a.Version) &&
		matchPart(g.Classifier, a.Classifier) &&
		matchPart(g.Extension, a.Extension)
}

func matchPart(pattern, value string) bool {
	return pattern == "" || pattern == Wildcard || pattern == value
}
