package cache

import (
	"maps"
	"slices"
)

// Keyer builds cache keys. Keys start with a namespace followed by ':'.
type Keyer interface {
	// HTTPKey keys a remote response, e.g. a maven-metadata.xml document.
	HTTPKey(namespace, key string) string
	// QueryKey keys an API response by route and query parameters. The
	// parameter order does not matter.
	QueryKey(route string, params map[string]string) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// QueryKey returns "query:<sha256>" over the route and sorted parameters.
func (DefaultKeyer) QueryKey(route string, params map[string]string) string {
	pairs := make([][2]string, 0, len(params))
	for _, k := range slices.Sorted(maps.Keys(params)) {
		pairs = append(pairs, [2]string{k, params[k]})
	}
	return hashKey("query", route, pairs)
}
