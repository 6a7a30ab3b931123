// Package integrations provides the shared HTTP client used by remote
// repository clients.
//
// [Client] adds to net/http:
//   - cached lookups through a [cache.Cache] under a per-repository namespace
//   - retry with backoff on network errors, 429 and 5xx responses
//   - default headers merged with per-request headers
//   - request, response and error reports to the observability HTTP hooks
//
// Repository-specific clients live in sub-packages; see [maven].
//
// [cache.Cache]: github.com/matzehuels/grapes/pkg/cache.Cache
// [maven]: github.com/matzehuels/grapes/pkg/integrations/maven
package integrations
