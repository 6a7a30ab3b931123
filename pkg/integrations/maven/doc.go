// Package maven reads artifact metadata from a Maven repository.
//
// Two documents are consulted:
//
//   - maven-metadata.xml, for the list of published versions
//     ([Client.Versions]), which feeds the version comparator
//   - the POM of one version ([Client.FetchPOM]), which [Client.ImportModule]
//     turns into a catalog module with one artifact, its declared licenses
//     and its dependencies
//
// POM property references (${project.version}, <properties> entries) are
// substituted, and dependency versions left open are taken from the POM's
// dependencyManagement. Dependencies that stay unresolved, and optional
// ones, are skipped. Parent POMs are not fetched.
//
// Responses are cached through the shared [integrations.Client]; pass
// refresh=true to bypass the cache.
//
//	client := maven.NewClient(c, "", 24*time.Hour)
//	versions, err := client.Versions(ctx, "junit", "junit", false)
//
// [integrations.Client]: github.com/matzehuels/grapes/pkg/integrations.Client
package maven
