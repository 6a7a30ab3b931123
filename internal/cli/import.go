package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/cache"
	"github.com/matzehuels/grapes/pkg/config"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/integrations/maven"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/model"
	"github.com/matzehuels/grapes/pkg/service"
)

type importOpts struct {
	depth   int
	refresh bool
	noCache bool
}

// importCommand creates the import command. A pom.xml or *.pom argument is
// a local project model, other files are catalog snapshots and anything
// else is a gavc fetched from Maven.
func (c *CLI) importCommand() *cobra.Command {
	var opts importOpts

	cmd := &cobra.Command{
		Use:   "import <snapshot.json | pom.xml | groupId:artifactId[:version]>...",
		Short: "Import snapshots or Maven modules into the catalog",
		Long: `Import catalog snapshots or Maven modules into the catalog.

A snapshot replaces entities with the same key. A gavc is resolved against
the configured Maven repository; without a version the newest listed
version is imported. A local pom.xml is imported as the project it
describes. With --depth the compile and runtime dependencies of
imported modules are imported too, up to that many levels.`,
		Example: `  grapes import catalog.json
  grapes import org.slf4j:slf4j-api:2.0.9
  grapes import ./pom.xml --depth 1
  grapes import com.google.guava:guava --depth 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(cfg *config.Config, svc *service.Service) error {
				var im *mavenImporter
				for _, arg := range args {
					if !isPOMPath(arg) && isSnapshotPath(arg) {
						if err := importSnapshot(ctx, svc, arg); err != nil {
							return err
						}
						continue
					}
					if im == nil {
						var err error
						if im, err = c.newImporter(ctx, cfg, svc, opts); err != nil {
							return err
						}
						defer im.close()
					}
					var err error
					if isPOMPath(arg) {
						err = im.importPOM(ctx, arg, opts.depth)
					} else {
						err = im.importTree(ctx, arg, opts.depth)
					}
					if err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&opts.depth, "depth", 0, "also import dependencies up to this many levels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached repository responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the lookup cache")

	return cmd
}

// isPOMPath reports whether arg names a local project model.
func isPOMPath(arg string) bool {
	return filepath.Base(arg) == "pom.xml" || strings.HasSuffix(arg, ".pom")
}

func isSnapshotPath(arg string) bool {
	if strings.HasSuffix(arg, ".json") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

func importSnapshot(ctx context.Context, svc *service.Service, path string) error {
	prog := newProgress(loggerFromContext(ctx))
	snap, err := pkgio.LoadSnapshot(path)
	if err != nil {
		return err
	}
	st, err := svc.Import(ctx, snap)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	prog.done("imported snapshot", "path", path)
	printSuccess("Imported %s", path)
	printDetail("%d modules · %d artifacts · %d licenses · %d organizations · %d products",
		st.Modules, st.Artifacts, st.Licenses, st.Organizations, st.Products)
	return nil
}

// =============================================================================
// Maven import
// =============================================================================

// mavenImporter walks POM dependencies breadth first, storing every
// module it resolves.
type mavenImporter struct {
	svc     *service.Service
	mvn     *maven.Client
	lookups cache.Cache
	refresh bool
	seen    map[string]bool
}

func (c *CLI) newImporter(ctx context.Context, cfg *config.Config, svc *service.Service, opts importOpts) (*mavenImporter, error) {
	lookups, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}
	return &mavenImporter{
		svc:     svc,
		mvn:     newMaven(lookups, cfg),
		lookups: lookups,
		refresh: opts.refresh,
		seen:    make(map[string]bool),
	}, nil
}

func (im *mavenImporter) close() { _ = im.lookups.Close() }

type pending struct {
	gavc  string
	level int
}

// importTree imports root and, up to depth levels below it, its compile
// and runtime dependencies. Only a failure on root is fatal; dependencies
// that cannot be resolved are logged and skipped.
func (im *mavenImporter) importTree(ctx context.Context, root string, depth int) error {
	if err := grapeserrors.ValidateGavc(root); err != nil {
		return err
	}
	return im.walk(ctx, root, depth, func(ctx context.Context) (*model.Module, error) {
		return im.mvn.ImportModule(ctx, root, im.refresh)
	})
}

// importPOM imports the project described by a local POM file, then its
// dependencies from the repository like importTree.
func (im *mavenImporter) importPOM(ctx context.Context, path string, depth int) error {
	pom, err := maven.ReadPOM(path)
	if err != nil {
		return err
	}
	return im.walk(ctx, path, depth, func(context.Context) (*model.Module, error) {
		return im.mvn.ModuleFromPOM(pom)
	})
}

func (im *mavenImporter) walk(ctx context.Context, root string, depth int, resolveRoot func(context.Context) (*model.Module, error)) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spin := newSpinner(ctx, "Resolving "+root)
	spin.Start()
	defer spin.Stop()

	queue := []pending{{gavc: root}}
	imported := 0
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		var (
			m   *model.Module
			err error
		)
		if next.level == 0 {
			m, err = resolveRoot(ctx)
		} else {
			key := gaKey(next.gavc)
			if im.seen[key] {
				continue
			}
			im.seen[key] = true
			spin.Update("Resolving " + next.gavc)
			m, err = im.mvn.ImportModule(ctx, next.gavc, im.refresh)
		}
		if err != nil {
			if next.level == 0 || ctx.Err() != nil {
				spin.StopWithError("Could not import %s", next.gavc)
				return err
			}
			logger.Warn("skipping dependency", "gavc", next.gavc, "err", err)
			continue
		}
		if next.level == 0 && len(m.Artifacts) > 0 {
			im.seen[gaKey(m.Artifacts[0].Gavc())] = true
		}
		if err := im.svc.StoreModule(ctx, m); err != nil {
			return err
		}
		imported++
		logger.Debug("imported module", "module", m.ID(), "dependencies", len(m.Dependencies))

		if next.level >= depth {
			continue
		}
		for _, d := range m.Dependencies {
			if followed(d) {
				queue = append(queue, pending{gavc: d.Target, level: next.level + 1})
			}
		}
	}

	prog.done("maven import finished", "root", root, "modules", imported)
	spin.StopWithSuccess("Imported %s (%d modules)", root, imported)
	return nil
}

// followed reports whether a dependency is part of what a module needs at
// run time and pins a concrete version.
func followed(d model.Dependency) bool {
	switch d.Scope {
	case "", model.ScopeCompile, model.ScopeRuntime:
	default:
		return false
	}
	v := model.ParseGavc(d.Target).Version
	return v != "" && !strings.Contains(v, "${")
}

// gaKey identifies a gavc by group, artifact and version so that one
// module is fetched once per run.
func gaKey(gavc string) string {
	g := model.ParseGavc(gavc)
	return g.GroupID + ":" + g.ArtifactID + ":" + g.Version
}

// =============================================================================
// Export
// =============================================================================

// exportCommand creates the export command writing a catalog snapshot.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withService(ctx, func(_ *config.Config, svc *service.Service) error {
				snap, err := svc.Export(ctx)
				if err != nil {
					return err
				}
				if output == "" {
					return pkgio.WriteSnapshot(snap, cmd.OutOrStdout())
				}
				if err := pkgio.SaveSnapshot(snap, output); err != nil {
					return err
				}
				printSuccess("Exported %d modules", len(snap.Modules))
				printFile(output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
