package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapes/pkg/config"
	"github.com/matzehuels/grapes/pkg/dag"
	grapeserrors "github.com/matzehuels/grapes/pkg/errors"
	"github.com/matzehuels/grapes/pkg/filter"
	pkgio "github.com/matzehuels/grapes/pkg/io"
	"github.com/matzehuels/grapes/pkg/render"
	"github.com/matzehuels/grapes/pkg/service"
)

// Graph output formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

type graphOpts struct {
	format    string
	output    string
	input     string
	filters   map[string]string
	artifacts bool
	detailed  bool
	scopes    bool
	reduce    bool
	highlight string
}

// graphCommand creates the graph command. With a module id it renders the
// module's dependency subgraph; without one the whole catalog.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph [module-id]",
		Short: "Render the dependency graph as DOT, SVG or JSON",
		Long: `Render the dependency graph as DOT, SVG or JSON.

Filters take the same keys as the HTTP API query parameters, e.g.
--filter scope-test=false --filter show-third-party=false --filter depth=2.
Without a module id the whole catalog is rendered: one node per module, or
one node per artifact with --artifacts. --input re-renders a graph saved
with --format json instead of reading the catalog.`,
		Example: `  grapes graph app:1.0 -o app.svg
  grapes graph app:1.0 --format json --filter scope-test=false
  grapes graph --artifacts --format dot
  grapes graph --input app.json -o app.svg --reduce`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromPath(opts.output)
			}
			switch opts.format {
			case formatDOT, formatSVG, formatJSON:
			default:
				return grapeserrors.New(grapeserrors.ErrCodeInvalidFormat, "unsupported format %q (want dot, svg or json)", opts.format)
			}

			ctx := cmd.Context()
			if opts.input != "" {
				if len(args) > 0 {
					return grapeserrors.New(grapeserrors.ErrCodeInvalidInput, "--input cannot be combined with a module id")
				}
				g, err := pkgio.ImportJSON(opts.input)
				if err != nil {
					return grapeserrors.Wrap(grapeserrors.ErrCodeInvalidFormat, err, "read graph")
				}
				return c.emitGraph(ctx, cmd.OutOrStdout(), g, opts)
			}
			return c.withService(ctx, func(_ *config.Config, svc *service.Service) error {
				g, err := buildGraph(ctx, svc, args, opts)
				if err != nil {
					return err
				}
				return c.emitGraph(ctx, cmd.OutOrStdout(), g, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg or json (default from -o extension, else dot)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "render a saved JSON graph instead of the catalog")
	cmd.Flags().StringToStringVar(&opts.filters, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.artifacts, "artifacts", false, "one node per artifact when rendering the whole catalog")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node metadata in labels")
	cmd.Flags().BoolVar(&opts.scopes, "scopes", false, "label edges with their scopes")
	cmd.Flags().BoolVar(&opts.reduce, "reduce", false, "drop edges implied by longer paths")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "node id to emphasize")

	return cmd
}

func buildGraph(ctx context.Context, svc *service.Service, args []string, opts graphOpts) (*dag.DAG, error) {
	p := filter.FromParams(opts.filters)
	if len(args) == 1 {
		return svc.DependencyGraph(ctx, args[0], p)
	}
	if opts.artifacts {
		g, err := svc.ArtifactGraph(ctx, p)
		if err != nil {
			return nil, err
		}
		return g.DAG(), nil
	}
	g, err := svc.ModuleGraph(ctx, p)
	if err != nil {
		return nil, err
	}
	return g.DAG(), nil
}

func (c *CLI) emitGraph(ctx context.Context, stdout io.Writer, g *dag.DAG, opts graphOpts) error {
	if opts.reduce {
		c.Logger.Debug("transitive reduction", "removed", g.TransitiveReduction())
	}
	return c.writeGraph(ctx, stdout, g, opts)
}

func (c *CLI) writeGraph(ctx context.Context, stdout io.Writer, g *dag.DAG, opts graphOpts) error {
	var buf bytes.Buffer
	switch opts.format {
	case formatJSON:
		if err := pkgio.WriteJSON(g, &buf); err != nil {
			return err
		}
	case formatDOT, formatSVG:
		dot := render.ToDOT(g, render.Options{Detailed: opts.detailed, Scopes: opts.scopes, Highlight: opts.highlight})
		if opts.format == formatDOT {
			buf.WriteString(dot)
			break
		}
		svg, err := render.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		buf.Write(svg)
	}

	if opts.output == "" {
		_, err := buf.WriteTo(stdout)
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	unknown := 0
	for _, n := range g.Nodes() {
		if n.IsUnknown() {
			unknown++
		}
	}
	printSuccess("Rendered %s graph", opts.format)
	printGraphStats(g.NodeCount(), g.EdgeCount(), unknown)
	printFile(opts.output)
	return nil
}

// formatFromPath picks the format matching an output file extension.
func formatFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".svg"):
		return formatSVG
	case strings.HasSuffix(path, ".json"):
		return formatJSON
	default:
		return formatDOT
	}
}
