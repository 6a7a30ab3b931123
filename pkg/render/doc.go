// Package render draws dependency graphs as Graphviz node-link diagrams.
//
// Convert a graph to DOT, then render to SVG:
//
//	g, _ := svc.ModuleGraph(ctx, p)
//	dot := render.ToDOT(g.DAG(), render.Options{Scopes: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Node styling follows the node kind: modules, catalogued artifacts
// and unknown dependency targets are visually distinct so that gaps in the
// catalog stand out.
//
// SVG rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly; no system installation is needed.
package render
