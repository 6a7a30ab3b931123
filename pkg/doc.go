// Package pkg provides the core libraries of grapes, a catalog of Maven
// build modules, their artifacts and the dependencies between them.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [model], [version] and [errors] - Domain types, version ordering and
//     coded errors
//  2. [store] - Persistence (in-memory with JSON snapshots, MongoDB)
//  3. [service] - Catalog operations: storing, promotion, license and
//     version queries
//  4. [dag], [depgraph] and [filter] - Dependency graphs built from the
//     catalog and the filters that prune them
//  5. [render] and [io] - DOT, SVG and JSON output plus catalog snapshots
//  6. [cache], [httputil] and [integrations] - Cached lookups against
//     Maven repositories
//
// # Architecture
//
// The typical data flow:
//
//	Maven repository / snapshot
//	         ↓
//	    [integrations/maven] or [io] (modules, artifacts, licenses)
//	         ↓
//	    [service] → [store]
//	         ↓
//	    [depgraph] + [filter] (artifact or module graph)
//	         ↓
//	    [render] (DOT/SVG) or [io] (JSON)
//
// # Quick Start
//
//	st, _ := memory.Open("catalog.json")
//	defer st.Close(ctx)
//	svc := service.New(st, log.Default())
//
//	g, _ := svc.DependencyGraph(ctx, "app:1.0", filter.FromParams(map[string]string{
//	    "scope-test": "false",
//	}))
//	fmt.Println(render.ToDOT(g, render.Options{Scopes: true}))
//
// The command line front end lives in internal/cli and the HTTP API in
// internal/server.
package pkg
