// Package io provides JSON import and export for catalog snapshots and
// dependency graphs.
//
// # Snapshots
//
// A [Snapshot] holds every catalog entity. The in-memory store loads one at
// startup and the import command writes one:
//
//	{
//	  "modules": [{
//	    "name": "grapes", "version": "1.0.0",
//	    "artifacts": [{"groupId": "com.acme", "artifactId": "grapes", "version": "1.0.0"}],
//	    "dependencies": [{"target": "junit:junit:4.13", "scope": "test"}]
//	  }],
//	  "licenses": [{"name": "MIT"}],
//	  "organizations": [{"name": "acme", "corporateGroupIdPrefixes": ["com.acme"]}]
//	}
//
// Use [LoadSnapshot] and [SaveSnapshot] for files, [ReadSnapshot] and
// [WriteSnapshot] for streams. SaveSnapshot replaces the target atomically.
//
// # Graphs
//
// Built dependency graphs export to a node/edge format:
//
//	{
//	  "meta": {"identity": "module"},
//	  "nodes": [
//	    {"id": "grapes", "meta": {"name": "grapes", "version": "1.0.0"}},
//	    {"id": "junit", "kind": "unknown", "meta": {"gavc": "junit:junit:4.13"}}
//	  ],
//	  "edges": [
//	    {"from": "grapes", "to": "junit", "meta": {"scopes": ["test"]}}
//	  ]
//	}
//
// Use [ExportJSON] / [WriteJSON] to write and [ImportJSON] / [ReadJSON] to
// read a graph back, for instance to render it later without the catalog.
//
// # Concurrency
//
// All functions in this package are safe to call concurrently with other
// readers of the same graph, but not with concurrent modifications to it.
package io
