// Package graph serves chinook lookups as GraphQL queries.
//
// The schema is fixed and embedded (see schema.graphql). Documents are parsed
// and validated with gqlparser; execution is hand-written on top of the
// parsed AST and walks the request tree lazily: a relation field such as
// Album.tracks is only fetched when the request selects it, once per parent.
//
// # Errors
//
// Request errors (syntax, validation, bad variables) produce a response
// with errors and no data. Field errors null the failing field and bubble
// up to the nearest nullable parent, so sibling fields still resolve:
//
//	{
//	  "errors": [{
//	    "message": "Album with ID 100000 not found",
//	    "path": ["album"],
//	    "locations": [{"line": 1, "column": 3}],
//	    "extensions": {"code": "ALBUM_NOT_FOUND", "id": "100000"}
//	  }],
//	  "data": {"album": null}
//	}
//
// Storage failures are logged and reported with a generic message.
//
// # Concurrency
//
// Items of a list are resolved concurrently. With batching enabled, sibling
// relation fetches of one request are collected by the relation resolver
// and answered with one query per batch.
//
// Once the request context is done no further relation is fetched; reads
// already under way finish and their results are dropped. Reads are not
// wrapped in a snapshot, so a request walking Artist.albums then
// Album.tracks can observe a write made between the two reads.
//
// Introspection is not served.
package graph
