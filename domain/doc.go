// Package domain holds the entities the session layer and action guards read and write,
// and the repository contract the storage collaborator implements.
//
// # Architecture boundaries
//
// Entities here are plain values. Persistence lives in postgres and memstore; both satisfy
// [Store] structurally and never import the engine.
//
// # What this package must NOT do
//
//   - Import any other goSaaS package.
//   - Perform I/O.
package domain
