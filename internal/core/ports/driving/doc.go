// Package driving defines the interfaces the CLI uses to run the
// pipeline: annotation, corpus analysis and query generation. These are
// the "driving" ports in hexagonal architecture terminology - they
// drive the application.
//
// Implementations of these interfaces live in internal/core/services.
// Result types in this package double as the shapes the report writers
// serialise.
package driving
