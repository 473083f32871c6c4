// Package domain defines the core business entities for ragbench.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentProfile: The structural annotation of one document
//   - PageRecord: One parsed page, slide or sheet
//   - Bucket / SamplePlan: Stratified sampling structures
//   - QueryRecord: One generated evaluation query
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
