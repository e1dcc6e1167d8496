// Package domain defines the core business entities for pricecollect.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProductRecord: One entry of the reference catalog
//   - SearchField: Which catalog key a query is matched against
//   - Observation: One recorded (store, product, price, location) tuple
//   - Session: One data-collection session with its location snapshot
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
