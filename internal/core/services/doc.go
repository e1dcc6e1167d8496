// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. The catalog index is immutable once
// built; a reload builds a new index and swaps the single owning reference.
package services
