// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CatalogSource: Fetches the raw catalog snapshot
//   - KeyValueStore: Durable storage for the observation list
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Locator: Location snapshot at session start. Without it observations carry no location.
//   - FileSink: Local export files. Without it only in-memory text export works.
//   - Uploader: Remote JSON upload. Without it exports stay local.
//   - Metrics: Operational counters. Without it nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
