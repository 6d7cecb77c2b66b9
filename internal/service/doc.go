// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The ingest service is the write path: it persists inbound submissions in a
// transaction and emits job request events for background extraction. The
// same service backs the read path the results and debug endpoints use. The
// auth subpackage holds token issuing and verification.
//
// The service layer depends on domain entities and repository interfaces
// (from store), but never on specific infrastructure implementations.
package service
