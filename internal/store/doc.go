// Package store defines the persistence interfaces for the application's
// domain entities along with the shared database abstractions used by their
// implementations.
//
// The interfaces here (SubmissionStore, OfferStore, ClientStore) are
// implemented by the postgres platform package. Each store exposes a WithTx
// method so a caller can compose several store operations inside a single
// transaction via RunInTransaction.
//
// Errors returned from stores wrap the sentinel errors declared in errors.go,
// so callers can use errors.Is to branch on not-found or duplicate conditions
// without depending on a concrete implementation.
package store
