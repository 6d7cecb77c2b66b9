// Package events provides the types and interfaces that decouple the
// ingestion service from the background job machinery.
//
// The ingest service emits a JobRequestEvent after persisting a submission;
// a handler in the task layer turns that event into a queued extraction job.
// Neither side imports the other, which keeps the dependency graph acyclic.
//
// The primary components are:
// - JobRequestEvent: Represents a request to schedule a background job
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
