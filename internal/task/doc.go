// Package task provides the background job machinery: the Task interface,
// a database-backed TaskRunner with a worker pool and crash recovery, and
// the offer extraction task that does the actual document processing.
package task
