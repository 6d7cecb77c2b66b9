// Package redis provides the job result cache backing the results polling
// endpoint. Job status and result payloads are stored under job:{id}:status
// and job:{id}:result keys with a configurable TTL.
//
// When Redis is unreachable at startup the package degrades to a
// process-local in-memory cache with the same interface and expiry
// semantics, so ingestion keeps working in environments without Redis.
package redis
