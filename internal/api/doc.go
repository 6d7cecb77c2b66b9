// Package api handles incoming HTTP requests, request validation, and
// response formatting for the ingestion, results, and auth endpoints. It acts
// as an adapter between external clients and the internal application
// services, translating HTTP concerns to business operations.
package api
