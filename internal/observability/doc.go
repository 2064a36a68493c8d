// Package observability provides the gateway's zap logger, the HTTP request
// logger and the Prometheus collectors for authentication outcomes.
package observability
