// Package server runs the HTTP and gRPC transports of the field-keeper server
// together with its cron workers, and shuts all of them down on SIGTERM,
// SIGINT or SIGQUIT.
package server
