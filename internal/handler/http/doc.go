// Package http implements the REST transport of the field-keeper server:
// chi routes, middleware and handlers for field actor logins, sessions,
// telemetry ingestion and the administrator surface. Business decisions are
// delegated to the service layer; this package only decodes requests and
// maps service errors to status codes.
package http
