// Package application provides application initialization and dependency wiring.
// It builds the report store, the solvers, metrics, handlers, routers and the
// HTTP server, leaving the main package to CLI parsing and orchestration.
package application
