// Package memory provides in-memory implementations of the transport and
// routing-admin ports, used by tests and by dry runs of the CLI.
package memory
