// Package database selects and wires a metadata backend.
//
// Connect establishes the configured backend (sqlite or postgres), runs
// migrations, validates the schema, and returns the user and file
// repositories together with a cleanup function. Table names are
// configurable and validated before any SQL is built with them.
package database
