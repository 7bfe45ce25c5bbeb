// Package config provides configuration loading and validation for filevault.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FILEVAULT_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FILEVAULT_ prefix:
//   - server.port → FILEVAULT_SERVER_PORT
//   - database.type → FILEVAULT_DATABASE_TYPE
//   - session.ttl_seconds → FILEVAULT_SESSION_TTL_SECONDS
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: HTTP port
//   - Session: token lifetime in seconds
//   - Database: type, DSN, and table names
//   - Storage: blob storage path
//   - Cache: session cache path
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Session TTL must be at least one second
//   - Log level must be debug, info, warn, or error
package config
