// Package config provides configuration loading and validation for dirshare.
//
// The package handles YAML configuration files, environment variables, and
// CLI flags with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file
//  3. Environment variables (DIRSHARE_ prefix)
//  4. CLI flags
//
// # Environment Variables
//
// All config keys map to environment variables with DIRSHARE_ prefix:
//   - server.port → DIRSHARE_SERVER_PORT
//   - storage.directory → DIRSHARE_STORAGE_DIRECTORY
//   - uploads.enabled → DIRSHARE_UPLOADS_ENABLED
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Served directory and TLS material paths must be set
//   - Log level must be debug, info, warn, or error
//   - Timeouts and the upload body cap must be non-negative
package config
