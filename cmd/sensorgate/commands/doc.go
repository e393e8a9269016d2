// Package commands defines the sensorgate CLI.
//
// Commands
//
//   - serve          Run the ingest HTTP server
//   - sign           Print the X-Signature value for a body
//   - config check   Load, validate and integrity-check the configuration
//   - config lock    Record the configuration's BLAKE3 hash in .checksums
//   - version        Print the version
//
// Every command reads .env (if present) before loading configuration, so
// SECRET_KEY can live there during development.
package commands
