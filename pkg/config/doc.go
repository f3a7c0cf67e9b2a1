// Package config loads the attestation service configuration from an
// optional YAML file and environment variables. Environment variables take
// precedence over the file.
package config
