// Package config decodes and validates the declarative bridge configuration:
// deployment targets, bridged topics, constant-to-field mappings and firmware
// parameters. Mapping order in the YAML is preserved because declaration
// order drives wire-number assignment downstream.
package config
