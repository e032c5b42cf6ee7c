// Package config loads the warden daemon configuration from a YAML file.
//
// Configuration supports ${VAR_NAME} environment variable expansion in the
// raw file and duration strings (e.g. "30s", "5m") for timing fields. All
// fields have defaults; an empty file is a valid configuration.
package config
