// Package fleet turns a declarative TOML manifest into supervised agents.
//
// A manifest is a list of [[agents]] blocks:
//
//	[[agents]]
//	id = "api-gateway"
//	type = "http"
//	target = "https://gateway.internal/healthz"
//	health_interval = "15s"
//	enabled = true
//
// Each enabled block becomes a supervised agent wrapping one of the built-in
// probes (http, tcp, exec) from the probes subpackage. Environment variables
// in the format ${VAR_NAME} are expanded before parsing.
package fleet
