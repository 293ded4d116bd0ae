// Package config assembles the client configuration from command-line flags,
// environment variables, an optional JSON file and built-in defaults, merged
// in that priority order with mergo.
//
// The deployment environment ("local" vs "hosted") is the main behavioral
// switch: it selects the snapshot TTL and decides whether connectivity flips
// are confirmed with active probes or trusted directly.
package config
