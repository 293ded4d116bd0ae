package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a API base URL
//	-d local storage database path
//	-role dashboard role (buyer|vendor)
//	-environment deployment environment (local|hosted)
//	-csrf-token CSRF token attached to mutating requests
//	-request-timeout outbound request timeout (e.g. "15s")
//	-c/-config json file path with configs
func ParseFlags() *Config {
	var (
		baseURL        string
		storagePath    string
		role           string
		environment    string
		csrfToken      string
		requestTimeout time.Duration
		jsonConfigPath string
	)

	flag.StringVar(&baseURL, "a", "", "API base URL")
	flag.StringVar(&storagePath, "d", "", "Local storage database path")
	flag.StringVar(&role, "role", "", "Dashboard role: buyer or vendor")
	flag.StringVar(&environment, "environment", "", "Deployment environment: local or hosted")
	flag.StringVar(&csrfToken, "csrf-token", "", "CSRF token for mutating requests")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &Config{
		App: App{
			Environment: environment,
			Role:        role,
		},
		API: API{
			BaseURL:        baseURL,
			CSRFToken:      csrfToken,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			Path: storagePath,
		},
		JSONFilePath: jsonConfigPath,
	}
}
