package config

import "time"

// Deployment environment labels. The environment drives cache TTLs and how the
// connectivity monitor treats raw offline signals (see spec notes in README).
const (
	EnvLocal  = "local"
	EnvHosted = "hosted"
)

// Roles select which feed the dashboard drives.
const (
	RoleBuyer  = "buyer"
	RoleVendor = "vendor"
)

// Config is the top-level configuration container for the client. It is
// populated by merging command-line flags, environment variables, an optional
// JSON file and built-in defaults, in that priority order.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type Config struct {
	// App holds application-level settings (environment, dashboard role).
	App App `envPrefix:"APP_"`

	// API holds settings for the marketplace REST API adapter and the
	// connectivity probes.
	API API `envPrefix:"API_"`

	// Storage holds local durable storage settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds cache TTLs, adaptive polling policy and offline queue
	// settings.
	Sync Sync `envPrefix:"SYNC_"`

	// Notify holds notification dispatch settings.
	Notify Notify `envPrefix:"NOTIFY_"`

	// JSONFilePath is the optional path to a JSON configuration file,
	// merged on top of flags and environment values when non-empty.
	// Populated via the CONFIG environment variable or the -c/-config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level client settings.
type App struct {
	// Environment is either "local" or "hosted". Env: APP_ENVIRONMENT
	Environment string `env:"ENVIRONMENT"`
	// Role is either "buyer" or "vendor". Env: APP_ROLE
	Role string `env:"ROLE"`
}

// API groups the settings of the outbound HTTP layer.
type API struct {
	// BaseURL is the marketplace API endpoint. Env: API_BASE_URL
	BaseURL string `env:"BASE_URL"`
	// CSRFToken is attached as X-CSRF-Token to every mutating call. The
	// original client reads it from page metadata; here it comes from the
	// environment. Env: API_CSRF_TOKEN
	CSRFToken string `env:"CSRF_TOKEN"`
	// RequestTimeout bounds every ordinary API request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	// ProbeURL is the reachability probe target. Empty means
	// BaseURL + "/api/health".
	ProbeURL string `env:"PROBE_URL"`
	// FallbackProbeURL is tried when the primary probe itself errors.
	FallbackProbeURL string `env:"FALLBACK_PROBE_URL"`
	// ProbeTimeout bounds a single reachability probe.
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT"`
}

// Storage holds local durable storage settings.
type Storage struct {
	// Path is the SQLite database file path. Env: STORAGE_PATH
	Path string `env:"PATH"`
	// KeyPrefix namespaces every persisted key. Env: STORAGE_KEY_PREFIX
	KeyPrefix string `env:"KEY_PREFIX"`
	// Expiry is how long persisted snapshots stay readable across restarts.
	Expiry time.Duration `env:"EXPIRY"`
}

// Sync holds the cache, polling and offline-queue tuning knobs. All polling
// behavior is policy, not hard-coded: both feeds share these values.
type Sync struct {
	// LocalTTL is the snapshot freshness window in a local environment
	// (favor fewer calls). Env: SYNC_LOCAL_TTL
	LocalTTL time.Duration `env:"LOCAL_TTL"`
	// HostedTTL is the snapshot freshness window in a hosted environment
	// (favor freshness). Env: SYNC_HOSTED_TTL
	HostedTTL time.Duration `env:"HOSTED_TTL"`

	// MinInterval is the polling floor, used right after a detected change.
	MinInterval time.Duration `env:"MIN_INTERVAL"`
	// MaxInterval is the polling ceiling reached after repeated no-change
	// results or user inactivity.
	MaxInterval time.Duration `env:"MAX_INTERVAL"`
	// GrowthFactor multiplies the interval per consecutive no-change result.
	GrowthFactor float64 `env:"GROWTH_FACTOR"`
	// IdleAfter forces the ceiling once the user has been inactive this long.
	IdleAfter time.Duration `env:"IDLE_AFTER"`
	// BackgroundFactor slows polling while the orders feed is not the
	// active view. Polling never stops entirely.
	BackgroundFactor float64 `env:"BACKGROUND_FACTOR"`

	// OfflineDebounce delays acting on an offline determination so momentary
	// blips do not flicker the indicator.
	OfflineDebounce time.Duration `env:"OFFLINE_DEBOUNCE"`
	// VerifyInterval is how often the monitor re-verifies reachability in a
	// hosted environment.
	VerifyInterval time.Duration `env:"VERIFY_INTERVAL"`

	// QueueRetryLimit is the replay ceiling per queued request.
	QueueRetryLimit int `env:"QUEUE_RETRY_LIMIT"`
	// ReconcileWindow bounds optimistic-insert matching by creation-time
	// proximity.
	ReconcileWindow time.Duration `env:"RECONCILE_WINDOW"`
}

// Notify holds notification dispatch settings.
type Notify struct {
	// Gap separates consecutive notifications so each is perceivable.
	Gap time.Duration `env:"GAP"`
	// MuteSound disables the audio cue channel.
	MuteSound bool `env:"MUTE_SOUND"`
}

// Hosted reports whether the client runs against a hosted deployment.
func (c *Config) Hosted() bool {
	return c.App.Environment == EnvHosted
}

// SnapshotTTL returns the environment-appropriate cache freshness window.
func (c *Config) SnapshotTTL() time.Duration {
	if c.Hosted() {
		return c.Sync.HostedTTL
	}
	return c.Sync.LocalTTL
}

// GetClientConfig builds and validates the merged client configuration.
func GetClientConfig() (*Config, error) {
	return newConfigBuilder().
		withFlags().
		withEnv().
		withJSON().
		withDefaults().
		build()
}

func defaults() *Config {
	return &Config{
		App: App{
			Environment: EnvLocal,
			Role:        RoleBuyer,
		},
		API: API{
			BaseURL:          "http://localhost:8080",
			RequestTimeout:   15 * time.Second,
			FallbackProbeURL: "https://clients3.google.com/generate_204",
			ProbeTimeout:     3 * time.Second,
		},
		Storage: Storage{
			Path:      "campuseats.db",
			KeyPrefix: "campuseats",
			Expiry:    24 * time.Hour,
		},
		Sync: Sync{
			LocalTTL:         time.Minute,
			HostedTTL:        15 * time.Second,
			MinInterval:      15 * time.Second,
			MaxInterval:      2 * time.Minute,
			GrowthFactor:     1.5,
			IdleAfter:        5 * time.Minute,
			BackgroundFactor: 2,
			OfflineDebounce:  2 * time.Second,
			VerifyInterval:   30 * time.Second,
			QueueRetryLimit:  3,
			ReconcileWindow:  10 * time.Minute,
		},
		Notify: Notify{
			Gap: 1200 * time.Millisecond,
		},
	}
}
