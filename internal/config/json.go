package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonConfig mirrors [Config] with Duration fields that accept "15s"-style
// strings in the JSON file.
type jsonConfig struct {
	App struct {
		Environment string `json:"environment"`
		Role        string `json:"role"`
	} `json:"app,omitempty"`

	API struct {
		BaseURL          string   `json:"base_url"`
		CSRFToken        string   `json:"csrf_token"`
		RequestTimeout   Duration `json:"request_timeout"`
		ProbeURL         string   `json:"probe_url"`
		FallbackProbeURL string   `json:"fallback_probe_url"`
		ProbeTimeout     Duration `json:"probe_timeout"`
	} `json:"api,omitempty"`

	Storage struct {
		Path      string   `json:"path"`
		KeyPrefix string   `json:"key_prefix"`
		Expiry    Duration `json:"expiry"`
	} `json:"storage,omitempty"`

	Sync struct {
		LocalTTL         Duration `json:"local_ttl"`
		HostedTTL        Duration `json:"hosted_ttl"`
		MinInterval      Duration `json:"min_interval"`
		MaxInterval      Duration `json:"max_interval"`
		GrowthFactor     float64  `json:"growth_factor"`
		IdleAfter        Duration `json:"idle_after"`
		BackgroundFactor float64  `json:"background_factor"`
		OfflineDebounce  Duration `json:"offline_debounce"`
		VerifyInterval   Duration `json:"verify_interval"`
		QueueRetryLimit  int      `json:"queue_retry_limit"`
		ReconcileWindow  Duration `json:"reconcile_window"`
	} `json:"sync,omitempty"`

	Notify struct {
		Gap       Duration `json:"gap"`
		MuteSound bool     `json:"mute_sound"`
	} `json:"notify,omitempty"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jc jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jc); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		App: App{
			Environment: jc.App.Environment,
			Role:        jc.App.Role,
		},
		API: API{
			BaseURL:          jc.API.BaseURL,
			CSRFToken:        jc.API.CSRFToken,
			RequestTimeout:   time.Duration(jc.API.RequestTimeout),
			ProbeURL:         jc.API.ProbeURL,
			FallbackProbeURL: jc.API.FallbackProbeURL,
			ProbeTimeout:     time.Duration(jc.API.ProbeTimeout),
		},
		Storage: Storage{
			Path:      jc.Storage.Path,
			KeyPrefix: jc.Storage.KeyPrefix,
			Expiry:    time.Duration(jc.Storage.Expiry),
		},
		Sync: Sync{
			LocalTTL:         time.Duration(jc.Sync.LocalTTL),
			HostedTTL:        time.Duration(jc.Sync.HostedTTL),
			MinInterval:      time.Duration(jc.Sync.MinInterval),
			MaxInterval:      time.Duration(jc.Sync.MaxInterval),
			GrowthFactor:     jc.Sync.GrowthFactor,
			IdleAfter:        time.Duration(jc.Sync.IdleAfter),
			BackgroundFactor: jc.Sync.BackgroundFactor,
			OfflineDebounce:  time.Duration(jc.Sync.OfflineDebounce),
			VerifyInterval:   time.Duration(jc.Sync.VerifyInterval),
			QueueRetryLimit:  jc.Sync.QueueRetryLimit,
			ReconcileWindow:  time.Duration(jc.Sync.ReconcileWindow),
		},
		Notify: Notify{
			Gap:       time.Duration(jc.Notify.Gap),
			MuteSound: jc.Notify.MuteSound,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
