package config

func (cfg *Config) validate() error {
	if cfg.App.Environment != EnvLocal && cfg.App.Environment != EnvHosted {
		return ErrInvalidAppConfigs
	}
	if cfg.App.Role != RoleBuyer && cfg.App.Role != RoleVendor {
		return ErrInvalidAppConfigs
	}

	if cfg.API.BaseURL == "" || cfg.API.RequestTimeout <= 0 || cfg.API.ProbeTimeout <= 0 {
		return ErrInvalidAPIConfigs
	}

	if cfg.Storage.Path == "" || cfg.Storage.KeyPrefix == "" || cfg.Storage.Expiry <= 0 {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.LocalTTL <= 0 || cfg.Sync.HostedTTL <= 0 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.MinInterval <= 0 || cfg.Sync.MaxInterval < cfg.Sync.MinInterval {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.GrowthFactor < 1 || cfg.Sync.BackgroundFactor < 1 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.QueueRetryLimit < 0 || cfg.Sync.ReconcileWindow <= 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
