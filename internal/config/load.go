package config

import "github.com/Skotchmaster/sales_reports/pkg/config"

type ServiceConfig struct {
	config.Config
}

func Load() ServiceConfig {
	cfg := config.Load()

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	return ServiceConfig{Config: cfg}
}
