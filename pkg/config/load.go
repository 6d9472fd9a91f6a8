package config

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	if len(envFilePath) == 0 {
		logger.Debug("No environment file specified, trying default .env")
		if err := godotenv.Load(); err != nil {
			logger.Warn("No .env file found in current directory")
		}
		return loadFromEnv()
	}

	for _, path := range envFilePath {
		logger.Debug("Looking for environment file", "path", path)
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}

		logger.Info("Loading environment from file", "path", foundPath)
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		return loadFromEnv()
	}

	logger.Info("No valid environment files found, using process environment")
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"base_currency", cfg.Currency.Base,
		"supported_currencies", cfg.Currency.Supported,
		"exchange_api_url", cfg.ExchangeRateApi.ApiUrl,
		"exchange_api_key", maskValue(cfg.ExchangeRateApi.ApiKey),
		"exchange_timeout", cfg.ExchangeRateApi.HTTPTimeout,
		"exchange_cache_backend", cfg.ExchangeRateCache.Backend,
		"exchange_cache_ttl", cfg.ExchangeRateCache.TTL,
		"redis_url", maskValue(cfg.Redis.URL),
	)
	return &cfg, nil
}

// Validate checks the invariants the pricing core relies on: the base
// currency is offered and every offered currency has a fallback rate.
func (c *App) Validate() error {
	if c.Currency == nil {
		return fmt.Errorf("currency config is missing")
	}
	if !slices.Contains(c.Currency.Supported, c.Currency.Base) {
		return fmt.Errorf("base currency %s is not in supported currencies %v", c.Currency.Base, c.Currency.Supported)
	}
	for _, code := range c.Currency.Supported {
		if code == c.Currency.Base {
			continue
		}
		if r, ok := c.Currency.Fallback[code]; !ok || r <= 0 {
			return fmt.Errorf("no valid fallback rate for %s", code)
		}
	}
	switch c.ExchangeRateCache.Backend {
	case "memory", "none":
	case "redis":
		if c.Redis.URL == "" {
			return fmt.Errorf("redis cache backend requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown exchange rate cache backend %q", c.ExchangeRateCache.Backend)
	}
	return nil
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
