package config

import (
	"time"
)

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[pricer]"`
	// File enables rotated file output in addition to stdout.
	File       string `envconfig:"FILE"`
	MaxSizeMB  int    `envconfig:"MAX_SIZE_MB" default:"50"`
	MaxBackups int    `envconfig:"MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"MAX_AGE_DAYS" default:"28"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Redis struct {
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"pricer:"`
}

//revive:disable
type ExchangeRateApi struct {
	ApiKey      string        `envconfig:"API_KEY"`
	ApiUrl      string        `envconfig:"API_URL" default:"https://api.exchangerate.host/latest"`
	Source      string        `envconfig:"SOURCE" default:"European Central Bank"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
}

//revive:enable

type ExchangeRateCache struct {
	// Backend is one of memory, redis or none.
	Backend string        `envconfig:"BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"TTL" default:"15m"`
	Prefix  string        `envconfig:"PREFIX" default:"exr:snapshot:"`
}

type Currency struct {
	Base      string             `envconfig:"BASE" default:"EUR"`
	Supported []string           `envconfig:"SUPPORTED" default:"EUR,USD,GBP,SEK"`
	Fallback  map[string]float64 `envconfig:"FALLBACK" default:"EUR:1,USD:1.08,GBP:0.87,SEK:11.3"`
	// RefreshInterval re-fetches rates periodically; zero disables it.
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"0"`
}

type App struct {
	Env               string             `envconfig:"APP_ENV" default:"development"`
	Server            *Server            `envconfig:"SERVER"`
	Log               *Log               `envconfig:"LOG"`
	RateLimit         *RateLimit         `envconfig:"RATE_LIMIT"`
	Redis             *Redis             `envconfig:"REDIS"`
	ExchangeRateApi   *ExchangeRateApi   `envconfig:"EXCHANGE_RATE_API"`
	ExchangeRateCache *ExchangeRateCache `envconfig:"EXCHANGE_RATE_CACHE"`
	Currency          *Currency          `envconfig:"CURRENCY"`
}
