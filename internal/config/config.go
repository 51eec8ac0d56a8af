package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string `mapstructure:"APP_ENV"` // dev or prod
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecretKey  string        `mapstructure:"JWT_SECRET_KEY"`
	JWTIssuer     string        `mapstructure:"JWT_ISSUER"`
	JWTAccessTTL  time.Duration `mapstructure:"JWT_ACCESS_TTL"`
	JWTRefreshTTL time.Duration `mapstructure:"JWT_REFRESH_TTL"`

	// Optional; empty RedisAddr falls back to the in-process limiter.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	VoteRateLimit  int           `mapstructure:"VOTE_RATE_LIMIT"`
	VoteRateWindow time.Duration `mapstructure:"VOTE_RATE_WINDOW"`
}

// Load reads configuration from environment variables. cmd entrypoints
// call godotenv.Load first so a local .env file ends up here too.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	// AutomaticEnv alone does not populate Unmarshal; bind each key.
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DATABASE_URL",
		"host=localhost user=postgres password=postgres dbname=notsolong port=5432 sslmode=disable")

	v.SetDefault("JWT_SECRET_KEY", "change_me_in_production")
	v.SetDefault("JWT_ISSUER", "notsolong")
	v.SetDefault("JWT_ACCESS_TTL", "30m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("VOTE_RATE_LIMIT", 30)
	v.SetDefault("VOTE_RATE_WINDOW", "1m")
}
