package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	ReadLimit  int64  `mapstructure:"read_limit"`
	Secret     string `mapstructure:"secret"`

	ThrottleDelay time.Duration `mapstructure:"throttle_delay"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	SessionGrace  time.Duration `mapstructure:"session_grace"`

	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
	InstanceMaxAge  time.Duration `mapstructure:"instance_max_age"`
	InstanceSweep   time.Duration `mapstructure:"instance_sweep"`
	PlaybackTimeout time.Duration `mapstructure:"playback_timeout"`

	SpotifyClientID     string `mapstructure:"spotify_client_id"`
	SpotifyClientSecret string `mapstructure:"spotify_client_secret"`
	SpotifyRedirectURI  string `mapstructure:"spotify_redirect_uri"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./public")
	v.SetDefault("read_limit", 32768)

	v.SetDefault("throttle_delay", "100ms")
	v.SetDefault("sweep_interval", "30m")
	v.SetDefault("session_grace", "1h")

	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("rate_limit_per_min", 100)
	v.SetDefault("rate_limit_burst", 10)
	v.SetDefault("instance_max_age", "30m")
	v.SetDefault("instance_sweep", "10m")
	v.SetDefault("playback_timeout", "10s")

	v.SetDefault("spotify_redirect_uri", "http://localhost:3000/callback")

	// Secrets come from the environment, never from the yaml file.
	_ = v.BindEnv("spotify_client_id", "SPOTIFY_CLIENT_ID")
	_ = v.BindEnv("spotify_client_secret", "SPOTIFY_CLIENT_SECRET")
	_ = v.BindEnv("spotify_redirect_uri", "SPOTIFY_REDIRECT_URI")
	_ = v.BindEnv("secret", "COOKIE_SECRET")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath)
	return &cfg, nil
}
