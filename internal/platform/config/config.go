package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr string `mapstructure:"addr"`
	// CatalogPath points at a YAML layer catalog; empty uses the embedded one.
	CatalogPath     string        `mapstructure:"catalog_path"`
	SessionIdleTTL  time.Duration `mapstructure:"session_idle_ttl"`
	SweepInterval   time.Duration `mapstructure:"session_sweep_interval"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	LogLevel        slog.Level    `mapstructure:"-"`
	Redis           RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the optional Redis connection used to publish
// renderer notifications. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// FromEnv builds a Server config so main stays lean. Values come from
// MAPVIEW_* environment variables (REDIS_* for the redis block), over an
// optional YAML file named by MAPVIEW_CONFIG, over defaults.
func FromEnv() (Server, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("catalog_path", "")
	v.SetDefault("session_idle_ttl", 30*time.Minute)
	v.SetDefault("session_sweep_interval", time.Minute)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetEnvPrefix("MAPVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"url", "pool_size", "min_idle_conns", "dial_timeout", "read_timeout", "write_timeout"} {
		if err := v.BindEnv("redis."+key, "REDIS_"+strings.ToUpper(key)); err != nil {
			return Server{}, fmt.Errorf("bind redis.%s: %w", key, err)
		}
	}

	if path := os.Getenv("MAPVIEW_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Server{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return Server{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return Server{}, fmt.Errorf("log_level: %w", err)
	}

	if cfg.SessionIdleTTL <= 0 {
		return Server{}, fmt.Errorf("session_idle_ttl must be positive")
	}
	if cfg.SweepInterval <= 0 {
		return Server{}, fmt.Errorf("session_sweep_interval must be positive")
	}
	return cfg, nil
}
