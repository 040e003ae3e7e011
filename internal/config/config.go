package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL string
	// Blanket timeout for every request; there is no per-operation
	// override.
	Timeout time.Duration
}

type StateConfig struct {
	// Path of the bolt file holding the auth token and cached profile.
	// These two keys are the only durable client-side state.
	Path string
}

type NotifyConfig struct {
	PollInterval time.Duration
}

type DevServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	JWTSecret    string
	JWTTTL       time.Duration
	Seed         bool
}

type AppConfig struct {
	Environment string
	API         APIConfig
	State       StateConfig
	Notify      NotifyConfig
	DevServer   DevServerConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SUJU")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("api.baseurl", "http://localhost:8000/v1")
	v.SetDefault("api.timeout", "60s")

	v.SetDefault("state.path", defaultStatePath())

	v.SetDefault("notify.pollinterval", "60s")

	v.SetDefault("devserver.host", "0.0.0.0")
	v.SetDefault("devserver.port", 8000)
	v.SetDefault("devserver.readtimeout", "10s")
	v.SetDefault("devserver.writetimeout", "15s")
	v.SetDefault("devserver.idletimeout", "60s")
	v.SetDefault("devserver.jwtsecret", "dev-only-secret")
	v.SetDefault("devserver.jwtttl", "168h")
	v.SetDefault("devserver.seed", true)
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "suju-state.db"
	}
	return filepath.Join(dir, "suju", "state.db")
}
