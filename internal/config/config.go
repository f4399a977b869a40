package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values
type Config struct {
	Addr         string        `yaml:"addr"`
	DBPath       string        `yaml:"db_path"`
	AdminAPIKey  string        `yaml:"admin_api_key"`
	SecretKey    string        `yaml:"secret_key"`
	SecureCookie bool          `yaml:"secure_cookie"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	DBPathSource string // "default", "yaml file" or "env var"
	DemoMode     bool   // set via -demo flag
}

// Load reads the YAML file at path when it exists, then applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:         ":8080",
		DBPath:       "./licenses.db",
		DBPathSource: "default",
		SecureCookie: true,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if f, err := os.Open(path); err == nil {
		defer f.Close()
		prevDBPath := cfg.DBPath
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
		if cfg.DBPath != prevDBPath {
			cfg.DBPathSource = "yaml file"
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
		cfg.DBPathSource = "env var"
	}
	if v := os.Getenv("ADMIN_API_KEY"); v != "" {
		cfg.AdminAPIKey = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}

	return cfg, nil
}
