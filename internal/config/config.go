package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const minSecretLen = 16

type Config struct {
	Server struct {
		Port         string   `yaml:"port"`
		ReadTimeout  string   `yaml:"readTimeout"`
		WriteTimeout string   `yaml:"writeTimeout"`
		CORSOrigins  []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"logging"`
	Storage struct {
		Driver     string `yaml:"driver" validate:"omitempty,oneof=memory postgres sqlite"`
		SQLitePath string `yaml:"sqlitePath"`
		Seed       bool   `yaml:"seed"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Admin struct {
		Email        string `yaml:"email" validate:"omitempty,email"`
		PasswordHash string `yaml:"passwordHash" validate:"required_with=Email"`
		JWTSecret    string `yaml:"jwtSecret" validate:"required_with=Email"`
		TokenTTL     string `yaml:"tokenTTL"`
	} `yaml:"admin"`
	Media struct {
		Driver       string `yaml:"driver" validate:"omitempty,oneof=fs cloudinary"`
		BasePath     string `yaml:"basePath"`
		PublicURL    string `yaml:"publicURL"`
		CloudName    string `yaml:"cloudName"`
		UploadPreset string `yaml:"uploadPreset"`
		MaxBytes     int64  `yaml:"maxBytes" validate:"gte=0"`
	} `yaml:"media"`
}

// Load reads YAML config from path, applies env overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"ADMIN_EMAIL":              &c.Admin.Email,
		"ADMIN_PASSWORD_HASH":      &c.Admin.PasswordHash,
		"JWT_SECRET":               &c.Admin.JWTSecret,
		"CLOUDINARY_CLOUD_NAME":    &c.Media.CloudName,
		"CLOUDINARY_UPLOAD_PRESET": &c.Media.UploadPreset,
		"POSTGRES_URL":             &c.Postgres.URL,
		"REDIS_ADDR":               &c.Redis.Addr,
	}
	for key, target := range overrides {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
}

// Validate checks field constraints and cross-field requirements.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Admin.Email != "" && len(c.Admin.JWTSecret) < minSecretLen {
		return fmt.Errorf("invalid config: admin.jwtSecret must be at least %d characters", minSecretLen)
	}
	if c.StorageDriver() == "postgres" && c.Postgres.URL == "" {
		return fmt.Errorf("invalid config: storage driver postgres needs postgres.url")
	}
	if c.MediaDriver() == "cloudinary" && (c.Media.CloudName == "" || c.Media.UploadPreset == "") {
		return fmt.Errorf("invalid config: cloudinary media needs cloudName and uploadPreset")
	}
	return nil
}

// StorageDriver returns the configured store, defaulting to postgres when a URL
// is set and to memory otherwise.
func (c Config) StorageDriver() string {
	if c.Storage.Driver != "" {
		return c.Storage.Driver
	}
	if c.Postgres.URL != "" {
		return "postgres"
	}
	return "memory"
}

// MediaDriver returns the configured uploader, fs by default.
func (c Config) MediaDriver() string {
	if c.Media.Driver == "" {
		return "fs"
	}
	return c.Media.Driver
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
