// Package config loads service settings from defaults, an optional YAML file,
// an optional .env file and SHOP_* environment variables, in that order of
// increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix      = "SHOP_"
	defaultEnvFile = ".env"
)

type Config struct {
	HTTP struct {
		Port       int           `koanf:"port"`
		ReadHeader time.Duration `koanf:"readheader"`
		Shutdown   time.Duration `koanf:"shutdown"`
	} `koanf:"http"`

	Data struct {
		Products string `koanf:"products"`
		Carts    string `koanf:"carts"`
	} `koanf:"data"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`

	RateLimit struct {
		// Writes is the number of mutating requests allowed per client IP per
		// minute; 0 disables the limiter.
		Writes int `koanf:"writes"`
	} `koanf:"ratelimit"`

	Carts struct {
		// Verify makes adding a product to a cart fail when the product does
		// not exist.
		Verify bool `koanf:"verify"`
	} `koanf:"carts"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.port":        8080,
		"http.readheader":  "5s",
		"http.shutdown":    "10s",
		"data.products":    "./data/products.json",
		"data.carts":       "./data/carts.json",
		"log.level":        "info",
		"metrics.enabled":  true,
		"metrics.token":    "",
		"ratelimit.writes": 0,
		"carts.verify":     false,
	}
}

// Load builds the configuration. yamlPath and envPath may point at files that
// do not exist; those layers are then skipped.
func Load(yamlPath, envPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if yamlPath != "" {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", yamlPath, err)
		}
	}

	if envPath == "" {
		envPath = defaultEnvFile
	}
	dotenv, err := godotenv.Read(envPath)
	switch {
	case err == nil:
		m := make(map[string]any, len(dotenv))
		for key, value := range dotenv {
			if strings.HasPrefix(key, envPrefix) {
				m[keyTransformer(key)] = value
			}
		}
		if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read %s: %w", envPath, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", keyTransformer), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	if c.HTTP.ReadHeader <= 0 {
		return fmt.Errorf("invalid http read header timeout: %v", c.HTTP.ReadHeader)
	}
	if c.HTTP.Shutdown <= 0 {
		return fmt.Errorf("invalid http shutdown timeout: %v", c.HTTP.Shutdown)
	}
	if c.Data.Products == "" || c.Data.Carts == "" {
		return errors.New("data.products and data.carts are required")
	}
	if filepath.Clean(c.Data.Products) == filepath.Clean(c.Data.Carts) {
		return fmt.Errorf("products and carts must use different files: %s", c.Data.Products)
	}
	if c.RateLimit.Writes < 0 {
		return fmt.Errorf("invalid ratelimit.writes: %d", c.RateLimit.Writes)
	}
	return nil
}

// Fields renders the configuration for a startup log line. The metrics token
// is never logged.
func (c *Config) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("http.port", c.HTTP.Port),
		zap.Duration("http.readheader", c.HTTP.ReadHeader),
		zap.Duration("http.shutdown", c.HTTP.Shutdown),
		zap.String("data.products", c.Data.Products),
		zap.String("data.carts", c.Data.Carts),
		zap.String("log.level", c.Log.Level),
		zap.Bool("metrics.enabled", c.Metrics.Enabled),
		zap.Bool("metrics.token_set", c.Metrics.Token != ""),
		zap.Int("ratelimit.writes", c.RateLimit.Writes),
		zap.Bool("carts.verify", c.Carts.Verify),
	}
}

// keyTransformer maps SHOP_HTTP_PORT to http.port.
func keyTransformer(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}
