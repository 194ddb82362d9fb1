package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|stage|prod
	Service   string `yaml:"service"`   // chat-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Presence struct {
	Window string `yaml:"window"` // окно «онлайн», напр. "60s"
}

func (p Presence) WindowDuration() time.Duration {
	return parseDurationOr(60*time.Second, p.Window)
}

type Uploads struct {
	Dir string `yaml:"dir"`
}

type Persistence struct {
	Backend     string `yaml:"backend"` // none|badger|postgres
	BadgerPath  string `yaml:"badgerPath"`
	PostgresDSN string `yaml:"postgresDsn"`
}

type Config struct {
	HTTP        HTTP        `yaml:"http"`
	Logging     Logging     `yaml:"logging"`
	Presence    Presence    `yaml:"presence"`
	Uploads     Uploads     `yaml:"uploads"`
	Persistence Persistence `yaml:"persistence"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	// установка дефолтов, если значения не указаны
	if c.Logging.Service == "" {
		c.Logging.Service = "chat-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "./static/uploads"
	}

	switch c.Persistence.Backend {
	case "":
		c.Persistence.Backend = "none"
	case "none":
	case "badger":
		if c.Persistence.BadgerPath == "" {
			return errors.New("persistence.badgerPath is required for badger backend")
		}
	case "postgres":
		if c.Persistence.PostgresDSN == "" {
			return errors.New("persistence.postgresDsn is required for postgres backend")
		}
	default:
		return fmt.Errorf("unknown persistence backend %q", c.Persistence.Backend)
	}

	return nil
}

// helper для парсинга timeout-ов
func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
