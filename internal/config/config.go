package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API         APIConfig         `json:"api" yaml:"api"`
	Persistence PersistenceConfig `json:"persistence" yaml:"persistence"`
	Redis       RedisConfig       `json:"redis" yaml:"redis"`
	Database    DatabaseConfig    `json:"database" yaml:"database"`
	Server      ServerConfig      `json:"server" yaml:"server"`
	Metrics     MetricsConfig     `json:"metrics" yaml:"metrics"`
	Checkout    CheckoutConfig    `json:"checkout" yaml:"checkout"`
	Log         LogConfig         `json:"log" yaml:"log"`
}

type APIConfig struct {
	BaseURL     string   `json:"base_url" yaml:"base_url"`
	Token       string   `json:"token" yaml:"token"`
	Timeout     Duration `json:"timeout" yaml:"timeout"`
	UnitTimeout Duration `json:"unit_timeout" yaml:"unit_timeout"`
}

type PersistenceConfig struct {
	Driver    string   `json:"driver" yaml:"driver"`
	KeyPrefix string   `json:"key_prefix" yaml:"key_prefix"`
	TTL       Duration `json:"ttl" yaml:"ttl"`
}

type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type DatabaseConfig struct {
	Driver         string `json:"driver" yaml:"driver"`
	Host           string `json:"host" yaml:"host"`
	Port           int    `json:"port" yaml:"port"`
	User           string `json:"user" yaml:"user"`
	Password       string `json:"password" yaml:"password"`
	DBName         string `json:"dbname" yaml:"dbname"`
	SSLMode        string `json:"sslmode" yaml:"sslmode"`
	MigrationsPath string `json:"migrations_path" yaml:"migrations_path"`
}

type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

type MetricsConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type CheckoutConfig struct {
	ClearPolicy string `json:"clear_policy" yaml:"clear_policy"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

const (
	PersistenceMemory   = "memory"
	PersistenceRedis    = "redis"
	PersistencePostgres = "postgres"
)

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8000",
			Timeout:     Duration(30 * time.Second),
			UnitTimeout: Duration(10 * time.Second),
		},
		Persistence: PersistenceConfig{
			Driver:    PersistenceMemory,
			KeyPrefix: "sweet_cart",
			TTL:       Duration(30 * 24 * time.Hour),
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Database: DatabaseConfig{
			Driver:         "postgres",
			Host:           "localhost",
			Port:           5432,
			User:           "storefront",
			DBName:         "storefront",
			SSLMode:        "disable",
			MigrationsPath: "migrations",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Checkout: CheckoutConfig{
			ClearPolicy: "all",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads a JSON or YAML file over the defaults, then applies
// STOREFRONT_* environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(content, config)
		default:
			err = json.Unmarshal(content, config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("STOREFRONT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("STOREFRONT_API_TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv("STOREFRONT_PERSISTENCE"); v != "" {
		c.Persistence.Driver = v
	}
	if v := os.Getenv("STOREFRONT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("STOREFRONT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) Validate() error {
	switch c.Persistence.Driver {
	case PersistenceMemory, PersistenceRedis, PersistencePostgres:
	default:
		return fmt.Errorf("unknown persistence driver %q", c.Persistence.Driver)
	}

	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}

	if c.Persistence.KeyPrefix == "" {
		return fmt.Errorf("persistence.key_prefix is required")
	}

	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
