// Package config загружает конфигурацию Rectify:
// значения по умолчанию, затем TOML-файл, затем переменные окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/shaiso/Rectify/internal/mq"
	"github.com/shaiso/Rectify/internal/repo"
)

// Виды хранилища task groups.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// ErrInvalidConfig — конфигурация не прошла проверку.
var ErrInvalidConfig = errors.New("invalid config")

// Config — конфигурация приложения.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Output   OutputConfig   `toml:"output"`
	MQ       MQConfig       `toml:"mq"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Schedule ScheduleConfig `toml:"schedule"`
}

// StoreConfig — хранилище task groups.
type StoreConfig struct {
	Kind        string `toml:"kind"`
	DatabaseURL string `toml:"database_url"`
	SQLitePath  string `toml:"sqlite_path"`
}

// OutputConfig — каталог CSV-вывода.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// MQConfig — публикация событий в RabbitMQ.
type MQConfig struct {
	URL     string `toml:"url"`
	Enabled bool   `toml:"enabled"`
}

// MetricsConfig — HTTP endpoint /metrics. Пустой адрес отключает его.
type MetricsConfig struct {
	Addr string `toml:"addr"`
}

// ScheduleConfig — периодический запуск. Пустой cron означает один запуск.
type ScheduleConfig struct {
	Cron     string `toml:"cron"`
	Timezone string `toml:"timezone"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Kind:        StoreSQLite,
			DatabaseURL: repo.DefaultDatabaseURL,
			SQLitePath:  "rectify.db",
		},
		Output: OutputConfig{
			Dir: "output",
		},
		MQ: MQConfig{
			URL: mq.DefaultURL,
		},
		Schedule: ScheduleConfig{
			Timezone: "UTC",
		},
	}
}

// Load читает TOML-файл поверх значений по умолчанию.
// Отсутствующий файл не ошибка. Переменные окружения не применяются, см. ApplyEnv.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.Store.SQLitePath = ExpandPath(cfg.Store.SQLitePath)
	cfg.Output.Dir = ExpandPath(cfg.Output.Dir)

	return cfg, nil
}

// ApplyEnv переопределяет значения из переменных окружения.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("DB_URL"); v != "" {
		c.Store.DatabaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Store.SQLitePath = ExpandPath(v)
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = ExpandPath(v)
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.MQ.URL = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
}

// Validate проверяет согласованность конфигурации.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("%w: store.database_url is required for postgres", ErrInvalidConfig)
		}
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("%w: store.sqlite_path is required for sqlite", ErrInvalidConfig)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store kind %q", ErrInvalidConfig, c.Store.Kind)
	}

	if c.MQ.Enabled && c.MQ.URL == "" {
		return fmt.Errorf("%w: mq.url is required when mq is enabled", ErrInvalidConfig)
	}
	return nil
}

// ExpandPath раскрывает ~ в домашний каталог пользователя.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultPath возвращает путь к файлу конфигурации по умолчанию.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rectify", "config.toml")
}
