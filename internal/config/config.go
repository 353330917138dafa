package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	SSL      bool   `mapstructure:"ssl"`
}

type MonitorConfig struct {
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	CheckTimeout      time.Duration `mapstructure:"check_timeout"`
	AlertQueueSize    int           `mapstructure:"alert_queue_size"`
	HistoryLimit      int           `mapstructure:"history_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("configs")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var errViper viper.ConfigFileNotFoundError
		if errors.As(err, &errViper) {
			slog.Warn("config file not found, using defaults")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config, %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed, %w", err)
	}

	slog.Info("configuration loaded successfully")
	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.name", "sitewatch")
	viper.SetDefault("app.version", "1.0.0")

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")

	// database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "sitewatch")
	viper.SetDefault("database.password", "sitewatch")
	viper.SetDefault("database.dbname", "sitewatch")
	viper.SetDefault("database.sslmode", "disable")

	// redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// smtp defaults (пустой host отключает отправку писем)
	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.username", "")
	viper.SetDefault("smtp.password", "")
	viper.SetDefault("smtp.from", "")
	viper.SetDefault("smtp.ssl", false)

	// monitor defaults
	viper.SetDefault("monitor.reconcile_interval", "1m")
	viper.SetDefault("monitor.check_timeout", "30s")
	viper.SetDefault("monitor.alert_queue_size", 64)
	viper.SetDefault("monitor.history_limit", 1000)

	// logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	if cfg.Server.Mode != "debug" && cfg.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode %s", cfg.Server.Mode)
	}

	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}

	if cfg.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	// Защита от суб-секундного периода сверки (в исходной версии была
	// ошибка единиц измерения, дававшая тик в 60 миллисекунд)
	if cfg.Monitor.ReconcileInterval < time.Second {
		return fmt.Errorf("reconcile interval %s is below the 1s minimum", cfg.Monitor.ReconcileInterval)
	}

	if cfg.Monitor.CheckTimeout < time.Second {
		return fmt.Errorf("check timeout %s is below the 1s minimum", cfg.Monitor.CheckTimeout)
	}

	if cfg.Monitor.AlertQueueSize < 1 {
		return fmt.Errorf("alert queue size must be positive, got %d", cfg.Monitor.AlertQueueSize)
	}

	if cfg.SMTP.Host == "" {
		slog.Warn("SMTP host is not configured - down alerts will only be logged")
	}

	return nil
}

// возвращает DSN строку для PostgreSQL
func (d *DatabaseConfig) GetDNS() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// возвращает настройки для Redis клиента
func (r *RedisConfig) GetRedisOptions() *redis.Options {
	return &redis.Options{
		Addr:            r.Addr,
		Password:        r.Password,
		DB:              r.DB,
		DisableIdentity: true,
	}
}
