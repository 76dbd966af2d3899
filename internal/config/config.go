package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config вся конфигурация сервиса
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" mapstructure:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string `yaml:"url" mapstructure:"url"`
	ConnectAttempts uint64 `yaml:"connect_attempts" mapstructure:"connect_attempts"`
	MigrateOnStart  bool   `yaml:"migrate_on_start" mapstructure:"migrate_on_start"`
}

type LogConfig struct {
	Mode  string `yaml:"mode" mapstructure:"mode"`
	Level string `yaml:"level" mapstructure:"level"`
}

// переменные окружения, которые понимал ещё старый сервис
var envBindings = map[string]string{
	"server.address":            "SERVER_ADDRESS",
	"database.url":              "POSTGRES_CONN",
	"database.connect_attempts": "DB_CONNECT_ATTEMPTS",
	"database.migrate_on_start": "MIGRATE_ON_START",
	"log.mode":                  "LOG_MODE",
	"log.level":                 "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0:8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.migrate_on_start", true)
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
}

// Load читает .env (если есть), затем файл конфигурации (если указан) и окружение.
// Окружение перекрывает файл.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет то, без чего сервер не стартует.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("POSTGRES_CONN env variable is not set")
	}
	if c.Server.Address == "" {
		return errors.New("server address is empty")
	}
	return nil
}
