package config

import (
	"fmt"
	"path/filepath"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	AI        AIConfig        `mapstructure:"ai"`
	Reminder  ReminderConfig  `mapstructure:"reminder"`
	Client    ClientConfig    `mapstructure:"client"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"required,oneof=mysql postgres sqlite"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	SSLMode         string            `mapstructure:"ssl_mode"`
	Path            string            `mapstructure:"path" validate:"required_if=Driver sqlite"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type SessionConfig struct {
	SnapshotDirectory string        `mapstructure:"snapshot_directory" validate:"required"`
	SnapshotTTL       time.Duration `mapstructure:"snapshot_ttl"`
}

type AIConfig struct {
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,url"`
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
	PromptFile       string `mapstructure:"prompt_file" validate:"omitempty,file"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type ClientConfig struct {
	ServerURL string `mapstructure:"server_url" validate:"omitempty,url"`
	UserID    string `mapstructure:"user_id" validate:"omitempty,uuid"`
}

type TemplatesConfig struct {
	DeckTemplate string `mapstructure:"deck_template" validate:"omitempty,file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := NewValidator("mapstructure")
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/flashdeck")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join("data", "flashdeck.db"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "flashdeck")
	v.SetDefault("database.username", "flashdeck")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("session.snapshot_directory", filepath.Join("data", "sessions"))
	v.SetDefault("session.snapshot_ttl", 7*24*time.Hour)
	v.SetDefault("ai.model", "openai/gpt-4o-mini")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.max_retry_attempts", 3)
	v.SetDefault("reminder.enabled", false)
	v.SetDefault("reminder.interval", time.Hour)
	// Template is optional - if not specified, will use embedded fallback template
	v.SetDefault("templates.deck_template", "")

	// Secrets are bound to environment variables only
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("ai.api_key", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENROUTER_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("ai.model", "OPENROUTER_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENROUTER_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("client.server_url", "FLASHDECK_SERVER_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind FLASHDECK_SERVER_URL environment variable: %w", err)
	}
	if err := v.BindEnv("client.user_id", "FLASHDECK_USER_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind FLASHDECK_USER_ID environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		if _, ok := err.(validator.ValidationErrors); !ok {
			return nil, fmt.Errorf("validate configuration: %w", err)
		}
		return nil, fmt.Errorf("invalid configuration: %s", TranslateErrors(err, loader.translator))
	}

	return &cfg, nil
}
