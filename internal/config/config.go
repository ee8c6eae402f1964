package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Lexicon LexiconConfig `mapstructure:"lexicon"`
	History HistoryConfig `mapstructure:"history"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// LexiconConfig points at the local dictionary database and the bundled
// snapshot it is seeded from on first run. The snapshot has to be readable
// only while the database does not exist.
type LexiconConfig struct {
	DatabasePath string `mapstructure:"database_path" validate:"required"`
	SnapshotPath string `mapstructure:"snapshot_path"`
}

type HistoryConfig struct {
	Driver Driver         `mapstructure:"driver" validate:"oneof=sqlite3 mysql"`
	Path   string         `mapstructure:"path" validate:"required_if=Driver sqlite3"`
	MySQL  DatabaseConfig `mapstructure:"mysql"`
}

// Driver names a database/sql driver the history log can be stored with.
type Driver string

const (
	DriverSQLite Driver = "sqlite3"
	DriverMySQL  Driver = "mysql"
)

var AllDrivers = []Driver{DriverSQLite, DriverMySQL}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type SpeechConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	AccessKey     string        `mapstructure:"access_key"`
	Language      string        `mapstructure:"language" validate:"required"`
	Speaker       string        `mapstructure:"speaker" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryAttempts uint          `mapstructure:"retry_attempts"`

	// CacheDirectory keeps synthesized audio URLs per word. Empty disables caching.
	CacheDirectory string `mapstructure:"cache_directory"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json tint"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
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
		v.AddConfigPath("$HOME/.config/stardict")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("lexicon.database_path", filepath.Join("data", "ecdict.db"))
	v.SetDefault("lexicon.snapshot_path", "")
	v.SetDefault("history.driver", string(DriverSQLite))
	v.SetDefault("history.path", filepath.Join("data", "history.db"))
	v.SetDefault("history.mysql.host", "localhost")
	v.SetDefault("history.mysql.port", 3306)
	v.SetDefault("history.mysql.database", "stardict")
	v.SetDefault("history.mysql.username", "user")
	v.SetDefault("speech.base_url", "https://textreadtts.com")
	v.SetDefault("speech.access_key", "FREE")
	v.SetDefault("speech.language", "english")
	v.SetDefault("speech.speaker", "speaker5")
	v.SetDefault("speech.timeout", 5*time.Second)
	v.SetDefault("speech.retry_attempts", 2)
	v.SetDefault("speech.cache_directory", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Secrets come from the environment only
	if err := v.BindEnv("speech.access_key", "STARDICT_TTS_ACCESS_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind STARDICT_TTS_ACCESS_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("history.mysql.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
