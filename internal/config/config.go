package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"wordmastery/internal/validation"
)

// Config holds application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Learning  LearningConfig  `mapstructure:"learning"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Audio     AudioConfig     `mapstructure:"audio"`
}

type AppConfig struct {
	Env string `mapstructure:"env" validate:"oneof=development production test"`
}

// DatabaseConfig selects the dialect and connection for the store
type DatabaseConfig struct {
	Type         string `mapstructure:"type" validate:"oneof=sqlite sqlite3 postgres postgresql mysql"`
	Path         string `mapstructure:"path" validate:"required_if=Type sqlite"`
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"min=0,max=1000"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"min=0,max=100"`
}

// LearningConfig tunes question batches and review scheduling
type LearningConfig struct {
	ChoiceCount     int             `mapstructure:"choice_count" validate:"min=2,max=8"`
	BatchSize       int             `mapstructure:"batch_size" validate:"min=4,max=200"`
	LevelupWindow   int             `mapstructure:"levelup_window" validate:"min=-1,max=15"`
	Seed            int64           `mapstructure:"seed"`
	ReviewIntervals []time.Duration `mapstructure:"review_intervals" validate:"min=1,dive,gt=0"`
}

type SchedulerConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"min=1s"`
}

// AudioConfig locates the cached listening-question audio
type AudioConfig struct {
	Dir      string `mapstructure:"dir" validate:"required"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.path", "./wordmastery.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("learning.choice_count", 4)
	v.SetDefault("learning.batch_size", 20)
	v.SetDefault("learning.levelup_window", 2)
	v.SetDefault("learning.seed", 0)
	v.SetDefault("learning.review_intervals", []time.Duration{72 * time.Hour, 7 * 24 * time.Hour, 30 * 24 * time.Hour})
	v.SetDefault("scheduler.sweep_interval", time.Minute)
	v.SetDefault("audio.dir", "./static/audio")
	v.SetDefault("audio.endpoint", "")
}

var envBindings = map[string]string{
	"app.env":                  "APP_ENV",
	"database.type":            "DB_TYPE",
	"database.path":            "DB_PATH",
	"database.url":             "DATABASE_URL",
	"database.max_open_conns":  "DB_MAX_OPEN_CONNS",
	"database.max_idle_conns":  "DB_MAX_IDLE_CONNS",
	"learning.choice_count":    "CHOICE_COUNT",
	"learning.batch_size":      "BATCH_SIZE",
	"learning.levelup_window":  "LEVELUP_WINDOW",
	"learning.seed":            "LEARNING_SEED",
	"scheduler.sweep_interval": "SWEEP_INTERVAL",
	"audio.dir":                "AUDIO_DIR",
	"audio.endpoint":           "TTS_ENDPOINT",
}

// Load reads configuration from defaults, an optional configs/<CONFIG_NAME>.yaml
// file, a .env file and the environment, in increasing priority.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configName := os.Getenv("CONFIG_NAME")
	if configName == "" {
		configName = "default"
	}
	return LoadFrom("configs", configName)
}

// LoadFrom reads the named config file from dir, falling back to defaults when
// the file is absent.
func LoadFrom(dir, name string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.AddConfigPath(dir)
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
