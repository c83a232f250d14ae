package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"termtris/tetris"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	FPS     int           `mapstructure:"fps"`
	Seed    uint64        `mapstructure:"seed"`
	Field   FieldConfig   `mapstructure:"field"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type FieldConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	// Address of the /metrics listener. Empty disables it.
	Address string `mapstructure:"address"`
}

// Load reads tetris.yaml from path, when present, and applies TETRIS_*
// environment overrides on top of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("tetris")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TETRIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("fps", 30)
	v.SetDefault("seed", 0)
	v.SetDefault("field.width", tetris.DefaultWidth)
	v.SetDefault("field.height", tetris.DefaultHeight)
	v.SetDefault("log.file", "tetris.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.address", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.FPS < 1 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	if c.Field.Width < tetris.MinWidth || c.Field.Height < tetris.MinHeight {
		return fmt.Errorf("%w: field must be at least %dx%d, got %dx%d",
			ErrInvalidConfig, tetris.MinWidth, tetris.MinHeight, c.Field.Width, c.Field.Height)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// FrameTime is the duration of one simulation step.
func (c *Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", l.Level)
	}
	return level, nil
}
