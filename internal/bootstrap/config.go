package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	RedisUrl        string `mapstructure:"REDIS_URL"`
	MongoUri        string `mapstructure:"MONGO_URI"`
	MongoDb         string `mapstructure:"MONGO_DB"`
	IsLocalCors     bool   `mapstructure:"LOCAL_CORS"`
	BoardSize       int    `mapstructure:"BOARD_SIZE"`
	MaxBoardSize    int    `mapstructure:"MAX_BOARD_SIZE"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`
	MatchTTLSeconds int    `mapstructure:"MATCH_TTL_SECONDS"`
}

// An empty REDIS_URL or MONGO_URI turns the matching store off. A zero
// MATCH_TTL_SECONDS keeps hosted matches until restart.
var defaults = map[string]any{
	"SERVER_PORT":       "8080",
	"REDIS_URL":         "",
	"MONGO_URI":         "",
	"MONGO_DB":          "margo",
	"LOCAL_CORS":        false,
	"BOARD_SIZE":        7,
	"MAX_BOARD_SIZE":    19,
	"CACHE_TTL_SECONDS": 600,
	"MATCH_TTL_SECONDS": 3600,
}

// Setup reads cfgPath and lets environment variables override it. A missing
// file is not an error; the defaults above apply.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetConfigFile(cfgPath)

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
		return nil, err
	}

	var cfg Config

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxBoardSize < 1 {
		return fmt.Errorf("MAX_BOARD_SIZE must be positive, got %d", c.MaxBoardSize)
	}
	if c.BoardSize < 1 || c.BoardSize > c.MaxBoardSize {
		return fmt.Errorf("BOARD_SIZE must be within 1..%d, got %d", c.MaxBoardSize, c.BoardSize)
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative, got %d", c.CacheTTLSeconds)
	}
	if c.MatchTTLSeconds < 0 {
		return fmt.Errorf("MATCH_TTL_SECONDS must not be negative, got %d", c.MatchTTLSeconds)
	}
	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// MatchTTL is how long a hosted match may sit untouched before it is evicted.
func (c *Config) MatchTTL() time.Duration {
	return time.Duration(c.MatchTTLSeconds) * time.Second
}
