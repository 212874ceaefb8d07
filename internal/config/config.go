package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/gridtoe/internal/entity"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Match      Match  `yaml:"match"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Match - defaults for every new match.
type Match struct {
	Width             int           `yaml:"width" env:"MATCH_WIDTH" env-default:"3"`
	Length            int           `yaml:"length" env:"MATCH_LENGTH" env-default:"3"`
	WinningLineAmount int           `yaml:"winning-line-amount" env:"MATCH_WINNING_LINE_AMOUNT" env-default:"3"`
	SearchDepthLimit  int           `yaml:"search-depth-limit" env:"MATCH_SEARCH_DEPTH_LIMIT" env-default:"9"`
	SearchWorkers     int           `yaml:"search-workers" env:"MATCH_SEARCH_WORKERS" env-default:"1"`
	TTL               time.Duration `yaml:"ttl" env:"MATCH_TTL" env-default:"24h"`

	// caps on what clients may ask for in a new match
	MaxWidth       int   `yaml:"max-width" env:"MATCH_MAX_WIDTH" env-default:"7"`
	MaxLength      int   `yaml:"max-length" env:"MATCH_MAX_LENGTH" env-default:"7"`
	MaxSearchNodes int64 `yaml:"max-search-nodes" env:"MATCH_MAX_SEARCH_NODES" env-default:"50000000"`
}

// Load - reads the config file, applies env overrides and validates the match defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Match.MatchConfig().Validate(); err != nil {
		return nil, fmt.Errorf("match section: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Match) MatchConfig() entity.MatchConfig {
	return entity.MatchConfig{
		Width:             that.Width,
		Length:            that.Length,
		WinningLineAmount: that.WinningLineAmount,
		SearchDepthLimit:  that.SearchDepthLimit,
	}
}
