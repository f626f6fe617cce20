package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig is what the terminal client needs to reach the API.
type ClientConfig struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	LogFile string        `mapstructure:"log_file"`
}

// NewClientViper returns a viper instance for the terminal client with
// TODO_* environment variables bound (api_url -> TODO_API_URL).
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("api_url", "http://localhost:3001/api")
	v.SetDefault("timeout", 10*time.Second)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("TODO")
	v.AutomaticEnv()
	return v
}

// LoadClient decodes and validates the client settings in v.
func LoadClient(v *viper.Viper) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding client config: %w", err)
	}
	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("api_url must not be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	return &cfg, nil
}
