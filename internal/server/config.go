package server

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kelseyhightower/envconfig"

	"github.com/mberliner/reflexio/pkg/utils"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	UseHttp2    bool     `envconfig:"USE_HTTP2" default:"false"`
	CorsOrigins []string `envconfig:"CORS_ORIGINS"`
	// BodyLimit caps request bodies, e.g. "10M". Evaluation batches carry
	// full examples, so the default is generous.
	BodyLimit string `envconfig:"BODY_LIMIT" default:"10M"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}

	if err := validatePort(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid port: %w", err)
	}

	cfg.CorsOrigins = utils.TrimAll(cfg.CorsOrigins)
	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}

	return &cfg, nil
}

func validatePort(port string) error {
	portNum, err := strconv.Atoi(port)

	if err != nil {
		return errors.New("port must be a number")
	}

	if portNum < 1 || portNum > 65535 {
		return errors.New("port must be between 1 and 65535")
	}

	return nil
}
