package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	TaskSpecPath string `envconfig:"TASK_SPEC_PATH" required:"true"`
}

func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	return &cfg, nil
}
