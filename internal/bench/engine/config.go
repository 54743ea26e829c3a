package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/mberliner/reflexio/internal/apperr"
)

const (
	ProviderOpenAI     = "openai"
	ProviderAzure      = "azure"
	ProviderCompatible = "compatible"

	DefaultAPIVersion = "2024-02-15-preview"
	DefaultTimeout    = 60 * time.Second
)

// ModelConfig is everything needed to build one model client. It is passed
// explicitly to constructors; nothing is read from the environment later.
type ModelConfig struct {
	// ID is "provider/model", e.g. "azure/gpt-4.1-mini".
	ID                string
	APIKey            string
	APIBase           string
	APIVersion        string
	Timeout           time.Duration
	RequestsPerSecond float64
	Cache             bool
}

type ModelsConfig struct {
	Task  ModelConfig
	Judge ModelConfig
}

type envModels struct {
	Task              string        `envconfig:"LLM_MODEL_TASK" default:"azure/gpt-4.1-mini"`
	Reflection        string        `envconfig:"LLM_MODEL_REFLECTION"`
	APIKey            string        `envconfig:"LLM_API_KEY"`
	APIBase           string        `envconfig:"LLM_API_BASE"`
	APIVersion        string        `envconfig:"LLM_API_VERSION" default:"2024-02-15-preview"`
	Cache             bool          `envconfig:"LLM_CACHE" default:"true"`
	Timeout           time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	RequestsPerSecond float64       `envconfig:"LLM_REQUESTS_PER_SECOND" default:"0"`
}

// LoadModelsFromEnv reads the task and reflection (judge) model settings.
// The judge model is empty when LLM_MODEL_REFLECTION is unset.
func LoadModelsFromEnv() (ModelsConfig, error) {
	var env envModels
	if err := envconfig.Process("", &env); err != nil {
		return ModelsConfig{}, apperr.NewConfigWrap("env", "load model settings", err)
	}

	base := ModelConfig{
		APIKey:            env.APIKey,
		APIBase:           env.APIBase,
		APIVersion:        env.APIVersion,
		Timeout:           env.Timeout,
		RequestsPerSecond: env.RequestsPerSecond,
		Cache:             env.Cache,
	}
	task, judge := base, base
	task.ID = env.Task
	judge.ID = env.Reflection
	return ModelsConfig{Task: task, Judge: judge}, nil
}

// ParseModelID splits "provider/model". A bare model name means openai.
func ParseModelID(id string) (provider, model string, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "", apperr.NewConfig("model", "model id is empty")
	}
	provider, model, found := strings.Cut(id, "/")
	if !found {
		return ProviderOpenAI, id, nil
	}
	provider = strings.ToLower(provider)
	switch provider {
	case ProviderOpenAI, ProviderAzure, ProviderCompatible:
	default:
		return "", "", apperr.NewConfig("model", fmt.Sprintf("unsupported provider %q in %q", provider, id))
	}
	if model == "" {
		return "", "", apperr.NewConfig("model", fmt.Sprintf("missing model name in %q", id))
	}
	return provider, model, nil
}

func (c ModelConfig) validate() error {
	provider, _, err := ParseModelID(c.ID)
	if err != nil {
		return err
	}
	if provider != ProviderCompatible && c.APIKey == "" {
		return apperr.NewConfig("LLM_API_KEY", fmt.Sprintf("required for provider %s", provider))
	}
	if (provider == ProviderAzure || provider == ProviderCompatible) && c.APIBase == "" {
		return apperr.NewConfig("LLM_API_BASE", fmt.Sprintf("required for provider %s", provider))
	}
	if c.RequestsPerSecond < 0 {
		return apperr.NewConfig("LLM_REQUESTS_PER_SECOND", "must not be negative")
	}
	return nil
}
