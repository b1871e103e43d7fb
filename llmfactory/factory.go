// Package llmfactory constructs LLM providers from configuration.
package llmfactory

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llms/copilot"
	"github.com/effective-security/agentloop/pkg/llms/ollama"
	"github.com/effective-security/agentloop/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "llmfactory")

// Factory provides cached access to configured LLM providers.
type Factory interface {
	// Default returns the provider of the first configured entry.
	Default() (llms.Provider, error)
	// ByType returns the first provider with the given type.
	ByType(typ string) (llms.Provider, error)
	// ByName returns the provider with the given name.
	ByName(name string) (llms.Provider, error)
}

// Load reads the config from a file and returns a Factory.
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	byType map[string]llms.Provider
	byName map[string]llms.Provider
	lock   sync.Mutex
}

// New creates a new LLM provider factory.
func New(cfg *Config) Factory {
	return &factory{
		cfg:    cfg,
		byType: make(map[string]llms.Provider),
		byName: make(map[string]llms.Provider),
	}
}

// NewProvider constructs a provider from a single config entry.
func NewProvider(cfg *ProviderConfig) (llms.Provider, error) {
	delay, err := loopDelay(cfg)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(cfg.Type) {
	case string(llms.ProviderOllama):
		var opts []ollama.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.BaseURL))
		}
		if cfg.DefaultModel != "" {
			opts = append(opts, ollama.WithModel(cfg.DefaultModel))
		}
		if cfg.Loop.MaxToolRounds > 0 {
			opts = append(opts, ollama.WithMaxToolRounds(cfg.Loop.MaxToolRounds))
		}
		if delay > 0 {
			opts = append(opts, ollama.WithRequestDelay(delay))
		}
		if cfg.Loop.AppendToolResults {
			opts = append(opts, ollama.WithAppendToolResults(true))
		}
		if cfg.Loop.OutputDir != "" {
			opts = append(opts, ollama.WithOutputDir(cfg.Loop.OutputDir))
		}
		return ollama.New(opts...)

	case string(llms.ProviderOpenAI):
		opts := []openai.Option{
			openai.WithToken(cfg.Token),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Organization != "" {
			opts = append(opts, openai.WithOrganization(cfg.Organization))
		}
		if cfg.DefaultModel != "" {
			opts = append(opts, openai.WithModel(cfg.DefaultModel))
		}
		if cfg.Loop.MaxToolRounds > 0 {
			opts = append(opts, openai.WithMaxToolRounds(cfg.Loop.MaxToolRounds))
		}
		if delay > 0 {
			opts = append(opts, openai.WithRequestDelay(delay))
		}
		if cfg.Loop.AppendToolResults {
			opts = append(opts, openai.WithAppendToolResults(true))
		}
		if cfg.Loop.OutputDir != "" {
			opts = append(opts, openai.WithOutputDir(cfg.Loop.OutputDir))
		}
		return openai.New(opts...)

	case string(llms.ProviderCopilot):
		var opts []copilot.Option
		if cfg.Command != "" {
			opts = append(opts, copilot.WithCommand(cfg.Command, cfg.Args...))
		}
		if cfg.DefaultModel != "" {
			opts = append(opts, copilot.WithModel(cfg.DefaultModel))
		}
		if cfg.Loop.MaxToolRounds > 0 {
			opts = append(opts, copilot.WithMaxToolRounds(cfg.Loop.MaxToolRounds))
		}
		if delay > 0 {
			opts = append(opts, copilot.WithRequestDelay(delay))
		}
		if cfg.Loop.AppendToolResults {
			opts = append(opts, copilot.WithAppendToolResults(true))
		}
		if cfg.Loop.OutputDir != "" {
			opts = append(opts, copilot.WithOutputDir(cfg.Loop.OutputDir))
		}
		return copilot.New(opts...)
	}
	return nil, errors.Newf("unsupported provider type: %s", cfg.Type)
}

func loopDelay(cfg *ProviderConfig) (time.Duration, error) {
	if cfg.Loop.RequestDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.Loop.RequestDelay)
	if err != nil {
		return 0, errors.WithMessagef(err, "invalid request_delay for provider %q", cfg.Name)
	}
	return d, nil
}

func (f *factory) Default() (llms.Provider, error) {
	if len(f.cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}
	return f.ByName(f.cfg.Providers[0].Name)
}

func (f *factory) ByType(typ string) (llms.Provider, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	typ = strings.ToUpper(typ)
	if prov, ok := f.byType[typ]; ok {
		return prov, nil
	}

	for _, cfg := range f.cfg.Providers {
		if strings.ToUpper(cfg.Type) == typ {
			prov, err := f.create(cfg)
			if err != nil {
				return nil, err
			}
			f.byType[typ] = prov
			return prov, nil
		}
	}
	return nil, errors.Newf("provider not found for type: %s", typ)
}

func (f *factory) ByName(name string) (llms.Provider, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if prov, ok := f.byName[name]; ok {
		return prov, nil
	}

	for _, cfg := range f.cfg.Providers {
		if cfg.Name == name {
			prov, err := f.create(cfg)
			if err != nil {
				return nil, err
			}
			f.byName[name] = prov
			return prov, nil
		}
	}
	return nil, errors.Newf("provider not found for name: %s", name)
}

func (f *factory) create(cfg *ProviderConfig) (llms.Provider, error) {
	prov, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG,
		"status", "created_llm",
		"type", cfg.Type,
		"name", cfg.Name,
		"model", cfg.DefaultModel)
	return prov, nil
}
