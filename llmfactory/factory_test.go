package llmfactory_test

import (
	"testing"

	"github.com/effective-security/agentloop/llmfactory"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 3)

	assert.Equal(t, "local", cfg.Providers[0].Name)
	assert.Equal(t, "OLLAMA", cfg.Providers[0].Type)
	assert.Equal(t, 5, cfg.Providers[0].Loop.MaxToolRounds)
	assert.Equal(t, "100ms", cfg.Providers[0].Loop.RequestDelay)

	assert.Equal(t, "openrouter", cfg.Providers[1].Name)
	assert.True(t, cfg.Providers[1].Loop.AppendToolResults)

	assert.Equal(t, "copilot-language-server", cfg.Providers[2].Command)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := llmfactory.LoadConfig("testdata/invalid.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestFactory(t *testing.T) {
	t.Parallel()

	f, err := llmfactory.Load("testdata/llm.yaml")
	require.NoError(t, err)

	def, err := f.Default()
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOllama, def.GetProviderType())
	assert.Equal(t, "llama3.2", def.GetModel())

	// cached by name
	again, err := f.ByName("local")
	require.NoError(t, err)
	assert.Same(t, def, again)

	byType, err := f.ByType("openai")
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenAI, byType.GetProviderType())
	assert.Equal(t, "qwen/qwen3-coder", byType.GetModel())

	cp, err := f.ByName("copilot")
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderCopilot, cp.GetProviderType())

	_, err = f.ByName("missing")
	require.Error(t, err)
	_, err = f.ByType("GROK")
	require.Error(t, err)
}

func TestNewProvider_BadDelay(t *testing.T) {
	t.Parallel()

	_, err := llmfactory.NewProvider(&llmfactory.ProviderConfig{
		Name: "bad",
		Type: "OLLAMA",
		Loop: llmfactory.LoopConfig{RequestDelay: "fast"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request_delay")
}
