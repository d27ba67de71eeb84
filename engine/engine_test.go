package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToAnthropic(t *testing.T) {
	models, err := New(Config{AnthropicAPIKey: "a"})
	require.NoError(t, err)

	assert.IsType(t, &Anthropic{}, models.Generator)
	assert.IsType(t, &Anthropic{}, models.Captioner)
	assert.Nil(t, models.Transcriber)
}

func TestNew_OpenAIEverywhere(t *testing.T) {
	models, err := New(Config{
		Generator:    ProviderOpenAI,
		Captioner:    "OpenAI",
		OpenAIAPIKey: "o",
		OpenAIModel:  "gpt-4o",
	})
	require.NoError(t, err)

	gen, ok := models.Generator.(*OpenAI)
	require.True(t, ok)
	assert.Equal(t, "gpt-4o", gen.model)
	assert.Same(t, gen, models.Captioner)
	assert.Same(t, gen, models.Transcriber)
}

func TestNew_MixedProviders(t *testing.T) {
	models, err := New(Config{
		Generator:       ProviderAnthropic,
		Captioner:       ProviderOpenAI,
		AnthropicAPIKey: "a",
		OpenAIAPIKey:    "o",
	}, WithSystemPrompt("persona"))
	require.NoError(t, err)

	gen := models.Generator.(*Anthropic)
	assert.Equal(t, "persona", gen.systemPrompt)
	assert.Equal(t, DefaultAnthropicModel, gen.model)
	assert.IsType(t, &OpenAI{}, models.Captioner)
	assert.NotNil(t, models.Transcriber)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	_, err = New(Config{Generator: "gemini", AnthropicAPIKey: "a"})
	assert.ErrorContains(t, err, "unknown generator provider")

	_, err = New(Config{Captioner: ProviderOpenAI, AnthropicAPIKey: "a"})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}
