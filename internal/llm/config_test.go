package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_TierModels(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)

	tests := []struct {
		tier ModelTier
		want string
	}{
		{TierLite, "gemini-2.5-flash-lite"},
		{TierStandard, "gemini-2.5-flash"},
		{TierAdvanced, "gemini-2.5-pro"},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, config.GetModel(tt.tier))
		})
	}
}

func TestGetModel_FallbackChain(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "only-model",
		},
	}

	// Unknown tier falls back to standard, then lite.
	assert.Equal(t, "only-model", config.GetModel("unknown"))
	assert.Equal(t, "only-model", config.GetModel(TierAdvanced))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel_CopiesWithoutMutating(t *testing.T) {
	config := DefaultConfig()
	custom := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced), "original must not change")
	assert.Equal(t, "custom-model", custom.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", custom.GetModel(TierLite), "other tiers copied")
}
