package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowed_RuleTable(t *testing.T) {
	tests := []struct {
		name    string
		cctx    CapabilityContext
		feature Feature
		want    bool
	}{
		{
			name:    "ai_memory denied on free tier even with toggle on",
			cctx:    CapabilityContext{Tier: TierFree, Settings: Settings{MemoryEnabled: true}},
			feature: FeatureAIMemory,
			want:    false,
		},
		{
			name:    "ai_memory allowed on pro with toggle on",
			cctx:    CapabilityContext{Tier: TierPro, Settings: Settings{MemoryEnabled: true}},
			feature: FeatureAIMemory,
			want:    true,
		},
		{
			name:    "ai_memory denied on pro with toggle off",
			cctx:    CapabilityContext{Tier: TierPro, Settings: Settings{MemoryEnabled: false}},
			feature: FeatureAIMemory,
			want:    false,
		},
		{
			name:    "semantic_search allowed on premium",
			cctx:    CapabilityContext{Tier: TierPremium},
			feature: FeatureSemanticSearch,
			want:    true,
		},
		{
			name:    "semantic_search denied on free",
			cctx:    CapabilityContext{Tier: TierFree},
			feature: FeatureSemanticSearch,
			want:    false,
		},
		{
			name:    "summary_generation follows toggle regardless of tier",
			cctx:    CapabilityContext{Tier: TierFree, Settings: Settings{SummaryEnabled: true}},
			feature: FeatureSummaryGeneration,
			want:    true,
		},
		{
			name:    "summary_generation denied with toggle off on premium",
			cctx:    CapabilityContext{Tier: TierPremium, Settings: Settings{SummaryEnabled: false}},
			feature: FeatureSummaryGeneration,
			want:    false,
		},
		{
			name:    "mood_analysis follows toggle",
			cctx:    CapabilityContext{Tier: TierFree, Settings: Settings{MoodEnabled: true}},
			feature: FeatureMoodAnalysis,
			want:    true,
		},
		{
			name:    "export_markdown requires paid tier",
			cctx:    CapabilityContext{Tier: TierPro},
			feature: FeatureExportMarkdown,
			want:    true,
		},
		{
			name:    "export_pdf denied on free",
			cctx:    CapabilityContext{Tier: TierFree},
			feature: FeatureExportPDF,
			want:    false,
		},
		{
			name:    "ai_chat allowed on pro",
			cctx:    CapabilityContext{Tier: TierPro},
			feature: FeatureAIChat,
			want:    true,
		},
		{
			name:    "unknown feature is denied",
			cctx:    CapabilityContext{Tier: TierPremium, Settings: Settings{MemoryEnabled: true, MoodEnabled: true, SummaryEnabled: true}},
			feature: Feature("time_travel"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.cctx, tt.feature))
		})
	}
}

func TestAllowed_IsPure(t *testing.T) {
	// Same inputs, same answer, every time.
	cctx := CapabilityContext{Tier: TierPro, Settings: Settings{MemoryEnabled: true}}
	for i := 0; i < 3; i++ {
		assert.True(t, Allowed(cctx, FeatureAIMemory))
	}
}

func TestRequireFeature(t *testing.T) {
	t.Run("allowed returns nil", func(t *testing.T) {
		cctx := CapabilityContext{Tier: TierPremium, Settings: Settings{MemoryEnabled: true}}
		require.NoError(t, RequireFeature(cctx, FeatureAIMemory))
	})

	t.Run("denied returns AccessDeniedError", func(t *testing.T) {
		cctx := CapabilityContext{Tier: TierFree}
		err := RequireFeature(cctx, FeatureSemanticSearch)
		require.Error(t, err)

		var denied *AccessDeniedError
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, FeatureSemanticSearch, denied.Feature)
		assert.True(t, errors.Is(err, ErrAccessDenied))
	})

	t.Run("denial carries the fixed user-facing message", func(t *testing.T) {
		err := RequireFeature(CapabilityContext{Tier: TierFree}, FeatureAIChat)
		require.Error(t, err)
		assert.Contains(t, err.Error(), AccessDeniedMessage)
	})
}
