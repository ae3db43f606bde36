package core

// Capability evaluation is a pure function of the owner's tier and
// settings. There is no store access here; the caller resolves the
// CapabilityContext and passes it in.
//
// Rule table:
//
//	semantic_search     tier in {pro, premium}
//	ai_memory           tier in {pro, premium} AND settings.MemoryEnabled
//	summary_generation  settings.SummaryEnabled
//	mood_analysis       settings.MoodEnabled
//	export_markdown     tier in {pro, premium}
//	export_pdf          tier in {pro, premium}
//	ai_chat             tier in {pro, premium}
//
// Unknown features are denied.

// Allowed reports whether the feature is permitted for the given context.
// Probing callers use this; callers that treat denial as an error use
// RequireFeature.
func Allowed(cctx CapabilityContext, feature Feature) bool {
	switch feature {
	case FeatureSemanticSearch, FeatureExportMarkdown, FeatureExportPDF, FeatureAIChat:
		return isPaidTier(cctx.Tier)
	case FeatureAIMemory:
		return isPaidTier(cctx.Tier) && cctx.Settings.MemoryEnabled
	case FeatureSummaryGeneration:
		return cctx.Settings.SummaryEnabled
	case FeatureMoodAnalysis:
		return cctx.Settings.MoodEnabled
	default:
		return false
	}
}

// RequireFeature returns an *AccessDeniedError if the feature is denied
// for the given context, nil otherwise.
func RequireFeature(cctx CapabilityContext, feature Feature) error {
	if !Allowed(cctx, feature) {
		return &AccessDeniedError{Feature: feature}
	}
	return nil
}

func isPaidTier(tier Tier) bool {
	return tier == TierPro || tier == TierPremium
}
