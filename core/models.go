package core

import "time"

// Tier is the subscription level of an entry owner.
type Tier string

const (
	// TierFree is the default, unpaid tier.
	TierFree Tier = "free"
	// TierPro is the paid individual tier.
	TierPro Tier = "pro"
	// TierPremium is the highest paid tier.
	TierPremium Tier = "premium"
)

// Feature is a named capability gate evaluated from tier and settings.
type Feature string

const (
	FeatureSemanticSearch    Feature = "semantic_search"
	FeatureAIMemory          Feature = "ai_memory"
	FeatureSummaryGeneration Feature = "summary_generation"
	FeatureMoodAnalysis      Feature = "mood_analysis"
	FeatureExportMarkdown    Feature = "export_markdown"
	FeatureExportPDF         Feature = "export_pdf"
	FeatureAIChat            Feature = "ai_chat"
)

// Settings holds the per-owner enrichment toggles.
type Settings struct {
	MemoryEnabled  bool `json:"memoryEnabled"`
	MoodEnabled    bool `json:"moodEnabled"`
	SummaryEnabled bool `json:"summaryEnabled"`
}

// CapabilityContext is the input to capability evaluation: the owner's
// tier plus their settings. It is resolved fresh from the owner store for
// every job and never cached across jobs.
type CapabilityContext struct {
	Tier     Tier
	Settings Settings
}

// OwnerProfile is the durable record backing a CapabilityContext.
type OwnerProfile struct {
	OwnerID   string    `json:"ownerId"`
	Tier      Tier      `json:"tier"`
	Settings  Settings  `json:"settings"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Capabilities returns the capability context derived from the profile.
func (p *OwnerProfile) Capabilities() CapabilityContext {
	return CapabilityContext{Tier: p.Tier, Settings: p.Settings}
}

// ProcessingJob is the queue payload describing one entry to enrich.
// The producer enqueues one job per new or updated entry. Queue delivery
// is at-least-once, so processing the same job twice must be safe.
type ProcessingJob struct {
	EntryID       string `json:"entryId"`
	OwnerID       string `json:"ownerId"`
	RawText       string `json:"rawText"`
	VoiceAssetRef string `json:"voiceAssetRef,omitempty"`
}

// TextChunk is a bounded-size slice of normalized entry text used as the
// embedding unit. Chunks are ephemeral: derived deterministically from the
// normalized text and never persisted independently of their entry.
type TextChunk struct {
	Index int
	Text  string
}

// EntryRecord is the durable projection of a journal entry. Enrichment
// fields are pointers so a denied or failed enrichment is an explicit
// null in storage rather than a zero value.
type EntryRecord struct {
	EntryID        string    `json:"entryId"`
	OwnerID        string    `json:"ownerId"`
	RawText        string    `json:"rawText"`
	VoiceAssetRef  string    `json:"voiceAssetRef,omitempty"`
	NormalizedText string    `json:"normalizedText"`
	Summary        *string   `json:"summary"`
	Tags           []string  `json:"tags"`
	Mood           *string   `json:"mood"`
	ChunkTexts     []string  `json:"chunkTexts"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EnrichedEntry carries the derived fields produced by one pipeline run.
// It is written back to the entry record in a single terminal mutation.
type EnrichedEntry struct {
	NormalizedText string
	Summary        *string
	Tags           []string
	Mood           *string
	ChunkTexts     []string
}

// Moods is the closed set of labels the mood classifier may produce.
var Moods = []string{
	"happy",
	"sad",
	"anxious",
	"excited",
	"calm",
	"frustrated",
	"grateful",
	"angry",
	"hopeful",
	"neutral",
}

// IsValidMood reports whether label is a member of the closed mood set.
func IsValidMood(label string) bool {
	for _, m := range Moods {
		if m == label {
			return true
		}
	}
	return false
}
