package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch. Batch processing is more efficient than calling EmbedText
	// multiple times. The returned slice contains embeddings in the same
	// order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Transcriber converts recorded audio into text.
// Implementations must be thread-safe for concurrent use.
type Transcriber interface {
	// Transcribe converts the given audio bytes into a transcript.
	// Returns an empty string without error when the service produces no
	// usable transcript.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Generator produces free-form text completions.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Complete generates a completion for the prompt, bounded by maxTokens
	// and sampled at the given temperature.
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder,
// Transcriber, and Generator instances, ensuring they share configuration
// and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Transcriber returns the speech-to-text service.
	// The returned Transcriber is safe for concurrent use.
	Transcriber() Transcriber

	// Generator returns the text completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
