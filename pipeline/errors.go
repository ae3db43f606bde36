package pipeline

import "errors"

var (
	// ErrEntryRepositoryRequired is returned when an entry repository is not provided.
	ErrEntryRepositoryRequired = errors.New("entry repository required")

	// ErrOwnerRepositoryRequired is returned when an owner repository is not provided.
	ErrOwnerRepositoryRequired = errors.New("owner repository required")

	// ErrVectorIndexRequired is returned when a vector index is not provided.
	ErrVectorIndexRequired = errors.New("vector index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbeddingMismatch is returned when the embedding service returns a
	// different number of vectors than chunks submitted.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")

	// ErrUnknownOwner is returned when a job references an owner with no
	// stored profile.
	ErrUnknownOwner = errors.New("unknown owner")
)
