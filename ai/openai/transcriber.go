package openai

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/LakGar/Lumina-sub000/ai"
	goopenai "github.com/sashabaranov/go-openai"
)

// Transcriber implements ai.Transcriber against an OpenAI-compatible audio
// transcription endpoint (Whisper and friends).
type Transcriber struct {
	client *goopenai.Client
	model  string
	logger *slog.Logger
}

// newTranscriber is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranscriber(config *ai.Config) (*Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := goopenai.DefaultConfig(config.Token)
	clientConfig.BaseURL = config.TranscriptionHost

	return &Transcriber{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  config.TranscriptionModel,
		logger: slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new transcriber using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe converts the given audio bytes into a transcript.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	t.logger.Debug("transcribing audio", "bytes", len(audio))

	// FilePath is only used by the API to infer the container format.
	response, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "voice-entry.m4a",
	})
	if err != nil {
		t.logger.Error("failed to transcribe audio", "err", err)
		return "", err
	}

	return strings.TrimSpace(response.Text), nil
}
