package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrUnrecognized means the engine produced no usable text.
	ErrUnrecognized = errors.New("speech not recognized")
	// ErrDisabled means no speech-to-text credentials were configured.
	ErrDisabled = errors.New("speech recognition is not configured")
)

// Transcriber turns voice recordings into text through an OpenAI-compatible
// speech-to-text endpoint.
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
}

// New returns a Transcriber. An empty apiKey yields one that always fails with ErrDisabled.
func New(apiKey, baseURL, model, language string) *Transcriber {
	if apiKey == "" {
		return &Transcriber{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Transcribe recognizes the audio file at path. Blank results are ErrUnrecognized.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if t.client == nil {
		return "", ErrDisabled
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}
