package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type TextToSpeech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// NoopSTT is used when no transcription backend is configured. It errors if
// audio actually arrives so the misconfiguration is visible.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set openai.api_key to enable audio transcription")
}

// NoopTTS skips audio synthesis; text-only deployments reply with text alone.
type NoopTTS struct{}

func (n *NoopTTS) Synthesize(_ context.Context, _ string) ([]byte, error) {
	return nil, nil
}
