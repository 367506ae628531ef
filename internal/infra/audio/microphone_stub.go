//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// Microphone stub when portaudio is not available.
type Microphone struct{}

func NewMicrophone(_ int, _ *slog.Logger) *Microphone {
	return &Microphone{}
}

func (m *Microphone) Record(_ context.Context) ([]byte, error) {
	return nil, fmt.Errorf("microphone capture not available: rebuild with -tags portaudio")
}
