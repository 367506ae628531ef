package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"home-ai/internal/infra"
)

const defaultVoice = "alloy"

// SpeechClient synthesizes spoken replies through the OpenAI speech API.
type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	voice      string
}

func NewSpeechClient(apiKey, voice string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, voice, defaultBaseURL)
}

func NewSpeechClientWithURL(apiKey, voice, baseURL string) *SpeechClient {
	if voice == "" {
		voice = defaultVoice
	}
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		voice:      voice,
	}
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	bodyBytes, err := json.Marshal(speechRequest{
		Model: "tts-1",
		Voice: c.voice,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var audio []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("speech API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("speech API error %d: %s", resp.StatusCode, string(respBody))
		}

		audio, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return audio, nil
}
