// Package openai binds the OpenAI APIs: chat completions with function
// calling as a ModelProvider, Whisper transcription, and speech synthesis.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"home-ai/internal/domain"
	"home-ai/internal/infra"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultChatModel = "gpt-4o-mini"
)

type ChatClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewChatClient(apiKey, model string) *ChatClient {
	return NewChatClientWithURL(apiKey, model, defaultBaseURL)
}

func NewChatClientWithURL(apiKey, model, baseURL string) *ChatClient {
	if model == "" {
		model = defaultChatModel
	}
	return &ChatClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type chatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []toolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

type toolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

// functionCall arguments travel as a JSON-encoded string, unlike Claude's
// structured input.
type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type tool struct {
	Type     string             `json:"type"`
	Function functionDefinition `json:"function"`
}

type functionDefinition struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Parameters  domain.Schema `json:"parameters"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []tool        `json:"tools,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *ChatClient) Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (*domain.ModelResponse, error) {
	converted, err := convertMessages(messages)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model:    c.model,
		Messages: converted,
		Tools:    convertTools(tools),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result chatResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
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
				return fmt.Errorf("openai API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("openai API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if result.Error != nil {
		return nil, fmt.Errorf("openai error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("empty response from openai")
	}

	return normalize(result.Choices[0].Message)
}

func convertMessages(messages []domain.Message) ([]chatMessage, error) {
	converted := make([]chatMessage, 0, len(messages))
	for _, msg := range messages {
		out := chatMessage{Role: string(msg.Role), Content: msg.Content}

		if msg.Role == domain.RoleAssistant && len(msg.ToolCalls) > 0 {
			for _, call := range msg.ToolCalls {
				args, err := json.Marshal(call.Arguments)
				if err != nil {
					return nil, fmt.Errorf("encoding tool call arguments: %w", err)
				}
				out.ToolCalls = append(out.ToolCalls, toolCall{
					ID:   call.ID,
					Type: "function",
					Function: functionCall{
						Name:      call.Name,
						Arguments: string(args),
					},
				})
			}
		}
		if msg.Role == domain.RoleTool {
			out.ToolCallID = msg.ToolCallID
		}

		converted = append(converted, out)
	}
	return converted, nil
}

func convertTools(specs []domain.ToolSpec) []tool {
	converted := make([]tool, 0, len(specs))
	for _, spec := range specs {
		converted = append(converted, tool{
			Type: "function",
			Function: functionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.InputSchema,
			},
		})
	}
	return converted
}

func normalize(msg chatMessage) (*domain.ModelResponse, error) {
	normalized := &domain.ModelResponse{Text: msg.Content}
	for _, call := range msg.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("parsing tool call arguments (%s): %w", call.Function.Arguments, err)
		}
		normalized.ToolCalls = append(normalized.ToolCalls, domain.ToolCallRequest{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}
	return normalized, nil
}
