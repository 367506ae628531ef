// Package anthropic binds the Claude Messages API to the ModelProvider
// contract, translating between the internal message history and Claude's
// content-block format.
package anthropic

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

const defaultModel = "claude-sonnet-4-20250514"

type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	maxTokens  int
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = defaultModel
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
		maxTokens:  1024,
	}
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
	Tools     []toolDef `json:"tools,omitempty"`
}

type toolDef struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	InputSchema domain.Schema `json:"input_schema"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use blocks
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *ClaudeClient) Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (*domain.ModelResponse, error) {
	system, converted := convertMessages(messages)

	reqBody := request{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  converted,
		Tools:     convertTools(tools),
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("claude API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("claude API error %d: %s", resp.StatusCode, string(respBody))
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
		return nil, fmt.Errorf("claude error: %s", result.Error.Message)
	}

	return normalize(result), nil
}

// convertMessages maps the internal history to Claude's wire format. System
// turns become the top-level system field; consecutive tool-result turns fold
// into a single user message, which the Messages API requires.
func convertMessages(messages []domain.Message) (string, []message) {
	var system string
	converted := make([]message, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content

		case domain.RoleUser:
			converted = append(converted, message{
				Role:    "user",
				Content: []contentBlock{{Type: "text", Text: msg.Content}},
			})

		case domain.RoleAssistant:
			var blocks []contentBlock
			if msg.Content != "" {
				blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, contentBlock{
					Type:  "tool_use",
					ID:    call.ID,
					Name:  call.Name,
					Input: call.Arguments,
				})
			}
			converted = append(converted, message{Role: "assistant", Content: blocks})

		case domain.RoleTool:
			block := contentBlock{
				Type:      "tool_result",
				ToolUseID: msg.ToolCallID,
				Content:   msg.Content,
			}
			if last := len(converted) - 1; last >= 0 &&
				converted[last].Role == "user" &&
				len(converted[last].Content) > 0 &&
				converted[last].Content[0].Type == "tool_result" {
				converted[last].Content = append(converted[last].Content, block)
			} else {
				converted = append(converted, message{Role: "user", Content: []contentBlock{block}})
			}
		}
	}

	return system, converted
}

func convertTools(tools []domain.ToolSpec) []toolDef {
	defs := make([]toolDef, 0, len(tools))
	for _, spec := range tools {
		defs = append(defs, toolDef{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}
	return defs
}

func normalize(result response) *domain.ModelResponse {
	normalized := &domain.ModelResponse{}
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			if normalized.Text == "" {
				normalized.Text = block.Text
			}
		case "tool_use":
			normalized.ToolCalls = append(normalized.ToolCalls, domain.ToolCallRequest{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
			})
		}
	}
	return normalized
}
