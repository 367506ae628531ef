// Package gemini binds the Google Gemini generateContent API as a
// ModelProvider using function declarations.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"home-ai/internal/domain"
	"home-ai/internal/infra"
)

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithURL(apiKey, model, "https://generativelanguage.googleapis.com/v1beta")
}

func NewClientWithURL(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// part carries exactly one of its fields set.
type part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`
}

type functionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type functionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type functionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *schema `json:"parameters,omitempty"`
}

// schema is the OpenAPI subset Gemini accepts: type names are uppercase and
// keyword validators (minimum, maximum, pattern) are not supported, so they
// are dropped during conversion and left to the dispatcher to enforce.
type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type toolDecl struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type request struct {
	Contents          []content        `json:"contents"`
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Tools             []toolDecl       `json:"tools,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *Client) Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (*domain.ModelResponse, error) {
	reqBody := request{
		Contents:          convertMessages(messages),
		SystemInstruction: systemInstruction(messages),
		GenerationConfig: generationConfig{
			MaxOutputTokens: 1024,
			Temperature:     0.1,
		},
	}
	if len(tools) > 0 {
		reqBody.Tools = []toolDecl{{FunctionDeclarations: convertTools(tools)}}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("gemini API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(respBody))
		}

		if err = json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	if result.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}

	return normalize(result.Candidates[0].Content), nil
}

func systemInstruction(messages []domain.Message) *content {
	var parts []part
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem && msg.Content != "" {
			parts = append(parts, part{Text: msg.Content})
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &content{Parts: parts}
}

func convertMessages(messages []domain.Message) []content {
	converted := make([]content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			// Carried in systemInstruction.
		case domain.RoleUser:
			converted = append(converted, content{
				Role:  "user",
				Parts: []part{{Text: msg.Content}},
			})
		case domain.RoleAssistant:
			out := content{Role: "model"}
			if msg.Content != "" {
				out.Parts = append(out.Parts, part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				out.Parts = append(out.Parts, part{FunctionCall: &functionCall{
					Name: call.Name,
					Args: call.Arguments,
				}})
			}
			converted = append(converted, out)
		case domain.RoleTool:
			// Gemini correlates function responses by name, not id. The raw
			// result JSON is wrapped since the API wants an object.
			var payload map[string]any
			if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
				payload = map[string]any{"output": msg.Content}
			}
			resp := part{FunctionResponse: &functionResponse{
				Name:     msg.ToolName,
				Response: payload,
			}}
			// Consecutive results fold into one user turn.
			if n := len(converted); n > 0 && converted[n-1].Role == "user" && converted[n-1].Parts[0].FunctionResponse != nil {
				converted[n-1].Parts = append(converted[n-1].Parts, resp)
			} else {
				converted = append(converted, content{Role: "user", Parts: []part{resp}})
			}
		}
	}
	return converted
}

func convertTools(specs []domain.ToolSpec) []functionDeclaration {
	converted := make([]functionDeclaration, 0, len(specs))
	for _, spec := range specs {
		converted = append(converted, functionDeclaration{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  convertSchema(spec.InputSchema),
		})
	}
	return converted
}

func convertSchema(in domain.Schema) *schema {
	out := &schema{
		Type:     strings.ToUpper(in.Type),
		Required: in.Required,
	}
	if len(in.Properties) > 0 {
		out.Properties = make(map[string]schema, len(in.Properties))
		for name, prop := range in.Properties {
			out.Properties[name] = schema{
				Type:        strings.ToUpper(prop.Type),
				Description: prop.Description,
				Enum:        prop.Enum,
			}
		}
	}
	return out
}

func normalize(candidate content) *domain.ModelResponse {
	normalized := &domain.ModelResponse{}
	var texts []string
	for _, p := range candidate.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		if p.FunctionCall != nil {
			// No call ids on this API; the function name serves as the
			// correlation handle downstream.
			normalized.ToolCalls = append(normalized.ToolCalls, domain.ToolCallRequest{
				ID:        p.FunctionCall.Name,
				Name:      p.FunctionCall.Name,
				Arguments: p.FunctionCall.Args,
			})
		}
	}
	normalized.Text = strings.Join(texts, "\n")
	return normalized
}
