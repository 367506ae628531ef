package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"home-ai/internal/domain"
	"home-ai/internal/tools"
)

// ErrTurnLimit reports that the model kept requesting tool calls past the
// configured turn bound. Callers can tell "model is stuck" apart from
// "provider is down" with errors.Is.
var ErrTurnLimit = errors.New("model turn limit exceeded")

// DefaultMaxTurns bounds the tool-call loop when no limit is configured.
const DefaultMaxTurns = 10

const systemPrompt = `You are a smart home AI assistant. You understand the user's requests and control the home's devices through the tools available to you.

Available devices:
- Lights (living_room, bedroom, kitchen): turn on, turn off, set brightness
- Alarm: set, cancel, list alarms
- Thermostat: set temperature, change mode

When a tool call fails, tell the user what went wrong instead of pretending it worked. Always answer in a friendly, natural tone.`

// Orchestrator drives the multi-turn exchange with the model provider: call
// the model with the history and tool catalog, execute any requested tool
// calls through the dispatcher, feed the results back, and repeat until the
// model answers in plain text.
type Orchestrator struct {
	provider   ModelProvider
	dispatcher *tools.Dispatcher
	catalog    []domain.ToolSpec
	maxTurns   int
	logger     *slog.Logger
}

func NewOrchestrator(provider ModelProvider, dispatcher *tools.Dispatcher, maxTurns int, logger *slog.Logger) *Orchestrator {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Orchestrator{
		provider:   provider,
		dispatcher: dispatcher,
		catalog:    dispatcher.Catalog(),
		maxTurns:   maxTurns,
		logger:     logger,
	}
}

// Converse runs one conversation to completion. History carries any prior
// turns of the same conversation; it is never mutated.
//
// Dispatch-level failures are folded into tool-result messages and the loop
// continues. A provider error or an exceeded turn bound terminates the whole
// conversation: no partial outcome is returned.
func (o *Orchestrator) Converse(ctx context.Context, text string, history []domain.Message) (*domain.Outcome, error) {
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: text})

	var executed []domain.ExecutedCommand

	for turn := 0; turn < o.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		response, err := o.provider.Complete(ctx, messages, o.catalog)
		if err != nil {
			return nil, fmt.Errorf("model call: %w", err)
		}

		if !response.HasToolCalls() {
			o.logger.Info("conversation complete",
				"turns", turn+1,
				"commands", len(executed),
			)
			return &domain.Outcome{Text: response.Text, Commands: executed}, nil
		}

		// The raw tool calls must land in the history before any result so
		// the provider can correlate the tool-result messages by id.
		messages = append(messages, domain.Message{
			Role:      domain.RoleAssistant,
			Content:   response.Text,
			ToolCalls: response.ToolCalls,
		})

		for _, call := range response.ToolCalls {
			envelope := o.dispatcher.Dispatch(call.Name, call.Arguments)
			executed = append(executed, domain.ExecutedCommand{
				Command: tools.CommandFromCall(call),
				Result:  envelope,
			})

			content, err := json.Marshal(envelope)
			if err != nil {
				return nil, fmt.Errorf("encoding tool result: %w", err)
			}
			messages = append(messages, domain.Message{
				Role:       domain.RoleTool,
				Content:    string(content),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})

			o.logger.Info("executed tool call",
				"tool", call.Name,
				"id", call.ID,
				"success", envelope.Success,
			)
		}
	}

	return nil, fmt.Errorf("%w after %d turns", ErrTurnLimit, o.maxTurns)
}
