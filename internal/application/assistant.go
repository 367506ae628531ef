package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"home-ai/internal/domain"
)

const (
	ModeText  = "text"
	ModeAudio = "audio"
)

// ErrMissingInput reports a request without the input its mode requires.
var ErrMissingInput = errors.New("missing input for requested mode")

// ChatInput is one transport-level request: plain text, or audio to be
// transcribed first.
type ChatInput struct {
	Text  string
	Audio []byte
	Mode  string
}

// ChatReply is what the transport layer serializes back to the caller.
type ChatReply struct {
	RequestID string
	Text      string
	Audio     []byte
	Commands  []domain.ExecutedCommand
}

// Assistant handles one request end to end: transcription when the input is
// audio, the conversation itself, synthesis of the spoken reply, request
// logging, and the optional notification when device state changed.
type Assistant struct {
	stt          SpeechToText
	tts          TextToSpeech
	orchestrator *Orchestrator
	store        RequestStore
	notifier     Notifier
	logger       *slog.Logger
}

func NewAssistant(
	stt SpeechToText,
	tts TextToSpeech,
	orchestrator *Orchestrator,
	store RequestStore,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		stt:          stt,
		tts:          tts,
		orchestrator: orchestrator,
		store:        store,
		notifier:     notifier,
		logger:       logger,
	}
}

func (a *Assistant) Handle(ctx context.Context, input ChatInput) (*ChatReply, error) {
	start := time.Now()
	requestID := uuid.NewString()

	mode := input.Mode
	if mode == "" {
		mode = ModeText
	}

	inputText := input.Text
	switch mode {
	case ModeAudio:
		if len(input.Audio) == 0 {
			return nil, fmt.Errorf("%w: audio", ErrMissingInput)
		}
		text, err := a.stt.Transcribe(ctx, input.Audio)
		if err != nil {
			return nil, fmt.Errorf("transcribing: %w", err)
		}
		inputText = text
		a.logger.Info("transcribed audio", "requestID", requestID, "text", inputText)
	default:
		if inputText == "" {
			return nil, fmt.Errorf("%w: text", ErrMissingInput)
		}
	}

	outcome, err := a.orchestrator.Converse(ctx, inputText, nil)
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{
		RequestID: requestID,
		Text:      outcome.Text,
		Commands:  outcome.Commands,
	}

	if mode == ModeAudio {
		audio, err := a.tts.Synthesize(ctx, outcome.Text)
		if err != nil {
			// A lost spoken reply is not worth failing the whole request.
			a.logger.Error("synthesizing reply", "requestID", requestID, "error", err)
		} else {
			reply.Audio = audio
		}
	}

	if len(outcome.Commands) > 0 {
		if err := a.notifier.Notify(ctx, commandSummary(outcome.Commands)); err != nil {
			a.logger.Error("notifying", "requestID", requestID, "error", err)
		}
	}

	record := RequestRecord{
		RequestID:  requestID,
		CreatedAt:  start,
		InputType:  mode,
		InputText:  inputText,
		OutputText: outcome.Text,
		Commands:   outcome.Commands,
		Duration:   time.Since(start),
	}
	if err := a.store.LogRequest(ctx, record); err != nil {
		a.logger.Error("logging request", "requestID", requestID, "error", err)
	}

	return reply, nil
}

func commandSummary(commands []domain.ExecutedCommand) string {
	summary := fmt.Sprintf("%d device command(s) executed:", len(commands))
	for _, cmd := range commands {
		status := "ok"
		if !cmd.Result.Success {
			status = "failed"
		}
		summary += fmt.Sprintf("\n- %s %s (%s)", cmd.Command.Device, cmd.Command.Action, status)
	}
	return summary
}
