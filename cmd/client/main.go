package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"home-ai/internal/infra/audio"
)

type chatRequest struct {
	Text  string `json:"text,omitempty"`
	Audio string `json:"audio,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type chatResponse struct {
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
	Audio     string `json:"audio,omitempty"`
	Commands  []struct {
		Command struct {
			Device string `json:"device"`
			Action string `json:"action"`
		} `json:"command"`
		Result struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"result"`
	} `json:"commands_executed"`
	Error string `json:"error,omitempty"`
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "assistant server URL")
	text := flag.String("text", "", "send a text message instead of recording")
	audioFile := flag.String("audio-file", "", "send a pre-recorded audio file")
	mic := flag.Bool("mic", false, "record from the microphone")
	sampleRate := flag.Int("sample-rate", 16000, "microphone sample rate")
	out := flag.String("out", "reply.mp3", "where to save the spoken reply, if any")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req, err := buildRequest(ctx, *text, *audioFile, *mic, *sampleRate, logger)
	if err != nil {
		logger.Error("preparing request", "error", err)
		os.Exit(1)
	}

	reply, err := send(ctx, *serverURL, req)
	if err != nil {
		logger.Error("sending request", "error", err)
		os.Exit(1)
	}

	fmt.Println(reply.Text)
	for _, cmd := range reply.Commands {
		status := "ok"
		if !cmd.Result.Success {
			status = "failed"
		}
		fmt.Printf("  %s %s: %s (%s)\n", cmd.Command.Device, cmd.Command.Action, cmd.Result.Message, status)
	}

	if reply.Audio != "" {
		data, err := base64.StdEncoding.DecodeString(reply.Audio)
		if err != nil {
			logger.Error("decoding reply audio", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			logger.Error("saving reply audio", "error", err)
			os.Exit(1)
		}
		logger.Info("saved spoken reply", "path", *out, "bytes", len(data))
	}
}

func buildRequest(ctx context.Context, text, audioFile string, mic bool, sampleRate int, logger *slog.Logger) (chatRequest, error) {
	if text != "" {
		return chatRequest{Text: text, Mode: "text"}, nil
	}

	var recorder audio.Recorder
	switch {
	case audioFile != "":
		recorder = audio.NewFileRecorder(audioFile)
	case mic:
		recorder = audio.NewMicrophone(sampleRate, logger)
	default:
		return chatRequest{}, fmt.Errorf("nothing to send: pass --text, --audio-file, or --mic")
	}

	data, err := recorder.Record(ctx)
	if err != nil {
		return chatRequest{}, err
	}
	return chatRequest{
		Audio: base64.StdEncoding.EncodeToString(data),
		Mode:  "audio",
	}, nil
}

func send(ctx context.Context, serverURL string, req chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling server: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var reply chatResponse
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if reply.Error != "" {
			return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, reply.Error)
		}
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}
	return &reply, nil
}
