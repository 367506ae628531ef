package server

import (
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"home-ai/internal/application"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMsgSize = 10 << 20 // audio frames are large
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is one inbound frame: text or base64 audio content.
type wsRequest struct {
	Type      string `json:"type"`
	Content   string `json:"content"`
	RequestID string `json:"request_id,omitempty"`
}

type wsResponse struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Audio     string `json:"audio,omitempty"`
	Commands  any    `json:"commands,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id"`
}

// wsConn serializes writes: the ping loop and the frame loop share one
// connection, and the websocket library allows a single writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	wc := &wsConn{conn: conn}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-done:
				return
			case <-ping.C:
				if err := wc.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket closed unexpectedly", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		requestID := req.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}

		resp := s.handleFrame(r, req, requestID)
		if err := wc.writeJSON(resp); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// handleFrame runs one conversation for one frame. Errors become error frames
// on the socket instead of tearing the connection down.
func (s *Server) handleFrame(r *http.Request, req wsRequest, requestID string) wsResponse {
	input := application.ChatInput{Mode: application.ModeText, Text: req.Content}
	if req.Type == application.ModeAudio {
		audio, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			return wsResponse{Type: "error", Message: "invalid base64 audio", RequestID: requestID}
		}
		input = application.ChatInput{Mode: application.ModeAudio, Audio: audio}
	}

	reply, err := s.assistant.Handle(r.Context(), input)
	if err != nil {
		s.logger.Error("websocket chat failed", "error", err, "request_id", requestID)
		return wsResponse{Type: "error", Message: err.Error(), RequestID: requestID}
	}

	resp := wsResponse{
		Type:      "response",
		Text:      reply.Text,
		Commands:  reply.Commands,
		RequestID: requestID,
	}
	if len(reply.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	return resp
}
