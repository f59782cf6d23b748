package handlers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/audio"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 << 10,
	WriteBufferSize: 64 << 10,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamMessage is the client-to-server WebSocket frame.
type streamMessage struct {
	Type       string `json:"type"` // "audio", "reset", "stats"
	Data       string `json:"data,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
}

// streamReply is the server-to-client frame.
type streamReply struct {
	Type     string                 `json:"type"` // "result", "stats", "ack", "error"
	StreamID string                 `json:"stream_id"`
	Result   *voice.SessionAnalysis `json:"result,omitempty"`
	Stats    interface{}            `json:"stats,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// handleStreamWS runs one live audio stream over a WebSocket. Audio frames
// arrive base64-encoded as 16-bit little-endian PCM; a result frame is pushed
// whenever the voice gate closes an utterance.
func (h *Handlers) handleStreamWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	streamID := c.Query("stream_id")
	if streamID == "" {
		streamID = uuid.NewString()
	}
	if userID := c.Query("user_id"); userID != "" {
		h.engine.BindStream(streamID, userID)
		defer h.engine.UnbindStream(streamID)
	}
	defer h.streams.Reset(streamID)

	h.logger.Info("stream opened", zap.String("stream_id", streamID))
	_ = conn.WriteJSON(streamReply{Type: "ack", StreamID: streamID})

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("stream read failed",
					zap.String("stream_id", streamID), zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "audio":
			raw, err := base64.StdEncoding.DecodeString(msg.Data)
			if err != nil {
				_ = conn.WriteJSON(streamReply{Type: "error", StreamID: streamID,
					Message: "invalid base64 audio"})
				continue
			}
			rate := msg.SampleRate
			if rate <= 0 {
				rate = 16000
			}
			chunk := audio.FromPCM16(raw, rate)
			result, err := h.streams.ProcessChunk(c.Request.Context(), streamID, chunk)
			if err != nil {
				_ = conn.WriteJSON(streamReply{Type: "error", StreamID: streamID,
					Message: err.Error()})
				continue
			}
			if result != nil {
				_ = conn.WriteJSON(streamReply{Type: "result", StreamID: streamID, Result: result})
			}
		case "reset":
			h.streams.Reset(streamID)
			_ = conn.WriteJSON(streamReply{Type: "ack", StreamID: streamID})
		case "stats":
			stats, err := h.streams.GetStats(streamID)
			if err != nil {
				_ = conn.WriteJSON(streamReply{Type: "error", StreamID: streamID,
					Message: "stream not found"})
				continue
			}
			_ = conn.WriteJSON(streamReply{Type: "stats", StreamID: streamID, Stats: stats})
		default:
			_ = conn.WriteJSON(streamReply{Type: "error", StreamID: streamID,
				Message: "unknown message type"})
		}
	}
}
