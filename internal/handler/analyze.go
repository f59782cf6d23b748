package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/pkg/engine"
	"github.com/leon-madara/ResonaAI-sub003/pkg/response"
)

const maxAudioBytes = 32 << 20

// handleAnalyze accepts a multipart form: "audio" (WAV or raw 16-bit PCM),
// plus transcript, user_id, session_id and sample_rate fields. Runs the full
// session pipeline and caches the result under the session id.
func (h *Handlers) handleAnalyze(c *gin.Context) {
	file, _, err := c.Request.FormFile("audio")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "failed to read audio")
		return
	}
	if len(raw) > maxAudioBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, "audio exceeds size limit")
		return
	}

	req := &engine.SessionRequest{
		Audio:      raw,
		SampleRate: cast.ToInt(c.PostForm("sample_rate")),
		Transcript: c.PostForm("transcript"),
		UserID:     c.PostForm("user_id"),
		SessionID:  c.PostForm("session_id"),
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := h.engine.AnalyzeSession(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("session analysis failed",
			zap.String("session_id", req.SessionID), zap.Error(err))
		response.Error(c, err)
		return
	}

	if h.results != nil {
		if err := h.results.Set(c.Request.Context(), sessionKey(req.SessionID), result, 10*time.Minute); err != nil {
			h.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	response.Success(c, "analysis complete", result)
}

// handleGetSession re-serves a recent analysis without recomputation.
func (h *Handlers) handleGetSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if h.results == nil {
		response.Fail(c, http.StatusNotFound, "result caching disabled")
		return
	}
	value, found := h.results.Get(c.Request.Context(), sessionKey(sessionID))
	if !found {
		response.Fail(c, http.StatusNotFound, "no cached result for session")
		return
	}
	response.Success(c, "", value)
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
