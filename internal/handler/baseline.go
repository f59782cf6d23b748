package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leon-madara/ResonaAI-sub003/internal/models"
	"github.com/leon-madara/ResonaAI-sub003/pkg/response"
	"github.com/leon-madara/ResonaAI-sub003/pkg/voice"
)

// baselineRow is the API shape of one baseline record, with the stored
// statistics decoded.
type baselineRow struct {
	BaselineType string               `json:"baseline_type"`
	Value        models.BaselineValue `json:"value"`
	SessionCount int                  `json:"session_count"`
	Established  bool                 `json:"established"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// handleGetBaseline lists every baseline row for a user.
func (h *Handlers) handleGetBaseline(c *gin.Context) {
	userID := c.Param("user_id")
	rows, err := h.engine.GetBaselines(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("baseline load failed",
			zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	out := make([]baselineRow, 0, len(rows))
	for _, row := range rows {
		stat, err := row.Stat()
		if err != nil {
			h.logger.Warn("corrupt baseline value",
				zap.String("user_id", userID),
				zap.String("type", row.BaselineType), zap.Error(err))
			continue
		}
		out = append(out, baselineRow{
			BaselineType: row.BaselineType,
			Value:        stat,
			SessionCount: row.SessionCount,
			Established:  row.Established,
			UpdatedAt:    row.UpdatedAt,
		})
	}
	response.Success(c, "", gin.H{"user_id": userID, "baselines": out})
}

// handleUpdateBaseline merges posted session metrics into the user's
// baseline without running audio analysis.
func (h *Handlers) handleUpdateBaseline(c *gin.Context) {
	userID := c.Param("user_id")
	var metrics voice.SessionMetrics
	if err := c.ShouldBindJSON(&metrics); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid session metrics payload")
		return
	}
	rows, err := h.engine.UpdateBaseline(c.Request.Context(), userID, &metrics)
	if err != nil {
		h.logger.Error("baseline update failed",
			zap.String("user_id", userID), zap.Error(err))
		response.Error(c, err)
		return
	}
	response.Success(c, "baseline updated", gin.H{
		"user_id":       userID,
		"session_count": rows[0].SessionCount,
		"established":   rows[0].Established,
	})
}
