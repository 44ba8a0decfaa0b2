package handlers

import (
	"net/http"

	"tablecall/models"
	"tablecall/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleEvents receives all call lifecycle events from the voice platform.
// Only end-of-call-report progresses the state machine; other event types
// are logged for operator visibility. The endpoint always acknowledges with
// 200 so the platform does not retry into a live call.
func (h *FlowHandler) HandleEvents(c *gin.Context) {
	var envelope models.ServerEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	msg := envelope.Message
	h.Logger.Info("Platform event received",
		zap.String("type", msg.Type),
		zap.String("callId", msg.Call.ID))

	switch msg.Type {
	case "end-of-call-report":
		err := h.Service.HandleCallEnded(c.Request.Context(), booking.CallEndedEvent{
			CallID:      msg.Call.ID,
			EndedReason: msg.Call.EndedReason,
			Transcript:  msg.Transcript,
			Summary:     msg.Summary,
		})
		if err != nil {
			if booking.IsNotFound(err) {
				// Fail closed: an unknown call id never mutates state.
				h.Logger.Warn("End-of-call report for unknown call",
					zap.String("callId", msg.Call.ID))
				c.JSON(http.StatusOK, gin.H{"status": "ignored"})
				return
			}
			h.Logger.Error("Failed to process end-of-call report",
				zap.String("callId", msg.Call.ID),
				zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"status": "error"})
			return
		}

	case "status-update":
		h.Logger.Info("Call status update",
			zap.String("callId", msg.Call.ID))

	case "transcript":
		h.Logger.Debug("Live transcript fragment",
			zap.String("callId", msg.Call.ID),
			zap.String("role", msg.Role),
			zap.String("transcript", msg.Transcript))
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
