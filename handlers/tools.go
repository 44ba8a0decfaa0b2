package handlers

import (
	"encoding/json"
	"net/http"

	"tablecall/models"
	"tablecall/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FlowHandler exposes the voice platform's tool and event endpoints plus the
// operator views over booking records.
type FlowHandler struct {
	Service booking.FlowService
	Logger  *zap.Logger
}

// NewFlowHandler builds a FlowHandler.
func NewFlowHandler(service booking.FlowService, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{Service: service, Logger: logger}
}

// HandleToolCalls dispatches tool invocations from the voice platform. The
// response is always 200: a live phone call has no way to recover from an
// HTTP failure, so errors become spoken fallback strings.
func (h *FlowHandler) HandleToolCalls(c *gin.Context) {
	var envelope models.ServerEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	results := make([]models.ToolCallResult, 0, len(envelope.Message.ToolCalls))
	for _, toolCall := range envelope.Message.ToolCalls {
		spoken := h.dispatchTool(c, toolCall)
		results = append(results, models.ToolCallResult{
			ToolCallID: toolCall.ID,
			Result:     spoken,
		})
	}

	c.JSON(http.StatusOK, models.ToolCallResponse{Results: results})
}

func (h *FlowHandler) dispatchTool(c *gin.Context, toolCall models.ToolCall) string {
	h.Logger.Info("Tool call received",
		zap.String("tool", toolCall.Function.Name),
		zap.String("toolCallId", toolCall.ID))

	switch toolCall.Function.Name {
	case "search_restaurants":
		var args models.SearchToolArgs
		if err := json.Unmarshal(toolCall.Function.Arguments, &args); err != nil {
			h.Logger.Warn("Bad search_restaurants arguments", zap.Error(err))
			return "Sorry, I didn't catch the search details. Could you repeat them?"
		}
		result, err := h.Service.SearchRestaurants(c.Request.Context(), booking.SearchInput{
			Query:     args.Query,
			Location:  args.Location,
			Date:      args.Date,
			Time:      args.Time,
			PartySize: args.PartySize,
		})
		if err != nil {
			return "Sorry, the restaurant search isn't available right now. Please try again in a moment."
		}
		return result.Spoken

	case "initiate_booking":
		var args models.BookingToolArgs
		if err := json.Unmarshal(toolCall.Function.Arguments, &args); err != nil {
			h.Logger.Warn("Bad initiate_booking arguments", zap.Error(err))
			return "Sorry, I didn't catch the booking details. Could you repeat them?"
		}
		result, err := h.Service.InitiateBooking(c.Request.Context(), booking.BookingInput{
			RestaurantName:    args.RestaurantName,
			RestaurantPhone:   args.RestaurantPhone,
			RestaurantAddress: args.RestaurantAddress,
			Date:              args.Date,
			Time:              args.Time,
			PartySize:         args.PartySize,
			CustomerName:      args.CustomerName,
		})
		if result != nil {
			// A spoken apology accompanies a failed outbound call.
			return result.Spoken
		}
		if err != nil {
			h.Logger.Warn("initiate_booking failed", zap.Error(err))
		}
		return "Sorry, I couldn't start that booking. Please try again."

	default:
		h.Logger.Warn("Unknown tool requested", zap.String("tool", toolCall.Function.Name))
		return "Unknown tool: " + toolCall.Function.Name
	}
}
