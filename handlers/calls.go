package handlers

import (
	"net/http"

	"tablecall/services/vapi"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallHandler exposes the manual outbound-call trigger for operators.
type CallHandler struct {
	Dialer       vapi.Dialer
	DefaultPhone string
	Logger       *zap.Logger
}

// NewCallHandler builds a CallHandler.
func NewCallHandler(dialer vapi.Dialer, defaultPhone string, logger *zap.Logger) *CallHandler {
	return &CallHandler{Dialer: dialer, DefaultPhone: defaultPhone, Logger: logger}
}

type triggerCallInput struct {
	Phone          string            `json:"phone"`
	Name           string            `json:"name"`
	Account        string            `json:"account"`
	ExtraVariables map[string]string `json:"extra_variables"`
}

// TriggerCall places a bare outbound call with optional variable overrides.
func (h *CallHandler) TriggerCall(c *gin.Context) {
	var input triggerCallInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	phone := input.Phone
	if phone == "" {
		phone = h.DefaultPhone
	}
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no phone number provided or configured"})
		return
	}

	variables := map[string]string{}
	for k, v := range input.ExtraVariables {
		variables[k] = v
	}
	if input.Name != "" {
		variables["customerName"] = input.Name
	}
	if input.Account != "" {
		variables["accountId"] = input.Account
	}
	if len(variables) == 0 {
		variables = nil
	}

	call, err := h.Dialer.PlaceCall(c.Request.Context(), vapi.CallRequest{
		CustomerPhone: phone,
		Variables:     variables,
	})
	if err != nil {
		h.Logger.Warn("Manual call trigger failed", zap.String("phone", phone), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to place call", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "call_initiated",
		"call_id":     call.ID,
		"vapi_status": call.Status,
		"to":          phone,
	})
}
