package handlers

import (
	"net/http"

	"tablecall/services/booking"
	"tablecall/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListBookings dumps all booking records. Unlike the live-call endpoints,
// operator endpoints propagate plain HTTP error statuses.
func (h *FlowHandler) ListBookings(c *gin.Context) {
	bookings, err := h.Service.ListBookings(c.Request.Context())
	if err != nil {
		h.Logger.Error("Failed to list bookings", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list bookings", err.Error())
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking returns a single booking record by id.
func (h *FlowHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	record, err := h.Service.GetBooking(c.Request.Context(), id)
	if err != nil {
		if booking.IsNotFound(err) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", id)
			return
		}
		h.Logger.Error("Failed to fetch booking", zap.String("id", id), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, record)
}
