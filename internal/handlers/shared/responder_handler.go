package handlers

import (
	"lifeline/internal/models"
	"lifeline/internal/services"
	"lifeline/internal/utils"

	"github.com/gin-gonic/gin"
)

type ResponderHandler struct {
	responderService services.ResponderService
}

func NewResponderHandler(responderService services.ResponderService) *ResponderHandler {
	return &ResponderHandler{
		responderService: responderService,
	}
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateLocation records the caller's position for nearby-alert fan-out
func (h *ResponderHandler) UpdateLocation(c *gin.Context) {
	var request updateLocationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.responderService.UpdateLocation(c.Request.Context(), userID, *request.Latitude, *request.Longitude); err != nil {
		respondAlertError(c, err, "LOCATION_UPDATE_FAILED", "Failed to update location")
		return
	}

	utils.SuccessResponse(c, "Location updated successfully", nil)
}

// RegisterDevice stores a push token for the caller
func (h *ResponderHandler) RegisterDevice(c *gin.Context) {
	var token models.DeviceToken
	if err := c.ShouldBindJSON(&token); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.responderService.RegisterDevice(c.Request.Context(), userID, token); err != nil {
		respondAlertError(c, err, "DEVICE_REGISTER_FAILED", "Failed to register device")
		return
	}

	utils.CreatedResponse(c, "Device registered successfully", nil)
}
