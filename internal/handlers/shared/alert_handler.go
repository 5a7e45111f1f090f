package handlers

import (
	"errors"
	"net/http"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/services"
	"lifeline/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertHandler struct {
	alertService services.AlertService
}

func NewAlertHandler(alertService services.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// CreateAlert raises a new emergency alert for the authenticated user
func (h *AlertHandler) CreateAlert(c *gin.Context) {
	var request models.CreateAlertRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	alert, err := h.alertService.CreateAlert(c.Request.Context(), &request, userID)
	if err != nil {
		respondAlertError(c, err, "ALERT_CREATE_FAILED", "Failed to create alert")
		return
	}

	utils.CreatedResponse(c, "Alert created successfully", alert)
}

// GetAlert retrieves a single alert by id
func (h *AlertHandler) GetAlert(c *gin.Context) {
	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid alert ID")
		return
	}

	alert, err := h.alertService.GetAlert(c.Request.Context(), alertID)
	if err != nil {
		respondAlertError(c, err, "ALERT_FETCH_FAILED", "Failed to get alert")
		return
	}

	utils.SuccessResponse(c, "Alert retrieved successfully", alert)
}

// ListAlerts returns a filtered, paginated page of alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	filter, err := buildAlertFilter(c)
	if err != nil {
		utils.BadRequestResponse(c, err.Error())
		return
	}

	params := utils.GetPaginationParams(c)
	alerts, total, err := h.alertService.ListAlerts(c.Request.Context(), filter, params)
	if err != nil {
		respondAlertError(c, err, "ALERT_LIST_FAILED", "Failed to list alerts")
		return
	}

	meta := &utils.Meta{
		Pagination: utils.NewPaginationMeta(params, total),
	}
	utils.SuccessResponseWithMeta(c, "Alerts retrieved successfully", alerts, meta)
}

// GetMyAlerts returns the caller's most recent alerts
func (h *AlertHandler) GetMyAlerts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	alerts, err := h.alertService.GetUserAlerts(c.Request.Context(), userID)
	if err != nil {
		respondAlertError(c, err, "ALERT_LIST_FAILED", "Failed to list alerts")
		return
	}

	utils.SuccessResponse(c, "Alerts retrieved successfully", alerts)
}

// UpdateAlertStatus moves an alert through its lifecycle and/or
// assigns a responder
func (h *AlertHandler) UpdateAlertStatus(c *gin.Context) {
	alertID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid alert ID")
		return
	}

	var request models.UpdateAlertStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	alert, err := h.alertService.UpdateAlertStatus(c.Request.Context(), alertID, &request)
	if err != nil {
		respondAlertError(c, err, "ALERT_UPDATE_FAILED", "Failed to update alert")
		return
	}

	utils.SuccessResponse(c, "Alert updated successfully", alert)
}

// GetAlertStats returns per-status alert counts
func (h *AlertHandler) GetAlertStats(c *gin.Context) {
	stats, err := h.alertService.GetAlertStats(c.Request.Context())
	if err != nil {
		respondAlertError(c, err, "ALERT_STATS_FAILED", "Failed to get alert stats")
		return
	}

	utils.SuccessResponse(c, "Alert stats retrieved successfully", stats)
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return primitive.NilObjectID, false
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		utils.BadRequestResponse(c, "Invalid user ID")
		return primitive.NilObjectID, false
	}
	return userObjectID, true
}

func buildAlertFilter(c *gin.Context) (*models.AlertFilter, error) {
	filter := &models.AlertFilter{
		Search: c.Query("search"),
	}

	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseAlertStatus(raw)
		if !ok {
			return nil, errors.New("invalid status filter")
		}
		filter.Status = &status
	}
	if raw := c.Query("type"); raw != "" {
		emergencyType, ok := models.ParseEmergencyType(raw)
		if !ok {
			return nil, errors.New("invalid type filter")
		}
		filter.EmergencyType = &emergencyType
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("invalid from filter, expected RFC3339")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.New("invalid to filter, expected RFC3339")
		}
		filter.To = &to
	}

	return filter, nil
}

// respondAlertError maps service error types onto HTTP statuses.
func respondAlertError(c *gin.Context, err error, fallbackCode, fallbackMessage string) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		utils.ValidationErrorResponse(c, map[string]string{validationErr.Field: validationErr.Message})
		return
	}

	var notFoundErr *models.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.NotFoundResponse(c, notFoundErr.Resource)
		return
	}

	var transitionErr *models.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		utils.ErrorResponse(c, http.StatusConflict, models.CodeInvalidTransition, transitionErr.Error())
		return
	}

	var authErr *models.AuthError
	if errors.As(err, &authErr) {
		utils.ErrorResponse(c, http.StatusUnauthorized, models.CodeAuth, authErr.Message)
		return
	}

	var authzErr *models.AuthzError
	if errors.As(err, &authzErr) {
		utils.ErrorResponse(c, http.StatusForbidden, models.CodeAuthz, authzErr.Message)
		return
	}

	utils.ErrorResponse(c, http.StatusInternalServerError, fallbackCode, fallbackMessage+": "+err.Error())
}
