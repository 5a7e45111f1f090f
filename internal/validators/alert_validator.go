package validators

import (
	"strings"

	"lifeline/internal/models"
	"lifeline/internal/utils"
)

// ValidateCreateAlert checks a submission against the closed sets and
// required fields. Returns a ValidationError naming the first failing
// field.
func ValidateCreateAlert(req *models.CreateAlertRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return models.NewValidationError("", err.Error())
	}

	if _, ok := models.ParseEmergencyType(req.EmergencyType); !ok {
		return models.NewValidationError("emergency_type",
			"must be one of: medical, fire, police, accident, other")
	}

	if strings.TrimSpace(req.Description) == "" {
		return models.NewValidationError("description", "is required")
	}

	if req.Location.Latitude == nil || req.Location.Longitude == nil {
		return models.NewValidationError("location", "latitude and longitude are required")
	}

	if !utils.IsValidCoordinates(*req.Location.Latitude, *req.Location.Longitude) {
		return models.NewValidationError("location", "coordinates out of range")
	}

	if req.Severity != "" {
		if _, ok := models.ParseAlertSeverity(req.Severity); !ok {
			return models.NewValidationError("severity",
				"must be one of: low, medium, high, critical")
		}
	}

	return nil
}

// ValidateChatRequest checks the public chatbot body.
func ValidateChatRequest(req *models.ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return models.NewValidationError("message", "is required")
	}
	return nil
}
