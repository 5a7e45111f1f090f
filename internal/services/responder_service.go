package services

import (
	"context"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"
	"lifeline/internal/utils"
	"lifeline/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoWriter records a responder position in the geo index the alert
// fan-out searches.
type GeoWriter interface {
	GeoAddResponder(ctx context.Context, key string, userID string, latitude, longitude float64) error
}

type ResponderService interface {
	// UpdateLocation stores a responder's position in the profile and
	// the geo index. A geo index failure is logged, not surfaced: the
	// fan-out falls back to all responders anyway.
	UpdateLocation(ctx context.Context, userID primitive.ObjectID, latitude, longitude float64) error
	RegisterDevice(ctx context.Context, userID primitive.ObjectID, token models.DeviceToken) error
}

type responderService struct {
	userRepo  interfaces.UserRepository
	geoWriter GeoWriter
	logger    *logger.Logger
}

func NewResponderService(userRepo interfaces.UserRepository, geoWriter GeoWriter, log *logger.Logger) ResponderService {
	return &responderService{
		userRepo:  userRepo,
		geoWriter: geoWriter,
		logger:    log,
	}
}

func (s *responderService) UpdateLocation(ctx context.Context, userID primitive.ObjectID, latitude, longitude float64) error {
	if !utils.IsValidCoordinates(latitude, longitude) {
		return models.NewValidationError("location", "coordinates out of range")
	}

	location := models.Location{Latitude: latitude, Longitude: longitude}
	if err := s.userRepo.UpdateLastLocation(ctx, userID, location); err != nil {
		return err
	}

	if s.geoWriter != nil {
		if err := s.geoWriter.GeoAddResponder(ctx, responderGeoKey, userID.Hex(), latitude, longitude); err != nil {
			s.logger.WithUserID(userID).WithError(err).Warn("Failed to update responder geo index")
		}
	}

	return nil
}

func (s *responderService) RegisterDevice(ctx context.Context, userID primitive.ObjectID, token models.DeviceToken) error {
	if token.Platform != "fcm" && token.Platform != "apns" {
		return models.NewValidationError("platform", "must be fcm or apns")
	}
	if token.Token == "" {
		return models.NewValidationError("token", "is required")
	}

	return s.userRepo.AddDeviceToken(ctx, userID, token)
}
