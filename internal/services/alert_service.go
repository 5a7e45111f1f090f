package services

import (
	"context"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"
	"lifeline/internal/utils"
	"lifeline/internal/validators"
	"lifeline/pkg/geo"
	"lifeline/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertService interface {
	// CreateAlert persists the alert before any notification work is
	// attempted, then triggers the fan-out in the background.
	CreateAlert(ctx context.Context, req *models.CreateAlertRequest, reporterID primitive.ObjectID) (*models.Alert, error)
	GetAlert(ctx context.Context, id primitive.ObjectID) (*models.Alert, error)
	ListAlerts(ctx context.Context, filter *models.AlertFilter, params *utils.PaginationParams) ([]*models.Alert, int64, error)
	GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]*models.Alert, error)
	UpdateAlertStatus(ctx context.Context, id primitive.ObjectID, req *models.UpdateAlertStatusRequest) (*models.Alert, error)
	GetAlertStats(ctx context.Context) (*models.AlertStats, error)
}

type alertService struct {
	alertRepo interfaces.AlertRepository
	userRepo  interfaces.UserRepository
	notifier  NotificationService
	geocoder  geo.Geocoder
	logger    *logger.Logger
}

func NewAlertService(
	alertRepo interfaces.AlertRepository,
	userRepo interfaces.UserRepository,
	notifier NotificationService,
	geocoder geo.Geocoder,
	log *logger.Logger,
) AlertService {
	return &alertService{
		alertRepo: alertRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		geocoder:  geocoder,
		logger:    log,
	}
}

func (s *alertService) CreateAlert(ctx context.Context, req *models.CreateAlertRequest, reporterID primitive.ObjectID) (*models.Alert, error) {
	if err := validators.ValidateCreateAlert(req); err != nil {
		return nil, err
	}

	reporter, err := s.userRepo.GetByID(ctx, reporterID)
	if err != nil {
		return nil, err
	}

	severity := models.SeverityMedium
	if req.Severity != "" {
		severity, _ = models.ParseAlertSeverity(req.Severity)
	}
	emergencyType, _ := models.ParseEmergencyType(req.EmergencyType)

	alert := &models.Alert{
		UserID:        reporter.ID,
		UserName:      reporter.Name,
		UserPhone:     reporter.Phone,
		EmergencyType: emergencyType,
		Description:   req.Description,
		Location: models.Location{
			Latitude:  *req.Location.Latitude,
			Longitude: *req.Location.Longitude,
			Address:   req.Location.Address,
		},
		Severity: severity,
		Status:   models.AlertStatusActive,
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.LogAlertEvent(alert.ID, "created", map[string]interface{}{
		"emergency_type": alert.EmergencyType,
		"severity":       alert.Severity,
	})

	// Fan-out and address backfill run on their own schedule; the
	// caller gets the alert back as soon as it is durable.
	if s.notifier != nil {
		s.notifier.DispatchAlertNotifications(alert)
	}
	if s.geocoder != nil && alert.Location.Address == "" {
		go s.backfillAddress(alert)
	}

	return alert, nil
}

func (s *alertService) backfillAddress(alert *models.Alert) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	address, err := s.geocoder.ReverseGeocode(ctx, alert.Location.Latitude, alert.Location.Longitude)
	if err != nil {
		s.logger.WithAlertID(alert.ID).WithError(err).Warn("Failed to reverse geocode alert location")
		return
	}

	if err := s.alertRepo.SetAddress(ctx, alert.ID, address); err != nil {
		s.logger.WithAlertID(alert.ID).WithError(err).Warn("Failed to store geocoded address")
	}
}

func (s *alertService) GetAlert(ctx context.Context, id primitive.ObjectID) (*models.Alert, error) {
	return s.alertRepo.GetByID(ctx, id)
}

func (s *alertService) ListAlerts(ctx context.Context, filter *models.AlertFilter, params *utils.PaginationParams) ([]*models.Alert, int64, error) {
	return s.alertRepo.Find(ctx, filter, params)
}

func (s *alertService) GetUserAlerts(ctx context.Context, userID primitive.ObjectID) ([]*models.Alert, error) {
	return s.alertRepo.GetByUserID(ctx, userID, utils.MyAlertsLimit)
}

func (s *alertService) UpdateAlertStatus(ctx context.Context, id primitive.ObjectID, req *models.UpdateAlertStatusRequest) (*models.Alert, error) {
	var assignee *primitive.ObjectID
	if req.AssignedTo != "" {
		oid, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return nil, models.NewValidationError("assigned_to", "must be a valid id")
		}
		assignee = &oid
	}

	// Assignment alone does not participate in the state machine.
	if req.Status == "" {
		if assignee == nil {
			return nil, models.NewValidationError("status", "status or assigned_to is required")
		}
		return s.alertRepo.SetAssignee(ctx, id, *assignee)
	}

	target, ok := models.ParseAlertStatus(req.Status)
	if !ok {
		return nil, models.NewValidationError("status",
			"must be one of: active, responded, resolved, false-alarm")
	}

	current, err := s.alertRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Status == target {
		// Idempotent no-op; still honor a new assignment.
		if assignee != nil {
			return s.alertRepo.SetAssignee(ctx, id, *assignee)
		}
		return current, nil
	}

	if !models.CanTransition(current.Status, target) {
		return nil, &models.InvalidTransitionError{From: current.Status, To: target}
	}

	updated, err := s.alertRepo.UpdateStatus(ctx, id, current.Status, target, assignee)
	if err != nil {
		return nil, err
	}

	s.logger.LogAlertEvent(id, "status_changed", map[string]interface{}{
		"from": current.Status,
		"to":   target,
	})

	return updated, nil
}

func (s *alertService) GetAlertStats(ctx context.Context) (*models.AlertStats, error) {
	return s.alertRepo.CountByStatus(ctx)
}
