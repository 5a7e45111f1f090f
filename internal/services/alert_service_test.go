package services

import (
	"context"
	"errors"
	"testing"

	"lifeline/internal/models"
	"lifeline/internal/utils"
	"lifeline/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func float64Ptr(v float64) *float64 { return &v }

func newTestAlertService(alertRepo *mockAlertRepo, userRepo *mockUserRepo, notifier *mockNotifier) AlertService {
	return NewAlertService(alertRepo, userRepo, notifier, nil, logger.NewNopLogger())
}

func seedReporter(t *testing.T, userRepo *mockUserRepo) *models.User {
	t.Helper()
	user := &models.User{
		Name:  "Ada Reporter",
		Phone: "+15550001111",
		Email: "ada@example.com",
		Role:  models.UserRoleUser,
	}
	if err := userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed reporter: %v", err)
	}
	return user
}

func validCreateRequest() *models.CreateAlertRequest {
	return &models.CreateAlertRequest{
		EmergencyType: "medical",
		Description:   "Chest pain, difficulty breathing",
		Location: models.LocationInput{
			Latitude:  float64Ptr(40.7128),
			Longitude: float64Ptr(-74.0060),
		},
	}
}

func TestCreateAlert_DefaultsAndSnapshot(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	notifier := &mockNotifier{}
	svc := newTestAlertService(alertRepo, userRepo, notifier)
	reporter := seedReporter(t, userRepo)

	alert, err := svc.CreateAlert(context.Background(), validCreateRequest(), reporter.ID)
	if err != nil {
		t.Fatalf("CreateAlert() = %v, want nil", err)
	}

	if alert.Status != models.AlertStatusActive {
		t.Errorf("status = %q, want %q", alert.Status, models.AlertStatusActive)
	}
	if alert.Severity != models.SeverityMedium {
		t.Errorf("severity = %q, want default %q", alert.Severity, models.SeverityMedium)
	}
	if alert.UserName != reporter.Name || alert.UserPhone != reporter.Phone {
		t.Errorf("reporter snapshot = %q/%q, want %q/%q", alert.UserName, alert.UserPhone, reporter.Name, reporter.Phone)
	}
	if alert.ID.IsZero() {
		t.Error("alert should be persisted with an id")
	}
	if notifier.count() != 1 {
		t.Errorf("dispatched notifications = %d, want 1", notifier.count())
	}
}

func TestCreateAlert_ExplicitSeverity(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	reporter := seedReporter(t, userRepo)

	req := validCreateRequest()
	req.Severity = "critical"

	alert, err := svc.CreateAlert(context.Background(), req, reporter.ID)
	if err != nil {
		t.Fatalf("CreateAlert() = %v, want nil", err)
	}
	if alert.Severity != models.SeverityCritical {
		t.Errorf("severity = %q, want %q", alert.Severity, models.SeverityCritical)
	}
}

func TestCreateAlert_ValidationFailures(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	reporter := seedReporter(t, userRepo)

	tests := []struct {
		name   string
		mutate func(*models.CreateAlertRequest)
	}{
		{"unknown type", func(r *models.CreateAlertRequest) { r.EmergencyType = "flood" }},
		{"blank description", func(r *models.CreateAlertRequest) { r.Description = "   " }},
		{"missing latitude", func(r *models.CreateAlertRequest) { r.Location.Latitude = nil }},
		{"latitude out of range", func(r *models.CreateAlertRequest) { r.Location.Latitude = float64Ptr(91) }},
		{"longitude out of range", func(r *models.CreateAlertRequest) { r.Location.Longitude = float64Ptr(-181) }},
		{"unknown severity", func(r *models.CreateAlertRequest) { r.Severity = "urgent" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			_, err := svc.CreateAlert(context.Background(), req, reporter.ID)
			var validationErr *models.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("CreateAlert() = %v, want ValidationError", err)
			}
		})
	}
}

func TestCreateAlert_UnknownReporter(t *testing.T) {
	svc := newTestAlertService(newMockAlertRepo(), newMockUserRepo(), &mockNotifier{})

	_, err := svc.CreateAlert(context.Background(), validCreateRequest(), primitive.NewObjectID())
	var notFoundErr *models.NotFoundError
	if !errors.As(err, &notFoundErr) {
		t.Fatalf("CreateAlert() = %v, want NotFoundError", err)
	}
}

func TestCreateAlert_StoreFailureSkipsDispatch(t *testing.T) {
	alertRepo := newMockAlertRepo()
	alertRepo.failCreate = true
	userRepo := newMockUserRepo()
	notifier := &mockNotifier{}
	svc := newTestAlertService(alertRepo, userRepo, notifier)
	reporter := seedReporter(t, userRepo)

	_, err := svc.CreateAlert(context.Background(), validCreateRequest(), reporter.ID)
	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("CreateAlert() = %v, want StorageError", err)
	}
	if notifier.count() != 0 {
		t.Error("notifications must not be dispatched when the write fails")
	}
}

func seedAlert(t *testing.T, alertRepo *mockAlertRepo, userRepo *mockUserRepo, status models.AlertStatus) *models.Alert {
	t.Helper()
	reporter := seedReporter(t, userRepo)
	alert := &models.Alert{
		UserID:        reporter.ID,
		UserName:      reporter.Name,
		UserPhone:     reporter.Phone,
		EmergencyType: models.EmergencyTypeFire,
		Description:   "Kitchen fire",
		Location:      models.Location{Latitude: 40.0, Longitude: -74.0},
		Severity:      models.SeverityHigh,
		Status:        models.AlertStatusActive,
	}
	if err := alertRepo.Create(context.Background(), alert); err != nil {
		t.Fatalf("seed alert: %v", err)
	}
	if status != models.AlertStatusActive {
		alertRepo.alerts[alert.ID].Status = status
	}
	return alert
}

func TestUpdateAlertStatus_ValidTransition(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	updated, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "responded"})
	if err != nil {
		t.Fatalf("UpdateAlertStatus() = %v, want nil", err)
	}
	if updated.Status != models.AlertStatusResponded {
		t.Errorf("status = %q, want responded", updated.Status)
	}
	if updated.ResponseTime == nil {
		t.Error("response_time should be stamped on first move to responded")
	}
}

func TestUpdateAlertStatus_TimestampsSetOnce(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	responded, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "responded"})
	if err != nil {
		t.Fatalf("to responded: %v", err)
	}
	firstResponseTime := responded.ResponseTime
	if firstResponseTime == nil {
		t.Fatal("response_time should be stamped")
	}

	resolved, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "resolved"})
	if err != nil {
		t.Fatalf("to resolved: %v", err)
	}
	if resolved.ResolutionTime == nil {
		t.Fatal("resolution_time should be stamped")
	}
	if resolved.ResponseTime == nil || !resolved.ResponseTime.Equal(*firstResponseTime) {
		t.Error("response_time must not be re-stamped by later transitions")
	}
}

func TestUpdateAlertStatus_InvalidTransitionLeavesStoreUntouched(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusResolved)

	_, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "active"})
	var transitionErr *models.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("UpdateAlertStatus() = %v, want InvalidTransitionError", err)
	}
	if transitionErr.From != models.AlertStatusResolved || transitionErr.To != models.AlertStatusActive {
		t.Errorf("transition error = %v, want resolved->active", transitionErr)
	}
	if alertRepo.updateStatusCalls != 0 {
		t.Error("a rejected transition must not hit the store")
	}

	stored, _ := alertRepo.GetByID(context.Background(), alert.ID)
	if stored.Status != models.AlertStatusResolved {
		t.Errorf("stored status = %q, want untouched resolved", stored.Status)
	}
}

func TestUpdateAlertStatus_ConcurrentChangeConflicts(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	// A second admin resolves the alert between our read and write.
	alertRepo.afterGet = func() {
		alertRepo.mu.Lock()
		alertRepo.alerts[alert.ID].Status = models.AlertStatusResolved
		alertRepo.mu.Unlock()
	}

	_, err := svc.UpdateAlertStatus(context.Background(), alert.ID,
		&models.UpdateAlertStatusRequest{Status: "responded"})

	var transitionErr *models.InvalidTransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("UpdateAlertStatus() = %v, want InvalidTransitionError", err)
	}
	if transitionErr.From != models.AlertStatusResolved {
		t.Errorf("conflict reported from %q, want the winning status %q",
			transitionErr.From, models.AlertStatusResolved)
	}

	stored, _ := alertRepo.GetByID(context.Background(), alert.ID)
	if stored.Status != models.AlertStatusResolved {
		t.Errorf("stored status = %q, the winner must not be overwritten", stored.Status)
	}
}

func TestUpdateAlertStatus_ConcurrentSameTargetSucceeds(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	alertRepo.afterGet = func() {
		alertRepo.mu.Lock()
		alertRepo.alerts[alert.ID].Status = models.AlertStatusResponded
		alertRepo.mu.Unlock()
	}

	updated, err := svc.UpdateAlertStatus(context.Background(), alert.ID,
		&models.UpdateAlertStatusRequest{Status: "responded"})
	if err != nil {
		t.Fatalf("UpdateAlertStatus() = %v, racing to the same status must not error", err)
	}
	if updated.Status != models.AlertStatusResponded {
		t.Errorf("status = %q, want %q", updated.Status, models.AlertStatusResponded)
	}
}

func TestUpdateAlertStatus_SameStatusIsNoOp(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	updated, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "active"})
	if err != nil {
		t.Fatalf("UpdateAlertStatus() = %v, want nil no-op", err)
	}
	if updated.Status != models.AlertStatusActive {
		t.Errorf("status = %q, want active", updated.Status)
	}
	if alertRepo.updateStatusCalls != 0 {
		t.Error("repeating the current status must not write")
	}
}

func TestUpdateAlertStatus_UnknownStatus(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	_, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{Status: "escalated"})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("UpdateAlertStatus() = %v, want ValidationError", err)
	}
}

func TestUpdateAlertStatus_AssignmentOnly(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)
	responder := primitive.NewObjectID()

	updated, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{AssignedTo: responder.Hex()})
	if err != nil {
		t.Fatalf("UpdateAlertStatus() = %v, want nil", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != responder {
		t.Errorf("assigned_to = %v, want %s", updated.AssignedTo, responder.Hex())
	}
	if updated.Status != models.AlertStatusActive {
		t.Errorf("status = %q, assignment must not change status", updated.Status)
	}
}

func TestUpdateAlertStatus_EmptyRequest(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	alert := seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)

	_, err := svc.UpdateAlertStatus(context.Background(), alert.ID, &models.UpdateAlertStatusRequest{})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("UpdateAlertStatus() = %v, want ValidationError", err)
	}
}

func TestGetUserAlertsCapped(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})

	reporter := seedReporter(t, userRepo)
	for i := 0; i < utils.MyAlertsLimit+5; i++ {
		alert := &models.Alert{
			UserID:        reporter.ID,
			EmergencyType: models.EmergencyTypeOther,
			Description:   "history entry",
			Status:        models.AlertStatusResolved,
		}
		if err := alertRepo.Create(context.Background(), alert); err != nil {
			t.Fatalf("seed alert: %v", err)
		}
	}

	alerts, err := svc.GetUserAlerts(context.Background(), reporter.ID)
	if err != nil {
		t.Fatalf("GetUserAlerts() = %v, want nil", err)
	}
	if len(alerts) != utils.MyAlertsLimit {
		t.Errorf("len(alerts) = %d, want %d", len(alerts), utils.MyAlertsLimit)
	}
}

func TestGetAlertStats(t *testing.T) {
	alertRepo := newMockAlertRepo()
	userRepo := newMockUserRepo()
	svc := newTestAlertService(alertRepo, userRepo, &mockNotifier{})
	seedAlert(t, alertRepo, userRepo, models.AlertStatusActive)
	seedAlert(t, alertRepo, userRepo, models.AlertStatusResolved)

	stats, err := svc.GetAlertStats(context.Background())
	if err != nil {
		t.Fatalf("GetAlertStats() = %v, want nil", err)
	}
	if stats.Total != 2 || stats.Active != 1 || stats.Resolved != 1 {
		t.Errorf("stats = %+v, want total 2, active 1, resolved 1", stats)
	}
}
