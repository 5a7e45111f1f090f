package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/utils"
	"lifeline/pkg/ai"
	"lifeline/pkg/push"
	"lifeline/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStore = errors.New("store unavailable")

// mockAlertRepo is an in-memory AlertRepository with injectable
// failures.
type mockAlertRepo struct {
	mu      sync.Mutex
	alerts  map[primitive.ObjectID]*models.Alert
	entries map[primitive.ObjectID][]models.ChatLogEntry

	failCreate bool
	failAppend bool

	// afterGet runs after GetByID returns its copy, outside the lock;
	// tests use it to interleave a concurrent status change.
	afterGet func()

	updateStatusCalls int
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{
		alerts:  make(map[primitive.ObjectID]*models.Alert),
		entries: make(map[primitive.ObjectID][]models.ChatLogEntry),
	}
}

func (m *mockAlertRepo) Create(ctx context.Context, alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return &models.StorageError{Op: "insert", Err: errStore}
	}
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt
	copied := *alert
	m.alerts[alert.ID] = &copied
	return nil
}

func (m *mockAlertRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Alert, error) {
	m.mu.Lock()
	alert, ok := m.alerts[id]
	if !ok {
		m.mu.Unlock()
		return nil, models.NewNotFoundError("alert", id.Hex())
	}
	copied := *alert
	m.mu.Unlock()
	if m.afterGet != nil {
		m.afterGet()
	}
	return &copied, nil
}

func (m *mockAlertRepo) Find(ctx context.Context, filter *models.AlertFilter, params *utils.PaginationParams) ([]*models.Alert, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Alert
	for _, alert := range m.alerts {
		copied := *alert
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockAlertRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Alert
	for _, alert := range m.alerts {
		if alert.UserID == userID && len(out) < limit {
			copied := *alert
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAlertRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.AlertStatus, assignedTo *primitive.ObjectID) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateStatusCalls++
	alert, ok := m.alerts[id]
	if !ok {
		return nil, models.NewNotFoundError("alert", id.Hex())
	}
	if alert.Status != from {
		if alert.Status == to {
			copied := *alert
			return &copied, nil
		}
		return nil, &models.InvalidTransitionError{From: alert.Status, To: to}
	}
	now := time.Now()
	alert.Status = to
	alert.UpdatedAt = now
	if assignedTo != nil {
		alert.AssignedTo = assignedTo
	}
	if to == models.AlertStatusResponded && alert.ResponseTime == nil {
		alert.ResponseTime = &now
	}
	if (to == models.AlertStatusResolved || to == models.AlertStatusFalseAlarm) && alert.ResolutionTime == nil {
		alert.ResolutionTime = &now
	}
	copied := *alert
	return &copied, nil
}

func (m *mockAlertRepo) SetAssignee(ctx context.Context, id primitive.ObjectID, assignedTo primitive.ObjectID) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	if !ok {
		return nil, models.NewNotFoundError("alert", id.Hex())
	}
	alert.AssignedTo = &assignedTo
	copied := *alert
	return &copied, nil
}

func (m *mockAlertRepo) SetAddress(ctx context.Context, id primitive.ObjectID, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	if !ok {
		return models.NewNotFoundError("alert", id.Hex())
	}
	alert.Location.Address = address
	return nil
}

func (m *mockAlertRepo) AppendChatEntry(ctx context.Context, id primitive.ObjectID, entry models.ChatLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return &models.StorageError{Op: "push", Err: errStore}
	}
	if _, ok := m.alerts[id]; !ok {
		return models.NewNotFoundError("alert", id.Hex())
	}
	m.entries[id] = append(m.entries[id], entry)
	return nil
}

func (m *mockAlertRepo) CountByStatus(ctx context.Context) (*models.AlertStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &models.AlertStats{}
	for _, alert := range m.alerts {
		stats.Total++
		switch alert.Status {
		case models.AlertStatusActive:
			stats.Active++
		case models.AlertStatusResponded:
			stats.Responded++
		case models.AlertStatusResolved:
			stats.Resolved++
		case models.AlertStatusFalseAlarm:
			stats.FalseAlarm++
		}
	}
	return stats, nil
}

func (m *mockAlertRepo) chatEntries(id primitive.ObjectID) []models.ChatLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatLogEntry, len(m.entries[id]))
	copy(out, m.entries[id])
	return out
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	mu           sync.Mutex
	users        map[primitive.ObjectID]*models.User
	responders   []*models.User
	locations    map[primitive.ObjectID]models.Location
	tokens       map[primitive.ObjectID][]models.DeviceToken
	failLocation bool
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user", id.Hex())
	}
	return user, nil
}

func (m *mockUserRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (m *mockUserRepo) GetResponders(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.responders, nil
}

func (m *mockUserRepo) UpdateLastLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLocation {
		return &models.StorageError{Op: "update location", Err: errors.New("write failed")}
	}
	if m.locations == nil {
		m.locations = make(map[primitive.ObjectID]models.Location)
	}
	m.locations[id] = location
	return nil
}

func (m *mockUserRepo) AddDeviceToken(ctx context.Context, id primitive.ObjectID, token models.DeviceToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[primitive.ObjectID][]models.DeviceToken)
	}
	m.tokens[id] = append(m.tokens[id], token)
	return nil
}

// mockNotifier records dispatched alerts.
type mockNotifier struct {
	mu         sync.Mutex
	dispatched []*models.Alert
}

func (m *mockNotifier) DispatchAlertNotifications(alert *models.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, alert)
}

func (m *mockNotifier) Wait() {}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dispatched)
}

// mockProvider replays scripted completions in order.
type mockProvider struct {
	name      string
	responses []string
	errs      []error
	calls     int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Complete(ctx context.Context, req *ai.CompletionRequest) (string, error) {
	idx := m.calls
	m.calls++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return "", m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return "", errors.New("no scripted response")
}

// mockSMS records outbound messages.
type mockSMS struct {
	mu   sync.Mutex
	sent []*sms.SMSRequest
	err  error
}

func (m *mockSMS) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, request)
	return &sms.SMSResponse{Status: "sent"}, nil
}

func (m *mockSMS) SendBulkSMS(ctx context.Context, requests []*sms.SMSRequest) ([]*sms.SMSResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, requests...)
	out := make([]*sms.SMSResponse, len(requests))
	for i := range out {
		out[i] = &sms.SMSResponse{Status: "sent"}
	}
	return out, nil
}

func (m *mockSMS) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// mockPush records push requests and can panic to exercise channel
// isolation.
type mockPush struct {
	mu        sync.Mutex
	sent      []*push.NotificationRequest
	calls     int
	err       error
	panicking bool
}

func (m *mockPush) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockPush) SendNotification(ctx context.Context, request *push.NotificationRequest) (*push.NotificationResponse, error) {
	responses, err := m.SendBulkNotifications(ctx, []*push.NotificationRequest{request})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (m *mockPush) SendBulkNotifications(ctx context.Context, requests []*push.NotificationRequest) ([]*push.NotificationResponse, error) {
	if m.panicking {
		panic("push provider exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, requests...)
	out := make([]*push.NotificationResponse, len(requests))
	for i := range out {
		out[i] = &push.NotificationResponse{Success: true}
	}
	return out, nil
}

func (m *mockPush) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// mockLocator returns a fixed nearby set.
type mockLocator struct {
	ids []string
	err error
}

func (m *mockLocator) GeoSearchNearby(ctx context.Context, key string, latitude, longitude, radiusKm float64) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

// mockPublisher records topic publishes.
type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (m *mockPublisher) PublishToTopic(ctx context.Context, topicARN, subject, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.subjects = append(m.subjects, subject)
	return "msg-1", nil
}

func (m *mockPublisher) published() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subjects)
}
