package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"
	"lifeline/internal/utils"
	"lifeline/pkg/logger"
	"lifeline/pkg/push"
	"lifeline/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const responderGeoKey = "responders:geo"

// ResponderLocator finds responder ids near a point. Backed by the
// redis geo index in production.
type ResponderLocator interface {
	GeoSearchNearby(ctx context.Context, key string, latitude, longitude, radiusKm float64) ([]string, error)
}

// TopicPublisher relays an alert summary to the emergency services
// integration topic.
type TopicPublisher interface {
	PublishToTopic(ctx context.Context, topicARN, subject, message string) (string, error)
}

type NotificationService interface {
	// DispatchAlertNotifications fans the alert out to all channels in
	// the background. It returns immediately; a failing channel never
	// affects the others or the caller.
	DispatchAlertNotifications(alert *models.Alert)
	// Wait blocks until every in-flight dispatch has finished. Used in
	// tests and during shutdown.
	Wait()
}

type notificationService struct {
	userRepo    interfaces.UserRepository
	smsProvider sms.SMSProvider
	pushByOS    map[string]push.PushProvider
	locator     ResponderLocator
	publisher   TopicPublisher
	topicARN    string
	channelTTL  time.Duration
	logger      *logger.Logger
	wg          sync.WaitGroup
}

func NewNotificationService(
	userRepo interfaces.UserRepository,
	smsProvider sms.SMSProvider,
	pushProviders map[string]push.PushProvider,
	locator ResponderLocator,
	publisher TopicPublisher,
	topicARN string,
	log *logger.Logger,
) NotificationService {
	return &notificationService{
		userRepo:    userRepo,
		smsProvider: smsProvider,
		pushByOS:    pushProviders,
		locator:     locator,
		publisher:   publisher,
		topicARN:    topicARN,
		channelTTL:  30 * time.Second,
		logger:      log,
	}
}

func (s *notificationService) DispatchAlertNotifications(alert *models.Alert) {
	channels := []struct {
		name string
		run  func(ctx context.Context, alert *models.Alert) error
	}{
		{"responders", s.notifyNearbyResponders},
		{"emergency_services", s.notifyEmergencyServices},
		{"emergency_contacts", s.notifyEmergencyContacts},
	}

	s.wg.Add(len(channels))
	for _, ch := range channels {
		go s.runChannel(ch.name, ch.run, alert)
	}
}

func (s *notificationService) Wait() {
	s.wg.Wait()
}

// runChannel isolates one channel: its own deadline, its own panic
// recovery, failures logged and swallowed.
func (s *notificationService) runChannel(name string, run func(context.Context, *models.Alert) error, alert *models.Alert) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithAlertID(alert.ID).WithField("channel", name).
				Errorf("Notification channel panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.channelTTL)
	defer cancel()

	if err := run(ctx, alert); err != nil {
		channelErr := &models.ChannelError{Channel: name, Err: err}
		s.logger.WithAlertID(alert.ID).WithError(channelErr).Warn("Notification channel failed")
		return
	}
	s.logger.WithAlertID(alert.ID).WithField("channel", name).Debug("Notification channel delivered")
}

func (s *notificationService) notifyNearbyResponders(ctx context.Context, alert *models.Alert) error {
	responders, err := s.findResponders(ctx, alert)
	if err != nil {
		return err
	}
	if len(responders) == 0 {
		s.logger.WithAlertID(alert.ID).Warn("No responders available for alert")
		return nil
	}

	title := fmt.Sprintf("🚨 %s Emergency", strings.ToUpper(string(alert.EmergencyType)))
	body := alert.Description
	if alert.Location.Address != "" {
		body = fmt.Sprintf("%s near %s", alert.Description, alert.Location.Address)
	}
	data := map[string]string{
		"alert_id":       alert.ID.Hex(),
		"emergency_type": string(alert.EmergencyType),
		"severity":       string(alert.Severity),
		"latitude":       fmt.Sprintf("%f", alert.Location.Latitude),
		"longitude":      fmt.Sprintf("%f", alert.Location.Longitude),
	}

	byPlatform := make(map[string][]*push.NotificationRequest)
	for _, responder := range responders {
		for _, token := range responder.DeviceTokens {
			byPlatform[token.Platform] = append(byPlatform[token.Platform], &push.NotificationRequest{
				Token:    token.Token,
				Title:    title,
				Body:     body,
				Data:     data,
				Sound:    "emergency.caf",
				Priority: "high",
			})
		}
	}

	var failed int
	for platform, requests := range byPlatform {
		provider, ok := s.pushByOS[platform]
		if !ok {
			s.logger.WithField("platform", platform).Warn("No push provider configured for platform")
			continue
		}
		if _, err := provider.SendBulkNotifications(ctx, requests); err != nil {
			s.logger.WithAlertID(alert.ID).WithField("platform", platform).
				WithError(err).Warn("Push delivery failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("push delivery failed on %d platform(s)", failed)
	}
	return nil
}

// findResponders prefers the geo index; when it is empty or
// unavailable it falls back to every active responder.
func (s *notificationService) findResponders(ctx context.Context, alert *models.Alert) ([]*models.User, error) {
	if s.locator != nil {
		ids, err := s.locator.GeoSearchNearby(ctx, responderGeoKey,
			alert.Location.Latitude, alert.Location.Longitude, utils.NearbyResponderRadiusKm)
		if err != nil {
			s.logger.WithAlertID(alert.ID).WithError(err).Warn("Responder geo lookup failed, falling back to all responders")
		} else if len(ids) > 0 {
			oids := make([]primitive.ObjectID, 0, len(ids))
			for _, id := range ids {
				if oid, err := primitive.ObjectIDFromHex(id); err == nil {
					oids = append(oids, oid)
				}
			}
			if len(oids) > 0 {
				return s.userRepo.GetByIDs(ctx, oids)
			}
		}
	}
	return s.userRepo.GetResponders(ctx)
}

func (s *notificationService) notifyEmergencyServices(ctx context.Context, alert *models.Alert) error {
	if s.publisher == nil || s.topicARN == "" {
		return nil
	}

	subject := fmt.Sprintf("Emergency Alert: %s (%s)", alert.EmergencyType, alert.Severity)
	message := fmt.Sprintf(
		"Emergency type: %s\nSeverity: %s\nReporter: %s (%s)\nLocation: %f, %f\nAddress: %s\nDescription: %s\nAlert ID: %s",
		alert.EmergencyType, alert.Severity,
		alert.UserName, alert.UserPhone,
		alert.Location.Latitude, alert.Location.Longitude,
		alert.Location.Address, alert.Description,
		alert.ID.Hex(),
	)

	_, err := s.publisher.PublishToTopic(ctx, s.topicARN, subject, message)
	return err
}

func (s *notificationService) notifyEmergencyContacts(ctx context.Context, alert *models.Alert) error {
	reporter, err := s.userRepo.GetByID(ctx, alert.UserID)
	if err != nil {
		return err
	}
	if len(reporter.EmergencyContacts) == 0 {
		return nil
	}

	message := fmt.Sprintf(
		"EMERGENCY: %s has reported a %s emergency. Location: %f, %f. %s",
		alert.UserName, alert.EmergencyType,
		alert.Location.Latitude, alert.Location.Longitude,
		alert.Description,
	)

	requests := make([]*sms.SMSRequest, 0, len(reporter.EmergencyContacts))
	for _, contact := range reporter.EmergencyContacts {
		requests = append(requests, &sms.SMSRequest{
			To:      contact.Phone,
			Message: message,
			Type:    "emergency",
		})
	}

	_, err = s.smsProvider.SendBulkSMS(ctx, requests)
	return err
}
