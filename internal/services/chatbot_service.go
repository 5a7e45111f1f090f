package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"
	"lifeline/internal/utils"
	"lifeline/pkg/ai"
	"lifeline/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const systemPrompt = `You are an experienced Emergency Response Phone Operator trained to handle critical situations.
Your role is to guide users calmly and clearly during emergencies involving medical crises, fires, police assistance, or accidents.
You must:
1. Remain calm and assertive.
2. Ask for and confirm key details like location and condition of the person.
3. Provide immediate, practical steps the user can take before help arrives.
4. Share accurate emergency helpline numbers.
5. Never provide medical diagnosis - only first aid guidance.
6. Keep responses clear, short, and actionable.

If the query is not an emergency, respond: "I can only assist with urgent emergency-related issues. Please contact appropriate services for non-emergencies."

Emergency Contacts Reference:
- Medical Emergency: 911 (or local ambulance)
- Fire Department: 911
- Police: 911
- Poison Control: 1-800-222-1222

Use short, direct sentences and an authoritative, supportive tone.`

// fallbackResponses are served whenever every configured AI provider
// fails. The chat endpoint must always answer with something.
var errEmptyReply = errors.New("provider returned an empty reply")

var fallbackResponses = []string{
	"I'm currently unavailable. Please call emergency services directly at 911.",
	"Emergency assistance is temporarily unavailable. Dial 911 for immediate help.",
	"I cannot process your request right now. Please contact emergency services directly.",
}

type ChatbotService interface {
	// Chat never returns an error to the caller. If all providers fail
	// it falls back to a canned emergency response.
	Chat(ctx context.Context, req *models.ChatRequest) *models.ChatResponse
}

type chatbotService struct {
	providers []ai.Provider
	alertRepo interfaces.AlertRepository
	timeout   time.Duration
	logger    *logger.Logger
}

func NewChatbotService(providers []ai.Provider, alertRepo interfaces.AlertRepository, timeout time.Duration, log *logger.Logger) ChatbotService {
	return &chatbotService{
		providers: providers,
		alertRepo: alertRepo,
		timeout:   timeout,
		logger:    log,
	}
}

func (s *chatbotService) Chat(ctx context.Context, req *models.ChatRequest) *models.ChatResponse {
	messages := s.buildMessages(req)

	reply, ok := s.complete(ctx, messages)
	if !ok {
		reply = fallbackResponses[rand.Intn(len(fallbackResponses))]
	}

	if req.AlertID != "" {
		if alertID, err := primitive.ObjectIDFromHex(req.AlertID); err == nil {
			s.recordTurns(alertID, req.Message, reply)
		} else {
			s.logger.WithField("alert_id", req.AlertID).Warn("Chat referenced a malformed alert id, skipping transcript")
		}
	}

	return &models.ChatResponse{Response: reply}
}

func (s *chatbotService) buildMessages(req *models.ChatRequest) []ai.Message {
	history := req.ChatHistory
	if len(history) > utils.MaxChatHistoryTurns {
		history = history[len(history)-utils.MaxChatHistoryTurns:]
	}

	messages := make([]ai.Message, 0, len(history)+2)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})
	for _, turn := range history {
		role := ai.RoleUser
		if turn.Role == "assistant" {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: req.Message})
	return messages
}

// complete walks the provider list in order, giving each one its own
// timeout. The first success wins.
func (s *chatbotService) complete(ctx context.Context, messages []ai.Message) (string, bool) {
	request := &ai.CompletionRequest{
		Messages:    messages,
		Temperature: utils.ChatTemperature,
		MaxTokens:   utils.MaxChatReplyTokens,
	}

	for _, provider := range s.providers {
		providerCtx, cancel := context.WithTimeout(ctx, s.timeout)
		reply, err := provider.Complete(providerCtx, request)
		cancel()
		if err == nil && reply != "" {
			return reply, true
		}
		if err == nil {
			err = errEmptyReply
		}
		providerErr := &models.ProviderError{Provider: provider.Name(), Err: err}
		s.logger.WithError(providerErr).Warn("AI provider failed, trying next")
	}

	return "", false
}

// recordTurns appends the user message and the reply to the alert
// transcript. Appends are best effort; a missing alert or a storage
// error never disturbs the chat response.
func (s *chatbotService) recordTurns(alertID primitive.ObjectID, userMessage, reply string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries := []models.ChatLogEntry{
		{Timestamp: time.Now(), Message: userMessage, IsUser: true},
		{Timestamp: time.Now(), Message: reply, IsUser: false},
	}
	for _, entry := range entries {
		if err := s.alertRepo.AppendChatEntry(ctx, alertID, entry); err != nil {
			s.logger.WithAlertID(alertID).WithError(err).Warn("Failed to append chat transcript entry")
			return
		}
	}
}
