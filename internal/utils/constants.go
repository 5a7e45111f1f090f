package utils

import "time"

const (
	AppName    = "Lifeline"
	AppVersion = "1.0.0"
)

// Pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	MinPageSize     = 1
)

// JWT
const (
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
)

// Limits on the conversational path.
const (
	// MaxChatHistoryTurns bounds the prompt context sent to a provider;
	// older turns are dropped, not summarized.
	MaxChatHistoryTurns = 20
	// MaxChatReplyTokens caps the provider reply length.
	MaxChatReplyTokens = 500
	// ChatTemperature biases the provider toward determinism.
	ChatTemperature = 0.1
)

// MyAlertsLimit caps the caller's own alert history.
const MyAlertsLimit = 20

// NearbyResponderRadiusKm bounds the responder push fan-out.
const NearbyResponderRadiusKm = 10.0

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Common error messages
const (
	ErrUnauthorized     = "unauthorized"
	ErrValidationFailed = "validation failed"
	ErrAdminRequired    = "admin access required"
)
