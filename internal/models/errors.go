package models

import "fmt"

// Error codes surfaced in API responses.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeAuth              = "UNAUTHORIZED"
	CodeAuthz             = "FORBIDDEN"
	CodeProvider          = "PROVIDER_ERROR"
	CodeChannel           = "CHANNEL_ERROR"
	CodeStorage           = "STORAGE_ERROR"
)

// ValidationError reports a malformed or missing submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown alert or user id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidTransitionError reports an illegal status change. The stored
// alert is left unchanged when it is returned.
type InvalidTransitionError struct {
	From AlertStatus
	To   AlertStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// AuthError reports a missing or invalid identity token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// AuthzError reports a valid identity lacking the required capability.
type AuthzError struct {
	Message string
}

func (e *AuthzError) Error() string { return e.Message }

// ProviderError reports an AI completion provider failure. It never
// reaches a caller: the chatbot service recovers with failover and a
// fixed fallback message.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ChannelError reports a notification channel failure. Caught and
// logged at the dispatch site, never retried and never surfaced.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// StorageError reports a store failure with no safe local recovery.
// The caller must retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
