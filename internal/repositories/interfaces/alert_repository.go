package interfaces

import (
	"context"

	"lifeline/internal/models"
	"lifeline/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertRepository is the store adapter for alerts. Status and
// timestamp writes are single conditional document updates and the
// transcript write is a single atomic array append, so concurrent
// requests on one alert cannot lose data to read-modify-write races.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Alert, error)

	// Find applies the filter with AND semantics and returns the page
	// plus the total match count.
	Find(ctx context.Context, filter *models.AlertFilter, params *utils.PaginationParams) ([]*models.Alert, int64, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Alert, error)

	// UpdateStatus applies the status change in one conditional update
	// filtered on the expected current status; the timestamp fields
	// are only set when currently null. A concurrent status change
	// surfaces as InvalidTransitionError, not a silent overwrite.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.AlertStatus, assignedTo *primitive.ObjectID) (*models.Alert, error)

	// SetAssignee updates the assignment without touching status.
	SetAssignee(ctx context.Context, id primitive.ObjectID, assignedTo primitive.ObjectID) (*models.Alert, error)

	// SetAddress backfills the reverse-geocoded address.
	SetAddress(ctx context.Context, id primitive.ObjectID, address string) error

	// AppendChatEntry atomically appends one transcript turn.
	AppendChatEntry(ctx context.Context, id primitive.ObjectID, entry models.ChatLogEntry) error

	CountByStatus(ctx context.Context) (*models.AlertStats, error)
}
