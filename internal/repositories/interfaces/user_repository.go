package interfaces

import (
	"context"

	"lifeline/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)

	// GetResponders returns users holding the responder or admin role,
	// whose device tokens receive the nearby-alert push.
	GetResponders(ctx context.Context) ([]*models.User, error)

	UpdateLastLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error
	AddDeviceToken(ctx context.Context, id primitive.ObjectID, token models.DeviceToken) error
}
