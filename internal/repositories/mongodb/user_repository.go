package mongodb

import (
	"context"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return &models.StorageError{Op: "create user", Err: err}
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("user", id.Hex())
		}
		return nil, &models.StorageError{Op: "get user", Err: err}
	}

	return &user, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, &models.StorageError{Op: "get users by ids", Err: err}
	}
	defer cursor.Close(ctx)

	return decodeUsers(ctx, cursor)
}

func (r *userRepository) GetResponders(ctx context.Context) ([]*models.User, error) {
	filter := bson.M{
		"role":   bson.M{"$in": []models.UserRole{models.UserRoleResponder, models.UserRoleAdmin}},
		"status": models.UserStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, &models.StorageError{Op: "get responders", Err: err}
	}
	defer cursor.Close(ctx)

	return decodeUsers(ctx, cursor)
}

func (r *userRepository) UpdateLastLocation(ctx context.Context, id primitive.ObjectID, location models.Location) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_location": location, "updated_at": time.Now()}},
	)
	if err != nil {
		return &models.StorageError{Op: "update last location", Err: err}
	}
	return nil
}

func (r *userRepository) AddDeviceToken(ctx context.Context, id primitive.ObjectID, token models.DeviceToken) error {
	// $addToSet keeps re-registrations of the same device idempotent.
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$addToSet": bson.M{"device_tokens": token},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return &models.StorageError{Op: "add device token", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("user", id.Hex())
	}
	return nil
}

func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]*models.User, error) {
	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, &models.StorageError{Op: "decode user", Err: err}
		}
		users = append(users, &user)
	}
	return users, nil
}
