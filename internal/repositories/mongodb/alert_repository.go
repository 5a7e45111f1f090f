package mongodb

import (
	"context"
	"time"

	"lifeline/internal/models"
	"lifeline/internal/repositories/interfaces"
	"lifeline/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type alertRepository struct {
	collection *mongo.Collection
}

func NewAlertRepository(db *mongo.Database) interfaces.AlertRepository {
	return &alertRepository{
		collection: db.Collection("alerts"),
	}
}

func (r *alertRepository) Create(ctx context.Context, alert *models.Alert) error {
	alert.ID = primitive.NewObjectID()
	alert.CreatedAt = time.Now()
	alert.UpdatedAt = alert.CreatedAt
	if alert.ChatLog == nil {
		alert.ChatLog = []models.ChatLogEntry{}
	}

	_, err := r.collection.InsertOne(ctx, alert)
	if err != nil {
		return &models.StorageError{Op: "create alert", Err: err}
	}

	return nil
}

func (r *alertRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Alert, error) {
	var alert models.Alert
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("alert", id.Hex())
		}
		return nil, &models.StorageError{Op: "get alert", Err: err}
	}

	return &alert, nil
}

func (r *alertRepository) Find(ctx context.Context, filter *models.AlertFilter, params *utils.PaginationParams) ([]*models.Alert, int64, error) {
	query := buildAlertQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, &models.StorageError{Op: "count alerts", Err: err}
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, &models.StorageError{Op: "find alerts", Err: err}
	}
	defer cursor.Close(ctx)

	var alerts []*models.Alert
	for cursor.Next(ctx) {
		var alert models.Alert
		if err := cursor.Decode(&alert); err != nil {
			return nil, 0, &models.StorageError{Op: "decode alert", Err: err}
		}
		alerts = append(alerts, &alert)
	}

	return alerts, total, nil
}

func buildAlertQuery(filter *models.AlertFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}

	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.EmergencyType != nil {
		query["emergency_type"] = *filter.EmergencyType
	}
	if filter.From != nil || filter.To != nil {
		created := bson.M{}
		if filter.From != nil {
			created["$gte"] = *filter.From
		}
		if filter.To != nil {
			created["$lte"] = *filter.To
		}
		query["created_at"] = created
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}

	return query
}

func (r *alertRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Alert, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, &models.StorageError{Op: "find user alerts", Err: err}
	}
	defer cursor.Close(ctx)

	var alerts []*models.Alert
	for cursor.Next(ctx) {
		var alert models.Alert
		if err := cursor.Decode(&alert); err != nil {
			return nil, &models.StorageError{Op: "decode alert", Err: err}
		}
		alerts = append(alerts, &alert)
	}

	return alerts, nil
}

// UpdateStatus writes the new status in a single update filtered on
// the expected current status, stamping response/resolution times
// only when currently null. The status filter turns a lost race into
// InvalidTransitionError instead of overwriting the winner; the
// $ifNull stamps keep a concurrent repeat of the same transition from
// overwriting an existing timestamp.
func (r *alertRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.AlertStatus, assignedTo *primitive.ObjectID) (*models.Alert, error) {
	now := time.Now()

	set := bson.M{
		"status":     to,
		"updated_at": now,
	}
	if assignedTo != nil {
		set["assigned_to"] = *assignedTo
	}
	switch to {
	case models.AlertStatusResponded:
		set["response_time"] = bson.M{"$ifNull": bson.A{"$response_time", now}}
	case models.AlertStatusResolved:
		set["resolution_time"] = bson.M{"$ifNull": bson.A{"$resolution_time", now}}
	}

	filter := bson.M{"_id": id, "status": from}
	update := mongo.Pipeline{{{Key: "$set", Value: set}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var alert models.Alert
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			current, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == to {
				return current, nil
			}
			return nil, &models.InvalidTransitionError{From: current.Status, To: to}
		}
		return nil, &models.StorageError{Op: "update alert status", Err: err}
	}

	return &alert, nil
}

func (r *alertRepository) SetAssignee(ctx context.Context, id primitive.ObjectID, assignedTo primitive.ObjectID) (*models.Alert, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var alert models.Alert
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"assigned_to": assignedTo, "updated_at": time.Now()}},
		opts,
	).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewNotFoundError("alert", id.Hex())
		}
		return nil, &models.StorageError{Op: "set assignee", Err: err}
	}

	return &alert, nil
}

func (r *alertRepository) SetAddress(ctx context.Context, id primitive.ObjectID, address string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"location.address": address, "updated_at": time.Now()}},
	)
	if err != nil {
		return &models.StorageError{Op: "set address", Err: err}
	}
	return nil
}

// AppendChatEntry is a single atomic $push; ordering on one alert is
// whatever order the store serialized the pushes in.
func (r *alertRepository) AppendChatEntry(ctx context.Context, id primitive.ObjectID, entry models.ChatLogEntry) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"chat_log": entry},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return &models.StorageError{Op: "append chat entry", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("alert", id.Hex())
	}

	return nil
}

func (r *alertRepository) CountByStatus(ctx context.Context) (*models.AlertStats, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, &models.StorageError{Op: "count by status", Err: err}
	}
	defer cursor.Close(ctx)

	stats := &models.AlertStats{}
	for cursor.Next(ctx) {
		var row struct {
			ID    models.AlertStatus `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, &models.StorageError{Op: "decode status count", Err: err}
		}

		stats.Total += row.Count
		switch row.ID {
		case models.AlertStatusActive:
			stats.Active = row.Count
		case models.AlertStatusResponded:
			stats.Responded = row.Count
		case models.AlertStatusResolved:
			stats.Resolved = row.Count
		case models.AlertStatusFalseAlarm:
			stats.FalseAlarm = row.Count
		}
	}

	return stats, nil
}
