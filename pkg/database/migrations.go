package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// alertIndexModels lists the indexes backing the alert queries:
// status+recency listing, per-reporter history, and free-text search.
// The location document holds latitude before longitude, so it must
// not be geo-indexed: Mongo reads a non-GeoJSON embedded document as
// a legacy longitude-first pair and rejects inserts whose longitude
// magnitude exceeds 90. Nearby-responder lookup runs in redis GEO,
// not Mongo.
func alertIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "description", Value: "text"}},
		},
	}
}

func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	}
}

// EnsureIndexes creates the indexes the alert and user queries rely
// on. Safe to run on every startup; Mongo treats existing identical
// indexes as no-ops.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := m.Collection("alerts").Indexes().CreateMany(ctx, alertIndexModels()); err != nil {
		return err
	}
	if _, err := m.Collection("users").Indexes().CreateMany(ctx, userIndexModels()); err != nil {
		return err
	}

	return nil
}
