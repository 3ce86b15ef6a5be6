package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}

	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// application_events indexes
	events := db.Collection("application_events")
	_, err := events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		// history lookups, oldest first
		{
			Keys:    bson.D{{Key: "application_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("by_application_created"),
		},
		{
			Keys:    bson.D{{Key: "job_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_job_created"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_actor_created"),
		},
	})
	return err
}
