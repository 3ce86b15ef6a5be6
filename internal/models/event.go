package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	EventCreated         EventType = "created"
	EventStatusChanged   EventType = "status_changed"
	EventScreened        EventType = "screened"
	EventScreeningFailed EventType = "screening_failed"
)

// ApplicationEvent is one entry in an application's history, kept in MongoDB.
type ApplicationEvent struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ApplicationID string             `bson:"application_id" json:"application_id"`
	JobID         string             `bson:"job_id" json:"job_id"`
	ActorID       string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"`

	Type       EventType         `bson:"type" json:"type"`
	FromStatus ApplicationStatus `bson:"from_status,omitempty" json:"from_status,omitempty"`
	ToStatus   ApplicationStatus `bson:"to_status,omitempty" json:"to_status,omitempty"`
	Score      *float64          `bson:"score,omitempty" json:"score,omitempty"`
	Message    string            `bson:"message,omitempty" json:"message,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
