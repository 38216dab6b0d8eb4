package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentStatus tracks a document's ingestion state.
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusReady   DocumentStatus = "ready"
	DocumentStatusFailed  DocumentStatus = "failed"
)

// Document is a child record of a knowledge base.
type Document struct {
	ID              string             `json:"id" bson:"id,omitempty"`
	ObjectID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	KnowledgeBaseID string             `json:"knowledgeBaseID" bson:"knowledge_base_id"`
	Name            string             `json:"name" bson:"name"`
	Source          string             `json:"source,omitempty" bson:"source,omitempty"`
	Status          DocumentStatus     `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
