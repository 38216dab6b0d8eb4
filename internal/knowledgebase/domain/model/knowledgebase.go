package model

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// KnowledgeBase is a named collection of documents owned by exactly one user.
// OwnerID always comes from the verified token, never from a client field.
type KnowledgeBase struct {
	ID          string                 `json:"id" bson:"id,omitempty"`
	ObjectID    primitive.ObjectID     `json:"-" bson:"_id,omitempty"`
	OwnerID     string                 `json:"ownerID" bson:"owner_id"`
	Name        string                 `json:"name" bson:"name"`
	Description string                 `json:"description,omitempty" bson:"description,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty" bson:"config,omitempty"`
	CreatedAt   time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" bson:"updated_at"`
}

// ValidateFields checks the structural invariants of a knowledge base record.
func (kb *KnowledgeBase) ValidateFields() error {
	if strings.TrimSpace(kb.Name) == "" {
		return errors.New("name is required")
	}
	if kb.OwnerID == "" {
		return errors.New("owner ID is required")
	}
	return nil
}

// KnowledgeBaseWithCount is the list projection carrying the child-document
// aggregate.
type KnowledgeBaseWithCount struct {
	KnowledgeBase `bson:",inline"`
	DocumentCount int64 `json:"documentCount" bson:"document_count"`
}

// KnowledgeBaseUpdate describes a partial update; nil fields are left
// untouched.
type KnowledgeBaseUpdate struct {
	Name        *string                `json:"name,omitempty"`
	Description *string                `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty"`
}
