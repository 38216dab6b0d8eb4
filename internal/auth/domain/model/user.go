package model

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account in the system.
// PasswordHash is never serialized to JSON responses.
type User struct {
	ID           string             `json:"id" bson:"id,omitempty"`
	ObjectID     primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email,omitempty" bson:"email,omitempty"`
	DisplayName  string             `json:"displayName,omitempty" bson:"displayName,omitempty"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// ValidateFields checks the structural invariants of a user record.
func (u *User) ValidateFields() error {
	if strings.TrimSpace(u.Username) == "" {
		return errors.New("username is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// Identity is the minimal authenticated subject carried forward after a
// successful credential validation.
type Identity struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
}
