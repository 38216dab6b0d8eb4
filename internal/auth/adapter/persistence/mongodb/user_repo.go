package mongodb

import (
	"context"
	"errors"
	"time"

	"kbadmin/internal/auth/domain/model"
	"kbadmin/internal/auth/domain/repository"
	"kbadmin/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the UserRepository interface using MongoDB
type MongoUserRepository struct {
	db              *mongo.Database
	usersCollection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository. A unique index
// on username enforces the duplicate-registration invariant at the store.
func NewMongoUserRepository(db *mongo.Database) (*MongoUserRepository, error) {
	repo := &MongoUserRepository{
		db:              db,
		usersCollection: db.Collection("users"),
	}

	ctx := context.Background()

	usernameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, usernameIndex); err != nil {
		return nil, err
	}

	// ID index for UUID lookups; sparse because legacy documents may only
	// carry an ObjectID.
	idIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetSparse(true),
	}
	if _, err := repo.usersCollection.Indexes().CreateOne(ctx, idIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateUser creates a new user in the database
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	doc := bson.M{
		"id":            user.ID,
		"username":      user.Username,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	if user.Email != "" {
		doc["email"] = user.Email
	}
	if user.DisplayName != "" {
		doc["displayName"] = user.DisplayName
	}

	if _, err := r.usersCollection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrUsernameTaken
		}
		return err
	}

	return nil
}

// GetUserByUsername retrieves a user by username (exact match)
func (r *MongoUserRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	var user model.User
	err := r.usersCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}

	// Ensure ID field is populated
	if user.ID == "" && !user.ObjectID.IsZero() {
		user.ID = user.ObjectID.Hex()
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("id cannot be empty")
	}

	var user model.User
	var err error

	// Valid ObjectID hexes are looked up by _id, everything else (UUIDs) by
	// the string id field.
	if objectID, objErr := primitive.ObjectIDFromHex(id); objErr == nil {
		err = r.usersCollection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	} else {
		err = r.usersCollection.FindOne(ctx, bson.M{"id": id}).Decode(&user)
	}

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}

	if user.ID == "" && !user.ObjectID.IsZero() {
		user.ID = user.ObjectID.Hex()
	}

	return &user, nil
}

var _ repository.UserRepository = (*MongoUserRepository)(nil)
