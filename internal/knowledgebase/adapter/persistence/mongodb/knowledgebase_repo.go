package mongodb

import (
	"context"
	"errors"
	"time"

	"kbadmin/internal/knowledgebase/domain/model"
	"kbadmin/internal/knowledgebase/domain/repository"
	"kbadmin/internal/knowledgebase/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoKnowledgeBaseRepository implements KnowledgeBaseRepository using MongoDB.
// Every filter includes owner_id, so a base owned by someone else is
// indistinguishable from a missing one.
type MongoKnowledgeBaseRepository struct {
	db                  *mongo.Database
	basesCollection     *mongo.Collection
	documentsCollection *mongo.Collection
}

// NewMongoKnowledgeBaseRepository creates a new MongoDB knowledge base repository
func NewMongoKnowledgeBaseRepository(db *mongo.Database) (*MongoKnowledgeBaseRepository, error) {
	repo := &MongoKnowledgeBaseRepository{
		db:                  db,
		basesCollection:     db.Collection("knowledge_bases"),
		documentsCollection: db.Collection("documents"),
	}

	ctx := context.Background()

	ownerIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "id", Value: 1}},
	}
	if _, err := repo.basesCollection.Indexes().CreateOne(ctx, ownerIndex); err != nil {
		return nil, err
	}

	kbIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "knowledge_base_id", Value: 1}},
	}
	if _, err := repo.documentsCollection.Indexes().CreateOne(ctx, kbIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// Create inserts a new knowledge base
func (r *MongoKnowledgeBaseRepository) Create(ctx context.Context, kb *model.KnowledgeBase) error {
	if kb == nil {
		return errors.New("knowledge base cannot be nil")
	}

	now := time.Now()
	kb.CreatedAt = now
	kb.UpdatedAt = now

	if kb.ID == "" {
		kb.ID = primitive.NewObjectID().Hex()
	}

	doc := bson.M{
		"id":         kb.ID,
		"owner_id":   kb.OwnerID,
		"name":       kb.Name,
		"created_at": kb.CreatedAt,
		"updated_at": kb.UpdatedAt,
	}
	if kb.Description != "" {
		doc["description"] = kb.Description
	}
	if kb.Config != nil {
		doc["config"] = kb.Config
	}

	_, err := r.basesCollection.InsertOne(ctx, doc)
	return err
}

// ListByOwner returns the owner's knowledge bases with per-base document
// counts aggregated via $lookup.
func (r *MongoKnowledgeBaseRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.KnowledgeBaseWithCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "documents",
			"localField":   "id",
			"foreignField": "knowledge_base_id",
			"as":           "docs",
		}}},
		{{Key: "$addFields", Value: bson.M{"document_count": bson.M{"$size": "$docs"}}}},
		{{Key: "$project", Value: bson.M{"docs": 0}}},
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
	}

	cursor, err := r.basesCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bases := make([]*model.KnowledgeBaseWithCount, 0)
	for cursor.Next(ctx) {
		var kb model.KnowledgeBaseWithCount
		if err := cursor.Decode(&kb); err != nil {
			return nil, err
		}
		if kb.ID == "" && !kb.ObjectID.IsZero() {
			kb.ID = kb.ObjectID.Hex()
		}
		bases = append(bases, &kb)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return bases, nil
}

// GetByID retrieves a knowledge base by ID scoped to its owner
func (r *MongoKnowledgeBaseRepository) GetByID(ctx context.Context, ownerID, id string) (*model.KnowledgeBase, error) {
	var kb model.KnowledgeBase
	err := r.basesCollection.FindOne(ctx, bson.M{"id": id, "owner_id": ownerID}).Decode(&kb)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrKnowledgeBaseNotFound
		}
		return nil, err
	}

	if kb.ID == "" && !kb.ObjectID.IsZero() {
		kb.ID = kb.ObjectID.Hex()
	}

	return &kb, nil
}

// Update applies a partial update scoped to the owner and returns the updated
// record.
func (r *MongoKnowledgeBaseRepository) Update(ctx context.Context, ownerID, id string, update model.KnowledgeBaseUpdate) (*model.KnowledgeBase, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Config != nil {
		set["config"] = update.Config
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var kb model.KnowledgeBase
	err := r.basesCollection.FindOneAndUpdate(ctx,
		bson.M{"id": id, "owner_id": ownerID},
		bson.M{"$set": set},
		opts,
	).Decode(&kb)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrKnowledgeBaseNotFound
		}
		return nil, err
	}

	if kb.ID == "" && !kb.ObjectID.IsZero() {
		kb.ID = kb.ObjectID.Hex()
	}

	return &kb, nil
}

// Delete removes a knowledge base and cascades its documents
func (r *MongoKnowledgeBaseRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.basesCollection.DeleteOne(ctx, bson.M{"id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return usecase.ErrKnowledgeBaseNotFound
	}

	// Cascade: orphaned documents would distort list counts
	_, err = r.documentsCollection.DeleteMany(ctx, bson.M{"knowledge_base_id": id})
	return err
}

// CreateDocument inserts a new document
func (r *MongoKnowledgeBaseRepository) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc == nil {
		return errors.New("document cannot be nil")
	}

	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}

	record := bson.M{
		"id":                doc.ID,
		"knowledge_base_id": doc.KnowledgeBaseID,
		"name":              doc.Name,
		"status":            doc.Status,
		"created_at":        doc.CreatedAt,
		"updated_at":        doc.UpdatedAt,
	}
	if doc.Source != "" {
		record["source"] = doc.Source
	}

	_, err := r.documentsCollection.InsertOne(ctx, record)
	return err
}

// ListDocuments lists the documents belonging to a knowledge base
func (r *MongoKnowledgeBaseRepository) ListDocuments(ctx context.Context, knowledgeBaseID string) ([]*model.Document, error) {
	findOpts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.documentsCollection.Find(ctx, bson.M{"knowledge_base_id": knowledgeBaseID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]*model.Document, 0)
	for cursor.Next(ctx) {
		var doc model.Document
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.ID == "" && !doc.ObjectID.IsZero() {
			doc.ID = doc.ObjectID.Hex()
		}
		docs = append(docs, &doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

var _ repository.KnowledgeBaseRepository = (*MongoKnowledgeBaseRepository)(nil)
