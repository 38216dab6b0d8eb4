package repository

import (
	"context"

	"kbadmin/internal/knowledgebase/domain/model"
)

// KnowledgeBaseRepository defines the persistence contract for knowledge bases
// and their documents. Every accessor is ownership-scoped: a knowledge base
// that exists but belongs to a different owner is reported as not found.
type KnowledgeBaseRepository interface {
	Create(ctx context.Context, kb *model.KnowledgeBase) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.KnowledgeBaseWithCount, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.KnowledgeBase, error)
	Update(ctx context.Context, ownerID, id string, update model.KnowledgeBaseUpdate) (*model.KnowledgeBase, error)
	Delete(ctx context.Context, ownerID, id string) error

	CreateDocument(ctx context.Context, doc *model.Document) error
	ListDocuments(ctx context.Context, knowledgeBaseID string) ([]*model.Document, error)
}
