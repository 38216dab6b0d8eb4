package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kbadmin/internal/knowledgebase/domain/model"
	"kbadmin/internal/knowledgebase/domain/repository"

	"github.com/google/uuid"
)

var (
	ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")
	ErrInvalidName           = errors.New("knowledge base name is required")
)

// CreateKnowledgeBaseRequest represents the creation request body. Ownership
// is never taken from the body.
type CreateKnowledgeBaseRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty"`
}

// AddDocumentRequest represents the document creation request body.
type AddDocumentRequest struct {
	Name   string `json:"name" validate:"required"`
	Source string `json:"source,omitempty"`
}

// KnowledgeBaseUsecaseInterface defines the contract for knowledge base use cases.
type KnowledgeBaseUsecaseInterface interface {
	Create(ctx context.Context, ownerID string, req CreateKnowledgeBaseRequest) (*model.KnowledgeBase, error)
	List(ctx context.Context, ownerID string) ([]*model.KnowledgeBaseWithCount, error)
	Get(ctx context.Context, ownerID, id string) (*model.KnowledgeBase, error)
	Update(ctx context.Context, ownerID, id string, update model.KnowledgeBaseUpdate) (*model.KnowledgeBase, error)
	Delete(ctx context.Context, ownerID, id string) error
	AddDocument(ctx context.Context, ownerID, knowledgeBaseID string, req AddDocumentRequest) (*model.Document, error)
	ListDocuments(ctx context.Context, ownerID, knowledgeBaseID string) ([]*model.Document, error)
}

// KnowledgeBaseUsecase implements ownership-scoped knowledge base CRUD.
type KnowledgeBaseUsecase struct {
	repo repository.KnowledgeBaseRepository
}

// NewKnowledgeBaseUsecase creates a new instance of KnowledgeBaseUsecase.
func NewKnowledgeBaseUsecase(repo repository.KnowledgeBaseRepository) *KnowledgeBaseUsecase {
	return &KnowledgeBaseUsecase{repo: repo}
}

// Create stores a new knowledge base owned by the caller.
func (uc *KnowledgeBaseUsecase) Create(ctx context.Context, ownerID string, req CreateKnowledgeBaseRequest) (*model.KnowledgeBase, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidName
	}

	kb := &model.KnowledgeBase{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Config:      req.Config,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := kb.ValidateFields(); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, kb); err != nil {
		return nil, fmt.Errorf("failed to create knowledge base: %w", err)
	}

	return kb, nil
}

// List returns the caller's knowledge bases with per-base document counts.
func (uc *KnowledgeBaseUsecase) List(ctx context.Context, ownerID string) ([]*model.KnowledgeBaseWithCount, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner ID is required")
	}

	bases, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge bases: %w", err)
	}
	return bases, nil
}

// Get retrieves a single knowledge base by ID, scoped to the caller.
func (uc *KnowledgeBaseUsecase) Get(ctx context.Context, ownerID, id string) (*model.KnowledgeBase, error) {
	kb, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return nil, ErrKnowledgeBaseNotFound
		}
		return nil, fmt.Errorf("failed to get knowledge base: %w", err)
	}
	return kb, nil
}

// Update applies a partial update after an ownership precheck.
func (uc *KnowledgeBaseUsecase) Update(ctx context.Context, ownerID, id string, update model.KnowledgeBaseUpdate) (*model.KnowledgeBase, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, ErrInvalidName
	}

	// Precheck: the write below is ownership-filtered as well, but the
	// precheck keeps "absent" and "not owned" indistinguishable to callers.
	if _, err := uc.repo.GetByID(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return nil, ErrKnowledgeBaseNotFound
		}
		return nil, fmt.Errorf("failed to check knowledge base: %w", err)
	}

	kb, err := uc.repo.Update(ctx, ownerID, id, update)
	if err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return nil, ErrKnowledgeBaseNotFound
		}
		return nil, fmt.Errorf("failed to update knowledge base: %w", err)
	}
	return kb, nil
}

// Delete removes a knowledge base and its documents after an ownership
// precheck.
func (uc *KnowledgeBaseUsecase) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uc.repo.GetByID(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return ErrKnowledgeBaseNotFound
		}
		return fmt.Errorf("failed to check knowledge base: %w", err)
	}

	if err := uc.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return ErrKnowledgeBaseNotFound
		}
		return fmt.Errorf("failed to delete knowledge base: %w", err)
	}
	return nil
}

// AddDocument appends a document to a knowledge base the caller owns.
func (uc *KnowledgeBaseUsecase) AddDocument(ctx context.Context, ownerID, knowledgeBaseID string, req AddDocumentRequest) (*model.Document, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("document name is required")
	}

	// Ownership re-verified on every call; nothing trusts a previously
	// fetched reference.
	if _, err := uc.repo.GetByID(ctx, ownerID, knowledgeBaseID); err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return nil, ErrKnowledgeBaseNotFound
		}
		return nil, fmt.Errorf("failed to check knowledge base: %w", err)
	}

	doc := &model.Document{
		ID:              uuid.New().String(),
		KnowledgeBaseID: knowledgeBaseID,
		Name:            strings.TrimSpace(req.Name),
		Source:          strings.TrimSpace(req.Source),
		Status:          model.DocumentStatusPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := uc.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// ListDocuments lists the documents of a knowledge base the caller owns.
func (uc *KnowledgeBaseUsecase) ListDocuments(ctx context.Context, ownerID, knowledgeBaseID string) ([]*model.Document, error) {
	if _, err := uc.repo.GetByID(ctx, ownerID, knowledgeBaseID); err != nil {
		if errors.Is(err, ErrKnowledgeBaseNotFound) {
			return nil, ErrKnowledgeBaseNotFound
		}
		return nil, fmt.Errorf("failed to check knowledge base: %w", err)
	}

	docs, err := uc.repo.ListDocuments(ctx, knowledgeBaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Ensure KnowledgeBaseUsecase implements KnowledgeBaseUsecaseInterface
var _ KnowledgeBaseUsecaseInterface = (*KnowledgeBaseUsecase)(nil)
