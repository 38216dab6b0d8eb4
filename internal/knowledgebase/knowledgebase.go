package knowledgebase

import (
	"fmt"

	authhttp "kbadmin/internal/auth/adapter/http"
	kbhttp "kbadmin/internal/knowledgebase/adapter/http"
	"kbadmin/internal/knowledgebase/adapter/persistence/mongodb"
	"kbadmin/internal/knowledgebase/domain/repository"
	"kbadmin/internal/knowledgebase/usecase"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// KnowledgeBaseModule represents the complete knowledge base module
type KnowledgeBaseModule struct {
	repository repository.KnowledgeBaseRepository
	usecase    usecase.KnowledgeBaseUsecaseInterface
	handler    *kbhttp.KnowledgeBaseHTTPHandler
}

// NewKnowledgeBaseModule creates a new knowledge base module instance
func NewKnowledgeBaseModule(db *mongo.Database) (*KnowledgeBaseModule, error) {
	repo, err := mongodb.NewMongoKnowledgeBaseRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create knowledge base repository: %w", err)
	}

	uc := usecase.NewKnowledgeBaseUsecase(repo)
	handler := kbhttp.NewKnowledgeBaseHTTPHandler(uc)

	return &KnowledgeBaseModule{
		repository: repo,
		usecase:    uc,
		handler:    handler,
	}, nil
}

// RegisterRoutes registers knowledge base routes under /knowledge-bases,
// protected by the auth middleware.
func (m *KnowledgeBaseModule) RegisterRoutes(router fiber.Router, authMiddleware *authhttp.AuthMiddleware) {
	group := router.Group("/knowledge-bases", authMiddleware.Protect())
	m.handler.SetupRoutes(group)
}

// GetUsecase returns the knowledge base usecase for external access
func (m *KnowledgeBaseModule) GetUsecase() usecase.KnowledgeBaseUsecaseInterface {
	return m.usecase
}

// Stop performs cleanup when the module is shut down
func (m *KnowledgeBaseModule) Stop() error {
	return nil
}
