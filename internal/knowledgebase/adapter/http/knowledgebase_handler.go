package http

import (
	"errors"

	"kbadmin/internal/knowledgebase/domain/model"
	"kbadmin/internal/knowledgebase/usecase"
	apperrors "kbadmin/internal/shared/errors"
	"kbadmin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps an application error to its HTTP status and a short
// message; internals never reach the wire.
func respondError(c *fiber.Ctx, appErr *apperrors.AppError) error {
	return c.Status(appErr.HTTPCode).JSON(fiber.Map{
		"error": appErr.Message,
	})
}

// KnowledgeBaseHTTPHandler handles HTTP requests for knowledge bases
type KnowledgeBaseHTTPHandler struct {
	usecase usecase.KnowledgeBaseUsecaseInterface
}

// NewKnowledgeBaseHTTPHandler creates a new knowledge base HTTP handler
func NewKnowledgeBaseHTTPHandler(uc usecase.KnowledgeBaseUsecaseInterface) *KnowledgeBaseHTTPHandler {
	return &KnowledgeBaseHTTPHandler{usecase: uc}
}

// SetupRoutes registers knowledge base routes. The caller is expected to have
// wrapped the router in the auth middleware; the owner identity always comes
// from the verified token in the request context.
func (h *KnowledgeBaseHTTPHandler) SetupRoutes(router fiber.Router) {
	router.Post("/", h.Create)
	router.Get("/", h.List)
	router.Get("/:id", h.Get)
	router.Patch("/:id", h.Update)
	router.Delete("/:id", h.Delete)
	router.Post("/:id/documents", h.AddDocument)
	router.Get("/:id/documents", h.ListDocuments)
}

// Create handles knowledge base creation
func (h *KnowledgeBaseHTTPHandler) Create(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	var req usecase.CreateKnowledgeBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	kb, err := h.usecase.Create(c.Context(), ownerID, req)
	if err != nil {
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(kb)
}

// List returns the caller's knowledge bases with document counts
func (h *KnowledgeBaseHTTPHandler) List(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	bases, err := h.usecase.List(c.Context(), ownerID)
	if err != nil {
		return respondError(c, apperrors.NewInternalError("Failed to list knowledge bases"))
	}

	return c.JSON(fiber.Map{
		"knowledge_bases": bases,
		"total":           len(bases),
	})
}

// Get returns a single knowledge base by ID
func (h *KnowledgeBaseHTTPHandler) Get(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	kb, err := h.usecase.Get(c.Context(), ownerID, c.Params("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrKnowledgeBaseNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Knowledge base"))
		}
		return respondError(c, apperrors.NewInternalError("Failed to get knowledge base"))
	}

	return c.JSON(kb)
}

// Update applies a partial update to a knowledge base
func (h *KnowledgeBaseHTTPHandler) Update(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	var update model.KnowledgeBaseUpdate
	if err := c.BodyParser(&update); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	kb, err := h.usecase.Update(c.Context(), ownerID, c.Params("id"), update)
	if err != nil {
		if errors.Is(err, usecase.ErrKnowledgeBaseNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Knowledge base"))
		}
		if errors.Is(err, usecase.ErrInvalidName) {
			return respondError(c, apperrors.NewValidationError(err.Error()))
		}
		return respondError(c, apperrors.NewInternalError("Failed to update knowledge base"))
	}

	return c.JSON(kb)
}

// Delete removes a knowledge base and its documents
func (h *KnowledgeBaseHTTPHandler) Delete(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	if err := h.usecase.Delete(c.Context(), ownerID, c.Params("id")); err != nil {
		if errors.Is(err, usecase.ErrKnowledgeBaseNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Knowledge base"))
		}
		return respondError(c, apperrors.NewInternalError("Failed to delete knowledge base"))
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AddDocument appends a document to a knowledge base
func (h *KnowledgeBaseHTTPHandler) AddDocument(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	var req usecase.AddDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, apperrors.NewValidationError("Invalid request body"))
	}

	doc, err := h.usecase.AddDocument(c.Context(), ownerID, c.Params("id"), req)
	if err != nil {
		if errors.Is(err, usecase.ErrKnowledgeBaseNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Knowledge base"))
		}
		return respondError(c, apperrors.NewValidationError(err.Error()))
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ListDocuments lists the documents of a knowledge base
func (h *KnowledgeBaseHTTPHandler) ListDocuments(c *fiber.Ctx) error {
	ownerID, err := utils.GetUserIDFromContext(c.UserContext())
	if err != nil {
		return respondError(c, apperrors.NewAuthenticationError("Unauthorized"))
	}

	docs, err := h.usecase.ListDocuments(c.Context(), ownerID, c.Params("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrKnowledgeBaseNotFound) {
			return respondError(c, apperrors.NewNotFoundError("Knowledge base"))
		}
		return respondError(c, apperrors.NewInternalError("Failed to list documents"))
	}

	return c.JSON(fiber.Map{
		"documents": docs,
		"total":     len(docs),
	})
}
