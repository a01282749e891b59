package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/service"
	"github.com/noah-isme/quizmaster-go-api/internal/utils"
)

// CatalogHandler manages subject and chapter endpoints.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler builds a catalog handler instance.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

// RegisterAdmin attaches the admin-only mutation routes.
func (h *CatalogHandler) RegisterAdmin(router fiber.Router) {
	router.Post("/subjects", h.createSubject)
	router.Put("/subjects/:id", h.updateSubject)
	router.Delete("/subjects/:id", h.deleteSubject)
	router.Post("/chapters", h.createChapter)
	router.Put("/chapters/:id", h.updateChapter)
	router.Delete("/chapters/:id", h.deleteChapter)
}

// RegisterRead attaches the read-only catalog routes available to any
// authenticated principal.
func (h *CatalogHandler) RegisterRead(router fiber.Router) {
	router.Get("/subjects", h.listSubjects)
	router.Get("/subjects/:id/chapters", h.listChapters)
}

func (h *CatalogHandler) listSubjects(c *fiber.Ctx) error {
	subjects, err := h.service.ListSubjectsWithChapters(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subjects retrieved", subjects)
}

func (h *CatalogHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.CreateSubject(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *CatalogHandler) updateSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject, err := h.service.UpdateSubject(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subject updated", subject)
}

func (h *CatalogHandler) deleteSubject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteSubject(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "subject deleted", nil)
}

func (h *CatalogHandler) listChapters(c *fiber.Ctx) error {
	subjectID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	chapters, err := h.service.ListChapters(c.Context(), subjectID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chapters retrieved", chapters)
}

func (h *CatalogHandler) createChapter(c *fiber.Ctx) error {
	var payload dto.ChapterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chapter, err := h.service.CreateChapter(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "chapter created", chapter)
}

func (h *CatalogHandler) updateChapter(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChapterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	chapter, err := h.service.UpdateChapter(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chapter updated", chapter)
}

func (h *CatalogHandler) deleteChapter(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteChapter(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "chapter deleted", nil)
}

func (h *CatalogHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, result := handleDomainError(c, err); handled {
		return result
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
