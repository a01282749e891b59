package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/service"
	"github.com/noah-isme/quizmaster-go-api/internal/utils"
)

// AttemptHandler manages quiz attempt endpoints.
type AttemptHandler struct {
	service service.AttemptService
	logger  zerolog.Logger
}

// NewAttemptHandler builds an attempt handler instance.
func NewAttemptHandler(service service.AttemptService, logger zerolog.Logger) *AttemptHandler {
	return &AttemptHandler{
		service: service,
		logger:  logger.With().Str("component", "attempt_handler").Logger(),
	}
}

// RegisterStudent attaches the student-only attempt routes.
func (h *AttemptHandler) RegisterStudent(router fiber.Router) {
	router.Post("/quizzes/:id/begin", h.begin)
	router.Post("/quizzes/:id/submit", h.submit)
	router.Get("/attempts", h.list)
}

// RegisterShared attaches routes available to students and administrators.
func (h *AttemptHandler) RegisterShared(router fiber.Router) {
	router.Get("/attempts/:id", h.review)
}

func (h *AttemptHandler) begin(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.BeginAttempt(c.Context(), userIDFromContext(c), quizID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz session opened", response)
}

func (h *AttemptHandler) submit(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitAttemptRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.SubmitAttempt(c.Context(), userIDFromContext(c), quizID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "attempt recorded", response)
}

func (h *AttemptHandler) list(c *fiber.Ctx) error {
	attempts, err := h.service.ListAttempts(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempts retrieved", attempts)
}

func (h *AttemptHandler) review(c *fiber.Ctx) error {
	scoreID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.ReviewAttempt(c.Context(), scoreID, userIDFromContext(c), isAdminFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "attempt retrieved", response)
}

func (h *AttemptHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, result := handleDomainError(c, err); handled {
		return result
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
