package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/quizmaster-go-api/internal/service"
	"github.com/noah-isme/quizmaster-go-api/internal/utils"
)

// DashboardHandler serves the student and administrator analytics views.
type DashboardHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewDashboardHandler builds a dashboard handler instance.
func NewDashboardHandler(service service.StatsService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// RegisterStudent attaches the student dashboard route.
func (h *DashboardHandler) RegisterStudent(router fiber.Router) {
	router.Get("/dashboard", h.studentDashboard)
}

// RegisterAdmin attaches the admin dashboard route.
func (h *DashboardHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/dashboard", h.adminDashboard)
}

func (h *DashboardHandler) studentDashboard(c *fiber.Ctx) error {
	response, err := h.service.StudentDashboard(c.Context(), userIDFromContext(c))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build student dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}

func (h *DashboardHandler) adminDashboard(c *fiber.Ctx) error {
	response, err := h.service.AdminDashboard(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to build admin dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}
