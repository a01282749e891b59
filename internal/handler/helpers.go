package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/service"
	"github.com/noah-isme/quizmaster-go-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func isAdminFromContext(c *fiber.Ctx) bool {
	return userRoleFromContext(c) == models.RoleAdmin
}

// handleDomainError maps service sentinel errors onto HTTP statuses shared
// across handlers. Returns false when the error is not a known domain error.
func handleDomainError(c *fiber.Ctx, err error) (bool, error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound),
		errors.Is(err, service.ErrChapterNotFound),
		errors.Is(err, service.ErrQuizNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrAttemptNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrQuizLocked),
		errors.Is(err, service.ErrAlreadyAttempted),
		errors.Is(err, service.ErrQuizEnded),
		errors.Is(err, service.ErrNoQuestions),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrQuizExpired),
		errors.Is(err, service.ErrEmailTaken):
		return true, utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrQuizStartNotFuture):
		return true, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return true, utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAttemptForbidden):
		return true, utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return true, utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	return false, nil
}
