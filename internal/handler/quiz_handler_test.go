package handler_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

func TestAdminQuizManagement(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.loginAdmin(t)

	quizID, questionIDs, _ := ta.seedCatalogAndQuiz(t, adminToken)

	resp := ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/quizzes/%d", quizID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var quiz struct {
		ID        uint `json:"id"`
		Questions []struct {
			ID uint `json:"id"`
		} `json:"questions"`
	}
	decodeData(t, resp, &quiz)
	require.Equal(t, quizID, quiz.ID)
	require.Len(t, quiz.Questions, 2)

	resp = ta.request(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/quizzes/%d/questions", quizID), adminToken, map[string]interface{}{
		"statement":      "Refraction bends",
		"option1":        "light",
		"option2":        "sound",
		"option3":        "mass",
		"option4":        "time",
		"correct_option": 1,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/questions/%d", questionIDs[0]), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/quizzes/%d", quizID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/quizzes/%d", quizID), adminToken, nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateQuizRejectsPastStartOverHTTP(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.loginAdmin(t)

	resp := ta.request(t, http.MethodPost, "/api/v1/admin/subjects", adminToken, map[string]string{"name": "Law"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var subject struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &subject)

	resp = ta.request(t, http.MethodPost, "/api/v1/admin/chapters", adminToken, map[string]interface{}{
		"subject_id": subject.ID,
		"name":       "Contracts",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var chapter struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &chapter)

	resp = ta.request(t, http.MethodPost, "/api/v1/admin/quizzes", adminToken, map[string]interface{}{
		"chapter_id":       chapter.ID,
		"scheduled_start":  time.Now().Add(-time.Hour).Format(time.RFC3339),
		"duration_minutes": 30,
		"questions": []map[string]interface{}{
			{"statement": "s", "option1": "a", "option2": "b", "option3": "c", "option4": "d", "correct_option": 1},
		},
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestQuizEditingBlockedAfterAttempt(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.loginAdmin(t)
	_, studentID := ta.registerStudent(t, "locker@example.com")

	quizID, questionIDs, _ := ta.seedCatalogAndQuiz(t, adminToken)

	score := models.Score{QuizID: quizID, StudentID: studentID, TotalScored: 1, TotalQuestions: 2, AttemptedAt: time.Now()}
	require.NoError(t, ta.db.Create(&score).Error)

	resp := ta.request(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/quizzes/%d", quizID), adminToken, map[string]interface{}{
		"chapter_id":       1,
		"scheduled_start":  time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		"duration_minutes": 45,
		"questions": []map[string]interface{}{
			{"statement": "s", "option1": "a", "option2": "b", "option3": "c", "option4": "d", "correct_option": 1},
		},
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/quizzes/%d", quizID), adminToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = ta.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/admin/questions/%d", questionIDs[0]), adminToken, nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestStudentQuizListingHidesAnswers(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.loginAdmin(t)
	studentToken, _ := ta.registerStudent(t, "browser@example.com")

	ta.seedCatalogAndQuiz(t, adminToken)

	resp := ta.request(t, http.MethodGet, "/api/v1/student/quizzes", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var quizzes []struct {
		ID        uint        `json:"id"`
		WindowEnd time.Time   `json:"window_end"`
		Questions interface{} `json:"questions"`
	}
	decodeData(t, resp, &quizzes)
	require.Len(t, quizzes, 1)
	require.False(t, quizzes[0].WindowEnd.IsZero())
	require.Nil(t, quizzes[0].Questions)
}

func TestStudentCatalogBrowsing(t *testing.T) {
	ta := setupApp(t)
	adminToken := ta.loginAdmin(t)
	studentToken, _ := ta.registerStudent(t, "reader@example.com")

	ta.seedCatalogAndQuiz(t, adminToken)

	resp := ta.request(t, http.MethodGet, "/api/v1/student/subjects", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var subjects []struct {
		ID       uint `json:"id"`
		Chapters []struct {
			ID uint `json:"id"`
		} `json:"chapters"`
	}
	decodeData(t, resp, &subjects)
	require.Len(t, subjects, 1)
	require.Len(t, subjects[0].Chapters, 1)

	resp = ta.request(t, http.MethodGet, fmt.Sprintf("/api/v1/student/subjects/%d/chapters", subjects[0].ID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var chapters []struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &chapters)
	require.Len(t, chapters, 1)
}
