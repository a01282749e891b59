package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/config"
	"github.com/noah-isme/quizmaster-go-api/internal/handler"
	"github.com/noah-isme/quizmaster-go-api/internal/middleware"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
	"github.com/noah-isme/quizmaster-go-api/internal/router"
	"github.com/noah-isme/quizmaster-go-api/internal/service"
)

const testJWTSecret = "handler-test-secret"

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

// setupApp wires the full application against in-memory sqlite and redis,
// with the real JWT and role middleware in place.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Admin{},
		&models.Subject{},
		&models.Chapter{},
		&models.Quiz{},
		&models.Question{},
		&models.Score{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	studentRepo := repository.NewStudentRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	authService := service.NewAuthService(studentRepo, adminRepo, validate, testJWTSecret, time.Hour, logger)
	catalogService := service.NewCatalogService(subjectRepo, chapterRepo, validate, logger)
	quizService := service.NewQuizService(quizRepo, chapterRepo, scoreRepo, validate, logger)
	attemptService := service.NewAttemptService(quizRepo, scoreRepo, redisClient, 10*time.Minute, true, validate, logger)
	statsService := service.NewStatsService(studentRepo, subjectRepo, chapterRepo, quizRepo, scoreRepo, redisClient, time.Minute, logger)

	require.NoError(t, authService.EnsureDefaultAdmin(context.Background(), "admin", "changeme"))

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Quizmaster Test", JWTSecret: testJWTSecret}, router.Dependencies{
		AuthHandler:      handler.NewAuthHandler(authService, logger),
		CatalogHandler:   handler.NewCatalogHandler(catalogService, logger),
		QuizHandler:      handler.NewQuizHandler(quizService, logger),
		AttemptHandler:   handler.NewAttemptHandler(attemptService, logger),
		DashboardHandler: handler.NewDashboardHandler(statsService, logger),
		JWTMiddleware:    middleware.JWTProtected(testJWTSecret),
	})

	return &testApp{app: app, db: db}
}

func (ta *testApp) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeData unwraps the standard response envelope into target.
func decodeData(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success, "expected success envelope, got message %q", envelope.Message)
	if target != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, target))
	}
}

// registerStudent creates a student account and returns its bearer token and id.
func (ta *testApp) registerStudent(t *testing.T, email string) (string, uint) {
	t.Helper()

	resp := ta.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":         email,
		"password":      "secret123",
		"full_name":     "Test Student",
		"date_of_birth": "2000-05-05",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var auth struct {
		Token   string `json:"token"`
		Student struct {
			ID uint `json:"id"`
		} `json:"student"`
	}
	decodeData(t, resp, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token, auth.Student.ID
}

// loginAdmin returns a bearer token for the default administrator.
func (ta *testApp) loginAdmin(t *testing.T) string {
	t.Helper()

	resp := ta.request(t, http.MethodPost, "/api/v1/auth/admin/login", "", map[string]string{
		"username": "admin",
		"password": "changeme",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var auth struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &auth)
	return auth.Token
}

// seedCatalogAndQuiz creates a subject, chapter and a two-question quiz
// through the admin API and returns the quiz with its question IDs.
func (ta *testApp) seedCatalogAndQuiz(t *testing.T, adminToken string) (quizID uint, questionIDs []uint, answers map[string]int) {
	t.Helper()

	resp := ta.request(t, http.MethodPost, "/api/v1/admin/subjects", adminToken, map[string]string{"name": "Science"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var subject struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &subject)

	resp = ta.request(t, http.MethodPost, "/api/v1/admin/chapters", adminToken, map[string]interface{}{
		"subject_id": subject.ID,
		"name":       "Optics",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var chapter struct {
		ID uint `json:"id"`
	}
	decodeData(t, resp, &chapter)

	resp = ta.request(t, http.MethodPost, "/api/v1/admin/quizzes", adminToken, map[string]interface{}{
		"chapter_id":       chapter.ID,
		"scheduled_start":  time.Now().Add(time.Hour).Format(time.RFC3339),
		"duration_minutes": 30,
		"questions": []map[string]interface{}{
			{"statement": "Light is a", "option1": "wave", "option2": "rock", "option3": "gas", "option4": "metal", "correct_option": 1},
			{"statement": "Speed of light is about", "option1": "3 m/s", "option2": "3e8 m/s", "option3": "300 m/s", "option4": "3 km/s", "correct_option": 2},
		},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var quiz struct {
		ID        uint `json:"id"`
		Questions []struct {
			ID            uint `json:"id"`
			CorrectOption int  `json:"correct_option"`
		} `json:"questions"`
	}
	decodeData(t, resp, &quiz)
	require.Len(t, quiz.Questions, 2)

	answers = make(map[string]int, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questionIDs = append(questionIDs, question.ID)
		answers[fmt.Sprint(question.ID)] = question.CorrectOption
	}

	return quiz.ID, questionIDs, answers
}
