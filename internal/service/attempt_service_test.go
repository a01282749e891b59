package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
)

type attemptEnv struct {
	db      *gorm.DB
	redis   *redis.Client
	svc     *attemptService
	student models.Student
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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
	return db
}

func newAttemptEnv(t *testing.T, acceptLate bool) *attemptEnv {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	db := openTestDB(t)

	student := models.Student{Email: "amy@example.com", PasswordHash: "x", FullName: "Amy Pond"}
	require.NoError(t, db.Create(&student).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewAttemptService(
		repository.NewQuizRepository(db),
		repository.NewScoreRepository(db),
		redisClient,
		10*time.Minute,
		acceptLate,
		validate,
		zerolog.Nop(),
	).(*attemptService)

	return &attemptEnv{db: db, redis: redisClient, svc: svc, student: student}
}

// seedQuiz creates a subject, chapter and quiz with three questions whose
// correct options are 1, 2 and 3.
func seedQuiz(t *testing.T, db *gorm.DB, start time.Time, durationMinutes int) models.Quiz {
	t.Helper()

	subject := models.Subject{Name: "Physics"}
	require.NoError(t, db.Create(&subject).Error)
	chapter := models.Chapter{SubjectID: subject.ID, Name: "Kinematics"}
	require.NoError(t, db.Create(&chapter).Error)

	quiz := models.Quiz{ChapterID: chapter.ID, ScheduledStart: start, DurationMinutes: durationMinutes}
	require.NoError(t, db.Create(&quiz).Error)

	for i := 1; i <= 3; i++ {
		question := models.Question{
			QuizID:        quiz.ID,
			Statement:     fmt.Sprintf("Question %d", i),
			Option1:       "A",
			Option2:       "B",
			Option3:       "C",
			Option4:       "D",
			CorrectOption: i,
		}
		require.NoError(t, db.Create(&question).Error)
	}

	return quiz
}

func TestBeginAttemptOpensBoundedSession(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	// Started five minutes ago with a thirty minute window, so twenty five
	// minutes remain.
	quiz := seedQuiz(t, env.db, now.Add(-5*time.Minute), 30)

	ctx := context.Background()
	resp, err := env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, quiz.ID, resp.QuizID)
	require.Equal(t, now, resp.StartedAt)
	require.Equal(t, now.Add(25*time.Minute), resp.EndsAt)
	require.Len(t, resp.Questions, 3)

	require.Equal(t, "Question 1", resp.Questions[0].Statement)

	exists, err := env.redis.Exists(ctx, sessionKey(env.student.ID)).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), exists)
}

func TestBeginAttemptCapsDurationAtQuizWindow(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	// The quiz is not due to close for an hour, so the full duration applies.
	quiz := seedQuiz(t, env.db, now, 60)

	resp, err := env.svc.BeginAttempt(context.Background(), env.student.ID, quiz.ID)
	require.NoError(t, err)
	require.Equal(t, now.Add(60*time.Minute), resp.EndsAt)
}

func TestBeginAttemptRejectsEndedQuiz(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now.Add(-2*time.Hour), 30)

	_, err := env.svc.BeginAttempt(context.Background(), env.student.ID, quiz.ID)
	require.ErrorIs(t, err, ErrQuizEnded)
}

func TestBeginAttemptRejectsSecondAttempt(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 30)
	score := models.Score{QuizID: quiz.ID, StudentID: env.student.ID, TotalScored: 2, TotalQuestions: 3, AttemptedAt: now.Add(-time.Hour)}
	require.NoError(t, env.db.Create(&score).Error)

	_, err := env.svc.BeginAttempt(context.Background(), env.student.ID, quiz.ID)
	require.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestBeginAttemptRejectsEmptyQuiz(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	subject := models.Subject{Name: "Chemistry"}
	require.NoError(t, env.db.Create(&subject).Error)
	chapter := models.Chapter{SubjectID: subject.ID, Name: "Stoichiometry"}
	require.NoError(t, env.db.Create(&chapter).Error)
	quiz := models.Quiz{ChapterID: chapter.ID, ScheduledStart: now, DurationMinutes: 30}
	require.NoError(t, env.db.Create(&quiz).Error)

	_, err := env.svc.BeginAttempt(context.Background(), env.student.ID, quiz.ID)
	require.ErrorIs(t, err, ErrNoQuestions)
}

func TestBeginAttemptUnknownQuiz(t *testing.T) {
	env := newAttemptEnv(t, true)

	_, err := env.svc.BeginAttempt(context.Background(), env.student.ID, 999)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestSubmitAttemptRecordsScoreAndClearsSession(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 30)

	ctx := context.Background()
	begin, err := env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.NoError(t, err)

	// Two of three answers match the key; the third question is skipped and
	// counts as wrong.
	env.svc.now = func() time.Time { return now.Add(12 * time.Minute) }
	answers := map[uint]int{
		begin.Questions[0].ID: 1,
		begin.Questions[1].ID: 2,
	}

	resp, err := env.svc.SubmitAttempt(ctx, env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: answers})
	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalScored)
	require.Equal(t, 3, resp.TotalQuestions)
	require.InDelta(t, 66.66, resp.Percentage, 0.1)
	require.Equal(t, 12, resp.TimeTakenMinutes)
	require.False(t, resp.Late)

	exists, err := env.redis.Exists(ctx, sessionKey(env.student.ID)).Result()
	require.NoError(t, err)
	require.Zero(t, exists)

	var stored models.Score
	require.NoError(t, env.db.First(&stored, resp.ScoreID).Error)
	require.Equal(t, 2, stored.TotalScored)

	// The session is gone, so replaying the submission fails.
	_, err = env.svc.SubmitAttempt(ctx, env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: answers})
	require.ErrorIs(t, err, ErrInvalidSession)

	// And the ledger blocks a fresh session for the same quiz.
	_, err = env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.ErrorIs(t, err, ErrAlreadyAttempted)
}

func TestSubmitAttemptWithoutSession(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 30)

	_, err := env.svc.SubmitAttempt(context.Background(), env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: map[uint]int{1: 1}})
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestSubmitAttemptRejectsMismatchedQuiz(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	first := seedQuiz(t, env.db, now, 30)
	second := seedQuiz(t, env.db, now, 30)

	ctx := context.Background()
	_, err := env.svc.BeginAttempt(ctx, env.student.ID, first.ID)
	require.NoError(t, err)

	_, err = env.svc.SubmitAttempt(ctx, env.student.ID, second.ID, dto.SubmitAttemptRequest{Answers: map[uint]int{1: 1}})
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestSubmitAttemptLateAcceptedWhenEnabled(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 10)

	ctx := context.Background()
	begin, err := env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return begin.EndsAt.Add(3 * time.Minute) }

	resp, err := env.svc.SubmitAttempt(ctx, env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: map[uint]int{begin.Questions[0].ID: 1}})
	require.NoError(t, err)
	require.True(t, resp.Late)
	require.Equal(t, 1, resp.TotalScored)
}

func TestSubmitAttemptLateRejectedWhenDisabled(t *testing.T) {
	env := newAttemptEnv(t, false)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 10)

	ctx := context.Background()
	begin, err := env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.NoError(t, err)

	env.svc.now = func() time.Time { return begin.EndsAt.Add(time.Minute) }

	_, err = env.svc.SubmitAttempt(ctx, env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: map[uint]int{begin.Questions[0].ID: 1}})
	require.ErrorIs(t, err, ErrQuizExpired)

	var count int64
	require.NoError(t, env.db.Model(&models.Score{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestReviewAttemptOwnership(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	quiz := seedQuiz(t, env.db, now, 30)

	ctx := context.Background()
	begin, err := env.svc.BeginAttempt(ctx, env.student.ID, quiz.ID)
	require.NoError(t, err)

	submitted, err := env.svc.SubmitAttempt(ctx, env.student.ID, quiz.ID, dto.SubmitAttemptRequest{Answers: map[uint]int{
		begin.Questions[0].ID: 1,
		begin.Questions[1].ID: 4,
	}})
	require.NoError(t, err)

	review, err := env.svc.ReviewAttempt(ctx, submitted.ScoreID, env.student.ID, false)
	require.NoError(t, err)
	require.Len(t, review.Questions, 3)
	require.True(t, review.Questions[0].Correct)
	require.Equal(t, 4, review.Questions[1].ChosenOption)
	require.False(t, review.Questions[1].Correct)

	_, err = env.svc.ReviewAttempt(ctx, submitted.ScoreID, env.student.ID+1, false)
	require.ErrorIs(t, err, ErrAttemptForbidden)

	adminView, err := env.svc.ReviewAttempt(ctx, submitted.ScoreID, 0, true)
	require.NoError(t, err)
	require.Equal(t, env.student.ID, adminView.StudentID)

	_, err = env.svc.ReviewAttempt(ctx, 9999, env.student.ID, false)
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestListAttemptsNewestFirst(t *testing.T) {
	env := newAttemptEnv(t, true)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	first := seedQuiz(t, env.db, now, 30)
	second := seedQuiz(t, env.db, now, 30)

	older := models.Score{QuizID: first.ID, StudentID: env.student.ID, TotalScored: 1, TotalQuestions: 3, AttemptedAt: now.Add(-2 * time.Hour)}
	newer := models.Score{QuizID: second.ID, StudentID: env.student.ID, TotalScored: 3, TotalQuestions: 3, AttemptedAt: now.Add(-time.Hour)}
	require.NoError(t, env.db.Create(&older).Error)
	require.NoError(t, env.db.Create(&newer).Error)

	attempts, err := env.svc.ListAttempts(context.Background(), env.student.ID)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	require.Equal(t, newer.ID, attempts[0].ScoreID)
	require.Equal(t, older.ID, attempts[1].ScoreID)
}
