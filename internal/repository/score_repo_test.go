package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

func newScoreRepo(t *testing.T) (ScoreRepository, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Subject{}, &models.Chapter{}, &models.Quiz{}, &models.Question{}, &models.Score{}))

	return NewScoreRepository(db), db
}

func TestScoreCreateRejectsDuplicatePair(t *testing.T) {
	repo, _ := newScoreRepo(t)
	ctx := context.Background()

	first := models.Score{QuizID: 1, StudentID: 1, TotalScored: 2, TotalQuestions: 3, AttemptedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &first))

	// Same student may attempt another quiz, and another student the same quiz.
	other := models.Score{QuizID: 2, StudentID: 1, TotalScored: 1, TotalQuestions: 3, AttemptedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &other))
	peer := models.Score{QuizID: 1, StudentID: 2, TotalScored: 3, TotalQuestions: 3, AttemptedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &peer))

	// A second row for the same (quiz, student) pair hits the unique index.
	duplicate := models.Score{QuizID: 1, StudentID: 1, TotalScored: 3, TotalQuestions: 3, AttemptedAt: time.Now()}
	err := repo.Create(ctx, &duplicate)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestScoreExistsAndCounts(t *testing.T) {
	repo, _ := newScoreRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Score{QuizID: 7, StudentID: 3, TotalScored: 1, TotalQuestions: 2, AttemptedAt: time.Now()}))

	exists, err := repo.ExistsForQuizAndStudent(ctx, 7, 3)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsForQuizAndStudent(ctx, 7, 4)
	require.NoError(t, err)
	require.False(t, exists)

	count, err := repo.CountByQuiz(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
}

func TestScoreListByStudentOrdersNewestFirst(t *testing.T) {
	repo, db := newScoreRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	old := models.Score{QuizID: 1, StudentID: 5, TotalScored: 1, TotalQuestions: 2, AttemptedAt: base}
	recent := models.Score{QuizID: 2, StudentID: 5, TotalScored: 2, TotalQuestions: 2, AttemptedAt: base.Add(time.Hour)}
	foreign := models.Score{QuizID: 1, StudentID: 6, TotalScored: 2, TotalQuestions: 2, AttemptedAt: base}
	for _, score := range []*models.Score{&old, &recent, &foreign} {
		require.NoError(t, db.Create(score).Error)
	}

	scores, err := repo.ListByStudent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	require.Equal(t, recent.ID, scores[0].ID)
	require.Equal(t, old.ID, scores[1].ID)
}
