package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// ScoreRepository defines data operations for the attempt ledger.
// Score rows are append-only; there is no update or delete.
type ScoreRepository interface {
	ListAll(ctx context.Context) ([]models.Score, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Score, error)
	GetByID(ctx context.Context, id uint) (models.Score, error)
	ExistsForQuizAndStudent(ctx context.Context, quizID, studentID uint) (bool, error)
	CountByQuiz(ctx context.Context, quizID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, score *models.Score) error
}

type scoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository instantiates the repository.
func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) ListAll(ctx context.Context) ([]models.Score, error) {
	var scores []models.Score
	if err := r.db.WithContext(ctx).Preload("Quiz").Order("attempted_at DESC").Find(&scores).Error; err != nil {
		return nil, err
	}

	return scores, nil
}

func (r *scoreRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Score, error) {
	var scores []models.Score
	if err := r.db.WithContext(ctx).Preload("Quiz").
		Where("student_id = ?", studentID).
		Order("attempted_at DESC").
		Find(&scores).Error; err != nil {
		return nil, err
	}

	return scores, nil
}

func (r *scoreRepository) GetByID(ctx context.Context, id uint) (models.Score, error) {
	var score models.Score
	if err := r.db.WithContext(ctx).Preload("Quiz").Preload("Quiz.Questions").First(&score, id).Error; err != nil {
		return models.Score{}, err
	}

	return score, nil
}

func (r *scoreRepository) ExistsForQuizAndStudent(ctx context.Context, quizID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Score{}).
		Where("quiz_id = ?", quizID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *scoreRepository) CountByQuiz(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Score{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *scoreRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Score{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Create inserts the attempt record. The unique index on (quiz_id, student_id)
// rejects a concurrent duplicate with gorm.ErrDuplicatedKey.
func (r *scoreRepository) Create(ctx context.Context, score *models.Score) error {
	return r.db.WithContext(ctx).Create(score).Error
}
