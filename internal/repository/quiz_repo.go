package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// QuizRepository defines persistence operations for quizzes and their questions.
type QuizRepository interface {
	List(ctx context.Context) ([]models.Quiz, error)
	ListOpenAfter(ctx context.Context, reference time.Time) ([]models.Quiz, error)
	GetByID(ctx context.Context, id uint) (models.Quiz, error)
	GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error)
	CreateWithQuestions(ctx context.Context, quiz *models.Quiz, questions []models.Question) error
	UpdateWithQuestions(ctx context.Context, quiz *models.Quiz, questions []models.Question) error
	Delete(ctx context.Context, id uint) error
	GetQuestion(ctx context.Context, id uint) (models.Question, error)
	AddQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uint) error
	CountQuestions(ctx context.Context, quizID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository instantiates a GORM-backed repository.
func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) List(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Order("scheduled_start ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	return quizzes, nil
}

// ListOpenAfter returns quizzes whose window has not yet closed at the reference time.
func (r *quizRepository) ListOpenAfter(ctx context.Context, reference time.Time) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := r.db.WithContext(ctx).Order("scheduled_start ASC").Find(&quizzes).Error; err != nil {
		return nil, err
	}

	open := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if !quiz.HasEnded(reference) {
			open = append(open, quiz)
		}
	}

	return open, nil
}

func (r *quizRepository) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

func (r *quizRepository) GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.WithContext(ctx).Preload("Questions").First(&quiz, id).Error; err != nil {
		return models.Quiz{}, err
	}

	return quiz, nil
}

// CreateWithQuestions inserts the quiz and all questions atomically. A failure
// on any question rolls the whole quiz back.
func (r *quizRepository) CreateWithQuestions(ctx context.Context, quiz *models.Quiz, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].QuizID = quiz.ID
		}

		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// UpdateWithQuestions saves quiz fields and replaces the entire question set
// in one transaction.
func (r *quizRepository) UpdateWithQuestions(ctx context.Context, quiz *models.Quiz, questions []models.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(quiz).Error; err != nil {
			return err
		}

		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		for i := range questions {
			questions[i].ID = 0
			questions[i].QuizID = quiz.ID
		}

		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes the quiz and all of its questions.
func (r *quizRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Quiz{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *quizRepository) GetQuestion(ctx context.Context, id uint) (models.Question, error) {
	var question models.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return models.Question{}, err
	}

	return question, nil
}

func (r *quizRepository) AddQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *quizRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *quizRepository) DeleteQuestion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *quizRepository) CountQuestions(ctx context.Context, quizID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *quizRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Quiz{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
