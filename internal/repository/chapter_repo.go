package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// ChapterRepository defines persistence operations for chapters.
type ChapterRepository interface {
	ListBySubject(ctx context.Context, subjectID uint) ([]models.Chapter, error)
	List(ctx context.Context) ([]models.Chapter, error)
	GetByID(ctx context.Context, id uint) (models.Chapter, error)
	Create(ctx context.Context, chapter *models.Chapter) error
	Update(ctx context.Context, chapter *models.Chapter) error
	Delete(ctx context.Context, id uint) error
}

type chapterRepository struct {
	db *gorm.DB
}

// NewChapterRepository instantiates a GORM-backed repository.
func NewChapterRepository(db *gorm.DB) ChapterRepository {
	return &chapterRepository{db: db}
}

func (r *chapterRepository) ListBySubject(ctx context.Context, subjectID uint) ([]models.Chapter, error) {
	var chapters []models.Chapter
	if err := r.db.WithContext(ctx).Where("subject_id = ?", subjectID).Order("name ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}

	return chapters, nil
}

func (r *chapterRepository) List(ctx context.Context) ([]models.Chapter, error) {
	var chapters []models.Chapter
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}

	return chapters, nil
}

func (r *chapterRepository) GetByID(ctx context.Context, id uint) (models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		return models.Chapter{}, err
	}

	return chapter, nil
}

func (r *chapterRepository) Create(ctx context.Context, chapter *models.Chapter) error {
	return r.db.WithContext(ctx).Create(chapter).Error
}

func (r *chapterRepository) Update(ctx context.Context, chapter *models.Chapter) error {
	return r.db.WithContext(ctx).Save(chapter).Error
}

// Delete removes the chapter together with its quizzes and their questions.
func (r *chapterRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quizIDs []uint
		if err := tx.Model(&models.Quiz{}).Where("chapter_id = ?", id).Pluck("id", &quizIDs).Error; err != nil {
			return err
		}

		if len(quizIDs) > 0 {
			if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
			if err := tx.Where("chapter_id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.Chapter{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
