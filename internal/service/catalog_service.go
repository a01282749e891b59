package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
)

var (
	// ErrSubjectNotFound indicates the referenced subject does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrChapterNotFound indicates the referenced chapter does not exist.
	ErrChapterNotFound = errors.New("chapter not found")
)

// CatalogService manages subjects and chapters.
type CatalogService interface {
	ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error)
	ListSubjectsWithChapters(ctx context.Context) ([]dto.SubjectResponse, error)
	CreateSubject(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error)
	UpdateSubject(ctx context.Context, id uint, payload dto.SubjectRequest) (dto.SubjectResponse, error)
	DeleteSubject(ctx context.Context, id uint) error
	ListChapters(ctx context.Context, subjectID uint) ([]dto.ChapterResponse, error)
	CreateChapter(ctx context.Context, payload dto.ChapterRequest) (dto.ChapterResponse, error)
	UpdateChapter(ctx context.Context, id uint, payload dto.ChapterRequest) (dto.ChapterResponse, error)
	DeleteChapter(ctx context.Context, id uint) error
}

type catalogService struct {
	subjects  repository.SubjectRepository
	chapters  repository.ChapterRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(subjects repository.SubjectRepository, chapters repository.ChapterRepository, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		subjects:  subjects,
		chapters:  chapters,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) clean(input string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(input))
}

func (s *catalogService) ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *catalogService) ListSubjectsWithChapters(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.ListWithChapters(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *catalogService) CreateSubject(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject := models.Subject{
		Name:        s.clean(payload.Name),
		Description: s.clean(payload.Description),
	}

	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Uint("subject_id", subject.ID).Msg("subject created")

	return dto.NewSubjectResponse(subject), nil
}

func (s *catalogService) UpdateSubject(ctx context.Context, id uint, payload dto.SubjectRequest) (dto.SubjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}

	subject.Name = s.clean(payload.Name)
	subject.Description = s.clean(payload.Description)

	if err := s.subjects.Update(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	return dto.NewSubjectResponse(subject), nil
}

func (s *catalogService) DeleteSubject(ctx context.Context, id uint) error {
	if err := s.subjects.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	s.logger.Info().Uint("subject_id", id).Msg("subject deleted")

	return nil
}

func (s *catalogService) ListChapters(ctx context.Context, subjectID uint) ([]dto.ChapterResponse, error) {
	if _, err := s.subjects.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	chapters, err := s.chapters.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	return dto.NewChapterResponseSlice(chapters), nil
}

func (s *catalogService) CreateChapter(ctx context.Context, payload dto.ChapterRequest) (dto.ChapterResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChapterResponse{}, err
	}

	if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChapterResponse{}, ErrSubjectNotFound
		}
		return dto.ChapterResponse{}, err
	}

	chapter := models.Chapter{
		SubjectID:   payload.SubjectID,
		Name:        s.clean(payload.Name),
		Description: s.clean(payload.Description),
	}

	if err := s.chapters.Create(ctx, &chapter); err != nil {
		return dto.ChapterResponse{}, err
	}

	s.logger.Info().Uint("chapter_id", chapter.ID).Msg("chapter created")

	return dto.NewChapterResponse(chapter), nil
}

func (s *catalogService) UpdateChapter(ctx context.Context, id uint, payload dto.ChapterRequest) (dto.ChapterResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChapterResponse{}, err
	}

	chapter, err := s.chapters.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChapterResponse{}, ErrChapterNotFound
		}
		return dto.ChapterResponse{}, err
	}

	if payload.SubjectID != chapter.SubjectID {
		if _, err := s.subjects.GetByID(ctx, payload.SubjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ChapterResponse{}, ErrSubjectNotFound
			}
			return dto.ChapterResponse{}, err
		}
		chapter.SubjectID = payload.SubjectID
	}

	chapter.Name = s.clean(payload.Name)
	chapter.Description = s.clean(payload.Description)

	if err := s.chapters.Update(ctx, &chapter); err != nil {
		return dto.ChapterResponse{}, err
	}

	return dto.NewChapterResponse(chapter), nil
}

func (s *catalogService) DeleteChapter(ctx context.Context, id uint) error {
	if err := s.chapters.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChapterNotFound
		}
		return err
	}

	s.logger.Info().Uint("chapter_id", id).Msg("chapter deleted")

	return nil
}
