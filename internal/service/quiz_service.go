package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
)

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrQuizLocked indicates the quiz has recorded attempts and is immutable.
	ErrQuizLocked = errors.New("quiz has been attempted and is locked")
	// ErrQuizStartNotFuture indicates the scheduled start is not in the future.
	ErrQuizStartNotFuture = errors.New("quiz start must be in the future")
)

// QuizService manages quizzes and their question sets.
type QuizService interface {
	List(ctx context.Context) ([]dto.QuizResponse, error)
	ListOpen(ctx context.Context) ([]dto.QuizListItem, error)
	Get(ctx context.Context, id uint) (dto.QuizResponse, error)
	Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error)
	Update(ctx context.Context, id uint, payload dto.QuizUpdateRequest) (dto.QuizResponse, error)
	Delete(ctx context.Context, id uint) error
	AddQuestion(ctx context.Context, quizID uint, payload dto.QuestionRequest) (dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionRequest) (dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, questionID uint) error
}

type quizService struct {
	quizzes   repository.QuizRepository
	chapters  repository.ChapterRepository
	scores    repository.ScoreRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewQuizService constructs a QuizService instance.
func NewQuizService(quizzes repository.QuizRepository, chapters repository.ChapterRepository, scores repository.ScoreRepository, validate *validator.Validate, logger zerolog.Logger) QuizService {
	return &quizService{
		quizzes:   quizzes,
		chapters:  chapters,
		scores:    scores,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "quiz_service").Logger(),
		now:       time.Now,
	}
}

func (s *quizService) List(ctx context.Context) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuizResponse, 0, len(quizzes))
	for _, quiz := range quizzes {
		responses = append(responses, dto.NewQuizResponse(quiz))
	}

	return responses, nil
}

func (s *quizService) ListOpen(ctx context.Context) ([]dto.QuizListItem, error) {
	quizzes, err := s.quizzes.ListOpenAfter(ctx, s.now())
	if err != nil {
		return nil, err
	}

	return dto.NewQuizListItemSlice(quizzes), nil
}

func (s *quizService) Get(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	if !payload.ScheduledStart.After(s.now()) {
		return dto.QuizResponse{}, ErrQuizStartNotFuture
	}

	if _, err := s.chapters.GetByID(ctx, payload.ChapterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrChapterNotFound
		}
		return dto.QuizResponse{}, err
	}

	quiz := models.Quiz{
		ChapterID:       payload.ChapterID,
		ScheduledStart:  payload.ScheduledStart,
		DurationMinutes: payload.DurationMinutes,
		Remarks:         s.clean(payload.Remarks),
	}

	questions := s.buildQuestions(payload.Questions)

	if err := s.quizzes.CreateWithQuestions(ctx, &quiz, questions); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Int("questions", len(questions)).Msg("quiz created")

	created, err := s.quizzes.GetWithQuestions(ctx, quiz.ID)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(created), nil
}

func (s *quizService) Update(ctx context.Context, id uint, payload dto.QuizUpdateRequest) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	if err := s.ensureUnlocked(ctx, id); err != nil {
		return dto.QuizResponse{}, err
	}

	if !payload.ScheduledStart.After(s.now()) {
		return dto.QuizResponse{}, ErrQuizStartNotFuture
	}

	if payload.ChapterID != quiz.ChapterID {
		if _, err := s.chapters.GetByID(ctx, payload.ChapterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.QuizResponse{}, ErrChapterNotFound
			}
			return dto.QuizResponse{}, err
		}
	}

	quiz.ChapterID = payload.ChapterID
	quiz.ScheduledStart = payload.ScheduledStart
	quiz.DurationMinutes = payload.DurationMinutes
	quiz.Remarks = s.clean(payload.Remarks)
	quiz.Questions = nil

	questions := s.buildQuestions(payload.Questions)

	if err := s.quizzes.UpdateWithQuestions(ctx, &quiz, questions); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Msg("quiz updated")

	updated, err := s.quizzes.GetWithQuestions(ctx, quiz.ID)
	if err != nil {
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(updated), nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if _, err := s.quizzes.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	if err := s.ensureUnlocked(ctx, id); err != nil {
		return err
	}

	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return err
	}

	s.logger.Info().Uint("quiz_id", id).Msg("quiz deleted")

	return nil
}

func (s *quizService) AddQuestion(ctx context.Context, quizID uint, payload dto.QuestionRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuizNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := s.ensureUnlocked(ctx, quizID); err != nil {
		return dto.QuestionResponse{}, err
	}

	question := s.buildQuestion(payload)
	question.QuizID = quizID

	if err := s.quizzes.AddQuestion(ctx, &question); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question), nil
}

func (s *quizService) UpdateQuestion(ctx context.Context, questionID uint, payload dto.QuestionRequest) (dto.QuestionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionResponse{}, err
	}

	question, err := s.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	if err := s.ensureUnlocked(ctx, question.QuizID); err != nil {
		return dto.QuestionResponse{}, err
	}

	updated := s.buildQuestion(payload)
	updated.ID = question.ID
	updated.QuizID = question.QuizID
	updated.CreatedAt = question.CreatedAt

	if err := s.quizzes.UpdateQuestion(ctx, &updated); err != nil {
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(updated), nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, questionID uint) error {
	question, err := s.quizzes.GetQuestion(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.ensureUnlocked(ctx, question.QuizID); err != nil {
		return err
	}

	return s.quizzes.DeleteQuestion(ctx, questionID)
}

// ensureUnlocked enforces the one-way editable→locked transition: a quiz with
// any recorded attempt can no longer be edited or deleted.
func (s *quizService) ensureUnlocked(ctx context.Context, quizID uint) error {
	attempts, err := s.scores.CountByQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	if attempts > 0 {
		return ErrQuizLocked
	}
	return nil
}

func (s *quizService) clean(input string) string {
	return s.sanitizer.Sanitize(input)
}

func (s *quizService) buildQuestion(payload dto.QuestionRequest) models.Question {
	return models.Question{
		Statement:     s.clean(payload.Statement),
		Option1:       s.clean(payload.Option1),
		Option2:       s.clean(payload.Option2),
		Option3:       s.clean(payload.Option3),
		Option4:       s.clean(payload.Option4),
		CorrectOption: payload.CorrectOption,
	}
}

func (s *quizService) buildQuestions(payloads []dto.QuestionRequest) []models.Question {
	questions := make([]models.Question, 0, len(payloads))
	for _, payload := range payloads {
		questions = append(questions, s.buildQuestion(payload))
	}

	return questions
}
