package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
)

var (
	// ErrQuizEnded indicates the quiz window has closed.
	ErrQuizEnded = errors.New("quiz has ended")
	// ErrAlreadyAttempted indicates an attempt already exists for this student and quiz.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrNoQuestions indicates the quiz has no questions to answer.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrInvalidSession indicates no matching session exists for the submission.
	ErrInvalidSession = errors.New("invalid quiz session")
	// ErrQuizExpired indicates the session deadline passed and late submissions are disabled.
	ErrQuizExpired = errors.New("quiz time has expired")
	// ErrAttemptNotFound indicates the attempt record does not exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptForbidden indicates the caller may not view this attempt.
	ErrAttemptForbidden = errors.New("attempt belongs to another student")
)

// quizSession is the transient record binding a student to an in-progress quiz.
// One session per student; a new begin replaces any previous one.
type quizSession struct {
	QuizID    uint      `json:"quiz_id"`
	StartedAt time.Time `json:"started_at"`
	EndsAt    time.Time `json:"ends_at"`
}

// AttemptService gates student access to quizzes: one bounded time window,
// one attempt per (student, quiz) pair.
type AttemptService interface {
	BeginAttempt(ctx context.Context, studentID, quizID uint) (dto.BeginAttemptResponse, error)
	SubmitAttempt(ctx context.Context, studentID, quizID uint, payload dto.SubmitAttemptRequest) (dto.SubmitAttemptResponse, error)
	ListAttempts(ctx context.Context, studentID uint) ([]dto.AttemptSummary, error)
	ReviewAttempt(ctx context.Context, scoreID, requesterID uint, isAdmin bool) (dto.AttemptReviewResponse, error)
}

type attemptService struct {
	quizzes      repository.QuizRepository
	scores       repository.ScoreRepository
	sessions     *redis.Client
	sessionSlack time.Duration
	acceptLate   bool
	validator    *validator.Validate
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAttemptService constructs an AttemptService instance.
func NewAttemptService(quizzes repository.QuizRepository, scores repository.ScoreRepository, sessions *redis.Client, sessionSlack time.Duration, acceptLate bool, validate *validator.Validate, logger zerolog.Logger) AttemptService {
	return &attemptService{
		quizzes:      quizzes,
		scores:       scores,
		sessions:     sessions,
		sessionSlack: sessionSlack,
		acceptLate:   acceptLate,
		validator:    validate,
		logger:       logger.With().Str("component", "attempt_service").Logger(),
		now:          time.Now,
	}
}

func sessionKey(studentID uint) string {
	return fmt.Sprintf("quiz:session:%d", studentID)
}

func (s *attemptService) BeginAttempt(ctx context.Context, studentID, quizID uint) (dto.BeginAttemptResponse, error) {
	quiz, err := s.quizzes.GetWithQuestions(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.BeginAttemptResponse{}, ErrQuizNotFound
		}
		return dto.BeginAttemptResponse{}, err
	}

	now := s.now()
	if quiz.HasEnded(now) {
		return dto.BeginAttemptResponse{}, ErrQuizEnded
	}

	attempted, err := s.scores.ExistsForQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return dto.BeginAttemptResponse{}, err
	}
	if attempted {
		return dto.BeginAttemptResponse{}, ErrAlreadyAttempted
	}

	if len(quiz.Questions) == 0 {
		return dto.BeginAttemptResponse{}, ErrNoQuestions
	}

	// The effective window never extends past the quiz's own end.
	remaining := quiz.DurationMinutes
	untilEnd := int(quiz.WindowEnd().Sub(now).Minutes())
	if untilEnd < remaining {
		remaining = untilEnd
	}
	if remaining <= 0 {
		return dto.BeginAttemptResponse{}, ErrQuizEnded
	}

	session := quizSession{
		QuizID:    quizID,
		StartedAt: now,
		EndsAt:    now.Add(time.Duration(remaining) * time.Minute),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return dto.BeginAttemptResponse{}, err
	}

	ttl := session.EndsAt.Sub(now) + s.sessionSlack
	if err := s.sessions.Set(ctx, sessionKey(studentID), payload, ttl).Err(); err != nil {
		return dto.BeginAttemptResponse{}, err
	}

	s.logger.Info().Uint("student_id", studentID).Uint("quiz_id", quizID).Time("ends_at", session.EndsAt).Msg("quiz session opened")

	return dto.BeginAttemptResponse{
		QuizID:    quizID,
		StartedAt: session.StartedAt,
		EndsAt:    session.EndsAt,
		Questions: dto.NewAttemptQuestionSlice(quiz.Questions),
	}, nil
}

func (s *attemptService) SubmitAttempt(ctx context.Context, studentID, quizID uint, payload dto.SubmitAttemptRequest) (dto.SubmitAttemptResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitAttemptResponse{}, err
	}

	session, err := s.loadSession(ctx, studentID)
	if err != nil {
		return dto.SubmitAttemptResponse{}, err
	}
	if session == nil || session.QuizID != quizID {
		return dto.SubmitAttemptResponse{}, ErrInvalidSession
	}

	attempted, err := s.scores.ExistsForQuizAndStudent(ctx, quizID, studentID)
	if err != nil {
		return dto.SubmitAttemptResponse{}, err
	}
	if attempted {
		return dto.SubmitAttemptResponse{}, ErrAlreadyAttempted
	}

	quiz, err := s.quizzes.GetWithQuestions(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitAttemptResponse{}, ErrQuizNotFound
		}
		return dto.SubmitAttemptResponse{}, err
	}

	if len(quiz.Questions) == 0 {
		return dto.SubmitAttemptResponse{}, ErrNoQuestions
	}

	now := s.now()
	late := now.After(session.EndsAt)
	if late && !s.acceptLate {
		return dto.SubmitAttemptResponse{}, ErrQuizExpired
	}

	correct := 0
	for _, question := range quiz.Questions {
		if chosen, ok := payload.Answers[question.ID]; ok && chosen == question.CorrectOption {
			correct++
		}
	}

	answers, err := json.Marshal(payload.Answers)
	if err != nil {
		return dto.SubmitAttemptResponse{}, err
	}

	score := models.Score{
		QuizID:           quizID,
		StudentID:        studentID,
		TotalScored:      correct,
		TotalQuestions:   len(quiz.Questions),
		TimeTakenMinutes: int(now.Sub(session.StartedAt).Minutes()),
		AttemptedAt:      now,
		Answers:          answers,
	}

	// The unique index on (quiz_id, student_id) serializes concurrent
	// submissions: the loser gets a duplicate-key error, not a second row.
	if err := s.scores.Create(ctx, &score); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.SubmitAttemptResponse{}, ErrAlreadyAttempted
		}
		return dto.SubmitAttemptResponse{}, err
	}

	if err := s.sessions.Del(ctx, sessionKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to clear quiz session")
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("quiz_id", quizID).
		Int("scored", correct).
		Int("total", len(quiz.Questions)).
		Bool("late", late).
		Msg("attempt recorded")

	percentage, _ := score.Percentage()

	return dto.SubmitAttemptResponse{
		ScoreID:          score.ID,
		QuizID:           quizID,
		TotalScored:      correct,
		TotalQuestions:   len(quiz.Questions),
		Percentage:       percentage,
		TimeTakenMinutes: score.TimeTakenMinutes,
		AttemptedAt:      now,
		Late:             late,
	}, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, studentID uint) ([]dto.AttemptSummary, error) {
	scores, err := s.scores.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewAttemptSummarySlice(scores), nil
}

func (s *attemptService) ReviewAttempt(ctx context.Context, scoreID, requesterID uint, isAdmin bool) (dto.AttemptReviewResponse, error) {
	score, err := s.scores.GetByID(ctx, scoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttemptReviewResponse{}, ErrAttemptNotFound
		}
		return dto.AttemptReviewResponse{}, err
	}

	if !isAdmin && score.StudentID != requesterID {
		return dto.AttemptReviewResponse{}, ErrAttemptForbidden
	}

	var answers map[uint]int
	if len(score.Answers) > 0 {
		if err := json.Unmarshal(score.Answers, &answers); err != nil {
			s.logger.Warn().Err(err).Uint("score_id", scoreID).Msg("failed to decode stored answers")
		}
	}

	questions := make([]dto.AttemptReviewQuestion, 0, len(score.Quiz.Questions))
	for _, question := range score.Quiz.Questions {
		chosen := answers[question.ID]
		questions = append(questions, dto.AttemptReviewQuestion{
			QuestionID:    question.ID,
			Statement:     question.Statement,
			Option1:       question.Option1,
			Option2:       question.Option2,
			Option3:       question.Option3,
			Option4:       question.Option4,
			ChosenOption:  chosen,
			CorrectOption: question.CorrectOption,
			Correct:       chosen == question.CorrectOption,
		})
	}

	percentage, _ := score.Percentage()

	return dto.AttemptReviewResponse{
		ScoreID:          score.ID,
		QuizID:           score.QuizID,
		StudentID:        score.StudentID,
		TotalScored:      score.TotalScored,
		TotalQuestions:   score.TotalQuestions,
		Percentage:       percentage,
		TimeTakenMinutes: score.TimeTakenMinutes,
		AttemptedAt:      score.AttemptedAt,
		Questions:        questions,
	}, nil
}

func (s *attemptService) loadSession(ctx context.Context, studentID uint) (*quizSession, error) {
	raw, err := s.sessions.Get(ctx, sessionKey(studentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var session quizSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, ErrInvalidSession
	}

	return &session, nil
}
