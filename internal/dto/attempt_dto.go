package dto

import (
	"time"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// AttemptQuestion is a question as shown to a student during an attempt.
// The correct option is deliberately absent.
type AttemptQuestion struct {
	ID        uint   `json:"id"`
	Statement string `json:"statement"`
	Option1   string `json:"option1"`
	Option2   string `json:"option2"`
	Option3   string `json:"option3"`
	Option4   string `json:"option4"`
}

// BeginAttemptResponse is returned when a quiz session is opened.
type BeginAttemptResponse struct {
	QuizID    uint              `json:"quiz_id"`
	StartedAt time.Time         `json:"started_at"`
	EndsAt    time.Time         `json:"ends_at"`
	Questions []AttemptQuestion `json:"questions"`
}

// SubmitAttemptRequest carries the student's answers keyed by question ID.
// Values are 1-based option indices; absent questions count as wrong.
type SubmitAttemptRequest struct {
	Answers map[uint]int `json:"answers" validate:"required"`
}

// SubmitAttemptResponse summarizes the recorded attempt.
type SubmitAttemptResponse struct {
	ScoreID          uint      `json:"score_id"`
	QuizID           uint      `json:"quiz_id"`
	TotalScored      int       `json:"total_scored"`
	TotalQuestions   int       `json:"total_questions"`
	Percentage       float64   `json:"percentage"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	AttemptedAt      time.Time `json:"attempted_at"`
	Late             bool      `json:"late"`
}

// AttemptSummary lists one historical attempt for the student's history view.
type AttemptSummary struct {
	ScoreID          uint      `json:"score_id"`
	QuizID           uint      `json:"quiz_id"`
	ChapterID        uint      `json:"chapter_id"`
	TotalScored      int       `json:"total_scored"`
	TotalQuestions   int       `json:"total_questions"`
	Percentage       float64   `json:"percentage"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	AttemptedAt      time.Time `json:"attempted_at"`
}

// AttemptReviewQuestion pairs a question with the chosen and correct options.
type AttemptReviewQuestion struct {
	QuestionID    uint   `json:"question_id"`
	Statement     string `json:"statement"`
	Option1       string `json:"option1"`
	Option2       string `json:"option2"`
	Option3       string `json:"option3"`
	Option4       string `json:"option4"`
	ChosenOption  int    `json:"chosen_option"`
	CorrectOption int    `json:"correct_option"`
	Correct       bool   `json:"correct"`
}

// AttemptReviewResponse details one completed attempt question by question.
type AttemptReviewResponse struct {
	ScoreID          uint                    `json:"score_id"`
	QuizID           uint                    `json:"quiz_id"`
	StudentID        uint                    `json:"student_id"`
	TotalScored      int                     `json:"total_scored"`
	TotalQuestions   int                     `json:"total_questions"`
	Percentage       float64                 `json:"percentage"`
	TimeTakenMinutes int                     `json:"time_taken_minutes"`
	AttemptedAt      time.Time               `json:"attempted_at"`
	Questions        []AttemptReviewQuestion `json:"questions"`
}

// NewAttemptQuestionSlice strips answer keys from quiz questions.
func NewAttemptQuestionSlice(questions []models.Question) []AttemptQuestion {
	result := make([]AttemptQuestion, 0, len(questions))
	for _, question := range questions {
		result = append(result, AttemptQuestion{
			ID:        question.ID,
			Statement: question.Statement,
			Option1:   question.Option1,
			Option2:   question.Option2,
			Option3:   question.Option3,
			Option4:   question.Option4,
		})
	}

	return result
}

// NewAttemptSummary converts a Score model into a history entry.
func NewAttemptSummary(model models.Score) AttemptSummary {
	percentage, _ := model.Percentage()
	return AttemptSummary{
		ScoreID:          model.ID,
		QuizID:           model.QuizID,
		ChapterID:        model.Quiz.ChapterID,
		TotalScored:      model.TotalScored,
		TotalQuestions:   model.TotalQuestions,
		Percentage:       percentage,
		TimeTakenMinutes: model.TimeTakenMinutes,
		AttemptedAt:      model.AttemptedAt,
	}
}

// NewAttemptSummarySlice converts score models into history entries.
func NewAttemptSummarySlice(scores []models.Score) []AttemptSummary {
	summaries := make([]AttemptSummary, 0, len(scores))
	for _, score := range scores {
		summaries = append(summaries, NewAttemptSummary(score))
	}

	return summaries
}
