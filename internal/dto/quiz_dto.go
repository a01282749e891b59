package dto

import (
	"time"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// QuestionRequest describes one multiple choice question in a quiz payload.
type QuestionRequest struct {
	Statement     string `json:"statement" validate:"required,min=1"`
	Option1       string `json:"option1" validate:"required,min=1"`
	Option2       string `json:"option2" validate:"required,min=1"`
	Option3       string `json:"option3" validate:"required,min=1"`
	Option4       string `json:"option4" validate:"required,min=1"`
	CorrectOption int    `json:"correct_option" validate:"required,min=1,max=4"`
}

// QuizCreateRequest describes the payload for creating a quiz with its questions.
type QuizCreateRequest struct {
	ChapterID       uint              `json:"chapter_id" validate:"required,gt=0"`
	ScheduledStart  time.Time         `json:"scheduled_start" validate:"required"`
	DurationMinutes int               `json:"duration_minutes" validate:"required,gt=0"`
	Remarks         string            `json:"remarks" validate:"omitempty"`
	Questions       []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuizUpdateRequest replaces quiz fields and the full question set.
type QuizUpdateRequest = QuizCreateRequest

// QuizResponse serializes a quiz for administrators, including answer keys.
type QuizResponse struct {
	ID              uint               `json:"id"`
	ChapterID       uint               `json:"chapter_id"`
	ScheduledStart  time.Time          `json:"scheduled_start"`
	DurationMinutes int                `json:"duration_minutes"`
	Remarks         string             `json:"remarks"`
	CreatedAt       time.Time          `json:"created_at"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
}

// QuestionResponse serializes a question including its correct option.
type QuestionResponse struct {
	ID            uint   `json:"id"`
	QuizID        uint   `json:"quiz_id"`
	Statement     string `json:"statement"`
	Option1       string `json:"option1"`
	Option2       string `json:"option2"`
	Option3       string `json:"option3"`
	Option4       string `json:"option4"`
	CorrectOption int    `json:"correct_option"`
}

// QuizListItem serializes a quiz for student listings, without questions.
type QuizListItem struct {
	ID              uint      `json:"id"`
	ChapterID       uint      `json:"chapter_id"`
	ScheduledStart  time.Time `json:"scheduled_start"`
	DurationMinutes int       `json:"duration_minutes"`
	Remarks         string    `json:"remarks"`
	WindowEnd       time.Time `json:"window_end"`
}

// NewQuizResponse converts a Quiz model into an admin-facing DTO.
func NewQuizResponse(model models.Quiz) QuizResponse {
	response := QuizResponse{
		ID:              model.ID,
		ChapterID:       model.ChapterID,
		ScheduledStart:  model.ScheduledStart,
		DurationMinutes: model.DurationMinutes,
		Remarks:         model.Remarks,
		CreatedAt:       model.CreatedAt,
	}

	if len(model.Questions) > 0 {
		questions := make([]QuestionResponse, 0, len(model.Questions))
		for _, question := range model.Questions {
			questions = append(questions, NewQuestionResponse(question))
		}
		response.Questions = questions
	}

	return response
}

// NewQuestionResponse converts a Question model into a DTO.
func NewQuestionResponse(model models.Question) QuestionResponse {
	return QuestionResponse{
		ID:            model.ID,
		QuizID:        model.QuizID,
		Statement:     model.Statement,
		Option1:       model.Option1,
		Option2:       model.Option2,
		Option3:       model.Option3,
		Option4:       model.Option4,
		CorrectOption: model.CorrectOption,
	}
}

// NewQuizListItem converts a Quiz model into a student-facing list entry.
func NewQuizListItem(model models.Quiz) QuizListItem {
	return QuizListItem{
		ID:              model.ID,
		ChapterID:       model.ChapterID,
		ScheduledStart:  model.ScheduledStart,
		DurationMinutes: model.DurationMinutes,
		Remarks:         model.Remarks,
		WindowEnd:       model.WindowEnd(),
	}
}

// NewQuizListItemSlice converts quiz models into student-facing list entries.
func NewQuizListItemSlice(quizzes []models.Quiz) []QuizListItem {
	items := make([]QuizListItem, 0, len(quizzes))
	for _, quiz := range quizzes {
		items = append(items, NewQuizListItem(quiz))
	}

	return items
}
