package dto

import (
	"time"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// SubjectRequest describes the payload for creating or updating a subject.
type SubjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty"`
}

// ChapterRequest describes the payload for creating or updating a chapter.
type ChapterRequest struct {
	SubjectID   uint   `json:"subject_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty"`
}

// SubjectResponse serializes a subject, optionally with its chapters.
type SubjectResponse struct {
	ID          uint              `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	CreatedAt   time.Time         `json:"created_at"`
	Chapters    []ChapterResponse `json:"chapters,omitempty"`
}

// ChapterResponse serializes a chapter.
type ChapterResponse struct {
	ID          uint      `json:"id"`
	SubjectID   uint      `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewSubjectResponse converts a Subject model into a DTO.
func NewSubjectResponse(model models.Subject) SubjectResponse {
	response := SubjectResponse{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}

	if len(model.Chapters) > 0 {
		chapters := make([]ChapterResponse, 0, len(model.Chapters))
		for _, chapter := range model.Chapters {
			chapters = append(chapters, NewChapterResponse(chapter))
		}
		response.Chapters = chapters
	}

	return response
}

// NewSubjectResponseSlice converts subject models into DTOs.
func NewSubjectResponseSlice(subjects []models.Subject) []SubjectResponse {
	responses := make([]SubjectResponse, 0, len(subjects))
	for _, subject := range subjects {
		responses = append(responses, NewSubjectResponse(subject))
	}

	return responses
}

// NewChapterResponse converts a Chapter model into a DTO.
func NewChapterResponse(model models.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:          model.ID,
		SubjectID:   model.SubjectID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}

// NewChapterResponseSlice converts chapter models into DTOs.
func NewChapterResponseSlice(chapters []models.Chapter) []ChapterResponse {
	responses := make([]ChapterResponse, 0, len(chapters))
	for _, chapter := range chapters {
		responses = append(responses, NewChapterResponse(chapter))
	}

	return responses
}
