package dto

import (
	"time"

	"github.com/noah-isme/quizmaster-go-api/internal/models"
)

// RegisterRequest describes the payload for student registration.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	FullName      string `json:"full_name" validate:"required,min=2"`
	Qualification string `json:"qualification" validate:"omitempty,max=255"`
	DateOfBirth   string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// LoginRequest describes the student login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest describes the administrator login payload.
type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the authenticated principal.
type AuthResponse struct {
	Token   string           `json:"token"`
	Role    string           `json:"role"`
	Student *StudentResponse `json:"student,omitempty"`
	Admin   *AdminResponse   `json:"admin,omitempty"`
}

// StudentResponse serializes a student profile without credentials.
type StudentResponse struct {
	ID            uint      `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	Qualification string    `json:"qualification"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdminResponse serializes an administrator account.
type AdminResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// NewStudentResponse converts a Student model into a DTO.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:            model.ID,
		Email:         model.Email,
		FullName:      model.FullName,
		Qualification: model.Qualification,
		DateOfBirth:   model.DateOfBirth,
		CreatedAt:     model.CreatedAt,
	}
}

// NewAdminResponse converts an Admin model into a DTO.
func NewAdminResponse(model models.Admin) AdminResponse {
	return AdminResponse{ID: model.ID, Username: model.Username}
}
