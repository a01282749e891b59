package models

import "time"

// Role values carried in JWT claims and checked by the authorization middleware.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Student represents a learner that can register and take quizzes.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	FullName      string    `gorm:"size:255;not null" json:"full_name"`
	Qualification string    `gorm:"size:255" json:"qualification"`
	DateOfBirth   time.Time `json:"date_of_birth"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Admin represents an administrator account managing the quiz catalog.
type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
