package models

import "time"

// Quiz is a time-boxed set of multiple choice questions under a chapter.
type Quiz struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ChapterID       uint       `gorm:"not null;index" json:"chapter_id"`
	ScheduledStart  time.Time  `gorm:"not null" json:"scheduled_start"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	Remarks         string     `gorm:"type:text" json:"remarks"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Questions       []Question `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions,omitempty"`
}

// WindowEnd returns the instant the quiz window closes.
func (q Quiz) WindowEnd() time.Time {
	return q.ScheduledStart.Add(time.Duration(q.DurationMinutes) * time.Minute)
}

// HasEnded reports whether the quiz window has closed relative to the reference time.
func (q Quiz) HasEnded(reference time.Time) bool {
	return reference.After(q.WindowEnd())
}

// Question is one multiple choice question with four options.
// CorrectOption is 1-based.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	QuizID        uint      `gorm:"not null;index" json:"quiz_id"`
	Statement     string    `gorm:"type:text;not null" json:"statement"`
	Option1       string    `gorm:"type:text;not null" json:"option1"`
	Option2       string    `gorm:"type:text;not null" json:"option2"`
	Option3       string    `gorm:"type:text;not null" json:"option3"`
	Option4       string    `gorm:"type:text;not null" json:"option4"`
	CorrectOption int       `gorm:"not null" json:"correct_option"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
