package models

import (
	"time"

	"gorm.io/datatypes"
)

// Score is the immutable record of one completed quiz attempt.
// The composite unique index guarantees at most one attempt per
// (quiz, student) pair even under concurrent submissions.
type Score struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	QuizID           uint           `gorm:"not null;uniqueIndex:idx_scores_quiz_student" json:"quiz_id"`
	StudentID        uint           `gorm:"not null;uniqueIndex:idx_scores_quiz_student" json:"student_id"`
	TotalScored      int            `gorm:"not null" json:"total_scored"`
	TotalQuestions   int            `gorm:"not null" json:"total_questions"`
	TimeTakenMinutes int            `gorm:"not null" json:"time_taken_minutes"`
	AttemptedAt      time.Time      `gorm:"not null;index" json:"attempted_at"`
	Answers          datatypes.JSON `json:"answers,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	Quiz             Quiz           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"quiz,omitempty"`
	Student          Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student,omitempty"`
}

// Percentage returns the normalized score in [0, 100] and false when the
// record is malformed (zero questions) and must be excluded from aggregates.
func (s Score) Percentage() (float64, bool) {
	if s.TotalQuestions <= 0 {
		return 0, false
	}
	return float64(s.TotalScored) * 100.0 / float64(s.TotalQuestions), true
}
