package dto

import "time"

// StudentSummary aggregates one student's attempt history.
type StudentSummary struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PersonalBest  float64 `json:"personal_best"`
	RecentAverage float64 `json:"recent_average"`
}

// RankingInfo places a student in the global ranking. Rank and Percentile
// are nil for students with no attempts.
type RankingInfo struct {
	Rank          *int     `json:"rank"`
	TotalStudents int      `json:"total_students"`
	Percentile    *float64 `json:"percentile"`
}

// ChapterPerformance breaks a student's subject performance down by chapter.
type ChapterPerformance struct {
	ChapterID    uint    `json:"chapter_id"`
	ChapterName  string  `json:"chapter_name"`
	AverageScore float64 `json:"average_score"`
	Attempts     int     `json:"attempts"`
}

// SubjectPerformance summarizes a student's attempts within one subject.
type SubjectPerformance struct {
	SubjectID    uint                 `json:"subject_id"`
	SubjectName  string               `json:"subject_name"`
	AverageScore float64              `json:"average_score"`
	BestScore    float64              `json:"best_score"`
	Attempts     int                  `json:"attempts"`
	Chapters     []ChapterPerformance `json:"chapters"`
}

// StudentDashboardResponse is the student-facing analytics view.
type StudentDashboardResponse struct {
	Summary        StudentSummary       `json:"summary"`
	Ranking        RankingInfo          `json:"ranking"`
	Subjects       []SubjectPerformance `json:"subjects"`
	RecentAttempts []AttemptSummary     `json:"recent_attempts"`
	OpenQuizzes    []QuizListItem       `json:"open_quizzes"`
}

// RankingEntry is one row of the admin ranking table.
type RankingEntry struct {
	Rank          int                `json:"rank"`
	StudentID     uint               `json:"student_id"`
	FullName      string             `json:"full_name"`
	AverageScore  float64            `json:"average_score"`
	TotalAttempts int                `json:"total_attempts"`
	SubjectMeans  map[string]float64 `json:"subject_means,omitempty"`
}

// SubjectStats aggregates all attempts under one subject.
type SubjectStats struct {
	SubjectID     uint    `json:"subject_id"`
	SubjectName   string  `json:"subject_name"`
	AverageScore  float64 `json:"average_score"`
	MedianScore   float64 `json:"median_score"`
	ModeScore     float64 `json:"mode_score"`
	TotalAttempts int     `json:"total_attempts"`
	QuizCount     int     `json:"quiz_count"`
}

// ChapterStats aggregates all attempts under one chapter.
type ChapterStats struct {
	ChapterID     uint    `json:"chapter_id"`
	ChapterName   string  `json:"chapter_name"`
	AverageScore  float64 `json:"average_score"`
	MedianScore   float64 `json:"median_score"`
	TotalAttempts int     `json:"total_attempts"`
	QuizCount     int     `json:"quiz_count"`
}

// DailyCount is the number of attempts recorded on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// AdminDashboardResponse is the administrator analytics view.
type AdminDashboardResponse struct {
	TotalStudents    int64          `json:"total_students"`
	TotalQuizzes     int64          `json:"total_quizzes"`
	TotalAttempts    int64          `json:"total_attempts"`
	AverageScore     float64        `json:"average_score"`
	AverageTimeTaken float64        `json:"average_time_taken"`
	Rankings         []RankingEntry `json:"rankings"`
	SubjectStats     []SubjectStats `json:"subject_stats"`
	ChapterStats     []ChapterStats `json:"chapter_stats"`
	HourlyAttempts   [24]int64      `json:"hourly_attempts"`
	DailyAttempts    []DailyCount   `json:"daily_attempts"`
	GeneratedAt      time.Time      `json:"generated_at"`
	CacheHit         bool           `json:"cache_hit,omitempty"`
}
