package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/quizmaster-go-api/internal/dto"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/repository"
)

const adminDashboardCacheKey = "stats:admin:dashboard"

// StatsService derives read-only analytical views from the attempt ledger.
// It never mutates state.
type StatsService interface {
	StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error)
	AdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error)
}

type statsService struct {
	students repository.StudentRepository
	subjects repository.SubjectRepository
	chapters repository.ChapterRepository
	quizzes  repository.QuizRepository
	scores   repository.ScoreRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService constructs the aggregator.
func NewStatsService(students repository.StudentRepository, subjects repository.SubjectRepository, chapters repository.ChapterRepository, quizzes repository.QuizRepository, scores repository.ScoreRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		students: students,
		subjects: subjects,
		chapters: chapters,
		quizzes:  quizzes,
		scores:   scores,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
		now:      time.Now,
	}
}

func (s *statsService) StudentDashboard(ctx context.Context, studentID uint) (dto.StudentDashboardResponse, error) {
	cacheKey := fmt.Sprintf("stats:student:%d", studentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("student dashboard cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read student dashboard cache")
		}
	}

	ownScores, err := s.scores.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	allScores, err := s.scores.ListAll(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	subjects, err := s.subjects.ListWithChapters(ctx)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	openQuizzes, err := s.quizzes.ListOpenAfter(ctx, s.now())
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	chapterToSubject, chapterNames := chapterLookup(subjects)

	response := dto.StudentDashboardResponse{
		Summary:        buildStudentSummary(ownScores),
		Ranking:        buildRankingInfo(studentID, allScores),
		Subjects:       buildSubjectPerformance(ownScores, subjects, chapterToSubject, chapterNames),
		RecentAttempts: dto.NewAttemptSummarySlice(ownScores),
		OpenQuizzes:    dto.NewQuizListItemSlice(openQuizzes),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store student dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *statsService) AdminDashboard(ctx context.Context) (dto.AdminDashboardResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/quizmaster-go-api/internal/service/stats")
	ctx, span := tracer.Start(ctx, "stats.admin_dashboard", trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("stats.cache_key", adminDashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, adminDashboardCacheKey).Result(); err == nil {
			var response dto.AdminDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("stats.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read admin dashboard cache")
			span.RecordError(err)
		}
	}

	students, err := s.students.List(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	totalQuizzes, err := s.quizzes.Count(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	scores, err := s.scores.ListAll(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	subjects, err := s.subjects.ListWithChapters(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return dto.AdminDashboardResponse{}, err
	}

	response := s.buildAdminDashboard(students, totalQuizzes, scores, subjects, quizzes)
	span.SetAttributes(
		attribute.Int("stats.students", len(students)),
		attribute.Int("stats.attempts", len(scores)),
	)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, adminDashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store admin dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *statsService) buildAdminDashboard(students []models.Student, totalQuizzes int64, scores []models.Score, subjects []models.Subject, quizzes []models.Quiz) dto.AdminDashboardResponse {
	now := s.now()
	chapterToSubject, chapterNames := chapterLookup(subjects)
	subjectNames := make(map[uint]string, len(subjects))
	for _, subject := range subjects {
		subjectNames[subject.ID] = subject.Name
	}

	studentNames := make(map[uint]string, len(students))
	for _, student := range students {
		studentNames[student.ID] = student.FullName
	}

	quizzesPerChapter := make(map[uint]int, len(quizzes))
	quizzesPerSubject := make(map[uint]int, len(subjects))
	for _, quiz := range quizzes {
		quizzesPerChapter[quiz.ChapterID]++
		if subjectID, ok := chapterToSubject[quiz.ChapterID]; ok {
			quizzesPerSubject[subjectID]++
		}
	}

	all := percentages(scores)
	timeTotal := 0.0
	timeCount := 0
	var hourly [24]int64
	daily := make(map[string]int64, 7)
	cutoff := now.AddDate(0, 0, -7)

	scoresBySubject := make(map[uint][]models.Score)
	scoresByChapter := make(map[uint][]models.Score)
	scoresByStudent := make(map[uint][]models.Score)

	for _, score := range scores {
		timeTotal += float64(score.TimeTakenMinutes)
		timeCount++
		hourly[score.AttemptedAt.Hour()]++
		if score.AttemptedAt.After(cutoff) {
			daily[score.AttemptedAt.Format("2006-01-02")]++
		}

		chapterID := score.Quiz.ChapterID
		scoresByChapter[chapterID] = append(scoresByChapter[chapterID], score)
		if subjectID, ok := chapterToSubject[chapterID]; ok {
			scoresBySubject[subjectID] = append(scoresBySubject[subjectID], score)
		}
		scoresByStudent[score.StudentID] = append(scoresByStudent[score.StudentID], score)
	}

	rankings := buildRankingTable(scoresByStudent, studentNames, chapterToSubject, subjectNames)

	subjectStats := make([]dto.SubjectStats, 0, len(subjects))
	for _, subject := range subjects {
		values := percentages(scoresBySubject[subject.ID])
		if len(values) == 0 {
			continue
		}
		subjectStats = append(subjectStats, dto.SubjectStats{
			SubjectID:     subject.ID,
			SubjectName:   subject.Name,
			AverageScore:  mean(values),
			MedianScore:   median(values),
			ModeScore:     mode(values),
			TotalAttempts: len(values),
			QuizCount:     quizzesPerSubject[subject.ID],
		})
	}

	chapterStats := make([]dto.ChapterStats, 0)
	for _, subject := range subjects {
		for _, chapter := range subject.Chapters {
			values := percentages(scoresByChapter[chapter.ID])
			if len(values) == 0 {
				continue
			}
			chapterStats = append(chapterStats, dto.ChapterStats{
				ChapterID:     chapter.ID,
				ChapterName:   chapterNames[chapter.ID],
				AverageScore:  mean(values),
				MedianScore:   median(values),
				TotalAttempts: len(values),
				QuizCount:     quizzesPerChapter[chapter.ID],
			})
		}
	}

	dailyCounts := make([]dto.DailyCount, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).Format("2006-01-02")
		dailyCounts = append(dailyCounts, dto.DailyCount{Date: day, Count: daily[day]})
	}

	response := dto.AdminDashboardResponse{
		TotalStudents:  int64(len(students)),
		TotalQuizzes:   totalQuizzes,
		TotalAttempts:  int64(len(scores)),
		AverageScore:   mean(all),
		Rankings:       rankings,
		SubjectStats:   subjectStats,
		ChapterStats:   chapterStats,
		HourlyAttempts: hourly,
		DailyAttempts:  dailyCounts,
		GeneratedAt:    now,
	}

	if timeCount > 0 {
		response.AverageTimeTaken = timeTotal / float64(timeCount)
	}

	return response
}

// chapterLookup flattens the subject tree into chapter→subject and
// chapter→name maps.
func chapterLookup(subjects []models.Subject) (map[uint]uint, map[uint]string) {
	chapterToSubject := make(map[uint]uint)
	chapterNames := make(map[uint]string)
	for _, subject := range subjects {
		for _, chapter := range subject.Chapters {
			chapterToSubject[chapter.ID] = subject.ID
			chapterNames[chapter.ID] = chapter.Name
		}
	}

	return chapterToSubject, chapterNames
}

func buildStudentSummary(scores []models.Score) dto.StudentSummary {
	values := percentages(scores)
	summary := dto.StudentSummary{
		TotalAttempts: len(values),
		AverageScore:  mean(values),
		PersonalBest:  maxOf(values),
	}

	// Scores arrive newest first, so the recent average is over the head of
	// the slice.
	recent := values
	if len(recent) > 5 {
		recent = recent[:5]
	}
	summary.RecentAverage = mean(recent)

	return summary
}

type rankedStudent struct {
	studentID uint
	average   float64
	attempts  int
}

// rankStudents computes mean percentage per student with at least one valid
// attempt, ordered descending by mean with ascending student ID as the
// tie-break.
func rankStudents(scoresByStudent map[uint][]models.Score) []rankedStudent {
	ranked := make([]rankedStudent, 0, len(scoresByStudent))
	for studentID, scores := range scoresByStudent {
		values := percentages(scores)
		if len(values) == 0 {
			continue
		}
		ranked = append(ranked, rankedStudent{
			studentID: studentID,
			average:   mean(values),
			attempts:  len(values),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].average != ranked[j].average {
			return ranked[i].average > ranked[j].average
		}
		return ranked[i].studentID < ranked[j].studentID
	})

	return ranked
}

func buildRankingInfo(studentID uint, allScores []models.Score) dto.RankingInfo {
	scoresByStudent := make(map[uint][]models.Score)
	for _, score := range allScores {
		scoresByStudent[score.StudentID] = append(scoresByStudent[score.StudentID], score)
	}

	ranked := rankStudents(scoresByStudent)
	info := dto.RankingInfo{TotalStudents: len(ranked)}

	for position, entry := range ranked {
		if entry.studentID == studentID {
			rank := position + 1
			percentile := float64(len(ranked)-rank+1) / float64(len(ranked)) * 100
			info.Rank = &rank
			info.Percentile = &percentile
			break
		}
	}

	return info
}

func buildRankingTable(scoresByStudent map[uint][]models.Score, studentNames map[uint]string, chapterToSubject map[uint]uint, subjectNames map[uint]string) []dto.RankingEntry {
	ranked := rankStudents(scoresByStudent)

	entries := make([]dto.RankingEntry, 0, len(ranked))
	for position, entry := range ranked {
		subjectValues := make(map[string][]float64)
		for _, score := range scoresByStudent[entry.studentID] {
			value, ok := score.Percentage()
			if !ok {
				continue
			}
			if subjectID, found := chapterToSubject[score.Quiz.ChapterID]; found {
				name := subjectNames[subjectID]
				subjectValues[name] = append(subjectValues[name], value)
			}
		}

		subjectMeans := make(map[string]float64, len(subjectValues))
		for name, values := range subjectValues {
			subjectMeans[name] = mean(values)
		}

		entries = append(entries, dto.RankingEntry{
			Rank:          position + 1,
			StudentID:     entry.studentID,
			FullName:      studentNames[entry.studentID],
			AverageScore:  entry.average,
			TotalAttempts: entry.attempts,
			SubjectMeans:  subjectMeans,
		})
	}

	return entries
}

func buildSubjectPerformance(ownScores []models.Score, subjects []models.Subject, chapterToSubject map[uint]uint, chapterNames map[uint]string) []dto.SubjectPerformance {
	scoresBySubject := make(map[uint][]models.Score)
	scoresByChapter := make(map[uint][]models.Score)
	for _, score := range ownScores {
		chapterID := score.Quiz.ChapterID
		scoresByChapter[chapterID] = append(scoresByChapter[chapterID], score)
		if subjectID, ok := chapterToSubject[chapterID]; ok {
			scoresBySubject[subjectID] = append(scoresBySubject[subjectID], score)
		}
	}

	performance := make([]dto.SubjectPerformance, 0)
	for _, subject := range subjects {
		values := percentages(scoresBySubject[subject.ID])
		if len(values) == 0 {
			continue
		}

		chapters := make([]dto.ChapterPerformance, 0)
		for _, chapter := range subject.Chapters {
			chapterValues := percentages(scoresByChapter[chapter.ID])
			if len(chapterValues) == 0 {
				continue
			}
			chapters = append(chapters, dto.ChapterPerformance{
				ChapterID:    chapter.ID,
				ChapterName:  chapterNames[chapter.ID],
				AverageScore: mean(chapterValues),
				Attempts:     len(chapterValues),
			})
		}

		performance = append(performance, dto.SubjectPerformance{
			SubjectID:    subject.ID,
			SubjectName:  subject.Name,
			AverageScore: mean(values),
			BestScore:    maxOf(values),
			Attempts:     len(values),
			Chapters:     chapters,
		})
	}

	return performance
}
