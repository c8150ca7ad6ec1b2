package services

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/models"
	"quizhub/backend/utils"
)

type AttemptService struct {
	DB *gorm.DB
}

func NewAttemptService(db *gorm.DB) *AttemptService {
	return &AttemptService{DB: db}
}

// AttemptView is the student's hydrated view of an attempt. While the
// attempt is in progress the per-question CorrectAnswer and IsCorrect
// fields stay empty; they are only filled in after submission.
type AttemptView struct {
	ID                uint                  `json:"id"`
	Test              AttemptTestInfo       `json:"test"`
	StartedAt         time.Time             `json:"startedAt"`
	SubmittedAt       *time.Time            `json:"submittedAt"`
	Score             *int                  `json:"score"`
	TotalQuestions    int                   `json:"totalQuestions"`
	AnsweredQuestions int                   `json:"answeredQuestions"`
	TimeRemaining     *int                  `json:"timeRemaining"`
	Status            string                `json:"status"`
	Questions         []AttemptQuestionView `json:"questions"`
}

type AttemptTestInfo struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

type AttemptQuestionView struct {
	ID             uint    `json:"id"`
	Text           string  `json:"text"`
	OptionA        string  `json:"optionA"`
	OptionB        string  `json:"optionB"`
	OptionC        string  `json:"optionC"`
	OptionD        string  `json:"optionD"`
	Order          int     `json:"order"`
	SelectedOption *string `json:"selectedOption"`
	CorrectAnswer  string  `json:"correctAnswer,omitempty"`
	IsCorrect      *bool   `json:"isCorrect,omitempty"`
}

// AttemptSummary is one row of the student's attempt list.
type AttemptSummary struct {
	ID                uint       `json:"id"`
	TestID            uint       `json:"testId"`
	TestTitle         string     `json:"testTitle"`
	TestDescription   string     `json:"testDescription"`
	Duration          int        `json:"duration"`
	StartedAt         time.Time  `json:"startedAt"`
	SubmittedAt       *time.Time `json:"submittedAt"`
	Score             *int       `json:"score"`
	AnsweredQuestions int64      `json:"answeredQuestions"`
	Status            string     `json:"status"`
}

type AnswerView struct {
	ID             uint   `json:"id"`
	TestAttemptID  uint   `json:"testAttemptId"`
	QuestionID     uint   `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	IsCorrect      bool   `json:"isCorrect"`
}

type AnswerInput struct {
	QuestionID     uint   `json:"questionId" validate:"required"`
	SelectedOption string `json:"selectedOption" validate:"required,oneof=A B C D"`
}

type SubmitResult struct {
	ID             uint         `json:"id"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	SubmittedAt    time.Time    `json:"submittedAt"`
	Detailed       *AttemptView `json:"detailed"`
}

// Start opens an attempt, or resumes the one already in progress for
// this (student, test) pair. Starting never forks a second open
// attempt.
func (s *AttemptService) Start(testID, studentID uint) (*AttemptView, error) {
	var test models.Test
	if err := s.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Test not found")
		}
		return nil, err
	}

	var existing models.TestAttempt
	err := s.DB.Where("test_id = ? AND student_id = ? AND submitted_at IS NULL", testID, studentID).
		First(&existing).Error
	if err == nil {
		return s.GetByID(existing.ID, studentID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attempt := models.TestAttempt{
		TestID:    testID,
		StudentID: studentID,
		StartedAt: time.Now(),
	}
	if err := s.DB.Create(&attempt).Error; err != nil {
		return nil, err
	}

	return s.GetByID(attempt.ID, studentID)
}

// GetByID hydrates an attempt scoped to its student. The countdown is
// advisory only; nothing server-side stops a late submission.
func (s *AttemptService) GetByID(attemptID, studentID uint) (*AttemptView, error) {
	attempt, err := s.loadAttempt(attemptID, studentID)
	if err != nil {
		return nil, err
	}

	var timeRemaining *int
	if attempt.SubmittedAt == nil {
		endTime := attempt.StartedAt.Add(time.Duration(attempt.Test.Duration) * time.Minute)
		remaining := int(time.Until(endTime) / time.Second)
		if remaining < 0 {
			remaining = 0
		}
		timeRemaining = &remaining
	}

	answersByQuestion := make(map[uint]*models.StudentAnswer, len(attempt.Answers))
	for i := range attempt.Answers {
		answersByQuestion[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	questions := make([]AttemptQuestionView, 0, len(attempt.Test.Questions))
	for _, tq := range attempt.Test.Questions {
		view := AttemptQuestionView{
			ID:      tq.Question.ID,
			Text:    tq.Question.Text,
			OptionA: tq.Question.OptionA,
			OptionB: tq.Question.OptionB,
			OptionC: tq.Question.OptionC,
			OptionD: tq.Question.OptionD,
			Order:   tq.Position,
		}
		answer := answersByQuestion[tq.QuestionID]
		if answer != nil {
			view.SelectedOption = &answer.SelectedOption
		}
		if attempt.SubmittedAt != nil {
			view.CorrectAnswer = tq.Question.CorrectAnswer
			isCorrect := answer != nil && answer.IsCorrect
			view.IsCorrect = &isCorrect
		}
		questions = append(questions, view)
	}

	return &AttemptView{
		ID: attempt.ID,
		Test: AttemptTestInfo{
			ID:          attempt.Test.ID,
			Title:       attempt.Test.Title,
			Description: attempt.Test.Description,
			Duration:    attempt.Test.Duration,
		},
		StartedAt:         attempt.StartedAt,
		SubmittedAt:       attempt.SubmittedAt,
		Score:             attempt.Score,
		TotalQuestions:    len(questions),
		AnsweredQuestions: len(attempt.Answers),
		TimeRemaining:     timeRemaining,
		Status:            attempt.Status(),
		Questions:         questions,
	}, nil
}

func (s *AttemptService) loadAttempt(attemptID, studentID uint) (*models.TestAttempt, error) {
	var attempt models.TestAttempt
	err := s.DB.Preload("Test").
		Preload("Test.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Test.Questions.Question").
		Preload("Answers").
		Where("id = ? AND student_id = ?", attemptID, studentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Test attempt not found")
		}
		return nil, err
	}
	return &attempt, nil
}

// SaveAnswer upserts the student's selection for one question.
// Correctness is not evaluated here; that happens once, at submission.
func (s *AttemptService) SaveAnswer(attemptID, questionID uint, selectedOption string, studentID uint) (*AnswerView, error) {
	var attempt models.TestAttempt
	err := s.DB.Where("id = ? AND student_id = ?", attemptID, studentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Test attempt not found")
		}
		return nil, err
	}

	if attempt.SubmittedAt != nil {
		return nil, apperr.New(apperr.InvalidState, "Cannot modify answers for a submitted test")
	}

	var testQuestion models.TestQuestion
	err = s.DB.Where("test_id = ? AND question_id = ?", attempt.TestID, questionID).
		First(&testQuestion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Question not found in this test")
		}
		return nil, err
	}

	var answer models.StudentAnswer
	err = s.DB.Where("test_attempt_id = ? AND question_id = ?", attempt.ID, questionID).
		First(&answer).Error
	switch {
	case err == nil:
		answer.SelectedOption = selectedOption
		if err := s.DB.Save(&answer).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		answer = models.StudentAnswer{
			TestAttemptID:  attempt.ID,
			QuestionID:     questionID,
			SelectedOption: selectedOption,
		}
		if err := s.DB.Create(&answer).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return &AnswerView{
		ID:             answer.ID,
		TestAttemptID:  answer.TestAttemptID,
		QuestionID:     answer.QuestionID,
		SelectedOption: answer.SelectedOption,
		IsCorrect:      answer.IsCorrect,
	}, nil
}

// Submit finalizes an attempt: applies any answers sent with the call,
// scores every question, flags correctness, and stamps the attempt.
// Unlike Start it is not idempotent; a second submit is an error.
func (s *AttemptService) Submit(attemptID uint, answers []AnswerInput, studentID uint) (*SubmitResult, error) {
	attempt, err := s.loadAttempt(attemptID, studentID)
	if err != nil {
		return nil, err
	}

	if attempt.SubmittedAt != nil {
		return nil, apperr.New(apperr.InvalidState, "Test is already submitted")
	}

	// Last write wins when the batch repeats a question.
	for _, a := range answers {
		if _, err := s.SaveAnswer(attemptID, a.QuestionID, a.SelectedOption, studentID); err != nil {
			return nil, err
		}
	}

	var studentAnswers []models.StudentAnswer
	if err := s.DB.Where("test_attempt_id = ?", attempt.ID).
		Find(&studentAnswers).Error; err != nil {
		return nil, err
	}
	answersByQuestion := make(map[uint]*models.StudentAnswer, len(studentAnswers))
	for i := range studentAnswers {
		answersByQuestion[studentAnswers[i].QuestionID] = &studentAnswers[i]
	}

	correctCount := 0
	graded := make(map[uint]bool) // answer id -> isCorrect
	for _, tq := range attempt.Test.Questions {
		answer := answersByQuestion[tq.QuestionID]
		if answer == nil {
			continue // unanswered counts as incorrect
		}
		isCorrect := answer.SelectedOption == tq.Question.CorrectAnswer
		if isCorrect {
			correctCount++
		}
		graded[answer.ID] = isCorrect
	}

	totalQuestions := len(attempt.Test.Questions)
	score := 0
	if totalQuestions > 0 {
		score = int(math.Round(float64(correctCount) / float64(totalQuestions) * 100))
	}

	submittedAt := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for answerID, isCorrect := range graded {
			if err := tx.Model(&models.StudentAnswer{}).
				Where("id = ?", answerID).
				Update("is_correct", isCorrect).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.TestAttempt{}).
			Where("id = ?", attempt.ID).
			Updates(map[string]interface{}{
				"submitted_at": submittedAt,
				"score":        score,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	detailed, err := s.GetByID(attempt.ID, studentID)
	if err != nil {
		return nil, err
	}

	return &SubmitResult{
		ID:             attempt.ID,
		Score:          score,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correctCount,
		SubmittedAt:    submittedAt,
		Detailed:       detailed,
	}, nil
}

func (s *AttemptService) ListForStudent(studentID uint, page, limit int) ([]*AttemptSummary, utils.PaginationMeta, error) {
	var total int64
	if err := s.DB.Model(&models.TestAttempt{}).
		Where("student_id = ?", studentID).
		Count(&total).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	var attempts []models.TestAttempt
	if err := s.DB.Preload("Test").
		Where("student_id = ?", studentID).
		Order("started_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	summaries := make([]*AttemptSummary, 0, len(attempts))
	for i := range attempts {
		var answered int64
		if err := s.DB.Model(&models.StudentAnswer{}).
			Where("test_attempt_id = ?", attempts[i].ID).
			Count(&answered).Error; err != nil {
			return nil, utils.PaginationMeta{}, err
		}
		summaries = append(summaries, &AttemptSummary{
			ID:                attempts[i].ID,
			TestID:            attempts[i].TestID,
			TestTitle:         attempts[i].Test.Title,
			TestDescription:   attempts[i].Test.Description,
			Duration:          attempts[i].Test.Duration,
			StartedAt:         attempts[i].StartedAt,
			SubmittedAt:       attempts[i].SubmittedAt,
			Score:             attempts[i].Score,
			AnsweredQuestions: answered,
			Status:            attempts[i].Status(),
		})
	}

	return summaries, utils.NewPaginationMeta(total, page, limit), nil
}
