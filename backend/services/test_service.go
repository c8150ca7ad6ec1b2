package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/models"
	"quizhub/backend/utils"
)

type TestService struct {
	DB *gorm.DB
}

func NewTestService(db *gorm.DB) *TestService {
	return &TestService{DB: db}
}

// TestView is the owner's hydrated view of a test, questions in
// position order with their correct answers.
type TestView struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Duration    int                `json:"duration"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Questions   []TestQuestionView `json:"questions"`
}

type TestQuestionView struct {
	ID            uint   `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
	Order         int    `json:"order"`
}

// TestSummary is one row of the paginated test list.
type TestSummary struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Duration      int       `json:"duration"`
	QuestionCount int64     `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateTestInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"required,gte=5,lte=180"`
	QuestionIDs []uint `json:"questionIds" validate:"required,min=1"`
}

type UpdateTestInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
}

func (s *TestService) Create(input CreateTestInput, teacherID uint) (*TestView, error) {
	test := models.Test{
		Title:       input.Title,
		Description: input.Description,
		Duration:    input.Duration,
		CreatedByID: teacherID,
	}
	if err := s.DB.Create(&test).Error; err != nil {
		return nil, err
	}

	if len(input.QuestionIDs) > 0 {
		if _, err := s.AddQuestions(test.ID, input.QuestionIDs, teacherID); err != nil {
			return nil, err
		}
	}

	return s.GetByID(test.ID, teacherID)
}

func (s *TestService) List(teacherID uint, page, limit int) ([]*TestSummary, utils.PaginationMeta, error) {
	var total int64
	if err := s.DB.Model(&models.Test{}).
		Where("created_by_id = ?", teacherID).
		Count(&total).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	var tests []models.Test
	if err := s.DB.Where("created_by_id = ?", teacherID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	summaries := make([]*TestSummary, 0, len(tests))
	for i := range tests {
		var count int64
		if err := s.DB.Model(&models.TestQuestion{}).
			Where("test_id = ?", tests[i].ID).
			Count(&count).Error; err != nil {
			return nil, utils.PaginationMeta{}, err
		}
		summaries = append(summaries, &TestSummary{
			ID:            tests[i].ID,
			Title:         tests[i].Title,
			Description:   tests[i].Description,
			Duration:      tests[i].Duration,
			QuestionCount: count,
			CreatedAt:     tests[i].CreatedAt,
			UpdatedAt:     tests[i].UpdatedAt,
		})
	}

	return summaries, utils.NewPaginationMeta(total, page, limit), nil
}

// resolve looks up a test scoped to its owner; absence and wrong
// ownership both surface as NotFound.
func (s *TestService) resolve(testID, teacherID uint) (*models.Test, error) {
	var test models.Test
	err := s.DB.Where("id = ? AND created_by_id = ?", testID, teacherID).
		First(&test).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Test not found")
		}
		return nil, err
	}
	return &test, nil
}

func (s *TestService) GetByID(testID, teacherID uint) (*TestView, error) {
	test, err := s.resolve(testID, teacherID)
	if err != nil {
		return nil, err
	}

	var joins []models.TestQuestion
	if err := s.DB.Preload("Question").
		Where("test_id = ?", test.ID).
		Order("position ASC").
		Find(&joins).Error; err != nil {
		return nil, err
	}

	questions := make([]TestQuestionView, 0, len(joins))
	for _, tq := range joins {
		questions = append(questions, TestQuestionView{
			ID:            tq.Question.ID,
			Text:          tq.Question.Text,
			OptionA:       tq.Question.OptionA,
			OptionB:       tq.Question.OptionB,
			OptionC:       tq.Question.OptionC,
			OptionD:       tq.Question.OptionD,
			CorrectAnswer: tq.Question.CorrectAnswer,
			Order:         tq.Position,
		})
	}

	return &TestView{
		ID:          test.ID,
		Title:       test.Title,
		Description: test.Description,
		Duration:    test.Duration,
		CreatedAt:   test.CreatedAt,
		UpdatedAt:   test.UpdatedAt,
		Questions:   questions,
	}, nil
}

func (s *TestService) Update(testID uint, input UpdateTestInput, teacherID uint) (*TestView, error) {
	test, err := s.resolve(testID, teacherID)
	if err != nil {
		return nil, err
	}

	if input.Duration != nil && (*input.Duration < 5 || *input.Duration > 180) {
		return nil, apperr.New(apperr.ValidationFailed, "Duration must be between 5 and 180 minutes")
	}

	if input.Title != nil {
		test.Title = *input.Title
	}
	if input.Description != nil {
		test.Description = *input.Description
	}
	if input.Duration != nil {
		test.Duration = *input.Duration
	}

	if err := s.DB.Save(test).Error; err != nil {
		return nil, err
	}

	return s.GetByID(test.ID, teacherID)
}

func (s *TestService) Delete(testID, teacherID uint) error {
	test, err := s.resolve(testID, teacherID)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", test.ID).
			Delete(&models.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(test).Error
	})
}

// AddQuestions appends questions to a test. Ids already on the test
// are skipped; the rest are linked in the caller-supplied order with
// positions continuing the existing dense sequence. A single unknown
// or foreign id fails the whole batch.
func (s *TestService) AddQuestions(testID uint, questionIDs []uint, teacherID uint) (*TestView, error) {
	test, err := s.resolve(testID, teacherID)
	if err != nil {
		return nil, err
	}

	var currentCount int64
	if err := s.DB.Model(&models.TestQuestion{}).
		Where("test_id = ?", test.ID).
		Count(&currentCount).Error; err != nil {
		return nil, err
	}

	var owned []models.Question
	if err := s.DB.Where("id IN ? AND created_by_id = ?", questionIDs, teacherID).
		Find(&owned).Error; err != nil {
		return nil, err
	}
	if len(owned) != len(questionIDs) {
		return nil, apperr.New(apperr.ValidationFailed, "One or more questions not found or not owned by you")
	}

	var existing []models.TestQuestion
	if err := s.DB.Where("test_id = ? AND question_id IN ?", test.ID, questionIDs).
		Find(&existing).Error; err != nil {
		return nil, err
	}
	linked := make(map[uint]bool, len(existing))
	for _, tq := range existing {
		linked[tq.QuestionID] = true
	}

	var newIDs []uint
	for _, id := range questionIDs {
		if !linked[id] {
			newIDs = append(newIDs, id)
		}
	}

	if len(newIDs) > 0 {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for i, questionID := range newIDs {
				tq := models.TestQuestion{
					TestID:     test.ID,
					QuestionID: questionID,
					Position:   int(currentCount) + i + 1,
				}
				if err := tx.Create(&tq).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return s.GetByID(test.ID, teacherID)
}

// RemoveQuestion unlinks a question and re-sequences the remaining
// positions back to a dense 1..N, preserving relative order.
func (s *TestService) RemoveQuestion(testID, questionID, teacherID uint) (*TestView, error) {
	test, err := s.resolve(testID, teacherID)
	if err != nil {
		return nil, err
	}

	var testQuestion models.TestQuestion
	err = s.DB.Where("test_id = ? AND question_id = ?", test.ID, questionID).
		First(&testQuestion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Question not found in this test")
		}
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&testQuestion).Error; err != nil {
			return err
		}

		var remaining []models.TestQuestion
		if err := tx.Where("test_id = ?", test.ID).
			Order("position ASC").
			Find(&remaining).Error; err != nil {
			return err
		}

		for i := range remaining {
			if err := tx.Model(&remaining[i]).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(test.ID, teacherID)
}
