package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/models"
	"quizhub/backend/utils"
)

type QuestionService struct {
	DB *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{DB: db}
}

// QuestionView is the authoring view of a question. It includes the
// correct answer: only the owning teacher ever sees it.
type QuestionView struct {
	ID            uint      `json:"id"`
	Text          string    `json:"text"`
	OptionA       string    `json:"optionA"`
	OptionB       string    `json:"optionB"`
	OptionC       string    `json:"optionC"`
	OptionD       string    `json:"optionD"`
	CorrectAnswer string    `json:"correctAnswer"`
	CreatedByID   uint      `json:"createdById"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewQuestionView(q *models.Question) *QuestionView {
	return &QuestionView{
		ID:            q.ID,
		Text:          q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: q.CorrectAnswer,
		CreatedByID:   q.CreatedByID,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

type CreateQuestionInput struct {
	Text          string `json:"text" validate:"required"`
	OptionA       string `json:"optionA" validate:"required"`
	OptionB       string `json:"optionB" validate:"required"`
	OptionC       string `json:"optionC" validate:"required"`
	OptionD       string `json:"optionD" validate:"required"`
	CorrectAnswer string `json:"correctAnswer" validate:"required,oneof=A B C D"`
}

// UpdateQuestionInput carries partial updates; nil fields keep their
// prior values.
type UpdateQuestionInput struct {
	Text          *string `json:"text"`
	OptionA       *string `json:"optionA"`
	OptionB       *string `json:"optionB"`
	OptionC       *string `json:"optionC"`
	OptionD       *string `json:"optionD"`
	CorrectAnswer *string `json:"correctAnswer"`
}

func (s *QuestionService) Create(input CreateQuestionInput, teacherID uint) (*QuestionView, error) {
	if !models.ValidOption(input.CorrectAnswer) {
		return nil, apperr.New(apperr.ValidationFailed, "Correct answer must be one of: A, B, C, D")
	}

	question := models.Question{
		Text:          input.Text,
		OptionA:       input.OptionA,
		OptionB:       input.OptionB,
		OptionC:       input.OptionC,
		OptionD:       input.OptionD,
		CorrectAnswer: input.CorrectAnswer,
		CreatedByID:   teacherID,
	}
	if err := s.DB.Create(&question).Error; err != nil {
		return nil, err
	}

	return NewQuestionView(&question), nil
}

func (s *QuestionService) List(teacherID uint, page, limit int) ([]*QuestionView, utils.PaginationMeta, error) {
	var total int64
	if err := s.DB.Model(&models.Question{}).
		Where("created_by_id = ?", teacherID).
		Count(&total).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	var questions []models.Question
	if err := s.DB.Where("created_by_id = ?", teacherID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error; err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	views := make([]*QuestionView, 0, len(questions))
	for i := range questions {
		views = append(views, NewQuestionView(&questions[i]))
	}

	return views, utils.NewPaginationMeta(total, page, limit), nil
}

// get resolves a question scoped to its owner. Wrong owner and
// nonexistent id are indistinguishable to the caller.
func (s *QuestionService) get(questionID, teacherID uint) (*models.Question, error) {
	var question models.Question
	err := s.DB.Where("id = ? AND created_by_id = ?", questionID, teacherID).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Question not found")
		}
		return nil, err
	}
	return &question, nil
}

func (s *QuestionService) Get(questionID, teacherID uint) (*QuestionView, error) {
	question, err := s.get(questionID, teacherID)
	if err != nil {
		return nil, err
	}
	return NewQuestionView(question), nil
}

func (s *QuestionService) Update(questionID uint, input UpdateQuestionInput, teacherID uint) (*QuestionView, error) {
	question, err := s.get(questionID, teacherID)
	if err != nil {
		return nil, err
	}

	if input.CorrectAnswer != nil && !models.ValidOption(*input.CorrectAnswer) {
		return nil, apperr.New(apperr.ValidationFailed, "Correct answer must be one of: A, B, C, D")
	}

	if input.Text != nil {
		question.Text = *input.Text
	}
	if input.OptionA != nil {
		question.OptionA = *input.OptionA
	}
	if input.OptionB != nil {
		question.OptionB = *input.OptionB
	}
	if input.OptionC != nil {
		question.OptionC = *input.OptionC
	}
	if input.OptionD != nil {
		question.OptionD = *input.OptionD
	}
	if input.CorrectAnswer != nil {
		question.CorrectAnswer = *input.CorrectAnswer
	}

	if err := s.DB.Save(question).Error; err != nil {
		return nil, err
	}

	return NewQuestionView(question), nil
}

func (s *QuestionService) Delete(questionID, teacherID uint) error {
	question, err := s.get(questionID, teacherID)
	if err != nil {
		return err
	}
	return s.DB.Delete(question).Error
}
