package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/middleware"
	"quizhub/backend/services"
	"quizhub/backend/utils"
)

type AttemptController struct {
	Attempts *services.AttemptService
}

func NewAttemptController(db *gorm.DB) *AttemptController {
	return &AttemptController{Attempts: services.NewAttemptService(db)}
}

func (ac *AttemptController) Start(c *fiber.Ctx) error {
	student := middleware.UserFromContext(c)

	var input struct {
		TestID uint `json:"testId" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	attempt, err := ac.Attempts.Start(input.TestID, student.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Test attempt started successfully",
		"attempt": attempt,
	})
}

func (ac *AttemptController) List(c *fiber.Ctx) error {
	student := middleware.UserFromContext(c)
	page, limit := utils.ParsePagination(c)

	attempts, meta, err := ac.Attempts.ListForStudent(student.ID, page, limit)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Test attempts retrieved successfully",
		"data":    attempts,
		"meta":    meta,
	})
}

func (ac *AttemptController) Get(c *fiber.Ctx) error {
	student := middleware.UserFromContext(c)

	attemptID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid attempt ID"))
	}

	attempt, err := ac.Attempts.GetByID(uint(attemptID), student.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Test attempt retrieved successfully",
		"attempt": attempt,
	})
}

func (ac *AttemptController) SubmitAnswer(c *fiber.Ctx) error {
	student := middleware.UserFromContext(c)

	attemptID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid attempt ID"))
	}

	var input services.AnswerInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	answer, err := ac.Attempts.SaveAnswer(uint(attemptID), input.QuestionID, input.SelectedOption, student.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Answer submitted successfully",
		"answer":  answer,
	})
}

func (ac *AttemptController) Submit(c *fiber.Ctx) error {
	student := middleware.UserFromContext(c)

	attemptID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid attempt ID"))
	}

	var input struct {
		Answers []services.AnswerInput `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	for _, a := range input.Answers {
		if err := utils.ValidateStruct(a); err != nil {
			return utils.HandleError(c, err)
		}
	}

	result, err := ac.Attempts.Submit(uint(attemptID), input.Answers, student.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Test submitted successfully",
		"result":  result,
	})
}
