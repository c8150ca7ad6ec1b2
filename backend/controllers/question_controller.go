package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/middleware"
	"quizhub/backend/services"
	"quizhub/backend/utils"
)

type QuestionController struct {
	Questions *services.QuestionService
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{Questions: services.NewQuestionService(db)}
}

func (qc *QuestionController) Create(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	var input services.CreateQuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	question, err := qc.Questions.Create(input, teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Question created successfully",
		"question": question,
	})
}

func (qc *QuestionController) List(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)
	page, limit := utils.ParsePagination(c)

	questions, meta, err := qc.Questions.List(teacher.ID, page, limit)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Questions retrieved successfully",
		"data":    questions,
		"meta":    meta,
	})
}

func (qc *QuestionController) Get(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	questionID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid question ID"))
	}

	question, err := qc.Questions.Get(uint(questionID), teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"question": question,
	})
}

func (qc *QuestionController) Update(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	questionID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid question ID"))
	}

	var input services.UpdateQuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}

	question, err := qc.Questions.Update(uint(questionID), input, teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":  "Question updated successfully",
		"question": question,
	})
}

func (qc *QuestionController) Delete(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	questionID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid question ID"))
	}

	if err := qc.Questions.Delete(uint(questionID), teacher.ID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Question deleted successfully",
	})
}
