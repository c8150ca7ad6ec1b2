package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/apperr"
	"quizhub/backend/middleware"
	"quizhub/backend/services"
	"quizhub/backend/utils"
)

type TestController struct {
	Tests *services.TestService
}

func NewTestController(db *gorm.DB) *TestController {
	return &TestController{Tests: services.NewTestService(db)}
}

func (tc *TestController) Create(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	var input services.CreateTestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	test, err := tc.Tests.Create(input, teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Test created successfully",
		"test":    test,
	})
}

func (tc *TestController) List(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)
	page, limit := utils.ParsePagination(c)

	tests, meta, err := tc.Tests.List(teacher.ID, page, limit)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Tests retrieved successfully",
		"data":    tests,
		"meta":    meta,
	})
}

func (tc *TestController) Get(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	testID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid test ID"))
	}

	test, err := tc.Tests.GetByID(uint(testID), teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"test": test,
	})
}

func (tc *TestController) Update(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	testID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid test ID"))
	}

	var input services.UpdateTestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}

	test, err := tc.Tests.Update(uint(testID), input, teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Test updated successfully",
		"test":    test,
	})
}

func (tc *TestController) Delete(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	testID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid test ID"))
	}

	if err := tc.Tests.Delete(uint(testID), teacher.ID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Test deleted successfully",
	})
}

func (tc *TestController) AddQuestions(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	testID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid test ID"))
	}

	var input struct {
		QuestionIDs []uint `json:"questionIds" validate:"required,min=1"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Cannot parse JSON"))
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.HandleError(c, err)
	}

	test, err := tc.Tests.AddQuestions(uint(testID), input.QuestionIDs, teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Questions added successfully",
		"test":    test,
	})
}

func (tc *TestController) RemoveQuestion(c *fiber.Ctx) error {
	teacher := middleware.UserFromContext(c)

	testID, err := c.ParamsInt("id")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid test ID"))
	}
	questionID, err := c.ParamsInt("questionId")
	if err != nil {
		return utils.HandleError(c, apperr.New(apperr.ValidationFailed, "Invalid question ID"))
	}

	test, err := tc.Tests.RemoveQuestion(uint(testID), uint(questionID), teacher.ID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Question removed successfully",
		"test":    test,
	})
}
