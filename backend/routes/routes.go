package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizhub/backend/config"
	"quizhub/backend/controllers"
	"quizhub/backend/middleware"
	"quizhub/backend/models"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "API is running"})
	})

	// Middleware
	authenticate := middleware.Authenticate(db, cfg)
	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	auth := api.Group("/auth")
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Get("/profile", authenticate, authController.GetProfile)

	// Question routes (teachers only)
	questionController := controllers.NewQuestionController(db)
	questions := api.Group("/questions", authenticate, teacherOnly)
	questions.Post("/", questionController.Create)
	questions.Get("/", questionController.List)
	questions.Get("/:id", questionController.Get)
	questions.Put("/:id", questionController.Update)
	questions.Delete("/:id", questionController.Delete)

	// Test routes (teachers only)
	testController := controllers.NewTestController(db)
	tests := api.Group("/tests", authenticate, teacherOnly)
	tests.Post("/", testController.Create)
	tests.Get("/", testController.List)
	tests.Get("/:id", testController.Get)
	tests.Put("/:id", testController.Update)
	tests.Delete("/:id", testController.Delete)
	tests.Post("/:id/questions", testController.AddQuestions)
	tests.Delete("/:id/questions/:questionId", testController.RemoveQuestion)

	// Attempt routes (students only)
	attemptController := controllers.NewAttemptController(db)
	attempts := api.Group("/attempts", authenticate, studentOnly)
	attempts.Post("/", attemptController.Start)
	attempts.Get("/", attemptController.List)
	attempts.Get("/:id", attemptController.Get)
	attempts.Post("/:id/answers", attemptController.SubmitAnswer)
	attempts.Put("/:id/submit", attemptController.Submit)

	// Unknown routes
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Resource not found",
		})
	})
}
