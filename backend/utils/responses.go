package utils

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"quizhub/backend/apperr"
)

// statusForKind is the single place a classified error turns into an
// HTTP status.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.ValidationFailed, apperr.InvalidState:
		return fiber.StatusBadRequest
	case apperr.AuthRequired, apperr.InvalidToken, apperr.InvalidCredentials:
		return fiber.StatusUnauthorized
	case apperr.Forbidden:
		return fiber.StatusForbidden
	case apperr.NotFound:
		return fiber.StatusNotFound
	case apperr.Conflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError renders a service error as {message, [errors]}.
// Unclassified errors are logged and masked as a 500.
func HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := apperr.As(err); ok {
		body := fiber.Map{"message": appErr.Message}
		if appErr.Details != nil {
			body["errors"] = appErr.Details
		}
		return c.Status(statusForKind(appErr.Kind)).JSON(body)
	}

	log.Printf("unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
	})
}

// PaginationMeta describes one page of a list response.
type PaginationMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return PaginationMeta{Total: total, Page: page, Limit: limit, Pages: pages}
}

// ParsePagination reads page/limit query params with the usual
// defaults (page 1, limit 10).
func ParsePagination(c *fiber.Ctx) (page, limit int) {
	page = c.QueryInt("page", 1)
	limit = c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
