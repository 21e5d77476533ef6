package inventory

import (
	"e-inventoria-backend/internal/auth"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// getUserInfo resolves the authenticated user for audit entries and
// transaction ownership.
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Could not resolve user")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "User not found")
	}

	return userID, user.Name, nil
}

// parsePagination reads page/limit query params with the defaults the
// dashboard tables use.
func parsePagination(c *fiber.Ctx) (page, limit, offset int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}
