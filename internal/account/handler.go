package account

import (
	"fmt"
	"strings"

	"e-inventoria-backend/internal/audit"
	"e-inventoria-backend/internal/auth"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateAccountRequest struct {
	Name     string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone_number"`
	Address  string `json:"address"`
}

type UpdateAccountRequest struct {
	Name     *string `json:"full_name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Phone    *string `json:"phone_number"`
	Address  *string `json:"address"`
}

type AccountResponse struct {
	ID        uint   `json:"user_id"`
	Name      string `json:"full_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone_number"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

func toAccountResponse(u models.User) AccountResponse {
	return AccountResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func parseRole(raw string) (models.UserRole, error) {
	switch models.UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case models.RoleOwner:
		return models.RoleOwner, nil
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "Role must be 'owner' or 'admin'")
	}
}

func currentUser(c *fiber.Ctx) (uint, string, error) {
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

// ----------------------------------------
// Account management (owner only)
// ----------------------------------------

// GET /api/users?search=
func ListAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
		}

		var users []models.User
		if err := dbq.Order("created_at asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list accounts")
		}

		resp := make([]AccountResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, toAccountResponse(u))
		}

		return c.JSON(resp)
	}
}

// POST /api/users
func CreateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		if body.Name == "" || body.Email == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name, email and password are required")
		}

		role, err := parseRole(body.Role)
		if err != nil {
			return err
		}

		var count int64
		database.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("An account with email %s already exists", body.Email))
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         role,
			Phone:        strings.TrimSpace(body.Phone),
			Address:      strings.TrimSpace(body.Address),
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create account")
		}

		if userID, userName, err := currentUser(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Account created: %s (%s)", user.Email, user.Role),
				Before:      nil,
				After:       toAccountResponse(user),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toAccountResponse(user))
	}
}

// PUT /api/users/:id
func UpdateAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Account not found")
		}

		var body UpdateAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := toAccountResponse(user)

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			user.Name = name
		}
		if body.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*body.Email))
			if email == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Email cannot be empty")
			}
			var count int64
			database.DB.Model(&models.User{}).
				Where("email = ? AND id <> ?", email, user.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("An account with email %s already exists", email))
			}
			user.Email = email
		}
		if body.Role != nil {
			role, err := parseRole(*body.Role)
			if err != nil {
				return err
			}
			user.Role = role
		}
		if body.Password != nil && *body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not hash password")
			}
			user.PasswordHash = string(hash)
		}
		if body.Phone != nil {
			user.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Address != nil {
			user.Address = strings.TrimSpace(*body.Address)
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update account")
		}

		if userID, userName, err := currentUser(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "user",
				EntityID:    user.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Account updated: %s", user.Email),
				Before:      before,
				After:       toAccountResponse(user),
			})
		}

		return c.JSON(toAccountResponse(user))
	}
}

// DELETE /api/users/:id
func DeleteAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Account not found")
		}

		userID, userName, err := currentUser(c)
		if err != nil {
			return err
		}
		if user.ID == userID {
			return fiber.NewError(fiber.StatusBadRequest, "You cannot delete your own account")
		}

		if err := database.DB.Delete(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete account")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Account deleted: %s", user.Email),
			Before:      toAccountResponse(user),
			After:       nil,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
