package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"e-inventoria-backend/internal/config"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const testSecret = "test-secret-test-secret-test-secret!"

func newAuthTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	protected := app.Group("/api", JWTMiddleware(cfg))
	protected.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": c.Locals(CtxUserRoleKey)})
	})

	owner := protected.Group("/owner", RequireRole(models.RoleOwner))
	owner.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

func TestJWTMiddleware(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthTestApp(cfg)

	owner := &models.User{Email: "owner@example.com", Role: models.RoleOwner}
	owner.ID = 1
	token, err := GenerateToken(testSecret, owner)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + mustToken(t, "another-secret-another-secret-12345", owner), http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestRequireRoleBlocksAdminOnOwnerRoute(t *testing.T) {
	cfg := &config.Config{JWTSecret: testSecret}
	app := newAuthTestApp(cfg)

	admin := &models.User{Email: "admin@example.com", Role: models.RoleAdmin}
	admin.ID = 2
	adminToken := mustToken(t, testSecret, admin)

	req := httptest.NewRequest(http.MethodGet, "/api/owner/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("admin on owner route status = %d, want 403", resp.StatusCode)
	}

	owner := &models.User{Email: "owner@example.com", Role: models.RoleOwner}
	owner.ID = 1
	req = httptest.NewRequest(http.MethodGet, "/api/owner/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mustToken(t, testSecret, owner))
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("owner on owner route status = %d, want 200", resp.StatusCode)
	}
}

func mustToken(t *testing.T, secret string, user *models.User) string {
	t.Helper()
	token, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}
