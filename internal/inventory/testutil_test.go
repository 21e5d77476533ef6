package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"e-inventoria-backend/internal/auth"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var testDBCounter atomic.Int64

// newTestApp wires an in-memory database and a fiber app with the
// inventory routes behind a stub auth layer acting as an owner.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:inventory_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.DB = db

	user := models.User{
		Name:         "Test Owner",
		Email:        "owner@example.com",
		PasswordHash: "x",
		Role:         models.RoleOwner,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, models.RoleOwner)
		return c.Next()
	})

	api := app.Group("/api")
	api.Post("/products", CreateProductHandler())
	api.Get("/products", ListProductsHandler())
	api.Get("/products/:id", GetProductHandler())
	api.Put("/products/:id", UpdateProductHandler())
	api.Delete("/products/:id", DeleteProductHandler())

	api.Post("/suppliers", CreateSupplierHandler())
	api.Get("/suppliers", ListSuppliersHandler())

	api.Post("/instocks", CreateInstockHandler())
	api.Get("/instocks", ListInstocksHandler())
	api.Get("/instocks/lines/:id", GetInstockLineHandler())
	api.Put("/instocks/lines/:id", UpdateInstockLineHandler())
	api.Delete("/instocks/lines/:id", DeleteInstockLineHandler())

	api.Post("/orders", CreateOrderHandler())
	api.Get("/orders", ListOrdersHandler())
	api.Put("/orders/lines/:id", UpdateOrderLineHandler())
	api.Delete("/orders/lines/:id", DeleteOrderLineHandler())

	api.Post("/opnames", CreateOpnameHandler())
	api.Get("/opnames", ListOpnamesHandler())
	api.Put("/opnames/lines/:id", UpdateOpnameLineHandler())
	api.Delete("/opnames/lines/:id", DeleteOpnameLineHandler())

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func intPtr(v int) *int { return &v }

func makeLinePath(prefix string, id uint) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

func seedProduct(t *testing.T, name string, quantity int, stockout, overstock *int) models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		Category:      "General",
		PurchasePrice: 10,
		SalePrice:     15,
		Quantity:      quantity,
		Stockout:      stockout,
		Overstock:     overstock,
	}
	if err := database.DB.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func seedSupplier(t *testing.T, name string) models.Supplier {
	t.Helper()
	supplier := models.Supplier{Name: name, Address: "Street 1", Phone: "0800000000"}
	if err := database.DB.Create(&supplier).Error; err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return supplier
}

func productQuantity(t *testing.T, id uint) int {
	t.Helper()
	var product models.Product
	if err := database.DB.First(&product, id).Error; err != nil {
		t.Fatalf("load product %d: %v", id, err)
	}
	return product.Quantity
}
