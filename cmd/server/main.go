package main

import (
	"log"
	"strings"

	"e-inventoria-backend/internal/account"
	"e-inventoria-backend/internal/audit"
	"e-inventoria-backend/internal/auth"
	"e-inventoria-backend/internal/config"
	"e-inventoria-backend/internal/dashboard"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/inventory"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected: both roles
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Use(auth.RequireRole(models.RoleOwner, models.RoleAdmin))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler())

	// Products
	protected.Post("/products", inventory.CreateProductHandler())
	protected.Get("/products", inventory.ListProductsHandler())
	protected.Get("/products/:id", inventory.GetProductHandler())
	protected.Put("/products/:id", inventory.UpdateProductHandler())
	protected.Delete("/products/:id", inventory.DeleteProductHandler())

	// Suppliers
	protected.Post("/suppliers", inventory.CreateSupplierHandler())
	protected.Get("/suppliers", inventory.ListSuppliersHandler())
	protected.Get("/suppliers/:id", inventory.GetSupplierHandler())
	protected.Put("/suppliers/:id", inventory.UpdateSupplierHandler())
	protected.Delete("/suppliers/:id", inventory.DeleteSupplierHandler())

	// Instock transactions
	protected.Post("/instocks", inventory.CreateInstockHandler())
	protected.Get("/instocks", inventory.ListInstocksHandler())
	protected.Get("/instocks/lines/:id", inventory.GetInstockLineHandler())
	protected.Put("/instocks/lines/:id", inventory.UpdateInstockLineHandler())
	protected.Delete("/instocks/lines/:id", inventory.DeleteInstockLineHandler())

	// Orders
	protected.Post("/orders", inventory.CreateOrderHandler())
	protected.Get("/orders", inventory.ListOrdersHandler())
	protected.Get("/orders/lines/:id", inventory.GetOrderLineHandler())
	protected.Put("/orders/lines/:id", inventory.UpdateOrderLineHandler())
	protected.Delete("/orders/lines/:id", inventory.DeleteOrderLineHandler())

	// Owner-only: stock opname, dashboard, accounts, audit trail
	ownerRoutes := protected.Group("")
	ownerRoutes.Use(auth.RequireRole(models.RoleOwner))

	ownerRoutes.Post("/opnames", inventory.CreateOpnameHandler())
	ownerRoutes.Get("/opnames", inventory.ListOpnamesHandler())
	ownerRoutes.Put("/opnames/lines/:id", inventory.UpdateOpnameLineHandler())
	ownerRoutes.Delete("/opnames/lines/:id", inventory.DeleteOpnameLineHandler())

	ownerRoutes.Get("/dashboard/summary", dashboard.SummaryHandler())

	ownerRoutes.Get("/users", account.ListAccountsHandler())
	ownerRoutes.Post("/users", account.CreateAccountHandler())
	ownerRoutes.Put("/users/:id", account.UpdateAccountHandler())
	ownerRoutes.Delete("/users/:id", account.DeleteAccountHandler())

	ownerRoutes.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server running on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
