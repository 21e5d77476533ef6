package inventory

import (
	"fmt"
	"strings"

	"e-inventoria-backend/internal/audit"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateProductRequest struct {
	Name          string  `json:"product_name"`
	Category      string  `json:"product_category"`
	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	Quantity      int     `json:"product_quantity"`
	Stockout      *int    `json:"product_stockout"`
	Overstock     *int    `json:"product_overstock"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"product_name"`
	Category      *string  `json:"product_category"`
	PurchasePrice *float64 `json:"purchase_price"`
	SalePrice     *float64 `json:"sale_price"`
	Stockout      *int     `json:"product_stockout"`
	Overstock     *int     `json:"product_overstock"`
}

type ProductResponse struct {
	ID            uint    `json:"product_id"`
	Name          string  `json:"product_name"`
	Category      string  `json:"product_category"`
	PurchasePrice float64 `json:"purchase_price"`
	SalePrice     float64 `json:"sale_price"`
	Quantity      int     `json:"product_quantity"`
	Stockout      *int    `json:"product_stockout"`
	Overstock     *int    `json:"product_overstock"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Quantity:      p.Quantity,
		Stockout:      p.Stockout,
		Overstock:     p.Overstock,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validateThresholds(quantity int, stockout, overstock *int) error {
	if quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Quantity cannot be negative")
	}
	if stockout != nil && *stockout < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Stockout limit cannot be negative")
	}
	if overstock != nil && *overstock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Overstock limit cannot be negative")
	}
	if stockout != nil && overstock != nil && *overstock < *stockout {
		return fiber.NewError(fiber.StatusBadRequest, "Overstock limit cannot be lower than stockout limit")
	}
	return nil
}

// -------------------------
// Product CRUD
// -------------------------

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Category = strings.TrimSpace(body.Category)
		if body.Name == "" || body.Category == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Product name and category are required")
		}
		if body.PurchasePrice < 0 || body.SalePrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Prices cannot be negative")
		}
		if err := validateThresholds(body.Quantity, body.Stockout, body.Overstock); err != nil {
			return err
		}

		// Duplicate name check before insert, mirroring the unique index.
		var count int64
		database.DB.Model(&models.Product{}).Where("name = ?", body.Name).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Product %q already exists", body.Name))
		}

		product := models.Product{
			Name:          body.Name,
			Category:      body.Category,
			PurchasePrice: body.PurchasePrice,
			SalePrice:     body.SalePrice,
			Quantity:      body.Quantity,
			Stockout:      body.Stockout,
			Overstock:     body.Overstock,
		}

		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Product added: %s (%d pcs)", product.Name, product.Quantity),
				Before:      nil,
				After:       product,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(product))
	}
}

// GET /api/products?search=&page=&limit=
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, offset := parsePagination(c)

		dbq := database.DB.Model(&models.Product{})
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var total int64
		dbq.Count(&total)

		var products []models.Product
		if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}

		resp := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, toProductResponse(p))
		}

		return c.JSON(fiber.Map{
			"data":  resp,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return c.JSON(toProductResponse(product))
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := product

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Product name cannot be empty")
			}
			var count int64
			database.DB.Model(&models.Product{}).
				Where("name = ? AND id <> ?", name, product.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Product %q already exists", name))
			}
			product.Name = name
		}
		if body.Category != nil {
			category := strings.TrimSpace(*body.Category)
			if category == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Product category cannot be empty")
			}
			product.Category = category
		}
		if body.PurchasePrice != nil {
			if *body.PurchasePrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Prices cannot be negative")
			}
			product.PurchasePrice = *body.PurchasePrice
		}
		if body.SalePrice != nil {
			if *body.SalePrice < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Prices cannot be negative")
			}
			product.SalePrice = *body.SalePrice
		}
		if body.Stockout != nil {
			product.Stockout = body.Stockout
		}
		if body.Overstock != nil {
			product.Overstock = body.Overstock
		}

		// Note: product quantity is deliberately not editable here; only
		// instock/order transactions move it.
		if err := validateThresholds(product.Quantity, product.Stockout, product.Overstock); err != nil {
			return err
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Product updated: %s", product.Name),
				Before:      before,
				After:       product,
			})
		}

		return c.JSON(toProductResponse(product))
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		// Refuse while transaction history references the product.
		var instockLines, orderLines, opnameLines int64
		database.DB.Model(&models.InstockItem{}).Where("product_id = ?", product.ID).Count(&instockLines)
		database.DB.Model(&models.OrderItem{}).Where("product_id = ?", product.ID).Count(&orderLines)
		database.DB.Model(&models.OpnameItem{}).Where("product_id = ?", product.ID).Count(&opnameLines)
		if instockLines+orderLines+opnameLines > 0 {
			return fiber.NewError(fiber.StatusConflict, "Product has transaction history and cannot be deleted")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "product",
				EntityID:    product.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Product deleted: %s", product.Name),
				Before:      product,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
