package inventory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"e-inventoria-backend/internal/audit"
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"
	"e-inventoria-backend/internal/stock"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// -------------------------
// Request/Response Types
// -------------------------

type TransactionLine struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"product_quantity"`
}

type CreateInstockRequest struct {
	SupplierID uint              `json:"supplier_id"`
	Date       string            `json:"date"` // "2025-12-09", defaults to today
	Lines      []TransactionLine `json:"products"`
}

type UpdateInstockLineRequest struct {
	Quantity int    `json:"product_quantity"`
	Status   string `json:"instock_status"`
}

type InstockLineResponse struct {
	LineID      uint   `json:"instock_product_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"product_category"`
	Quantity    int    `json:"product_quantity"`
}

type InstockResponse struct {
	ID           uint                  `json:"instock_id"`
	SupplierID   uint                  `json:"supplier_id"`
	SupplierName string                `json:"supplier_name"`
	Date         string                `json:"instock_date"`
	Status       string                `json:"instock_status"`
	Lines        []InstockLineResponse `json:"products"`
	CreatedAt    string                `json:"created_at"`
}

func toInstockResponse(in models.Instock) InstockResponse {
	lines := make([]InstockLineResponse, 0, len(in.Items))
	for _, item := range in.Items {
		lines = append(lines, InstockLineResponse{
			LineID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Category:    item.Product.Category,
			Quantity:    item.Quantity,
		})
	}
	return InstockResponse{
		ID:           in.ID,
		SupplierID:   in.SupplierID,
		SupplierName: in.Supplier.Name,
		Date:         in.Date.Format("2006-01-02"),
		Status:       string(in.Status),
		Lines:        lines,
		CreatedAt:    in.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ruleError translates a reconciliation rejection into the HTTP error
// the form surfaces, naming the violated limit where one exists.
func ruleError(err error, level stock.Level) error {
	switch {
	case errors.Is(err, stock.ErrOverstock):
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Resulting product quantity exceeds overstock limit (%d)", *level.Overstock))
	case errors.Is(err, stock.ErrStockout):
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Stock would drop below the stockout threshold of %d", *level.Stockout))
	case errors.Is(err, stock.ErrInsufficientStock):
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("Quantity exceeds available stock (%d)", level.Quantity))
	case errors.Is(err, stock.ErrNegativeStock):
		return fiber.NewError(fiber.StatusBadRequest, "Resulting product quantity cannot be negative")
	case errors.Is(err, stock.ErrQuantityNotPositive):
		return fiber.NewError(fiber.StatusBadRequest, "Quantity must be a positive integer")
	case errors.Is(err, stock.ErrDuplicateProduct):
		return fiber.NewError(fiber.StatusBadRequest,
			"You cannot add the same product multiple times in one transaction")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func productLevel(p models.Product) stock.Level {
	return stock.Level{Quantity: p.Quantity, Stockout: p.Stockout, Overstock: p.Overstock}
}

func parseTransactionDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseStatus(raw string) (models.TransactionStatus, error) {
	switch models.TransactionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case models.StatusPending:
		return models.StatusPending, nil
	case models.StatusCompleted:
		return models.StatusCompleted, nil
	default:
		return "", fiber.NewError(fiber.StatusBadRequest, "Status must be 'pending' or 'completed'")
	}
}

// -------------------------
// Instock transactions
// -------------------------

// POST /api/instocks
//
// Creates the instock record, its line items and the product quantity
// increments in one database transaction: either everything lands or
// nothing does.
func CreateInstockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInstockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.SupplierID == 0 || len(body.Lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier and at least one product line are required")
		}

		productIDs := make([]uint, 0, len(body.Lines))
		for _, line := range body.Lines {
			if line.ProductID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Every line needs a product")
			}
			productIDs = append(productIDs, line.ProductID)
		}
		if err := stock.CheckDuplicateProducts(productIDs); err != nil {
			return ruleError(err, stock.Level{})
		}

		date, err := parseTransactionDate(body.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
		}

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", body.SupplierID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier not found")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		instock := models.Instock{
			SupplierID: body.SupplierID,
			UserID:     userID,
			Date:       date,
			Status:     models.StatusPending,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			// Validate every line against its product before writing
			// anything, so a rejection leaves no trace.
			newQuantities := make(map[uint]int, len(body.Lines))
			for _, line := range body.Lines {
				var product models.Product
				if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Product not found (ID: %d)", line.ProductID))
				}
				next, err := stock.ApplyInstock(productLevel(product), line.Quantity)
				if err != nil {
					return ruleError(err, productLevel(product))
				}
				newQuantities[line.ProductID] = next
			}

			if err := tx.Create(&instock).Error; err != nil {
				return err
			}

			for _, line := range body.Lines {
				item := models.InstockItem{
					InstockID: instock.ID,
					ProductID: line.ProductID,
					Quantity:  line.Quantity,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				if err := tx.Model(&models.Product{}).
					Where("id = ?", line.ProductID).
					Update("quantity", newQuantities[line.ProductID]).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create instock")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "instock",
			EntityID:    instock.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Instock created from %s (%d lines)", supplier.Name, len(body.Lines)),
			Before:      nil,
			After:       instock,
		})

		var created models.Instock
		if err := database.DB.Preload("Supplier").Preload("Items.Product").
			First(&created, instock.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load created instock")
		}

		return c.Status(fiber.StatusCreated).JSON(toInstockResponse(created))
	}
}

// GET /api/instocks?search=&from=&to=&page=&limit=
func ListInstocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, offset := parsePagination(c)

		dbq := database.DB.Model(&models.Instock{})

		if from := c.Query("from"); from != "" {
			if d, err := time.Parse("2006-01-02", from); err == nil {
				dbq = dbq.Where("date >= ?", d)
			}
		}
		if to := c.Query("to"); to != "" {
			if d, err := time.Parse("2006-01-02", to); err == nil {
				dbq = dbq.Where("date <= ?", d)
			}
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			dbq = dbq.Joins("JOIN suppliers ON suppliers.id = instocks.supplier_id").
				Where("LOWER(suppliers.name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var total int64
		dbq.Count(&total)

		var instocks []models.Instock
		if err := dbq.Preload("Supplier").Preload("Items.Product").
			Order("date DESC, id DESC").Limit(limit).Offset(offset).
			Find(&instocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list instocks")
		}

		resp := make([]InstockResponse, 0, len(instocks))
		for _, in := range instocks {
			resp = append(resp, toInstockResponse(in))
		}

		return c.JSON(fiber.Map{
			"data":  resp,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /api/instocks/lines/:id
//
// Prefill for the edit form: the line together with its parent and
// product context.
func GetInstockLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.InstockItem
		if err := database.DB.Preload("Product").First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instock line not found")
		}

		var instock models.Instock
		if err := database.DB.Preload("Supplier").First(&instock, item.InstockID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instock not found")
		}

		return c.JSON(fiber.Map{
			"instock_product_id": item.ID,
			"instock_id":         instock.ID,
			"instock_status":     instock.Status,
			"instock_date":       instock.Date.Format("2006-01-02"),
			"supplier_id":        instock.SupplierID,
			"supplier_name":      instock.Supplier.Name,
			"product_id":         item.ProductID,
			"product_name":       item.Product.Name,
			"product_category":   item.Product.Category,
			"product_quantity":   item.Quantity,
		})
	}
}

// PUT /api/instocks/lines/:id
//
// Re-reconciles the product quantity as current - old + new, then
// updates the product, the parent status and the line together.
func UpdateInstockLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.InstockItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instock line not found")
		}

		var body UpdateInstockLineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		status, err := parseStatus(body.Status)
		if err != nil {
			return err
		}

		oldQuantity := item.Quantity

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Product not found")
			}

			next, err := stock.EditInstock(productLevel(product), oldQuantity, body.Quantity)
			if err != nil {
				return ruleError(err, productLevel(product))
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).Update("quantity", next).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Instock{}).
				Where("id = ?", item.InstockID).Update("status", status).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.InstockItem{}).
				Where("id = ?", item.ID).Update("quantity", body.Quantity).Error; err != nil {
				return err
			}
			return nil
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update instock")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "instock",
				EntityID:    item.InstockID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Instock line %d quantity %d -> %d, status %s", item.ID, oldQuantity, body.Quantity, status),
				Before:      fiber.Map{"product_quantity": oldQuantity},
				After:       fiber.Map{"product_quantity": body.Quantity, "instock_status": status},
			})
		}

		return c.JSON(fiber.Map{
			"instock_product_id": item.ID,
			"product_quantity":   body.Quantity,
			"instock_status":     status,
		})
	}
}

// DELETE /api/instocks/lines/:id
//
// Reverts the line's contribution to the product quantity, removes the
// line, and removes the parent instock when no sibling lines remain.
func DeleteInstockLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.InstockItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Instock line not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Product not found")
			}

			next, err := stock.ReverseInstock(productLevel(product), item.Quantity)
			if err != nil {
				return ruleError(err, productLevel(product))
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).Update("quantity", next).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.InstockItem{}, item.ID).Error; err != nil {
				return err
			}

			var remaining int64
			if err := tx.Model(&models.InstockItem{}).
				Where("instock_id = ?", item.InstockID).Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.Delete(&models.Instock{}, item.InstockID).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete instock line")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "instock",
				EntityID:    item.InstockID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Instock line %d deleted (%d pcs reverted)", item.ID, item.Quantity),
				Before:      item,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
