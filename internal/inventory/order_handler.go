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

type CreateOrderRequest struct {
	Destination string            `json:"order_destination"`
	Date        string            `json:"date"`
	Lines       []TransactionLine `json:"products"`
}

type UpdateOrderLineRequest struct {
	Quantity    int     `json:"product_quantity"`
	Destination *string `json:"order_destination"`
	Status      string  `json:"order_status"`
}

type OrderLineResponse struct {
	LineID      uint   `json:"order_product_id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Category    string `json:"product_category"`
	Quantity    int    `json:"product_quantity"`
}

type OrderResponse struct {
	ID          uint                `json:"order_id"`
	Destination string              `json:"order_destination"`
	Date        string              `json:"order_date"`
	Status      string              `json:"order_status"`
	Lines       []OrderLineResponse `json:"products"`
	CreatedAt   string              `json:"created_at"`
}

func toOrderResponse(o models.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, OrderLineResponse{
			LineID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Category:    item.Product.Category,
			Quantity:    item.Quantity,
		})
	}
	return OrderResponse{
		ID:          o.ID,
		Destination: o.Destination,
		Date:        o.Date.Format("2006-01-02"),
		Status:      string(o.Status),
		Lines:       lines,
		CreatedAt:   o.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------
// Order transactions
// -------------------------

// POST /api/orders
//
// Stock is allocated (decremented) at creation and given back on
// edit/delete, so the recorded order and the product quantity always
// agree.
func CreateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Destination = strings.TrimSpace(body.Destination)
		if body.Destination == "" || len(body.Lines) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Destination and at least one product line are required")
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

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		order := models.Order{
			Destination: body.Destination,
			UserID:      userID,
			Date:        date,
			Status:      models.StatusPending,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			newQuantities := make(map[uint]int, len(body.Lines))
			for _, line := range body.Lines {
				var product models.Product
				if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Product not found (ID: %d)", line.ProductID))
				}
				next, err := stock.ApplyOrder(productLevel(product), line.Quantity)
				if err != nil {
					return ruleError(err, productLevel(product))
				}
				newQuantities[line.ProductID] = next
			}

			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			for _, line := range body.Lines {
				item := models.OrderItem{
					OrderID:   order.ID,
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
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create order")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Order created for %s (%d lines)", order.Destination, len(body.Lines)),
			Before:      nil,
			After:       order,
		})

		var created models.Order
		if err := database.DB.Preload("Items.Product").First(&created, order.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load created order")
		}

		return c.Status(fiber.StatusCreated).JSON(toOrderResponse(created))
	}
}

// GET /api/orders?search=&from=&to=&page=&limit=
func ListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, offset := parsePagination(c)

		dbq := database.DB.Model(&models.Order{})

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
			dbq = dbq.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var total int64
		dbq.Count(&total)

		var orders []models.Order
		if err := dbq.Preload("Items.Product").
			Order("date DESC, id DESC").Limit(limit).Offset(offset).
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list orders")
		}

		resp := make([]OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, toOrderResponse(o))
		}

		return c.JSON(fiber.Map{
			"data":  resp,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /api/orders/lines/:id
func GetOrderLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.OrderItem
		if err := database.DB.Preload("Product").First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order line not found")
		}

		var order models.Order
		if err := database.DB.First(&order, item.OrderID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order not found")
		}

		return c.JSON(fiber.Map{
			"order_product_id":  item.ID,
			"order_id":          order.ID,
			"order_destination": order.Destination,
			"order_status":      order.Status,
			"order_date":        order.Date.Format("2006-01-02"),
			"product_id":        item.ProductID,
			"product_name":      item.Product.Name,
			"product_category":  item.Product.Category,
			"product_quantity":  item.Quantity,
		})
	}
}

// PUT /api/orders/lines/:id
//
// Undoes the old allocation and applies the new one in a single
// transaction: product quantity becomes current + old - new.
func UpdateOrderLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.OrderItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order line not found")
		}

		var body UpdateOrderLineRequest
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

			next, err := stock.EditOrder(productLevel(product), oldQuantity, body.Quantity)
			if err != nil {
				return ruleError(err, productLevel(product))
			}

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).Update("quantity", next).Error; err != nil {
				return err
			}

			updates := map[string]interface{}{"status": status}
			if body.Destination != nil {
				destination := strings.TrimSpace(*body.Destination)
				if destination == "" {
					return fiber.NewError(fiber.StatusBadRequest, "Destination cannot be empty")
				}
				updates["destination"] = destination
			}
			if err := tx.Model(&models.Order{}).
				Where("id = ?", item.OrderID).Updates(updates).Error; err != nil {
				return err
			}

			if err := tx.Model(&models.OrderItem{}).
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
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update order")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    item.OrderID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Order line %d quantity %d -> %d, status %s", item.ID, oldQuantity, body.Quantity, status),
				Before:      fiber.Map{"product_quantity": oldQuantity},
				After:       fiber.Map{"product_quantity": body.Quantity, "order_status": status},
			})
		}

		return c.JSON(fiber.Map{
			"order_product_id": item.ID,
			"product_quantity": body.Quantity,
			"order_status":     status,
		})
	}
}

// DELETE /api/orders/lines/:id
//
// Restores the allocated quantity to the product, removes the line, and
// removes the parent order when it has no lines left.
func DeleteOrderLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.OrderItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Order line not found")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Product not found")
			}

			next := stock.ReverseOrder(productLevel(product), item.Quantity)

			if err := tx.Model(&models.Product{}).
				Where("id = ?", product.ID).Update("quantity", next).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.OrderItem{}, item.ID).Error; err != nil {
				return err
			}

			var remaining int64
			if err := tx.Model(&models.OrderItem{}).
				Where("order_id = ?", item.OrderID).Count(&remaining).Error; err != nil {
				return err
			}
			if remaining == 0 {
				if err := tx.Delete(&models.Order{}, item.OrderID).Error; err != nil {
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
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete order line")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "order",
				EntityID:    item.OrderID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Order line %d deleted (%d pcs restored)", item.ID, item.Quantity),
				Before:      item,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
