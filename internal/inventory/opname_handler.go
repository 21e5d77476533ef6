package inventory

import (
	"fmt"
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

type CreateOpnameRequest struct {
	ProductID uint `json:"product_id"`
	RealStock int  `json:"real_stock"` // counted physical stock
}

type UpdateOpnameLineRequest struct {
	ProductID uint `json:"product_id"`
	RealStock int  `json:"real_stock"`
}

type OpnameLineResponse struct {
	LineID      uint   `json:"opname_product_id"`
	OpnameID    uint   `json:"opname_id"`
	OpnameDate  string `json:"opname_date"`
	UserName    string `json:"user_name"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Recorded    int    `json:"product_quantity"` // recorded stock at response time
	RealStock   int    `json:"real_stock"`
	Difference  int    `json:"stock_difference"`
}

// -------------------------
// Opname (stocktake)
// -------------------------

// POST /api/opnames
//
// Records an audit snapshot: counted stock and its difference against
// the recorded quantity. Product quantity is never touched.
func CreateOpnameHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOpnameRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Product is required")
		}
		if body.RealStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Counted stock cannot be negative")
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product not found")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		opname := models.Opname{
			UserID: userID,
			Date:   time.Now(),
		}
		item := models.OpnameItem{
			ProductID:  body.ProductID,
			RealStock:  body.RealStock,
			Difference: stock.OpnameDifference(body.RealStock, product.Quantity),
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&opname).Error; err != nil {
				return err
			}
			item.OpnameID = opname.ID
			return tx.Create(&item).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save opname")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "opname",
			EntityID:    opname.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Opname recorded: %s, counted %d (difference %+d)", product.Name, item.RealStock, item.Difference),
			Before:      nil,
			After:       item,
		})

		return c.Status(fiber.StatusCreated).JSON(OpnameLineResponse{
			LineID:      item.ID,
			OpnameID:    opname.ID,
			OpnameDate:  opname.Date.Format("2006-01-02"),
			UserName:    userName,
			ProductID:   product.ID,
			ProductName: product.Name,
			Recorded:    product.Quantity,
			RealStock:   item.RealStock,
			Difference:  item.Difference,
		})
	}
}

// GET /api/opnames?from=&to=&page=&limit=
//
// Stocktake history, newest first, one row per reconciliation event.
func ListOpnamesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, offset := parsePagination(c)

		dbq := database.DB.Model(&models.Opname{})

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

		var total int64
		dbq.Count(&total)

		var opnames []models.Opname
		if err := dbq.Preload("User").Preload("Items.Product").
			Order("date DESC, id DESC").Limit(limit).Offset(offset).
			Find(&opnames).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list opnames")
		}

		resp := make([]OpnameLineResponse, 0, len(opnames))
		for _, op := range opnames {
			for _, item := range op.Items {
				resp = append(resp, OpnameLineResponse{
					LineID:      item.ID,
					OpnameID:    op.ID,
					OpnameDate:  op.Date.Format("2006-01-02"),
					UserName:    op.User.Name,
					ProductID:   item.ProductID,
					ProductName: item.Product.Name,
					Recorded:    item.Product.Quantity,
					RealStock:   item.RealStock,
					Difference:  item.Difference,
				})
			}
		}

		return c.JSON(fiber.Map{
			"data":  resp,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// PUT /api/opnames/lines/:id
//
// Recomputes the difference against the product's current recorded
// quantity. Still no product mutation.
func UpdateOpnameLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.OpnameItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Opname line not found")
		}

		var body UpdateOpnameLineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.RealStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Counted stock cannot be negative")
		}

		productID := item.ProductID
		if body.ProductID != 0 {
			productID = body.ProductID
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", productID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Product not found")
		}

		before := item
		item.ProductID = productID
		item.RealStock = body.RealStock
		item.Difference = stock.OpnameDifference(body.RealStock, product.Quantity)

		if err := database.DB.Save(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update opname")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "opname",
				EntityID:    item.OpnameID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Opname line %d updated: %s, counted %d (difference %+d)", item.ID, product.Name, item.RealStock, item.Difference),
				Before:      before,
				After:       item,
			})
		}

		return c.JSON(OpnameLineResponse{
			LineID:      item.ID,
			OpnameID:    item.OpnameID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Recorded:    product.Quantity,
			RealStock:   item.RealStock,
			Difference:  item.Difference,
		})
	}
}

// DELETE /api/opnames/lines/:id
//
// Removes a single reconciliation event. The parent opname session is
// kept even when empty: it is audit history, unlike an instock or order
// whose parent means nothing without lines.
func DeleteOpnameLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var item models.OpnameItem
		if err := database.DB.First(&item, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Opname line not found")
		}

		if err := database.DB.Delete(&models.OpnameItem{}, item.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete opname line")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "opname",
				EntityID:    item.OpnameID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Opname line %d deleted", item.ID),
				Before:      item,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
