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

type CreateSupplierRequest struct {
	Name    string `json:"supplier_name"`
	Address string `json:"supplier_address"`
	Phone   string `json:"supplier_phone"`
}

type UpdateSupplierRequest struct {
	Name    *string `json:"supplier_name"`
	Address *string `json:"supplier_address"`
	Phone   *string `json:"supplier_phone"`
}

type SupplierResponse struct {
	ID        uint   `json:"supplier_id"`
	Name      string `json:"supplier_name"`
	Address   string `json:"supplier_address"`
	Phone     string `json:"supplier_phone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toSupplierResponse(s models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// -------------------------
// Supplier CRUD
// -------------------------

// POST /api/suppliers
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Address = strings.TrimSpace(body.Address)
		body.Phone = strings.TrimSpace(body.Phone)
		if body.Name == "" || body.Address == "" || body.Phone == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Supplier name, address and phone are required")
		}

		var count int64
		database.DB.Model(&models.Supplier{}).Where("name = ?", body.Name).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Supplier %q already exists", body.Name))
		}

		supplier := models.Supplier{
			Name:    body.Name,
			Address: body.Address,
			Phone:   body.Phone,
		}

		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create supplier")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Supplier added: %s", supplier.Name),
				Before:      nil,
				After:       supplier,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSupplierResponse(supplier))
	}
}

// GET /api/suppliers?search=&page=&limit=
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, limit, offset := parsePagination(c)

		dbq := database.DB.Model(&models.Supplier{})
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var total int64
		dbq.Count(&total)

		var suppliers []models.Supplier
		if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list suppliers")
		}

		resp := make([]SupplierResponse, 0, len(suppliers))
		for _, s := range suppliers {
			resp = append(resp, toSupplierResponse(s))
		}

		return c.JSON(fiber.Map{
			"data":  resp,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

// GET /api/suppliers/:id
func GetSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}
		return c.JSON(toSupplierResponse(supplier))
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}

		var body UpdateSupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		before := supplier

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Supplier name cannot be empty")
			}
			var count int64
			database.DB.Model(&models.Supplier{}).
				Where("name = ? AND id <> ?", name, supplier.ID).
				Count(&count)
			if count > 0 {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Supplier %q already exists", name))
			}
			supplier.Name = name
		}
		if body.Address != nil {
			supplier.Address = strings.TrimSpace(*body.Address)
		}
		if body.Phone != nil {
			supplier.Phone = strings.TrimSpace(*body.Phone)
		}

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update supplier")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Supplier updated: %s", supplier.Name),
				Before:      before,
				After:       supplier,
			})
		}

		return c.JSON(toSupplierResponse(supplier))
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Supplier not found")
		}

		var instockCount int64
		database.DB.Model(&models.Instock{}).Where("supplier_id = ?", supplier.ID).Count(&instockCount)
		if instockCount > 0 {
			return fiber.NewError(fiber.StatusConflict, "Supplier has instock history and cannot be deleted")
		}

		if err := database.DB.Delete(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete supplier")
		}

		if userID, userName, err := getUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "supplier",
				EntityID:    supplier.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Supplier deleted: %s", supplier.Name),
				Before:      supplier,
				After:       nil,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
