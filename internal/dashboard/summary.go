package dashboard

import (
	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StockAlert struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"product_name"`
	Quantity  int    `json:"product_quantity"`
	Limit     int    `json:"limit"`
}

type SummaryResponse struct {
	ProductCount    int64        `json:"product_count"`
	SupplierCount   int64        `json:"supplier_count"`
	TotalStockValue float64      `json:"total_stock_value"` // purchase price * quantity
	PendingInstocks int64        `json:"pending_instocks"`
	PendingOrders   int64        `json:"pending_orders"`
	LowStock        []StockAlert `json:"low_stock"`
	OverStock       []StockAlert `json:"over_stock"`
	LastOpnameDate  *string      `json:"last_opname_date"`
}

// GET /api/dashboard/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var resp SummaryResponse

		database.DB.Model(&models.Product{}).Count(&resp.ProductCount)
		database.DB.Model(&models.Supplier{}).Count(&resp.SupplierCount)
		database.DB.Model(&models.Instock{}).
			Where("status = ?", models.StatusPending).Count(&resp.PendingInstocks)
		database.DB.Model(&models.Order{}).
			Where("status = ?", models.StatusPending).Count(&resp.PendingOrders)

		var products []models.Product
		if err := database.DB.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load products")
		}

		resp.LowStock = make([]StockAlert, 0)
		resp.OverStock = make([]StockAlert, 0)
		for _, p := range products {
			resp.TotalStockValue += p.PurchasePrice * float64(p.Quantity)
			if p.Stockout != nil && p.Quantity <= *p.Stockout {
				resp.LowStock = append(resp.LowStock, StockAlert{
					ProductID: p.ID, Name: p.Name, Quantity: p.Quantity, Limit: *p.Stockout,
				})
			}
			if p.Overstock != nil && p.Quantity >= *p.Overstock {
				resp.OverStock = append(resp.OverStock, StockAlert{
					ProductID: p.ID, Name: p.Name, Quantity: p.Quantity, Limit: *p.Overstock,
				})
			}
		}

		var lastOpname models.Opname
		if err := database.DB.Order("date DESC").First(&lastOpname).Error; err == nil {
			formatted := lastOpname.Date.Format("2006-01-02")
			resp.LastOpnameDate = &formatted
		}

		return c.JSON(resp)
	}
}
