package inventory

import (
	"net/http"
	"testing"

	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"
)

// Product at 50 with stockout floor 10: ordering 45 would leave 5 and is
// rejected; ordering 35 leaves 15 and passes.
func TestOrderStockoutFloor(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Sugar 1kg", 50, intPtr(10), nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Toko Melati",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 45},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("floor-breaching order status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 50 {
		t.Fatalf("quantity after rejected order = %d, want 50", got)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Toko Melati",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 35},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("valid order status = %d, want 201", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 15 {
		t.Fatalf("quantity after order = %d, want 15", got)
	}
}

func TestOrderEditAndRoundTrip(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Flour 1kg", 50, intPtr(10), nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Warung Barokah",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 20},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order status = %d", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 30 {
		t.Fatalf("quantity after order = %d, want 30", got)
	}

	lines := body["products"].([]any)
	lineID := uint(lines[0].(map[string]any)["order_product_id"].(float64))

	// Edit 20 -> 30: 30 + 20 - 30 = 20, still above the floor.
	resp, _ = doJSON(t, app, http.MethodPut, makeLinePath("/api/orders/lines/", lineID), map[string]any{
		"product_quantity": 30,
		"order_status":     "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit order line status = %d", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 20 {
		t.Fatalf("quantity after edit = %d, want 20", got)
	}

	// Edit 30 -> 45: 20 + 30 - 45 = 5 < 10, rejected.
	resp, _ = doJSON(t, app, http.MethodPut, makeLinePath("/api/orders/lines/", lineID), map[string]any{
		"product_quantity": 45,
		"order_status":     "completed",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("floor-breaching edit status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 20 {
		t.Fatalf("quantity after rejected edit = %d, want 20", got)
	}

	// Delete restores the allocation and the empty order cascades away.
	resp, _ = doJSON(t, app, http.MethodDelete, makeLinePath("/api/orders/lines/", lineID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete order line status = %d", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 50 {
		t.Fatalf("quantity after delete = %d, want 50", got)
	}

	var parents int64
	database.DB.Model(&models.Order{}).Count(&parents)
	if parents != 0 {
		t.Fatalf("order parents remaining = %d, want 0", parents)
	}
}

func TestOrderDuplicateProductRejected(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Tea Box", 30, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Toko Anggrek",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 2},
			{"product_id": product.ID, "product_quantity": 4},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate products status = %d, want 400", resp.StatusCode)
	}

	var parents, items int64
	database.DB.Model(&models.Order{}).Count(&parents)
	database.DB.Model(&models.OrderItem{}).Count(&items)
	if parents != 0 || items != 0 {
		t.Fatalf("writes performed on rejected submission: %d parents, %d items", parents, items)
	}
	if got := productQuantity(t, product.ID); got != 30 {
		t.Fatalf("quantity after rejection = %d, want 30", got)
	}
}

func TestOrderExceedingAvailableStockRejected(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Matches", 3, nil, nil)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Kios Jaya",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 4},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("over-available order status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 3 {
		t.Fatalf("quantity = %d, want 3", got)
	}

	// Without a floor the product may drain to exactly zero.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/orders", map[string]any{
		"order_destination": "Kios Jaya",
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 3},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("drain-to-zero order status = %d, want 201", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 0 {
		t.Fatalf("quantity = %d, want 0", got)
	}
}
