package inventory

import (
	"net/http"
	"testing"

	"e-inventoria-backend/internal/database"
	"e-inventoria-backend/internal/models"
)

// Walks the full lifecycle: product at 10 with ceiling 20, instock of 8
// brings it to 18, a further 5 is rejected, editing the line to 3 lands
// on 13, deleting it restores 10 and removes the empty instock.
func TestInstockLifecycle(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Mineral Water", 10, nil, intPtr(20))
	supplier := seedSupplier(t, "PT Tirta")

	resp, body := doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 8},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create instock status = %d, body %v", resp.StatusCode, body)
	}
	if got := productQuantity(t, product.ID); got != 18 {
		t.Fatalf("quantity after instock = %d, want 18", got)
	}
	if body["instock_status"] != "pending" {
		t.Fatalf("new instock status = %v, want pending", body["instock_status"])
	}

	lines := body["products"].([]any)
	lineID := uint(lines[0].(map[string]any)["instock_product_id"].(float64))

	// 18 + 5 = 23 > 20, whole submission rejected.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 5},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overstock create status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 18 {
		t.Fatalf("quantity after rejected instock = %d, want 18", got)
	}

	// Edit line 8 -> 3: 18 - 8 + 3 = 13.
	resp, _ = doJSON(t, app, http.MethodPut, makeLinePath("/api/instocks/lines/", lineID), map[string]any{
		"product_quantity": 3,
		"instock_status":   "completed",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit line status = %d", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 13 {
		t.Fatalf("quantity after edit = %d, want 13", got)
	}

	// Edit back above the ceiling: 13 - 3 + 11 = 21 > 20.
	resp, _ = doJSON(t, app, http.MethodPut, makeLinePath("/api/instocks/lines/", lineID), map[string]any{
		"product_quantity": 11,
		"instock_status":   "completed",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("overstock edit status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 13 {
		t.Fatalf("quantity after rejected edit = %d, want 13", got)
	}

	// Delete the only line: quantity back to 10, parent gone.
	resp, _ = doJSON(t, app, http.MethodDelete, makeLinePath("/api/instocks/lines/", lineID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete line status = %d", resp.StatusCode)
	}
	if got := productQuantity(t, product.ID); got != 10 {
		t.Fatalf("quantity after delete = %d, want 10", got)
	}

	var parents int64
	database.DB.Model(&models.Instock{}).Count(&parents)
	if parents != 0 {
		t.Fatalf("instock parents remaining = %d, want 0", parents)
	}
}

func TestInstockDuplicateProductRejected(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Instant Noodles", 10, nil, nil)
	supplier := seedSupplier(t, "PT Sumber")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 2},
			{"product_id": product.ID, "product_quantity": 3},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate products status = %d, want 400", resp.StatusCode)
	}

	if got := productQuantity(t, product.ID); got != 10 {
		t.Fatalf("quantity after rejection = %d, want 10", got)
	}
	var parents, items int64
	database.DB.Model(&models.Instock{}).Count(&parents)
	database.DB.Model(&models.InstockItem{}).Count(&items)
	if parents != 0 || items != 0 {
		t.Fatalf("writes performed on rejected submission: %d parents, %d items", parents, items)
	}
}

// A multi-line instock is all-or-nothing: one bad line rolls back every
// other line's quantity update.
func TestInstockMultiLineAtomicity(t *testing.T) {
	app := newTestApp(t)
	first := seedProduct(t, "Rice 5kg", 10, nil, nil)
	second := seedProduct(t, "Cooking Oil", 10, nil, intPtr(12))
	supplier := seedSupplier(t, "PT Pangan")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": first.ID, "product_quantity": 5},
			{"product_id": second.ID, "product_quantity": 5}, // 15 > 12
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mixed submission status = %d, want 400", resp.StatusCode)
	}
	if got := productQuantity(t, first.ID); got != 10 {
		t.Fatalf("first product quantity = %d, want untouched 10", got)
	}
	if got := productQuantity(t, second.ID); got != 10 {
		t.Fatalf("second product quantity = %d, want untouched 10", got)
	}
}

// Deleting a non-last line keeps the parent; deleting the last one
// removes it.
func TestInstockCascadeOnEmpty(t *testing.T) {
	app := newTestApp(t)
	first := seedProduct(t, "Soap", 0, nil, nil)
	second := seedProduct(t, "Shampoo", 0, nil, nil)
	supplier := seedSupplier(t, "PT Bersih")

	resp, body := doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": first.ID, "product_quantity": 4},
			{"product_id": second.ID, "product_quantity": 6},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	lines := body["products"].([]any)
	firstLine := uint(lines[0].(map[string]any)["instock_product_id"].(float64))
	secondLine := uint(lines[1].(map[string]any)["instock_product_id"].(float64))

	if resp, _ := doJSON(t, app, http.MethodDelete, makeLinePath("/api/instocks/lines/", firstLine), nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete first line status = %d", resp.StatusCode)
	}
	var parents int64
	database.DB.Model(&models.Instock{}).Count(&parents)
	if parents != 1 {
		t.Fatalf("parent removed while a sibling line remains")
	}

	if resp, _ := doJSON(t, app, http.MethodDelete, makeLinePath("/api/instocks/lines/", secondLine), nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete second line status = %d", resp.StatusCode)
	}
	database.DB.Model(&models.Instock{}).Count(&parents)
	if parents != 0 {
		t.Fatalf("parent not removed with its last line")
	}
}
