package inventory

import (
	"net/http"
	"testing"
)

func TestCreateProductValidation(t *testing.T) {
	app := newTestApp(t)

	// Floor above ceiling is rejected.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"product_name":      "Milk 1L",
		"product_category":  "Dairy",
		"purchase_price":    12.5,
		"sale_price":        15.0,
		"product_quantity":  10,
		"product_stockout":  8,
		"product_overstock": 5,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("floor>ceiling status = %d, want 400", resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"product_name":      "Milk 1L",
		"product_category":  "Dairy",
		"purchase_price":    12.5,
		"sale_price":        15.0,
		"product_quantity":  10,
		"product_stockout":  2,
		"product_overstock": 50,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("valid product status = %d, body %v", resp.StatusCode, body)
	}

	// Same name again is a conflict.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"product_name":     "Milk 1L",
		"product_category": "Dairy",
		"product_quantity": 1,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate name status = %d, want 409", resp.StatusCode)
	}
}

func TestDeleteProductGuardedByHistory(t *testing.T) {
	app := newTestApp(t)
	product := seedProduct(t, "Biscuits", 5, nil, nil)
	supplier := seedSupplier(t, "PT Manis")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/instocks", map[string]any{
		"supplier_id": supplier.ID,
		"products": []map[string]any{
			{"product_id": product.ID, "product_quantity": 5},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create instock status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, makeLinePath("/api/products/", product.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("delete with history status = %d, want 409", resp.StatusCode)
	}

	fresh := seedProduct(t, "Crackers", 5, nil, nil)
	resp, _ = doJSON(t, app, http.MethodDelete, makeLinePath("/api/products/", fresh.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete without history status = %d, want 204", resp.StatusCode)
	}
}

func TestListProductsSearchAndPaging(t *testing.T) {
	app := newTestApp(t)
	seedProduct(t, "Green Tea", 5, nil, nil)
	seedProduct(t, "Black Tea", 5, nil, nil)
	seedProduct(t, "Coffee", 5, nil, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/products?search=tea", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if total := int(body["total"].(float64)); total != 2 {
		t.Fatalf("search total = %d, want 2", total)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/products?page=2&limit=2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("paged list status = %d", resp.StatusCode)
	}
	if rows := body["data"].([]any); len(rows) != 1 {
		t.Fatalf("page 2 rows = %d, want 1", len(rows))
	}
}
