// Package stock holds the quantity reconciliation rules shared by the
// instock, order and opname handlers. Everything here is pure integer
// arithmetic over a product's current stock position; callers read the
// position, call a rule, and persist the returned quantity inside a
// database transaction.
package stock

import "errors"

var (
	ErrQuantityNotPositive = errors.New("quantity must be a positive integer")
	ErrDuplicateProduct    = errors.New("the same product appears in more than one line")
	ErrOverstock           = errors.New("resulting quantity exceeds the overstock limit")
	ErrStockout            = errors.New("resulting quantity falls below the stockout limit")
	ErrInsufficientStock   = errors.New("quantity exceeds available stock")
	ErrNegativeStock       = errors.New("resulting quantity would be negative")
)

// Level is a product's stock position at the time a rule is applied.
// A nil Stockout means no floor beyond non-negativity; a nil Overstock
// means no ceiling.
type Level struct {
	Quantity  int
	Stockout  *int
	Overstock *int
}

func (l Level) floor() int {
	if l.Stockout != nil {
		return *l.Stockout
	}
	return 0
}

func (l Level) exceedsCeiling(q int) bool {
	return l.Overstock != nil && q > *l.Overstock
}

// ApplyInstock returns the product quantity after an incoming line of
// qty units is recorded.
func ApplyInstock(l Level, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrQuantityNotPositive
	}
	next := l.Quantity + qty
	if l.exceedsCeiling(next) {
		return 0, ErrOverstock
	}
	return next, nil
}

// EditInstock returns the product quantity after an existing incoming
// line is changed from oldQty to newQty: the old contribution is undone
// and the new one applied.
func EditInstock(l Level, oldQty, newQty int) (int, error) {
	if newQty <= 0 {
		return 0, ErrQuantityNotPositive
	}
	next := l.Quantity - oldQty + newQty
	if next < 0 {
		return 0, ErrNegativeStock
	}
	if l.exceedsCeiling(next) {
		return 0, ErrOverstock
	}
	return next, nil
}

// ReverseInstock returns the product quantity after an incoming line of
// oldQty units is deleted.
func ReverseInstock(l Level, oldQty int) (int, error) {
	next := l.Quantity - oldQty
	if next < 0 {
		return 0, ErrNegativeStock
	}
	return next, nil
}

// ApplyOrder returns the product quantity after an outgoing line of qty
// units is allocated.
func ApplyOrder(l Level, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrQuantityNotPositive
	}
	if qty > l.Quantity {
		return 0, ErrInsufficientStock
	}
	next := l.Quantity - qty
	if next < l.floor() {
		return 0, ErrStockout
	}
	return next, nil
}

// EditOrder returns the product quantity after an existing outgoing line
// is changed from oldQty to newQty.
func EditOrder(l Level, oldQty, newQty int) (int, error) {
	if newQty <= 0 {
		return 0, ErrQuantityNotPositive
	}
	next := l.Quantity + oldQty - newQty
	if next < 0 {
		return 0, ErrInsufficientStock
	}
	if next < l.floor() {
		return 0, ErrStockout
	}
	return next, nil
}

// ReverseOrder returns the product quantity after an outgoing line of
// oldQty units is deleted. Restoring stock cannot violate the floor, so
// there is nothing to reject.
func ReverseOrder(l Level, oldQty int) int {
	return l.Quantity + oldQty
}

// CheckDuplicateProducts rejects a submitted line set in which the same
// product appears more than once.
func CheckDuplicateProducts(productIDs []uint) error {
	seen := make(map[uint]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			return ErrDuplicateProduct
		}
		seen[id] = struct{}{}
	}
	return nil
}

// OpnameDifference is the audit delta recorded by a stocktake line:
// counted physical stock minus the recorded quantity.
func OpnameDifference(realStock, recorded int) int {
	return realStock - recorded
}
