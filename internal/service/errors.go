package service

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
)

// InsufficientStockError reports a failed stock precondition. It is a
// legitimate, retryable outcome of a sale commit (the stock may have
// changed between the availability check and the commit), not a bug.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}
