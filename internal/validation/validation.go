// Package validation holds the pure input validators for every typed chat
// reply. Each validator returns a normalized value or a rejection message
// ready for direct display; callers never re-derive wording.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinNameLen = 2
	MaxNameLen = 155

	// MaxQuantity bounds both stock counts and per-sale quantities.
	MaxQuantity = 1_000_000
)

// MaxAmount is the "unreasonable" ceiling for monetary inputs. It is a
// sanity bound, not a domain limit.
var MaxAmount = decimal.NewFromInt(1_000_000_000)

// NameResult carries the outcome of product-name validation.
type NameResult struct {
	OK    bool
	Name  string
	Err   string
}

// IntResult carries the outcome of integer (quantity/stock) validation.
type IntResult struct {
	OK    bool
	Value int
	Err   string
}

// AmountResult carries the outcome of monetary validation.
type AmountResult struct {
	OK     bool
	Amount decimal.Decimal
	Err    string
}

// DateResult carries the outcome of date validation.
type DateResult struct {
	OK   bool
	Date string
	Err  string
}

// Name validates a product name: trimmed, non-empty, 2..155 characters.
func Name(raw string) NameResult {
	name := strings.TrimSpace(raw)
	if name == "" {
		return NameResult{Err: "❌ Name cannot be empty."}
	}
	n := len([]rune(name))
	if n < MinNameLen {
		return NameResult{Err: fmt.Sprintf("❌ Name must be at least %d characters long.", MinNameLen)}
	}
	if n > MaxNameLen {
		return NameResult{Err: fmt.Sprintf("❌ Name must be at most %d characters long.", MaxNameLen)}
	}
	return NameResult{OK: true, Name: name}
}

// StockQuantity validates a stock count: integer, 0..MaxQuantity.
func StockQuantity(raw string) IntResult {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 0 {
		return IntResult{Err: "❌ Please enter a non-negative whole number."}
	}
	if qty > MaxQuantity {
		return IntResult{Err: fmt.Sprintf("❌ Quantity cannot exceed %d.", MaxQuantity)}
	}
	return IntResult{OK: true, Value: qty}
}

// SaleQuantity validates a sale quantity against the available stock.
// The rejection message states both the ceiling and the requested value.
func SaleQuantity(raw string, available int) IntResult {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty <= 0 {
		return IntResult{Err: "❌ Please enter a positive whole number."}
	}
	if qty > MaxQuantity {
		return IntResult{Err: fmt.Sprintf("❌ Quantity cannot exceed %d.", MaxQuantity)}
	}
	if qty > available {
		return IntResult{Err: fmt.Sprintf(
			"❌ Not enough stock!\n\n📦 Available: %d units\n🔢 Requested: %d units\n\nPlease enter a smaller quantity:",
			available, qty)}
	}
	return IntResult{OK: true, Value: qty}
}

// Price validates a total sale price: strictly positive amount.
func Price(raw string) AmountResult {
	return amount(raw, true)
}

// Cost validates a purchase cost: non-negative amount.
func Cost(raw string) AmountResult {
	return amount(raw, false)
}

// ExtraCost validates side costs (shipping etc.): non-negative amount.
func ExtraCost(raw string) AmountResult {
	return amount(raw, false)
}

func amount(raw string, strictlyPositive bool) AmountResult {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return AmountResult{Err: "❌ Please enter a valid number."}
	}
	if strictlyPositive && !v.IsPositive() {
		return AmountResult{Err: "❌ Please enter a number greater than zero."}
	}
	if !strictlyPositive && v.IsNegative() {
		return AmountResult{Err: "❌ Please enter a number that is not negative."}
	}
	if v.GreaterThan(MaxAmount) {
		return AmountResult{Err: "❌ That amount looks unreasonably large. Please check it and try again."}
	}
	return AmountResult{OK: true, Amount: v}
}

// Date validates a slash-separated calendar date. Only the shape and a
// loose plausibility range per component are checked: no month-length or
// real calendar validation, so Persian-calendar dates pass untouched.
func Date(raw string) DateResult {
	const dateErr = "❌ Please enter the date as YYYY/MM/DD (example: 1403/09/29)."

	date := strings.TrimSpace(raw)
	if date == "" {
		return DateResult{Err: "❌ Date cannot be empty."}
	}

	parts := strings.Split(date, "/")
	if len(parts) != 3 {
		return DateResult{Err: dateErr}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return DateResult{Err: dateErr}
		}
		nums[i] = n
	}
	if nums[0] < 1000 || nums[0] > 3000 || nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 {
		return DateResult{Err: dateErr}
	}
	return DateResult{OK: true, Date: date}
}
