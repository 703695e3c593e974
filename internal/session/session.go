// Package session owns per-user conversation state: the current step of a
// multi-turn flow, the accumulated scratch values, and a busy flag that
// guards against overlapping taps from the same user.
package session

import (
	"context"

	"github.com/shopspring/decimal"
)

// StateMainMenu is the default and terminal state for every user.
const StateMainMenu = "main_menu"

// Scratch is the partial input of one in-progress multi-step operation.
// It is cleared whenever a flow starts over or returns to the main menu.
type Scratch struct {
	ProductID    uint            `json:"product_id,omitempty"`
	ProductName  string          `json:"product_name,omitempty"`
	AvailableQty int             `json:"available_qty,omitempty"`
	Quantity     int             `json:"quantity,omitempty"`
	TotalSale    decimal.Decimal `json:"total_sale_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	ExtraCost    decimal.Decimal `json:"extra_cost"`
	Date         string          `json:"date,omitempty"`
	SaleID       uint            `json:"sale_id,omitempty"`
}

// Store is the conversation state store. Implementations must default to
// StateMainMenu for users that were never seen, and TryAcquire must be
// atomic with respect to concurrent calls for the same user.
//
// Entries have process-wide lifetime: nothing expires them.
type Store interface {
	State(ctx context.Context, userID int64) (string, error)
	SetState(ctx context.Context, userID int64, state string) error

	Scratch(ctx context.Context, userID int64) (Scratch, error)
	SetScratch(ctx context.Context, userID int64, s Scratch) error
	ClearScratch(ctx context.Context, userID int64) error

	// TryAcquire sets the busy flag and reports whether it was free.
	TryAcquire(ctx context.Context, userID int64) (bool, error)
	Release(ctx context.Context, userID int64) error

	// Reset returns the user to the main menu with scratch cleared.
	Reset(ctx context.Context, userID int64) error
}
