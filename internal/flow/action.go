package flow

import (
	"errors"
	"strconv"
	"strings"

	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"
)

// ActionKind classifies a decoded callback action.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionNoop
	ActionMainMenu
	ActionInventoryMenu
	ActionSalesMenu
	ActionAddProduct
	ActionEditProductList
	ActionViewInventory
	ActionInventoryReport
	ActionAddSale
	ActionViewSales
	ActionSalesReport
	ActionHelp
	ActionCancel
	ActionSelectProduct
	ActionSelectSale
	ActionEditName
	ActionEditQty
	ActionDeleteProduct
	ActionEditSale
	ActionDeleteSale
	ActionConfirmDeleteProduct
	ActionConfirmDeleteSale
	ActionProductPage
	ActionSalePage
)

// Action is a callback payload decoded exactly once at the edge. ID is set
// for record-targeted kinds, Page for pagination kinds.
type Action struct {
	Kind ActionKind
	ID   uint
	Page int
}

// ErrBadAction reports callback data that matches no known action.
var ErrBadAction = errors.New("malformed callback action")

// ParseAction decodes raw callback data into a typed Action. Unrecognized or
// malformed data returns ErrBadAction; handlers never see raw strings.
func ParseAction(data string) (Action, error) {
	switch data {
	case keyboard.DataNoop:
		return Action{Kind: ActionNoop}, nil
	case keyboard.DataMainMenu:
		return Action{Kind: ActionMainMenu}, nil
	case keyboard.DataInventoryMenu, keyboard.DataBackToInventory:
		return Action{Kind: ActionInventoryMenu}, nil
	case keyboard.DataSalesMenu, keyboard.DataBackToSales:
		return Action{Kind: ActionSalesMenu}, nil
	case keyboard.DataAddProduct:
		return Action{Kind: ActionAddProduct}, nil
	case keyboard.DataEditProductList:
		return Action{Kind: ActionEditProductList}, nil
	case keyboard.DataViewInventory:
		return Action{Kind: ActionViewInventory}, nil
	case keyboard.DataInventoryReport:
		return Action{Kind: ActionInventoryReport}, nil
	case keyboard.DataAddSale:
		return Action{Kind: ActionAddSale}, nil
	case keyboard.DataViewSales:
		return Action{Kind: ActionViewSales}, nil
	case keyboard.DataSalesReport:
		return Action{Kind: ActionSalesReport}, nil
	case keyboard.DataHelp:
		return Action{Kind: ActionHelp}, nil
	case keyboard.DataCancel:
		return Action{Kind: ActionCancel}, nil
	}

	for _, p := range []struct {
		prefix string
		kind   ActionKind
	}{
		{keyboard.SelectProductPrefix, ActionSelectProduct},
		{keyboard.SelectSalePrefix, ActionSelectSale},
		{keyboard.EditNamePrefix, ActionEditName},
		{keyboard.EditQtyPrefix, ActionEditQty},
		{keyboard.DeleteProductPrefix, ActionDeleteProduct},
		{keyboard.EditSalePrefix, ActionEditSale},
		{keyboard.DeleteSalePrefix, ActionDeleteSale},
	} {
		if rest, ok := strings.CutPrefix(data, p.prefix); ok {
			id, err := parseID(rest)
			if err != nil {
				return Action{}, ErrBadAction
			}
			return Action{Kind: p.kind, ID: id}, nil
		}
	}

	if rest, ok := strings.CutPrefix(data, keyboard.ConfirmPrefix); ok {
		switch {
		case strings.HasPrefix(rest, keyboard.DeleteProductPrefix):
			id, err := parseID(strings.TrimPrefix(rest, keyboard.DeleteProductPrefix))
			if err != nil {
				return Action{}, ErrBadAction
			}
			return Action{Kind: ActionConfirmDeleteProduct, ID: id}, nil
		case strings.HasPrefix(rest, keyboard.DeleteSalePrefix):
			id, err := parseID(strings.TrimPrefix(rest, keyboard.DeleteSalePrefix))
			if err != nil {
				return Action{}, ErrBadAction
			}
			return Action{Kind: ActionConfirmDeleteSale, ID: id}, nil
		}
		return Action{}, ErrBadAction
	}

	if rest, ok := strings.CutPrefix(data, keyboard.ProductPagePrefix); ok {
		return parsePage(rest, ActionProductPage)
	}
	if rest, ok := strings.CutPrefix(data, keyboard.SalePagePrefix); ok {
		return parsePage(rest, ActionSalePage)
	}

	return Action{}, ErrBadAction
}

func parseID(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, ErrBadAction
	}
	return uint(v), nil
}

func parsePage(s string, kind ActionKind) (Action, error) {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return Action{}, ErrBadAction
	}
	return Action{Kind: kind, Page: page}, nil
}
