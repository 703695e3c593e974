// Package keyboard builds transport-agnostic inline keyboards: rows of
// labeled buttons whose Data field carries the action identifier parsed
// by the flow engine. The Telegram adapter renders them 1:1.
package keyboard

import (
	"fmt"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"
)

// Static action identifiers. The flow engine owns the decoding; these
// constants are the single source of the wire strings.
const (
	DataMainMenu        = "back_to_main"
	DataInventoryMenu   = "inventory_menu"
	DataBackToInventory = "back_to_inventory"
	DataSalesMenu       = "sales_menu"
	DataBackToSales     = "back_to_sales"
	DataAddProduct      = "add_product"
	DataEditProductList = "edit_product_list"
	DataViewInventory   = "view_inventory"
	DataInventoryReport = "inventory_report"
	DataAddSale         = "add_sale"
	DataViewSales       = "view_sales_list"
	DataSalesReport     = "sales_report"
	DataCancel          = "cancel_action"
	DataHelp            = "show_help"
	DataNoop            = "disabled"
)

// Entity-carrying prefixes; the numeric id is appended.
const (
	SelectProductPrefix = "select_product_"
	SelectSalePrefix    = "select_sale_"
	EditNamePrefix      = "edit_name_"
	EditQtyPrefix       = "edit_qty_"
	DeleteProductPrefix = "delete_product_"
	EditSalePrefix      = "edit_sale_"
	DeleteSalePrefix    = "delete_sale_"
	ConfirmPrefix       = "confirm_"
	ProductPagePrefix   = "prod_page_"
	SalePagePrefix      = "sale_page_"
)

// Button is one tappable inline button.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Markup is a full inline keyboard.
type Markup struct {
	Rows [][]Button
}

func btn(label, data string) Button { return Button{Label: label, Data: data} }

func (m *Markup) row(buttons ...Button) *Markup {
	m.Rows = append(m.Rows, buttons)
	return m
}

func MainMenu() *Markup {
	m := &Markup{}
	m.row(btn("📦 Inventory", DataInventoryMenu))
	m.row(btn("💳 Sales", DataSalesMenu))
	m.row(btn("📖 Help", DataHelp))
	return m
}

func InventoryMenu() *Markup {
	m := &Markup{}
	m.row(btn("➕ Add product", DataAddProduct))
	m.row(btn("✏️ Edit products", DataEditProductList))
	m.row(btn("📋 View inventory", DataViewInventory))
	m.row(btn("📊 Inventory report", DataInventoryReport))
	m.row(btn("🔙 Back", DataMainMenu))
	return m
}

func SalesMenu() *Markup {
	m := &Markup{}
	m.row(btn("➕ Record sale", DataAddSale))
	m.row(btn("📋 View sales", DataViewSales))
	m.row(btn("📊 Sales report", DataSalesReport))
	m.row(btn("🔙 Back", DataMainMenu))
	return m
}

// Back is a single back button targeting the given menu action.
func Back(data string) *Markup {
	m := &Markup{}
	m.row(btn("🔙 Back", data))
	return m
}

// Cancel aborts the in-progress flow from any step.
func Cancel() *Markup {
	m := &Markup{}
	m.row(btn("❌ Cancel", DataCancel))
	return m
}

// ProductPicker lists one product per row plus a pagination row. Used by
// both the edit-product and the add-sale flows; backData picks the menu
// the back button returns to.
func ProductPicker(products []model.Product, page, totalPages int, backData string) *Markup {
	m := &Markup{}
	for _, p := range products {
		label := fmt.Sprintf("%s (%d)", p.Name, p.Stock)
		m.row(btn(label, fmt.Sprintf("%s%d", SelectProductPrefix, p.ID)))
	}
	m.pagination(page, totalPages, ProductPagePrefix)
	m.row(btn("🔙 Back", backData))
	return m
}

// EditProductMenu offers the per-field edit and delete actions for one
// selected product.
func EditProductMenu(id uint) *Markup {
	m := &Markup{}
	m.row(btn("✏️ Edit name", fmt.Sprintf("%s%d", EditNamePrefix, id)))
	m.row(btn("📦 Edit stock", fmt.Sprintf("%s%d", EditQtyPrefix, id)))
	m.row(btn("🗑️ Delete product", fmt.Sprintf("%s%d", DeleteProductPrefix, id)))
	m.row(btn("🔙 Back", DataBackToInventory))
	return m
}

// SaleList lists one sale per row plus a pagination row.
func SaleList(sales []model.Sale, page, totalPages int) *Markup {
	m := &Markup{}
	for _, s := range sales {
		label := fmt.Sprintf("#%d %s ×%d (%s)", s.ID, s.ProductName, s.Quantity, s.Date)
		m.row(btn(label, fmt.Sprintf("%s%d", SelectSalePrefix, s.ID)))
	}
	m.pagination(page, totalPages, SalePagePrefix)
	m.row(btn("🔙 Back", DataBackToSales))
	return m
}

// SaleDetailMenu offers edit and delete for one selected sale.
func SaleDetailMenu(id uint) *Markup {
	m := &Markup{}
	m.row(
		btn("✏️ Edit", fmt.Sprintf("%s%d", EditSalePrefix, id)),
		btn("🗑️ Delete", fmt.Sprintf("%s%d", DeleteSalePrefix, id)),
	)
	m.row(btn("🔙 Back", DataBackToSales))
	return m
}

// Confirm renders the two-phase deletion prompt: the confirm button wraps
// the original action (prefix plus target id) in ConfirmPrefix.
func Confirm(actionPrefix string, id uint) *Markup {
	m := &Markup{}
	m.row(
		btn("✅ Confirm", fmt.Sprintf("%s%s%d", ConfirmPrefix, actionPrefix, id)),
		btn("❌ Cancel", DataCancel),
	)
	return m
}

// pagination appends a prev/current/next row when there is more than one
// page. Buttons at the edges degrade to no-ops instead of disappearing,
// keeping the layout stable.
func (m *Markup) pagination(page, totalPages int, prefix string) {
	if totalPages <= 1 {
		return
	}
	prev := Button{Label: "⬅️", Data: DataNoop}
	if page > 1 {
		prev = btn("⬅️ Prev", fmt.Sprintf("%s%d", prefix, page-1))
	}
	next := Button{Label: "➡️", Data: DataNoop}
	if page < totalPages {
		next = btn("Next ➡️", fmt.Sprintf("%s%d", prefix, page+1))
	}
	m.row(prev, btn(fmt.Sprintf("%d/%d", page, totalPages), DataNoop), next)
}
