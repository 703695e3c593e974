package service

import (
	"fmt"
	"strings"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"
)

// Chat text renderers. Wording lives here so flows and the ops API show
// the same figures.

func FormatProductList(products []model.Product) string {
	if len(products) == 0 {
		return "📦 *Inventory*\n\n❌ No products registered yet."
	}

	var b strings.Builder
	b.WriteString("📦 *Inventory*\n\n")
	for _, p := range products {
		icon := "✅"
		if p.Stock <= 0 {
			icon = "❌"
		}
		fmt.Fprintf(&b, "%s %s — stock: %d units\n", icon, p.Name, p.Stock)
	}
	return b.String()
}

func FormatProductDetails(p *model.Product) string {
	return fmt.Sprintf("📦 Product: %s\n📊 Stock: %d units\n", p.Name, p.Stock)
}

func FormatInventorySummary(sum InventorySummary) string {
	var b strings.Builder
	b.WriteString("📦 *Inventory summary*\n\n")
	fmt.Fprintf(&b, "🔢 Products: %d\n", sum.TotalProducts)
	fmt.Fprintf(&b, "📊 Total units in stock: %d\n", sum.TotalItems)
	if len(sum.LowStock) > 0 {
		b.WriteString("\n⚠️ Low stock:\n")
		for _, p := range sum.LowStock {
			fmt.Fprintf(&b, "  • %s — %d left\n", p.Name, p.Stock)
		}
	}
	return b.String()
}

func FormatSaleDetails(s *model.Sale) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Sale #%d\n", s.ID)
	fmt.Fprintf(&b, "📦 Product: %s\n", s.ProductName)
	fmt.Fprintf(&b, "🔢 Quantity: %d\n", s.Quantity)
	fmt.Fprintf(&b, "💵 Unit price: %s\n", s.SalePrice.String())
	fmt.Fprintf(&b, "💰 Total sale: %s\n", s.TotalSale.String())
	fmt.Fprintf(&b, "💸 Total cost: %s\n", s.TotalCost.String())
	fmt.Fprintf(&b, "🏷️ Extra costs: %s\n", s.ExtraCost.String())
	fmt.Fprintf(&b, "📈 Net profit: %s\n", s.NetProfit.String())
	fmt.Fprintf(&b, "📅 Date: %s\n", s.Date)
	return b.String()
}

// FormatSaleSummary is the confirmation shown right after a sale commit.
func FormatSaleSummary(s *model.Sale, remaining int) string {
	var b strings.Builder
	b.WriteString("✅ *Sale recorded*\n\n")
	fmt.Fprintf(&b, "📦 Product: %s\n", s.ProductName)
	fmt.Fprintf(&b, "🔢 Quantity: %d\n", s.Quantity)
	fmt.Fprintf(&b, "💵 Unit price: %s\n", s.SalePrice.String())
	fmt.Fprintf(&b, "💰 Total sale: %s\n", s.TotalSale.String())
	fmt.Fprintf(&b, "💸 Total cost: %s\n", s.TotalCost.String())
	fmt.Fprintf(&b, "🏷️ Extra costs: %s\n", s.ExtraCost.String())
	fmt.Fprintf(&b, "📈 Net profit: %s\n", s.NetProfit.String())
	fmt.Fprintf(&b, "📅 Date: %s\n", s.Date)
	fmt.Fprintf(&b, "\n📦 Remaining stock: %d units", remaining)
	return b.String()
}

func FormatSalesSummary(sum repository.SalesSummary) string {
	if sum.Count == 0 {
		return "📊 No sales recorded yet."
	}
	var b strings.Builder
	b.WriteString("📊 *Sales summary*\n\n")
	fmt.Fprintf(&b, "🔢 Sales: %d\n", sum.Count)
	fmt.Fprintf(&b, "💰 Total revenue: %s\n", sum.TotalRevenue.String())
	fmt.Fprintf(&b, "💸 Total costs: %s\n", sum.TotalCost.Add(sum.TotalExtraCost).String())
	fmt.Fprintf(&b, "📈 Total profit: %s\n", sum.TotalProfit.String())
	return b.String()
}
