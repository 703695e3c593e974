package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"
	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/pagination"
	"github.com/amirhosein2004/sale-tele-bot/internal/service"
	"github.com/amirhosein2004/sale-tele-bot/internal/session"
	"github.com/amirhosein2004/sale-tele-bot/internal/validation"
)

const textSaleGone = "❌ Sale not found. It may have been deleted."

func (e *Engine) startAddSale(ctx context.Context, userID int64) (Reply, error) {
	products, err := e.inventory.AvailableProducts(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return edited("📭 No products with stock available. Restock first!", keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err := e.store.ClearScratch(ctx, userID); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSaleProduct)); err != nil {
		return Reply{}, err
	}
	page := pagination.Paginate(len(products), 1, e.pageSize)
	slice := products[page.Offset : page.Offset+page.Limit]
	markup := keyboard.ProductPicker(slice, page.Index, page.TotalPages, keyboard.DataBackToSales)
	return edited("📦 Choose a product to sell:", markup), nil
}

func (e *Engine) selectSaleProduct(ctx context.Context, userID int64, id uint) (Reply, error) {
	p, err := e.inventory.Product(ctx, id)
	if errors.Is(err, service.ErrProductNotFound) {
		return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if p.Stock <= 0 {
		return edited(fmt.Sprintf("❌ '%s' is out of stock.", p.Name), keyboard.Back(keyboard.DataBackToSales)), nil
	}
	scratch := session.Scratch{ProductID: p.ID, ProductName: p.Name, AvailableQty: p.Stock}
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSaleQuantity)); err != nil {
		return Reply{}, err
	}
	text := fmt.Sprintf("🛒 Selling '%s'\n📦 Available: %d units\n\n🔢 Enter the quantity sold:", p.Name, p.Stock)
	return message(text, keyboard.Cancel()), nil
}

// addSaleQuantity validates against the snapshot taken at product pick,
// then re-reads the live stock. Stock can shrink between prompt and answer;
// the user is told the new figure and asked again rather than failed.
func (e *Engine) addSaleQuantity(ctx context.Context, userID int64, text string) (Reply, error) {
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	res := validation.SaleQuantity(text, scratch.AvailableQty)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}

	p, err := e.inventory.Product(ctx, scratch.ProductID)
	if errors.Is(err, service.ErrProductNotFound) {
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message("❌ Product no longer exists. Sale aborted.", keyboard.MainMenu()), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if p.Stock < res.Value {
		scratch.AvailableQty = p.Stock
		if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
			return Reply{}, err
		}
		msg := fmt.Sprintf("❌ Stock has changed!\n\n📦 Available now: %d units\n\nPlease enter a new quantity:", p.Stock)
		return message(msg, keyboard.Cancel()), nil
	}

	scratch.Quantity = res.Value
	scratch.AvailableQty = p.Stock
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSalePrice)); err != nil {
		return Reply{}, err
	}
	return message("💵 Enter the total sale amount:", keyboard.Cancel()), nil
}

func (e *Engine) addSalePrice(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Price(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	scratch.TotalSale = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSaleCost)); err != nil {
		return Reply{}, err
	}
	return message("💰 Enter the total cost of the goods sold:", keyboard.Cancel()), nil
}

func (e *Engine) addSaleCost(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Cost(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	scratch.TotalCost = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSaleExtraCost)); err != nil {
		return Reply{}, err
	}
	return message("🧾 Enter any extra costs (0 if none):", keyboard.Cancel()), nil
}

func (e *Engine) addSaleExtraCost(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.ExtraCost(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	scratch.ExtraCost = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddSaleDate)); err != nil {
		return Reply{}, err
	}
	return message("📅 Enter the sale date (example: 1403/09/29):", keyboard.Cancel()), nil
}

// addSaleDate is the commit point of the whole add-sale flow. A stock
// conflict detected inside the transaction sends the user back to the
// quantity step with the refreshed figure instead of discarding the flow.
func (e *Engine) addSaleDate(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Date(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	draft := service.SaleDraft{
		ProductID:   scratch.ProductID,
		ProductName: scratch.ProductName,
		Quantity:    scratch.Quantity,
		TotalSale:   scratch.TotalSale,
		TotalCost:   scratch.TotalCost,
		ExtraCost:   scratch.ExtraCost,
		Date:        res.Date,
	}
	sale, remaining, err := e.sales.CreateSale(ctx, draft)

	var conflict *service.InsufficientStockError
	if errors.As(err, &conflict) {
		if e.metrics != nil {
			e.metrics.StockConflicts.Inc()
		}
		scratch.AvailableQty = conflict.Available
		if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
			return Reply{}, err
		}
		if err := e.store.SetState(ctx, userID, string(StepAddSaleQuantity)); err != nil {
			return Reply{}, err
		}
		msg := fmt.Sprintf(
			"❌ Could not record the sale, stock has changed!\n\n📦 Available: %d units\n🔢 Requested: %d units\n\nPlease enter a new quantity:",
			conflict.Available, conflict.Requested)
		return message(msg, keyboard.Cancel()), nil
	}
	if errors.Is(err, service.ErrProductNotFound) {
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message("❌ Product no longer exists. Sale aborted.", keyboard.MainMenu()), nil
	}
	if err != nil {
		return Reply{}, err
	}

	if e.metrics != nil {
		e.metrics.SalesCreated.Inc()
	}
	if err := e.store.SetState(ctx, userID, string(StepSalesMenu)); err != nil {
		return Reply{}, err
	}
	if err := e.store.ClearScratch(ctx, userID); err != nil {
		return Reply{}, err
	}
	return message(service.FormatSaleSummary(sale, remaining), keyboard.SalesMenu()), nil
}

func (e *Engine) viewSales(ctx context.Context, userID int64, pageNum int) (Reply, error) {
	sales, err := e.sales.Sales(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(sales) == 0 {
		return edited("📭 No sales recorded yet.", keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err := e.store.SetState(ctx, userID, string(StepViewSales)); err != nil {
		return Reply{}, err
	}
	page := pagination.Paginate(len(sales), pageNum, e.pageSize)
	slice := sales[page.Offset : page.Offset+page.Limit]
	return edited("📊 *Sales*\nSelect a sale for details:", keyboard.SaleList(slice, page.Index, page.TotalPages)), nil
}

func (e *Engine) selectSale(ctx context.Context, id uint) (Reply, error) {
	s, err := e.sales.Sale(ctx, id)
	if errors.Is(err, service.ErrSaleNotFound) {
		return edited(textSaleGone, keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	return edited(service.FormatSaleDetails(s), keyboard.SaleDetailMenu(s.ID)), nil
}

func (e *Engine) salesReport(ctx context.Context) (Reply, error) {
	sum, err := e.sales.Summary(ctx)
	if err != nil {
		return Reply{}, err
	}
	return edited(service.FormatSalesSummary(sum), keyboard.Back(keyboard.DataBackToSales)), nil
}

func (e *Engine) startEditSale(ctx context.Context, userID int64, id uint) (Reply, error) {
	s, err := e.sales.Sale(ctx, id)
	if errors.Is(err, service.ErrSaleNotFound) {
		return edited(textSaleGone, keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.store.SetScratch(ctx, userID, session.Scratch{SaleID: s.ID}); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditSaleQuantity)); err != nil {
		return Reply{}, err
	}
	text := fmt.Sprintf("✏️ Editing sale #%d of '%s'\n\n🔢 Enter the new quantity (current: %d):", s.ID, s.ProductName, s.Quantity)
	return message(text, keyboard.Cancel()), nil
}

// editSale steps re-read the sale each turn so a deletion mid-edit is
// caught before the next prompt.
func (e *Engine) editSaleQuantity(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.SaleQuantity(text, validation.MaxQuantity)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	s, reply, err := e.editedSale(ctx, userID, scratch.SaleID)
	if s == nil {
		return reply, err
	}
	scratch.Quantity = res.Value
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditSalePrice)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("💵 Enter the new total sale amount (current: %s):", s.TotalSale.String()), keyboard.Cancel()), nil
}

func (e *Engine) editSalePrice(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Price(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	s, reply, err := e.editedSale(ctx, userID, scratch.SaleID)
	if s == nil {
		return reply, err
	}
	scratch.TotalSale = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditSaleCost)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("💰 Enter the new total cost (current: %s):", s.TotalCost.String()), keyboard.Cancel()), nil
}

func (e *Engine) editSaleCost(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Cost(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	s, reply, err := e.editedSale(ctx, userID, scratch.SaleID)
	if s == nil {
		return reply, err
	}
	scratch.TotalCost = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditSaleExtraCost)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("🧾 Enter the new extra costs (current: %s):", s.ExtraCost.String()), keyboard.Cancel()), nil
}

func (e *Engine) editSaleExtraCost(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.ExtraCost(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	s, reply, err := e.editedSale(ctx, userID, scratch.SaleID)
	if s == nil {
		return reply, err
	}
	scratch.ExtraCost = res.Amount
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditSaleDate)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("📅 Enter the new sale date (current: %s):", s.Date), keyboard.Cancel()), nil
}

func (e *Engine) editSaleDate(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Date(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	upd := service.SaleUpdate{
		Quantity:  scratch.Quantity,
		TotalSale: scratch.TotalSale,
		TotalCost: scratch.TotalCost,
		ExtraCost: scratch.ExtraCost,
		Date:      res.Date,
	}
	s, err := e.sales.UpdateSale(ctx, scratch.SaleID, upd)
	if errors.Is(err, service.ErrSaleNotFound) {
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message(textSaleGone, keyboard.MainMenu()), nil
	}
	if err != nil {
		return Reply{}, err
	}

	if err := e.store.SetState(ctx, userID, string(StepViewSales)); err != nil {
		return Reply{}, err
	}
	if err := e.store.ClearScratch(ctx, userID); err != nil {
		return Reply{}, err
	}
	return message("✅ Sale updated.\n\n"+service.FormatSaleDetails(s), keyboard.SaleDetailMenu(s.ID)), nil
}

func (e *Engine) confirmDeleteSale(ctx context.Context, id uint) (Reply, error) {
	s, err := e.sales.Sale(ctx, id)
	if errors.Is(err, service.ErrSaleNotFound) {
		return edited(textSaleGone, keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	text := fmt.Sprintf(
		"🗑️ Delete sale #%d?\n\n📦 %s\n🔢 %d units on %s\n\n⚠️ The sold quantity will be returned to stock.",
		s.ID, s.ProductName, s.Quantity, s.Date)
	return edited(text, keyboard.Confirm(keyboard.DeleteSalePrefix, s.ID)), nil
}

func (e *Engine) deleteSale(ctx context.Context, userID int64, id uint) (Reply, error) {
	s, restored, err := e.sales.DeleteSale(ctx, id)
	if errors.Is(err, service.ErrSaleNotFound) {
		return edited(textSaleGone, keyboard.Back(keyboard.DataBackToSales)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.store.Reset(ctx, userID); err != nil {
		return Reply{}, err
	}
	if restored {
		msg := fmt.Sprintf("✅ Sale deleted.\n\n📦 Stock of '%s' restored: +%d units.", s.ProductName, s.Quantity)
		return edited(msg, keyboard.Back(keyboard.DataMainMenu)), nil
	}
	msg := fmt.Sprintf("✅ Sale deleted.\n\nℹ️ Product '%s' no longer exists, stock was not adjusted.", s.ProductName)
	return edited(msg, keyboard.Back(keyboard.DataMainMenu)), nil
}

// editedSale re-fetches the sale under edit. A nil sale means the flow is
// over: the returned reply (or error) is what the caller should surface.
func (e *Engine) editedSale(ctx context.Context, userID int64, id uint) (*model.Sale, Reply, error) {
	s, err := e.sales.Sale(ctx, id)
	if errors.Is(err, service.ErrSaleNotFound) {
		if err := e.store.Reset(ctx, userID); err != nil {
			return nil, Reply{}, err
		}
		return nil, message(textSaleGone, keyboard.MainMenu()), nil
	}
	if err != nil {
		return nil, Reply{}, err
	}
	return s, Reply{}, nil
}
