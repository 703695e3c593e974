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

func (e *Engine) startAddProduct(ctx context.Context, userID int64) (Reply, error) {
	if err := e.store.ClearScratch(ctx, userID); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddProductName)); err != nil {
		return Reply{}, err
	}
	return message("📝 Enter the product name:", keyboard.Cancel()), nil
}

func (e *Engine) addProductName(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Name(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	scratch.ProductName = res.Name
	if err := e.store.SetScratch(ctx, userID, scratch); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepAddProductQty)); err != nil {
		return Reply{}, err
	}
	return message("🔢 Enter the initial stock quantity:", keyboard.Cancel()), nil
}

func (e *Engine) addProductQty(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.StockQuantity(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	p, created, err := e.inventory.CreateProduct(ctx, scratch.ProductName, res.Value)
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishInventoryFlow(ctx, userID); err != nil {
		return Reply{}, err
	}
	if !created {
		msg := fmt.Sprintf("ℹ️ Product '%s' already exists (stock: %d). Nothing was changed.", p.Name, p.Stock)
		return message(msg, keyboard.InventoryMenu()), nil
	}
	msg := fmt.Sprintf("✅ Product '%s' added with stock %d.", p.Name, p.Stock)
	return message(msg, keyboard.InventoryMenu()), nil
}

func (e *Engine) startEditProduct(ctx context.Context, userID int64) (Reply, error) {
	products, err := e.inventory.Products(ctx)
	if err != nil {
		return Reply{}, err
	}
	if len(products) == 0 {
		return edited("📭 No products yet. Add one first!", keyboard.Back(keyboard.DataBackToInventory)), nil
	}
	if err := e.store.SetState(ctx, userID, string(StepEditProduct)); err != nil {
		return Reply{}, err
	}
	page := pagination.Paginate(len(products), 1, e.pageSize)
	slice := products[page.Offset : page.Offset+page.Limit]
	markup := keyboard.ProductPicker(slice, page.Index, page.TotalPages, keyboard.DataBackToInventory)
	return edited("✏️ Choose a product to edit:", markup), nil
}

// productPage re-renders the product picker for the flow that opened it:
// the edit flow lists every product, the add-sale flow only sellable ones.
func (e *Engine) productPage(ctx context.Context, state Step, pageNum int) (Reply, error) {
	var (
		products []model.Product
		err      error
		title    string
		backData string
	)
	switch state {
	case StepEditProduct:
		products, err = e.inventory.Products(ctx)
		title = "✏️ Choose a product to edit:"
		backData = keyboard.DataBackToInventory
	case StepAddSaleProduct:
		products, err = e.inventory.AvailableProducts(ctx)
		title = "📦 Choose a product to sell:"
		backData = keyboard.DataBackToSales
	default:
		return Reply{}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	page := pagination.Paginate(len(products), pageNum, e.pageSize)
	slice := products[page.Offset : page.Offset+page.Limit]
	return edited(title, keyboard.ProductPicker(slice, page.Index, page.TotalPages, backData)), nil
}

func (e *Engine) selectProduct(ctx context.Context, userID int64, state Step, id uint) (Reply, error) {
	switch state {
	case StepAddSaleProduct:
		return e.selectSaleProduct(ctx, userID, id)
	default:
		p, err := e.inventory.Product(ctx, id)
		if errors.Is(err, service.ErrProductNotFound) {
			return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToInventory)), nil
		}
		if err != nil {
			return Reply{}, err
		}
		return edited(service.FormatProductDetails(p), keyboard.EditProductMenu(p.ID)), nil
	}
}

func (e *Engine) startEditName(ctx context.Context, userID int64, id uint) (Reply, error) {
	p, err := e.inventory.Product(ctx, id)
	if errors.Is(err, service.ErrProductNotFound) {
		return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToInventory)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.store.SetScratch(ctx, userID, session.Scratch{ProductID: p.ID}); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditProductName)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("✏️ Enter the new name (current: %s):", p.Name), keyboard.Cancel()), nil
}

func (e *Engine) editProductName(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.Name(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	p, oldName, err := e.inventory.RenameProduct(ctx, scratch.ProductID, res.Name)
	if errors.Is(err, service.ErrProductNotFound) {
		if err := e.finishInventoryFlow(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message("❌ Product not found. It may have been deleted.", keyboard.InventoryMenu()), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishInventoryFlow(ctx, userID); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("✅ Renamed '%s' to '%s'.", oldName, p.Name), keyboard.InventoryMenu()), nil
}

func (e *Engine) startEditQty(ctx context.Context, userID int64, id uint) (Reply, error) {
	p, err := e.inventory.Product(ctx, id)
	if errors.Is(err, service.ErrProductNotFound) {
		return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToInventory)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.store.SetScratch(ctx, userID, session.Scratch{ProductID: p.ID}); err != nil {
		return Reply{}, err
	}
	if err := e.store.SetState(ctx, userID, string(StepEditProductQty)); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("🔢 Enter the new stock quantity (current: %d):", p.Stock), keyboard.Cancel()), nil
}

func (e *Engine) editProductQty(ctx context.Context, userID int64, text string) (Reply, error) {
	res := validation.StockQuantity(text)
	if !res.OK {
		return message(res.Err, keyboard.Cancel()), nil
	}
	scratch, err := e.store.Scratch(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	p, err := e.inventory.SetProductStock(ctx, scratch.ProductID, res.Value)
	if errors.Is(err, service.ErrProductNotFound) {
		if err := e.finishInventoryFlow(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message("❌ Product not found. It may have been deleted.", keyboard.InventoryMenu()), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishInventoryFlow(ctx, userID); err != nil {
		return Reply{}, err
	}
	return message(fmt.Sprintf("✅ Stock of '%s' set to %d.", p.Name, p.Stock), keyboard.InventoryMenu()), nil
}

func (e *Engine) confirmDeleteProduct(ctx context.Context, id uint) (Reply, error) {
	p, err := e.inventory.Product(ctx, id)
	if errors.Is(err, service.ErrProductNotFound) {
		return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToInventory)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	text := fmt.Sprintf("🗑️ Delete product '%s' (stock: %d)?\n\n⚠️ This cannot be undone.", p.Name, p.Stock)
	return edited(text, keyboard.Confirm(keyboard.DeleteProductPrefix, p.ID)), nil
}

func (e *Engine) deleteProduct(ctx context.Context, userID int64, id uint) (Reply, error) {
	p, err := e.inventory.DeleteProduct(ctx, id)
	if errors.Is(err, service.ErrProductNotFound) {
		return edited("❌ Product not found. It may have been deleted.", keyboard.Back(keyboard.DataBackToInventory)), nil
	}
	if err != nil {
		return Reply{}, err
	}
	if err := e.finishInventoryFlow(ctx, userID); err != nil {
		return Reply{}, err
	}
	return edited(fmt.Sprintf("✅ Product '%s' deleted.", p.Name), keyboard.InventoryMenu()), nil
}

func (e *Engine) viewInventory(ctx context.Context) (Reply, error) {
	products, err := e.inventory.Products(ctx)
	if err != nil {
		return Reply{}, err
	}
	return edited(service.FormatProductList(products), keyboard.Back(keyboard.DataBackToInventory)), nil
}

func (e *Engine) inventoryReport(ctx context.Context) (Reply, error) {
	sum, err := e.inventory.Summary(ctx)
	if err != nil {
		return Reply{}, err
	}
	return edited(service.FormatInventorySummary(sum), keyboard.Back(keyboard.DataBackToInventory)), nil
}

func (e *Engine) finishInventoryFlow(ctx context.Context, userID int64) error {
	if err := e.store.SetState(ctx, userID, string(StepInventoryMenu)); err != nil {
		return err
	}
	return e.store.ClearScratch(ctx, userID)
}
