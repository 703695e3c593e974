// Package flow implements the conversation state machine: linear
// multi-turn flows over the inventory and sales services, driven by text
// messages and decoded callback actions.
package flow

import (
	"context"

	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"
	"github.com/amirhosein2004/sale-tele-bot/internal/metrics"
	"github.com/amirhosein2004/sale-tele-bot/internal/pagination"
	"github.com/amirhosein2004/sale-tele-bot/internal/service"
	"github.com/amirhosein2004/sale-tele-bot/internal/session"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	textWelcome       = "👋 Welcome! Manage your inventory and sales from the menu below."
	textMainMenu      = "🏠 *Main menu*\nChoose a section:"
	textInventoryMenu = "📦 *Inventory*\nChoose an action:"
	textSalesMenu     = "💳 *Sales*\nChoose an action:"
	textCancelled     = "❌ Operation cancelled."
	textBusy          = "⏳ Hold on, your previous request is still being processed..."
	textUseMenu       = "🤔 I didn't catch that. Please use the menu:"
	textHelp          = "📖 *Help*\n\n" +
		"📦 *Inventory* — add products, edit their name or stock, " +
		"browse the full list and see a stock report.\n\n" +
		"💳 *Sales* — record a sale step by step (product, quantity, " +
		"amounts, date), browse past sales, edit or delete them, and " +
		"see a profit report.\n\n" +
		"❌ Cancel any operation at any time with the Cancel button."
)

// Engine drives every conversation. It is the only writer of session state:
// one event comes in, the busy flag is held for its duration, and exactly
// one Reply comes out.
type Engine struct {
	store     session.Store
	inventory service.InventoryService
	sales     service.SalesService
	metrics   *metrics.Metrics
	pageSize  int
}

func NewEngine(store session.Store, inventory service.InventoryService, sales service.SalesService, m *metrics.Metrics, pageSize int) *Engine {
	return &Engine{
		store:     store,
		inventory: inventory,
		sales:     sales,
		metrics:   m,
		pageSize:  pagination.NormalizePerPage(pageSize),
	}
}

// Start handles /start: any in-progress flow is abandoned and the user
// lands on the main menu.
func (e *Engine) Start(ctx context.Context, userID int64) (Reply, error) {
	if err := e.store.Reset(ctx, userID); err != nil {
		return Reply{}, err
	}
	return message(textWelcome, keyboard.MainMenu()), nil
}

// HandleText routes a free-text message to the handler for the user's
// current step. Text outside any flow gets a gentle nudge to the menu.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	e.count("text")
	free, err := e.store.TryAcquire(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if !free {
		return notice(textBusy), nil
	}
	defer e.release(ctx, userID)

	state, err := e.store.State(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	eventID := uuid.NewString()
	log.Debug().
		Str("event_id", eventID).
		Int64("user_id", userID).
		Str("state", state).
		Msg("text event")

	switch Step(state) {
	case StepAddProductName:
		return e.addProductName(ctx, userID, text)
	case StepAddProductQty:
		return e.addProductQty(ctx, userID, text)
	case StepEditProductName:
		return e.editProductName(ctx, userID, text)
	case StepEditProductQty:
		return e.editProductQty(ctx, userID, text)
	case StepAddSaleQuantity:
		return e.addSaleQuantity(ctx, userID, text)
	case StepAddSalePrice:
		return e.addSalePrice(ctx, userID, text)
	case StepAddSaleCost:
		return e.addSaleCost(ctx, userID, text)
	case StepAddSaleExtraCost:
		return e.addSaleExtraCost(ctx, userID, text)
	case StepAddSaleDate:
		return e.addSaleDate(ctx, userID, text)
	case StepEditSaleQuantity:
		return e.editSaleQuantity(ctx, userID, text)
	case StepEditSalePrice:
		return e.editSalePrice(ctx, userID, text)
	case StepEditSaleCost:
		return e.editSaleCost(ctx, userID, text)
	case StepEditSaleExtraCost:
		return e.editSaleExtraCost(ctx, userID, text)
	case StepEditSaleDate:
		return e.editSaleDate(ctx, userID, text)
	default:
		return message(textUseMenu, keyboard.MainMenu()), nil
	}
}

// HandleAction decodes callback data and dispatches it. Malformed data is
// logged and answered with a transient error, never a crash.
func (e *Engine) HandleAction(ctx context.Context, userID int64, data string) (Reply, error) {
	e.count("action")
	action, err := ParseAction(data)
	if err != nil {
		log.Warn().Int64("user_id", userID).Str("data", data).Msg("unrecognized callback data")
		return notice("❌ Something went wrong. Please try again."), nil
	}
	if action.Kind == ActionNoop {
		return Reply{}, nil
	}

	free, err := e.store.TryAcquire(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if !free {
		return notice(textBusy), nil
	}
	defer e.release(ctx, userID)

	state, err := e.store.State(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	eventID := uuid.NewString()
	log.Debug().
		Str("event_id", eventID).
		Int64("user_id", userID).
		Str("state", state).
		Int("action", int(action.Kind)).
		Msg("callback event")

	switch action.Kind {
	case ActionMainMenu:
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		return edited(textMainMenu, keyboard.MainMenu()), nil
	case ActionCancel:
		if err := e.store.Reset(ctx, userID); err != nil {
			return Reply{}, err
		}
		return message(textCancelled, keyboard.MainMenu()), nil
	case ActionInventoryMenu:
		return e.openMenu(ctx, userID, StepInventoryMenu, textInventoryMenu, keyboard.InventoryMenu())
	case ActionSalesMenu:
		return e.openMenu(ctx, userID, StepSalesMenu, textSalesMenu, keyboard.SalesMenu())
	case ActionHelp:
		return edited(textHelp, keyboard.Back(keyboard.DataMainMenu)), nil

	case ActionAddProduct:
		return e.startAddProduct(ctx, userID)
	case ActionEditProductList:
		return e.startEditProduct(ctx, userID)
	case ActionViewInventory:
		return e.viewInventory(ctx)
	case ActionInventoryReport:
		return e.inventoryReport(ctx)
	case ActionSelectProduct:
		return e.selectProduct(ctx, userID, Step(state), action.ID)
	case ActionEditName:
		return e.startEditName(ctx, userID, action.ID)
	case ActionEditQty:
		return e.startEditQty(ctx, userID, action.ID)
	case ActionDeleteProduct:
		return e.confirmDeleteProduct(ctx, action.ID)
	case ActionConfirmDeleteProduct:
		return e.deleteProduct(ctx, userID, action.ID)
	case ActionProductPage:
		return e.productPage(ctx, Step(state), action.Page)

	case ActionAddSale:
		return e.startAddSale(ctx, userID)
	case ActionViewSales:
		return e.viewSales(ctx, userID, 1)
	case ActionSalesReport:
		return e.salesReport(ctx)
	case ActionSelectSale:
		return e.selectSale(ctx, action.ID)
	case ActionSalePage:
		return e.viewSales(ctx, userID, action.Page)
	case ActionEditSale:
		return e.startEditSale(ctx, userID, action.ID)
	case ActionDeleteSale:
		return e.confirmDeleteSale(ctx, action.ID)
	case ActionConfirmDeleteSale:
		return e.deleteSale(ctx, userID, action.ID)
	}
	return notice("❌ Something went wrong. Please try again."), nil
}

func (e *Engine) openMenu(ctx context.Context, userID int64, step Step, text string, markup *keyboard.Markup) (Reply, error) {
	if err := e.store.SetState(ctx, userID, string(step)); err != nil {
		return Reply{}, err
	}
	if err := e.store.ClearScratch(ctx, userID); err != nil {
		return Reply{}, err
	}
	return edited(text, markup), nil
}

func (e *Engine) count(kind string) {
	if e.metrics != nil {
		e.metrics.Events.WithLabelValues(kind).Inc()
	}
}

func (e *Engine) release(ctx context.Context, userID int64) {
	if err := e.store.Release(ctx, userID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("release busy flag")
	}
}
