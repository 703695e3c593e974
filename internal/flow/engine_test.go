package flow_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/amirhosein2004/sale-tele-bot/internal/flow"
	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"
	"github.com/amirhosein2004/sale-tele-bot/internal/metrics"
	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"
	"github.com/amirhosein2004/sale-tele-bot/internal/service"
	"github.com/amirhosein2004/sale-tele-bot/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInventory struct {
	mu       sync.Mutex
	products map[uint]*model.Product
	nextID   uint
}

var _ service.InventoryService = (*fakeInventory)(nil)

func newFakeInventory() *fakeInventory {
	return &fakeInventory{products: make(map[uint]*model.Product), nextID: 1}
}

func (f *fakeInventory) seed(name string, stock int) *model.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &model.Product{ID: f.nextID, Name: name, Stock: stock}
	f.products[p.ID] = p
	f.nextID++
	return p
}

func (f *fakeInventory) CreateProduct(_ context.Context, name string, stock int) (*model.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Name == name {
			cp := *p
			return &cp, false, nil
		}
	}
	p := &model.Product{ID: f.nextID, Name: name, Stock: stock}
	f.products[p.ID] = p
	f.nextID++
	cp := *p
	return &cp, true, nil
}

func (f *fakeInventory) Product(_ context.Context, id uint) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, service.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeInventory) Products(context.Context) ([]model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeInventory) AvailableProducts(ctx context.Context) ([]model.Product, error) {
	all, _ := f.Products(ctx)
	out := all[:0]
	for _, p := range all {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeInventory) RenameProduct(_ context.Context, id uint, newName string) (*model.Product, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, "", service.ErrProductNotFound
	}
	old := p.Name
	p.Name = newName
	cp := *p
	return &cp, old, nil
}

func (f *fakeInventory) SetProductStock(_ context.Context, id uint, stock int) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, service.ErrProductNotFound
	}
	p.Stock = stock
	cp := *p
	return &cp, nil
}

func (f *fakeInventory) DeleteProduct(_ context.Context, id uint) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, service.ErrProductNotFound
	}
	delete(f.products, id)
	cp := *p
	return &cp, nil
}

func (f *fakeInventory) Summary(ctx context.Context) (service.InventorySummary, error) {
	all, _ := f.Products(ctx)
	sum := service.InventorySummary{TotalProducts: len(all)}
	for _, p := range all {
		sum.TotalItems += p.Stock
	}
	return sum, nil
}

type fakeSales struct {
	mu        sync.Mutex
	inventory *fakeInventory
	sales     map[uint]*model.Sale
	nextID    uint
}

var _ service.SalesService = (*fakeSales)(nil)

func newFakeSales(inv *fakeInventory) *fakeSales {
	return &fakeSales{inventory: inv, sales: make(map[uint]*model.Sale), nextID: 1}
}

func (f *fakeSales) CreateSale(_ context.Context, draft service.SaleDraft) (*model.Sale, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventory.mu.Lock()
	defer f.inventory.mu.Unlock()

	p, ok := f.inventory.products[draft.ProductID]
	if !ok {
		return nil, 0, service.ErrProductNotFound
	}
	if p.Stock < draft.Quantity {
		return nil, 0, &service.InsufficientStockError{
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   draft.Quantity,
		}
	}
	p.Stock -= draft.Quantity

	pid := draft.ProductID
	s := &model.Sale{
		ID:          f.nextID,
		ProductID:   &pid,
		ProductName: draft.ProductName,
		Quantity:    draft.Quantity,
		TotalSale:   draft.TotalSale,
		TotalCost:   draft.TotalCost,
		ExtraCost:   draft.ExtraCost,
		Date:        draft.Date,
	}
	s.SalePrice = s.TotalSale.Div(decimal.NewFromInt(int64(s.Quantity)))
	s.NetProfit = s.TotalSale.Sub(s.TotalCost).Sub(s.ExtraCost)
	f.sales[s.ID] = s
	f.nextID++
	cp := *s
	return &cp, p.Stock, nil
}

func (f *fakeSales) Sale(_ context.Context, id uint) (*model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sales[id]
	if !ok {
		return nil, service.ErrSaleNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSales) Sales(context.Context) ([]model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Sale, 0, len(f.sales))
	for _, s := range f.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeSales) UpdateSale(_ context.Context, id uint, upd service.SaleUpdate) (*model.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sales[id]
	if !ok {
		return nil, service.ErrSaleNotFound
	}
	s.Quantity = upd.Quantity
	s.TotalSale = upd.TotalSale
	s.TotalCost = upd.TotalCost
	s.ExtraCost = upd.ExtraCost
	s.Date = upd.Date
	s.SalePrice = s.TotalSale.Div(decimal.NewFromInt(int64(s.Quantity)))
	s.NetProfit = s.TotalSale.Sub(s.TotalCost).Sub(s.ExtraCost)
	cp := *s
	return &cp, nil
}

func (f *fakeSales) DeleteSale(_ context.Context, id uint) (*model.Sale, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sales[id]
	if !ok {
		return nil, false, service.ErrSaleNotFound
	}
	delete(f.sales, id)

	f.inventory.mu.Lock()
	defer f.inventory.mu.Unlock()
	restored := false
	for _, p := range f.inventory.products {
		if p.Name == s.ProductName {
			p.Stock += s.Quantity
			restored = true
			break
		}
	}
	cp := *s
	return &cp, restored, nil
}

func (f *fakeSales) Summary(ctx context.Context) (repository.SalesSummary, error) {
	all, _ := f.Sales(ctx)
	sum := repository.SalesSummary{
		Count:          int64(len(all)),
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalExtraCost: decimal.Zero,
		TotalProfit:    decimal.Zero,
	}
	for _, s := range all {
		sum.TotalRevenue = sum.TotalRevenue.Add(s.TotalSale)
		sum.TotalCost = sum.TotalCost.Add(s.TotalCost)
		sum.TotalExtraCost = sum.TotalExtraCost.Add(s.ExtraCost)
		sum.TotalProfit = sum.TotalProfit.Add(s.NetProfit)
	}
	return sum, nil
}

func (f *fakeSales) SalesByProduct(ctx context.Context, name string) ([]model.Sale, error) {
	all, _ := f.Sales(ctx)
	out := all[:0]
	for _, s := range all {
		if s.ProductName == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSales) ProductProfit(ctx context.Context, name string) (decimal.Decimal, error) {
	sales, _ := f.SalesByProduct(ctx, name)
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.NetProfit)
	}
	return total, nil
}

type fixture struct {
	engine    *flow.Engine
	store     *session.MemoryStore
	inventory *fakeInventory
	sales     *fakeSales
}

func newFixture() *fixture {
	inv := newFakeInventory()
	sales := newFakeSales(inv)
	store := session.NewMemoryStore()
	return &fixture{
		engine:    flow.NewEngine(store, inv, sales, metrics.New(nil), 20),
		store:     store,
		inventory: inv,
		sales:     sales,
	}
}

const userID int64 = 42

func (fx *fixture) state(t *testing.T) string {
	t.Helper()
	state, err := fx.store.State(context.Background(), userID)
	require.NoError(t, err)
	return state
}

func (fx *fixture) text(t *testing.T, text string) flow.Reply {
	t.Helper()
	r, err := fx.engine.HandleText(context.Background(), userID, text)
	require.NoError(t, err)
	return r
}

func (fx *fixture) action(t *testing.T, data string) flow.Reply {
	t.Helper()
	r, err := fx.engine.HandleAction(context.Background(), userID, data)
	require.NoError(t, err)
	return r
}

func TestStartResetsToMainMenu(t *testing.T) {
	fx := newFixture()
	fx.text(t, "stale")

	r, err := fx.engine.Start(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "Welcome")
	require.NotNil(t, r.Markup)
	assert.Equal(t, session.StateMainMenu, fx.state(t))
}

func TestTextOutsideFlowNudgesToMenu(t *testing.T) {
	fx := newFixture()
	r := fx.text(t, "hello?")
	assert.Contains(t, r.Text, "menu")
	require.NotNil(t, r.Markup)
}

func TestAddProductFlow(t *testing.T) {
	fx := newFixture()

	r := fx.action(t, keyboard.DataAddProduct)
	assert.Contains(t, r.Text, "name")
	assert.Equal(t, string(flow.StepAddProductName), fx.state(t))

	// invalid names re-prompt without advancing
	r = fx.text(t, "   ")
	assert.Contains(t, r.Text, "empty")
	assert.Equal(t, string(flow.StepAddProductName), fx.state(t))
	r = fx.text(t, "A")
	assert.Contains(t, r.Text, "at least")
	assert.Equal(t, string(flow.StepAddProductName), fx.state(t))

	r = fx.text(t, "AB")
	assert.Contains(t, r.Text, "stock")
	assert.Equal(t, string(flow.StepAddProductQty), fx.state(t))

	r = fx.text(t, "nope")
	assert.Contains(t, r.Text, "whole number")
	assert.Equal(t, string(flow.StepAddProductQty), fx.state(t))

	r = fx.text(t, "5")
	assert.Contains(t, r.Text, "added")
	assert.Equal(t, string(flow.StepInventoryMenu), fx.state(t))

	products, err := fx.inventory.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "AB", products[0].Name)
	assert.Equal(t, 5, products[0].Stock)
}

func TestAddProductDuplicateNameKeepsExisting(t *testing.T) {
	fx := newFixture()
	fx.inventory.seed("Widget", 9)

	fx.action(t, keyboard.DataAddProduct)
	fx.text(t, "Widget")
	r := fx.text(t, "100")
	assert.Contains(t, r.Text, "already exists")

	products, _ := fx.inventory.Products(context.Background())
	require.Len(t, products, 1)
	assert.Equal(t, 9, products[0].Stock)
}

func TestAddSaleFlow(t *testing.T) {
	fx := newFixture()
	p := fx.inventory.seed("Widget", 10)

	r := fx.action(t, keyboard.DataAddSale)
	assert.Contains(t, r.Text, "sell")
	assert.Equal(t, string(flow.StepAddSaleProduct), fx.state(t))

	r = fx.action(t, "select_product_1")
	assert.Contains(t, r.Text, "Available: 10")
	assert.Equal(t, string(flow.StepAddSaleQuantity), fx.state(t))

	// oversell re-prompts with both figures, state unchanged
	r = fx.text(t, "11")
	assert.Contains(t, r.Text, "Available: 10")
	assert.Contains(t, r.Text, "Requested: 11")
	assert.Equal(t, string(flow.StepAddSaleQuantity), fx.state(t))

	fx.text(t, "4")
	fx.text(t, "100")
	fx.text(t, "40")
	fx.text(t, "10")
	r = fx.text(t, "1403/09/29")
	assert.Contains(t, r.Text, "recorded")
	assert.Equal(t, string(flow.StepSalesMenu), fx.state(t))

	got, err := fx.inventory.Product(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Stock)

	sales, _ := fx.sales.Sales(context.Background())
	require.Len(t, sales, 1)
	assert.Equal(t, 4, sales[0].Quantity)
	assert.True(t, sales[0].NetProfit.Equal(decimal.NewFromInt(50)))
}

func TestAddSaleStockConflictRePromptsQuantity(t *testing.T) {
	fx := newFixture()
	p := fx.inventory.seed("Widget", 10)

	fx.action(t, keyboard.DataAddSale)
	fx.action(t, "select_product_1")
	fx.text(t, "8")
	fx.text(t, "100")
	fx.text(t, "40")
	fx.text(t, "0")

	// stock shrinks while the user types the date
	_, err := fx.inventory.SetProductStock(context.Background(), p.ID, 2)
	require.NoError(t, err)

	r := fx.text(t, "1403/09/29")
	assert.Contains(t, r.Text, "Available: 2")
	assert.Contains(t, r.Text, "Requested: 8")
	assert.Equal(t, string(flow.StepAddSaleQuantity), fx.state(t))

	sales, _ := fx.sales.Sales(context.Background())
	assert.Empty(t, sales)

	// retry with a quantity that fits
	fx.text(t, "2")
	fx.text(t, "25")
	fx.text(t, "10")
	fx.text(t, "0")
	r = fx.text(t, "1403/09/29")
	assert.Equal(t, string(flow.StepSalesMenu), fx.state(t))

	got, _ := fx.inventory.Product(context.Background(), p.ID)
	assert.Equal(t, 0, got.Stock)
}

func TestCancelMidFlow(t *testing.T) {
	fx := newFixture()
	fx.action(t, keyboard.DataAddProduct)
	fx.text(t, "Widget")

	r := fx.action(t, keyboard.DataCancel)
	assert.Contains(t, r.Text, "cancelled")
	assert.Equal(t, session.StateMainMenu, fx.state(t))

	scratch, err := fx.store.Scratch(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, scratch.ProductName)
}

func TestBusyGuard(t *testing.T) {
	fx := newFixture()
	free, err := fx.store.TryAcquire(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, free)

	r := fx.text(t, "anything")
	assert.NotEmpty(t, r.Notice)
	assert.Empty(t, r.Text)

	require.NoError(t, fx.store.Release(context.Background(), userID))
	r = fx.text(t, "anything")
	assert.Empty(t, r.Notice)
}

func TestMalformedActionAnswersWithNotice(t *testing.T) {
	fx := newFixture()
	r := fx.action(t, "definitely_not_a_button")
	assert.NotEmpty(t, r.Notice)
	assert.Empty(t, r.Text)
}

func TestDeleteProductTwoPhase(t *testing.T) {
	fx := newFixture()
	fx.inventory.seed("Widget", 3)

	r := fx.action(t, "delete_product_1")
	assert.Contains(t, r.Text, "Delete product")
	require.NotNil(t, r.Markup)
	var confirmData string
	for _, row := range r.Markup.Rows {
		for _, b := range row {
			if strings.HasPrefix(b.Data, keyboard.ConfirmPrefix) {
				confirmData = b.Data
			}
		}
	}
	require.NotEmpty(t, confirmData)

	// still present until confirmed
	products, _ := fx.inventory.Products(context.Background())
	require.Len(t, products, 1)

	r = fx.action(t, confirmData)
	assert.Contains(t, r.Text, "deleted")
	products, _ = fx.inventory.Products(context.Background())
	assert.Empty(t, products)
}

func TestDeleteSaleRestoresStock(t *testing.T) {
	fx := newFixture()
	p := fx.inventory.seed("Widget", 10)
	_, _, err := fx.sales.CreateSale(context.Background(), service.SaleDraft{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    4,
		TotalSale:   decimal.NewFromInt(100),
		TotalCost:   decimal.NewFromInt(40),
		ExtraCost:   decimal.NewFromInt(10),
		Date:        "1403/09/29",
	})
	require.NoError(t, err)

	fx.action(t, "delete_sale_1")
	r := fx.action(t, "confirm_delete_sale_1")
	assert.Contains(t, r.Text, "restored")

	got, _ := fx.inventory.Product(context.Background(), p.ID)
	assert.Equal(t, 10, got.Stock)
}

func TestEditSaleFlowRecomputesAndLeavesStockAlone(t *testing.T) {
	fx := newFixture()
	p := fx.inventory.seed("Widget", 10)
	_, _, err := fx.sales.CreateSale(context.Background(), service.SaleDraft{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    4,
		TotalSale:   decimal.NewFromInt(100),
		TotalCost:   decimal.NewFromInt(40),
		ExtraCost:   decimal.NewFromInt(10),
		Date:        "1403/09/29",
	})
	require.NoError(t, err)

	r := fx.action(t, "edit_sale_1")
	assert.Contains(t, r.Text, "new quantity")
	fx.text(t, "2")
	fx.text(t, "60")
	fx.text(t, "20")
	fx.text(t, "0")
	r = fx.text(t, "1403/10/01")
	assert.Contains(t, r.Text, "updated")

	s, err := fx.sales.Sale(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Quantity)
	assert.True(t, s.SalePrice.Equal(decimal.NewFromInt(30)))
	assert.True(t, s.NetProfit.Equal(decimal.NewFromInt(40)))

	// stock stays where the original sale left it
	got, _ := fx.inventory.Product(context.Background(), p.ID)
	assert.Equal(t, 6, got.Stock)
}

func TestAddSaleNoAvailableProducts(t *testing.T) {
	fx := newFixture()
	fx.inventory.seed("Widget", 0)

	r := fx.action(t, keyboard.DataAddSale)
	assert.Contains(t, r.Text, "No products with stock")
	assert.Equal(t, session.StateMainMenu, fx.state(t))
}

func TestEditProductRename(t *testing.T) {
	fx := newFixture()
	fx.inventory.seed("Widget", 3)

	fx.action(t, keyboard.DataEditProductList)
	fx.action(t, "select_product_1")
	r := fx.action(t, "edit_name_1")
	assert.Contains(t, r.Text, "new name")

	r = fx.text(t, "Gadget")
	assert.Contains(t, r.Text, "Renamed 'Widget' to 'Gadget'")

	products, _ := fx.inventory.Products(context.Background())
	require.Len(t, products, 1)
	assert.Equal(t, "Gadget", products[0].Name)
}
