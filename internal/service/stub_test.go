package service_test

import (
	"context"
	"sort"
	"sync"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stubProductRepo is an in-memory ProductRepository. All mutations run
// under one mutex so the conditional decrement is atomic, mirroring the
// single conditional UPDATE of the real implementation.
type stubProductRepo struct {
	mu       sync.Mutex
	products map[uint]*model.Product
	nextID   uint
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uint]*model.Product)}
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.products[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) FindByName(_ context.Context, name string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.sorted() {
		if p.Name == name {
			clone := *p
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.sorted() {
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) ListAvailable(_ context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.sorted() {
		if p.Stock > 0 {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) sorted() []*model.Product {
	out := make([]*model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *stubProductRepo) UpdateName(_ context.Context, id uint, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	p.Name = name
	return true, nil
}

func (r *stubProductRepo) SetStock(_ context.Context, id uint, stock int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	p.Stock = stock
	return true, nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *stubProductRepo) DecrementTx(_ *gorm.DB, id uint, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *stubProductRepo) IncrementTx(_ *gorm.DB, id uint, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	p.Stock += qty
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// stubSaleRepo is an in-memory SaleRepository.
type stubSaleRepo struct {
	mu     sync.Mutex
	sales  map[uint]*model.Sale
	nextID uint
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uint]*model.Sale)}
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

func (r *stubSaleRepo) CreateTx(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	clone := *s
	r.sales[s.ID] = &clone
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uint) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSaleRepo) List(_ context.Context) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *stubSaleRepo) Update(_ context.Context, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	clone := *s
	r.sales[s.ID] = &clone
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) Summary(ctx context.Context) (repository.SalesSummary, error) {
	sales, _ := r.List(ctx)
	sum := repository.SalesSummary{
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalExtraCost: decimal.Zero,
		TotalProfit:    decimal.Zero,
	}
	for _, s := range sales {
		sum.Count++
		sum.TotalRevenue = sum.TotalRevenue.Add(s.TotalSale)
		sum.TotalCost = sum.TotalCost.Add(s.TotalCost)
		sum.TotalExtraCost = sum.TotalExtraCost.Add(s.ExtraCost)
		sum.TotalProfit = sum.TotalProfit.Add(s.NetProfit)
	}
	return sum, nil
}

func (r *stubSaleRepo) ListByProductName(ctx context.Context, name string) ([]model.Sale, error) {
	sales, _ := r.List(ctx)
	var out []model.Sale
	for _, s := range sales {
		if s.ProductName == name {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }
