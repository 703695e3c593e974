package service

import (
	"context"
	"errors"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"

	"gorm.io/gorm"
)

// lowStockThreshold marks products worth restocking in the summary view.
const lowStockThreshold = 5

// InventorySummary aggregates the current stock position.
type InventorySummary struct {
	TotalProducts int
	TotalItems    int
	LowStock      []model.Product
}

// InventoryService owns the authoritative stock count per product.
type InventoryService interface {
	// CreateProduct is idempotent by name: when a product with the same
	// name already exists it is returned unchanged and created is false.
	CreateProduct(ctx context.Context, name string, stock int) (p *model.Product, created bool, err error)
	Product(ctx context.Context, id uint) (*model.Product, error)
	Products(ctx context.Context) ([]model.Product, error)
	AvailableProducts(ctx context.Context) ([]model.Product, error)
	RenameProduct(ctx context.Context, id uint, newName string) (p *model.Product, oldName string, err error)
	SetProductStock(ctx context.Context, id uint, stock int) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) (*model.Product, error)
	Summary(ctx context.Context) (InventorySummary, error)
}

type inventoryService struct {
	products repository.ProductRepository
}

func NewInventoryService(products repository.ProductRepository) InventoryService {
	return &inventoryService{products: products}
}

func (s *inventoryService) CreateProduct(ctx context.Context, name string, stock int) (*model.Product, bool, error) {
	existing, err := s.products.FindByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	p := &model.Product{Name: name, Stock: stock}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *inventoryService) Product(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *inventoryService) Products(ctx context.Context) ([]model.Product, error) {
	return s.products.List(ctx)
}

func (s *inventoryService) AvailableProducts(ctx context.Context) ([]model.Product, error) {
	return s.products.ListAvailable(ctx)
}

func (s *inventoryService) RenameProduct(ctx context.Context, id uint, newName string) (*model.Product, string, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, "", err
	}
	oldName := p.Name

	ok, err := s.products.UpdateName(ctx, id, newName)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrProductNotFound
	}
	p.Name = newName
	return p, oldName, nil
}

func (s *inventoryService) SetProductStock(ctx context.Context, id uint, stock int) (*model.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.products.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	p.Stock = stock
	return p, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uint) (*model.Product, error) {
	p, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.products.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *inventoryService) Summary(ctx context.Context) (InventorySummary, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return InventorySummary{}, err
	}

	sum := InventorySummary{TotalProducts: len(products)}
	for _, p := range products {
		sum.TotalItems += p.Stock
		if p.Stock > 0 && p.Stock <= lowStockThreshold {
			sum.LowStock = append(sum.LowStock, p)
		}
	}
	return sum, nil
}
