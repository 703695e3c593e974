package service

import (
	"context"
	"errors"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"
	"github.com/amirhosein2004/sale-tele-bot/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleDraft carries the accumulated input of a completed add-sale flow.
type SaleDraft struct {
	ProductID   uint
	ProductName string
	Quantity    int
	TotalSale   decimal.Decimal
	TotalCost   decimal.Decimal
	ExtraCost   decimal.Decimal
	Date        string
}

// SaleUpdate carries the replacement values from an edit-sale flow.
type SaleUpdate struct {
	Quantity  int
	TotalSale decimal.Decimal
	TotalCost decimal.Decimal
	ExtraCost decimal.Decimal
	Date      string
}

// SalesService owns the sale ledger and the derived-field formulas:
// sale_price = total_sale_price / quantity and
// net_profit = total_sale_price - total_cost - extra_cost are computed
// here and nowhere else.
type SalesService interface {
	// CreateSale re-checks availability, decrements stock and inserts the
	// sale as one unit of work. Returns the created sale and the stock
	// remaining on the product. A failed stock precondition surfaces as
	// *InsufficientStockError.
	CreateSale(ctx context.Context, draft SaleDraft) (sale *model.Sale, remaining int, err error)
	Sale(ctx context.Context, id uint) (*model.Sale, error)
	Sales(ctx context.Context) ([]model.Sale, error)
	// UpdateSale replaces the sale's figures and recomputes the derived
	// fields. It never adjusts product stock, while create and delete do;
	// inventory can therefore drift after a quantity edit.
	UpdateSale(ctx context.Context, id uint, upd SaleUpdate) (*model.Sale, error)
	// DeleteSale removes the sale and restores the sold quantity to the
	// product matched by name; restored is false when the product is gone.
	DeleteSale(ctx context.Context, id uint) (sale *model.Sale, restored bool, err error)
	Summary(ctx context.Context) (repository.SalesSummary, error)
	SalesByProduct(ctx context.Context, name string) ([]model.Sale, error)
	ProductProfit(ctx context.Context, name string) (decimal.Decimal, error)
}

type salesService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
}

func NewSalesService(sales repository.SaleRepository, products repository.ProductRepository) SalesService {
	return &salesService{sales: sales, products: products}
}

func derive(s *model.Sale) {
	s.SalePrice = s.TotalSale.Div(decimal.NewFromInt(int64(s.Quantity)))
	s.NetProfit = s.TotalSale.Sub(s.TotalCost).Sub(s.ExtraCost)
}

func (s *salesService) CreateSale(ctx context.Context, draft SaleDraft) (*model.Sale, int, error) {
	p, err := s.products.FindByID(ctx, draft.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrProductNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	productID := draft.ProductID
	sale := &model.Sale{
		ProductID:   &productID,
		ProductName: draft.ProductName,
		Quantity:    draft.Quantity,
		TotalSale:   draft.TotalSale,
		TotalCost:   draft.TotalCost,
		ExtraCost:   draft.ExtraCost,
		Date:        draft.Date,
	}
	derive(sale)

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		// The decrement re-checks the precondition at commit time; the
		// pre-flight checks earlier in the flow may be stale by now.
		ok, err := s.products.DecrementTx(tx, draft.ProductID, draft.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return &InsufficientStockError{
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   draft.Quantity,
			}
		}
		return s.sales.CreateTx(ctx, tx, sale)
	})
	if txErr != nil {
		var conflict *InsufficientStockError
		if errors.As(txErr, &conflict) {
			// Refresh the figure the user will see in the retry prompt.
			if cur, err := s.products.FindByID(ctx, draft.ProductID); err == nil {
				conflict.Available = cur.Stock
			}
			log.Debug().Str("product", conflict.ProductName).
				Int("available", conflict.Available).Int("requested", conflict.Requested).
				Msg("sale rejected: stock conflict")
		}
		return nil, 0, txErr
	}

	remaining := 0
	if cur, err := s.products.FindByID(ctx, draft.ProductID); err == nil {
		remaining = cur.Stock
	}
	return sale, remaining, nil
}

func (s *salesService) Sale(ctx context.Context, id uint) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSaleNotFound
	}
	return sale, err
}

func (s *salesService) Sales(ctx context.Context) ([]model.Sale, error) {
	return s.sales.List(ctx)
}

func (s *salesService) UpdateSale(ctx context.Context, id uint, upd SaleUpdate) (*model.Sale, error) {
	sale, err := s.Sale(ctx, id)
	if err != nil {
		return nil, err
	}

	sale.Quantity = upd.Quantity
	sale.TotalSale = upd.TotalSale
	sale.TotalCost = upd.TotalCost
	sale.ExtraCost = upd.ExtraCost
	sale.Date = upd.Date
	derive(sale)

	if err := s.sales.Update(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *salesService) DeleteSale(ctx context.Context, id uint) (*model.Sale, bool, error) {
	sale, err := s.Sale(ctx, id)
	if err != nil {
		return nil, false, err
	}

	restored := false
	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		// Restoration targets the product by name, not id: the id link may
		// dangle while a product of the same name is the operator's intent.
		p, err := s.products.FindByName(ctx, sale.ProductName)
		switch {
		case err == nil:
			// The product can vanish between the lookup and the update;
			// only a touched row counts as restored.
			ok, err := s.products.IncrementTx(tx, p.ID, sale.Quantity)
			if err != nil {
				return err
			}
			restored = ok
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Product already deleted: skip restoration silently.
		default:
			return err
		}
		return s.sales.DeleteTx(tx, sale.ID)
	})
	if txErr != nil {
		return nil, false, txErr
	}
	return sale, restored, nil
}

func (s *salesService) Summary(ctx context.Context) (repository.SalesSummary, error) {
	return s.sales.Summary(ctx)
}

func (s *salesService) SalesByProduct(ctx context.Context, name string) ([]model.Sale, error) {
	return s.sales.ListByProductName(ctx, name)
}

func (s *salesService) ProductProfit(ctx context.Context, name string) (decimal.Decimal, error) {
	sales, err := s.sales.ListByProductName(ctx, name)
	if err != nil {
		return decimal.Zero, err
	}
	profit := decimal.Zero
	for _, sale := range sales {
		profit = profit.Add(sale.NetProfit)
	}
	return profit, nil
}
