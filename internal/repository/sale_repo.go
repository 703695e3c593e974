package repository

import (
	"context"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesSummary is the aggregate fold over all sale records.
type SalesSummary struct {
	Count          int64
	TotalRevenue   decimal.Decimal
	TotalCost      decimal.Decimal
	TotalExtraCost decimal.Decimal
	TotalProfit    decimal.Decimal
}

// SaleRepository is the data access contract for the sales ledger.
type SaleRepository interface {
	// CreateTx inserts a sale inside a surrounding transaction; tx may be
	// nil in unit-test mode.
	CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	// List returns sales newest first, for display.
	List(ctx context.Context) ([]model.Sale, error)
	Update(ctx context.Context, s *model.Sale) error
	DeleteTx(tx *gorm.DB, id uint) error
	Summary(ctx context.Context) (SalesSummary, error)
	ListByProductName(ctx context.Context, name string) ([]model.Sale, error)

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) CreateTx(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var s model.Sale
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Order("id DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Update(ctx context.Context, s *model.Sale) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Sale{}, id).Error
}

func (r *saleRepo) Summary(ctx context.Context) (SalesSummary, error) {
	var row struct {
		Count          int64
		TotalRevenue   decimal.Decimal
		TotalCost      decimal.Decimal
		TotalExtraCost decimal.Decimal
		TotalProfit    decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(total_sale_price), 0) AS total_revenue,
			COALESCE(SUM(total_cost), 0) AS total_cost,
			COALESCE(SUM(extra_cost), 0) AS total_extra_cost,
			COALESCE(SUM(net_profit), 0) AS total_profit`).
		Scan(&row).Error
	if err != nil {
		return SalesSummary{}, err
	}
	return SalesSummary{
		Count:          row.Count,
		TotalRevenue:   row.TotalRevenue,
		TotalCost:      row.TotalCost,
		TotalExtraCost: row.TotalExtraCost,
		TotalProfit:    row.TotalProfit,
	}, nil
}

// ListByProductName matches on the denormalized name snapshot, so sales of
// deleted products are still reported.
func (r *saleRepo) ListByProductName(ctx context.Context, name string) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Where("product_name = ?", name).Order("id DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) DB() *gorm.DB { return r.db }
