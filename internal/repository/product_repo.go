package repository

import (
	"context"

	"github.com/amirhosein2004/sale-tele-bot/internal/model"

	"gorm.io/gorm"
)

// ProductRepository is the data access contract for the inventory ledger.
// Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListAvailable(ctx context.Context) ([]model.Product, error)
	UpdateName(ctx context.Context, id uint, name string) (bool, error)
	SetStock(ctx context.Context, id uint, stock int) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)

	// DecrementTx subtracts qty only when current stock >= qty, as a single
	// conditional UPDATE inside the caller's transaction. Returning false
	// means the precondition failed — the expected way a stale availability
	// check surfaces, not an error. IncrementTx reports false when the
	// product row is gone.
	DecrementTx(tx *gorm.DB, id uint, qty int) (bool, error)
	IncrementTx(tx *gorm.DB, id uint, qty int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every product in insertion order.
func (r *productRepo) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) ListAvailable(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("stock > 0").Order("id ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) UpdateName(ctx context.Context, id uint, name string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("name", name)
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) SetStock(ctx context.Context, id uint, stock int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("stock", stock)
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

// DecrementTx is the atomic compare-and-subtract: the stock precondition
// lives in the WHERE clause so two racing sale commits can never both win.
func (r *productRepo) DecrementTx(tx *gorm.DB, id uint, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) IncrementTx(tx *gorm.DB, id uint, qty int) (bool, error) {
	res := tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	return res.RowsAffected > 0, res.Error
}

func (r *productRepo) DB() *gorm.DB { return r.db }
