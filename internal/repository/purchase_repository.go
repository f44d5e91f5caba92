package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sariqmarket/b2b-backend/internal/model"
)

var ErrDBNotReady = errors.New("database not initialized")

type StatusCount struct {
	Status model.PurchaseStatus
	Count  int64
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *model.Purchase) error
	FindByID(ctx context.Context, id string) (*model.Purchase, error)
	ListAll(ctx context.Context) ([]model.Purchase, error)
	// UpdateVersioned applies fields to the row only if its version still
	// matches the one read, bumping the version in the same statement.
	// Returns the number of rows touched: 0 means a concurrent writer won.
	UpdateVersioned(ctx context.Context, id string, version int64, fields map[string]interface{}) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	SumPlatformFees(ctx context.Context, status model.PurchaseStatus) (decimal.Decimal, error)
	SetDB(db *gorm.DB)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, p *model.Purchase) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id string) (*model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.Purchase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *purchaseRepository) ListAll(ctx context.Context) ([]model.Purchase, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Purchase
	if err := r.db.WithContext(ctx).
		Order("purchase_date DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *purchaseRepository) UpdateVersioned(ctx context.Context, id string, version int64, fields map[string]interface{}) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")
	res := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("id = ? AND version = ?", id, version).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *purchaseRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var counts []StatusCount
	if err := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *purchaseRepository) SumPlatformFees(ctx context.Context, status model.PurchaseStatus) (decimal.Decimal, error) {
	if r.db == nil {
		return decimal.Zero, ErrDBNotReady
	}
	var row struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Select("COALESCE(SUM(platform_fee), 0) AS total").
		Where("status = ?", status).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *purchaseRepository) SetDB(db *gorm.DB) {
	r.db = db
}
