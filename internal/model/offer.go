package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Offer struct {
	ID           string          `gorm:"primaryKey;size:64"`
	SellerID     string          `gorm:"column:seller_id;size:128;index;not null"`
	Title        string          `gorm:"size:160;not null"`
	Images       []string        `gorm:"serializer:json;type:text"`
	Location     string          `gorm:"size:160"`
	Unit         string          `gorm:"size:32"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:decimal(14,2)"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (Offer) TableName() string {
	return "offers"
}
