package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodFPS          PaymentMethod = "fps"
	PaymentMethodPayme        PaymentMethod = "payme"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodOther        PaymentMethod = "other"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// PaymentDetails is what the buyer submitted as proof of payment.
type PaymentDetails struct {
	TransactionID  string     `gorm:"column:payment_transaction_id;size:128" json:"transactionId,omitempty"`
	ReceiptFile    string     `gorm:"column:receipt_file;size:255" json:"receiptFile,omitempty"`
	ReceiptPreview string     `gorm:"column:receipt_preview;size:512" json:"receiptPreview,omitempty"`
	Timestamp      *time.Time `gorm:"column:payment_timestamp" json:"timestamp,omitempty"`
}

type ShippingDetails struct {
	ShippedAt *time.Time `gorm:"column:shipped_at" json:"shippedAt,omitempty"`
	// ShippingPhoto is the legacy single-photo field kept for rows written
	// before ShippingPhotos existed. Readers prefer ShippingPhotos.
	ShippingPhoto       string     `gorm:"column:shipping_photo;size:512" json:"shippingPhoto,omitempty"`
	ShippingPhotos      []string   `gorm:"column:shipping_photos;serializer:json;type:text" json:"shippingPhotos,omitempty"`
	TrackingNumber      string     `gorm:"column:tracking_number;size:128" json:"trackingNumber,omitempty"`
	ShippingNotes       string     `gorm:"column:shipping_notes;type:text" json:"shippingNotes,omitempty"`
	LogisticsArranged   bool       `gorm:"column:logistics_arranged" json:"logisticsArranged"`
	DeliveredAt         *time.Time `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	DeliveryConfirmedBy string     `gorm:"column:delivery_confirmed_by;size:128" json:"deliveryConfirmedBy,omitempty"`
	DeliveryConfirmedAt *time.Time `gorm:"column:delivery_confirmed_at" json:"deliveryConfirmedAt,omitempty"`
}

type Purchase struct {
	ID       string `gorm:"primaryKey;size:64"`
	OfferID  string `gorm:"column:offer_id;size:64;index;not null"`
	BuyerID  string `gorm:"column:buyer_id;size:128;index;not null"`
	SellerID string `gorm:"column:seller_id;size:128;index;not null"`

	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:decimal(14,2);not null"`
	PlatformFee decimal.Decimal `gorm:"column:platform_fee;type:decimal(14,2);not null"`
	FinalAmount decimal.Decimal `gorm:"column:final_amount;type:decimal(14,2);not null"`

	// Status is the authoritative workflow state. The approval sub-fields
	// below are informational annotations for the payment and logistics
	// desks and never drive the workflow on their own.
	Status                 PurchaseStatus `gorm:"column:status;size:32;index;not null"`
	ApprovalStatus         ApprovalStatus `gorm:"column:approval_status;size:32"`
	PaymentApprovalStatus  ApprovalStatus `gorm:"column:payment_approval_status;size:32"`
	ShippingApprovalStatus ApprovalStatus `gorm:"column:shipping_approval_status;size:32"`

	PaymentMethod   PaymentMethod   `gorm:"column:payment_method;size:32"`
	PaymentDetails  PaymentDetails  `gorm:"embedded"`
	ShippingDetails ShippingDetails `gorm:"embedded"`

	AdminNotes string `gorm:"column:admin_notes;type:text"`

	// PurchaseDate is set once by the buying flow and never rewritten.
	PurchaseDate time.Time `gorm:"column:purchase_date;not null"`

	// Version guards moderation writes: every update is conditional on the
	// version read and bumps it by one, so two racing admins cannot
	// silently overwrite each other.
	Version int64 `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Purchase) TableName() string {
	return "purchases"
}
