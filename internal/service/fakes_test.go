package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
)

type fakePurchaseRepo struct {
	mu           sync.Mutex
	purchases    map[string]*model.Purchase
	updateErr    error
	conflictOnce bool
	listCalls    int
}

func newFakePurchaseRepo(purchases ...model.Purchase) *fakePurchaseRepo {
	r := &fakePurchaseRepo{purchases: map[string]*model.Purchase{}}
	for i := range purchases {
		p := purchases[i]
		r.purchases[p.ID] = &p
	}
	return r
}

func (r *fakePurchaseRepo) Create(ctx context.Context, p *model.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *fakePurchaseRepo) FindByID(ctx context.Context, id string) (*model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePurchaseRepo) ListAll(ctx context.Context) ([]model.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	out := make([]model.Purchase, 0, len(r.purchases))
	for _, p := range r.purchases {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePurchaseRepo) UpdateVersioned(ctx context.Context, id string, version int64, fields map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return 0, r.updateErr
	}
	if r.conflictOnce {
		r.conflictOnce = false
		return 0, nil
	}
	p, ok := r.purchases[id]
	if !ok || p.Version != version {
		return 0, nil
	}
	applyFields(p, fields)
	p.Version++
	return 1, nil
}

// applyFields mirrors how the gorm map update lands on the row, for the
// columns the moderation service writes.
func applyFields(p *model.Purchase, fields map[string]interface{}) {
	for col, val := range fields {
		switch col {
		case "status":
			p.Status = val.(model.PurchaseStatus)
		case "approval_status":
			p.ApprovalStatus = val.(model.ApprovalStatus)
		case "shipping_approval_status":
			p.ShippingApprovalStatus = val.(model.ApprovalStatus)
		case "admin_notes":
			p.AdminNotes = val.(string)
		case "shipped_at":
			t := val.(time.Time)
			p.ShippingDetails.ShippedAt = &t
		case "delivered_at":
			t := val.(time.Time)
			p.ShippingDetails.DeliveredAt = &t
		case "delivery_confirmed_by":
			p.ShippingDetails.DeliveryConfirmedBy = val.(string)
		case "delivery_confirmed_at":
			t := val.(time.Time)
			p.ShippingDetails.DeliveryConfirmedAt = &t
		case "logistics_arranged":
			p.ShippingDetails.LogisticsArranged = val.(bool)
		case "receipt_file":
			p.PaymentDetails.ReceiptFile = val.(string)
		case "receipt_preview":
			p.PaymentDetails.ReceiptPreview = val.(string)
		case "payment_timestamp":
			t := val.(time.Time)
			p.PaymentDetails.Timestamp = &t
		case "payment_approval_status":
			p.PaymentApprovalStatus = val.(model.ApprovalStatus)
		case "shipping_photos":
			// The service marshals the slice itself because gorm map
			// updates bypass the serializer; the column holds JSON text.
			var photos []string
			if err := json.Unmarshal([]byte(val.(string)), &photos); err != nil {
				panic(err)
			}
			p.ShippingDetails.ShippingPhotos = photos
		}
	}
}

func (r *fakePurchaseRepo) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := map[model.PurchaseStatus]int64{}
	for _, p := range r.purchases {
		byStatus[p.Status]++
	}
	out := make([]repository.StatusCount, 0, len(byStatus))
	for s, n := range byStatus {
		out = append(out, repository.StatusCount{Status: s, Count: n})
	}
	return out, nil
}

func (r *fakePurchaseRepo) SumPlatformFees(ctx context.Context, status model.PurchaseStatus) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.purchases {
		if p.Status == status {
			total = total.Add(p.PlatformFee)
		}
	}
	return total, nil
}

func (r *fakePurchaseRepo) SetDB(db *gorm.DB) {}

type fakeOfferRepo struct {
	offers map[string]*model.Offer
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *model.Offer) error {
	r.offers[offer.ID] = offer
	return nil
}

func (r *fakeOfferRepo) FindByID(ctx context.Context, id string) (*model.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *fakeOfferRepo) SetDB(db *gorm.DB) {}

type fakeUserRepo struct {
	users map[string]*model.AuthUser
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *model.AuthUser) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.AuthUser, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SetDB(db *gorm.DB) {}
