package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
)

type ModerationService interface {
	ApprovePurchase(ctx context.Context, session model.AdminSession, id, notes string) (*model.Purchase, error)
	RejectPurchase(ctx context.Context, session model.AdminSession, id, notes string) (*model.Purchase, error)
	SetPaymentStatus(ctx context.Context, session model.AdminSession, id string, status model.PurchaseStatus) (*model.Purchase, error)
	SetApprovalStatus(ctx context.Context, session model.AdminSession, id string, status model.ApprovalStatus) (*model.Purchase, error)
	ApproveShipping(ctx context.Context, session model.AdminSession, id string) (*model.Purchase, error)
	CompleteDelivery(ctx context.Context, session model.AdminSession, id string) (*model.Purchase, error)
	MarkLogisticsArranged(ctx context.Context, session model.AdminSession, id string) error
	AttachReceipt(ctx context.Context, session model.AdminSession, id, filename, url string) (*model.Purchase, error)
	AddShippingPhotos(ctx context.Context, session model.AdminSession, id string, urls []string) (*model.Purchase, error)
}

type moderationService struct {
	repo    repository.PurchaseRepository
	txns    TransactionService
	mode    model.TransitionMode
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewModerationService(repo repository.PurchaseRepository, txns TransactionService, mode model.TransitionMode, timeout time.Duration) ModerationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &moderationService{
		repo:    repo,
		txns:    txns,
		mode:    mode,
		timeout: timeout,
		locks:   map[string]*sync.Mutex{},
	}
}

// lockFor serializes moderation per purchase id: at most one operation is in
// flight for a given id at any time, even across two admin sessions.
func (s *moderationService) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *moderationService) checkTransition(from, to model.PurchaseStatus) error {
	if s.mode == model.TransitionModeStrict && !from.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// mutate runs one versioned write against the purchase. apply inspects the
// current row and either returns the column updates (also mutating p to the
// post-write state) or nil updates for an idempotent no-op.
func (s *moderationService) mutate(ctx context.Context, session model.AdminSession, id string, apply func(p *model.Purchase) (map[string]interface{}, error)) (*model.Purchase, error) {
	if !session.Admin {
		return nil, ErrUnauthorized
	}
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrMutation, err)
	}

	version := p.Version
	fields, err := apply(p)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return p, nil
	}

	rows, err := s.repo.UpdateVersioned(ctx, id, version, fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMutation, err)
	}
	if rows == 0 {
		return nil, ErrConflict
	}
	p.Version = version + 1

	// Patch the cached row only after the write is confirmed; on failure
	// the cache keeps the prior state.
	after := *p
	s.txns.Patch(id, func(cached *model.Purchase) {
		*cached = after
	})
	return p, nil
}

func (s *moderationService) ApprovePurchase(ctx context.Context, session model.AdminSession, id, notes string) (*model.Purchase, error) {
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.Status == model.PurchaseStatusApproved &&
			p.ApprovalStatus == model.ApprovalStatusApproved &&
			p.PaymentApprovalStatus == model.ApprovalStatusApproved {
			return nil, nil
		}
		if err := s.checkTransition(p.Status, model.PurchaseStatusApproved); err != nil {
			return nil, err
		}
		p.Status = model.PurchaseStatusApproved
		p.ApprovalStatus = model.ApprovalStatusApproved
		p.PaymentApprovalStatus = model.ApprovalStatusApproved
		appendNotes(p, notes)
		return map[string]interface{}{
			"status":                  model.PurchaseStatusApproved,
			"approval_status":         model.ApprovalStatusApproved,
			"payment_approval_status": model.ApprovalStatusApproved,
			"admin_notes":             p.AdminNotes,
		}, nil
	})
}

func (s *moderationService) RejectPurchase(ctx context.Context, session model.AdminSession, id, notes string) (*model.Purchase, error) {
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.Status == model.PurchaseStatusRejected &&
			p.ApprovalStatus == model.ApprovalStatusRejected &&
			p.PaymentApprovalStatus == model.ApprovalStatusRejected {
			return nil, nil
		}
		if err := s.checkTransition(p.Status, model.PurchaseStatusRejected); err != nil {
			return nil, err
		}
		p.Status = model.PurchaseStatusRejected
		p.ApprovalStatus = model.ApprovalStatusRejected
		p.PaymentApprovalStatus = model.ApprovalStatusRejected
		appendNotes(p, notes)
		return map[string]interface{}{
			"status":                  model.PurchaseStatusRejected,
			"approval_status":         model.ApprovalStatusRejected,
			"payment_approval_status": model.ApprovalStatusRejected,
			"admin_notes":             p.AdminNotes,
		}, nil
	})
}

func (s *moderationService) SetPaymentStatus(ctx context.Context, session model.AdminSession, id string, status model.PurchaseStatus) (*model.Purchase, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		// Writing the current status again is a no-op, unless a rejected
		// row still lacks the forced approval annotation below.
		if p.Status == status &&
			(status != model.PurchaseStatusRejected || p.ApprovalStatus == model.ApprovalStatusRejected) {
			return nil, nil
		}
		if err := s.checkTransition(p.Status, status); err != nil {
			return nil, err
		}
		p.Status = status
		fields := map[string]interface{}{
			"status": status,
		}
		// Rejection through the raw selector still has to reflect on the
		// approval annotation, matching the approve/reject pair.
		if status == model.PurchaseStatusRejected {
			p.ApprovalStatus = model.ApprovalStatusRejected
			fields["approval_status"] = model.ApprovalStatusRejected
		}
		return fields, nil
	})
}

func (s *moderationService) SetApprovalStatus(ctx context.Context, session model.AdminSession, id string, status model.ApprovalStatus) (*model.Purchase, error) {
	switch status {
	case model.ApprovalStatusPending, model.ApprovalStatusApproved, model.ApprovalStatusRejected:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.ApprovalStatus == status {
			return nil, nil
		}
		p.ApprovalStatus = status
		return map[string]interface{}{
			"approval_status": status,
		}, nil
	})
}

func (s *moderationService) ApproveShipping(ctx context.Context, session model.AdminSession, id string) (*model.Purchase, error) {
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.Status == model.PurchaseStatusShipped {
			return nil, nil
		}
		if err := s.checkTransition(p.Status, model.PurchaseStatusShipped); err != nil {
			return nil, err
		}
		now := time.Now()
		p.Status = model.PurchaseStatusShipped
		p.ShippingDetails.ShippedAt = &now
		p.ShippingApprovalStatus = model.ApprovalStatusApproved
		return map[string]interface{}{
			"status":                   model.PurchaseStatusShipped,
			"shipped_at":               now,
			"shipping_approval_status": model.ApprovalStatusApproved,
		}, nil
	})
}

func (s *moderationService) CompleteDelivery(ctx context.Context, session model.AdminSession, id string) (*model.Purchase, error) {
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.Status == model.PurchaseStatusCompleted {
			return nil, nil
		}
		if err := s.checkTransition(p.Status, model.PurchaseStatusCompleted); err != nil {
			return nil, err
		}
		now := time.Now()
		p.Status = model.PurchaseStatusCompleted
		p.ShippingDetails.DeliveryConfirmedBy = session.UID
		p.ShippingDetails.DeliveryConfirmedAt = &now
		fields := map[string]interface{}{
			"status":                model.PurchaseStatusCompleted,
			"delivery_confirmed_by": session.UID,
			"delivery_confirmed_at": now,
		}
		if p.ShippingDetails.DeliveredAt == nil {
			p.ShippingDetails.DeliveredAt = &now
			fields["delivered_at"] = now
		}
		return fields, nil
	})
}

// MarkLogisticsArranged is the one operation that does not patch the cache:
// it drops the whole enriched set so the next list re-fetches from the store.
func (s *moderationService) MarkLogisticsArranged(ctx context.Context, session model.AdminSession, id string) error {
	_, err := s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		if p.ShippingDetails.LogisticsArranged {
			return nil, nil
		}
		p.ShippingDetails.LogisticsArranged = true
		return map[string]interface{}{
			"logistics_arranged": true,
		}, nil
	})
	if err != nil {
		return err
	}
	s.txns.Invalidate()
	return nil
}

func (s *moderationService) AttachReceipt(ctx context.Context, session model.AdminSession, id, filename, url string) (*model.Purchase, error) {
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		now := time.Now()
		p.PaymentDetails.ReceiptFile = filename
		p.PaymentDetails.ReceiptPreview = url
		if p.PaymentDetails.Timestamp == nil {
			p.PaymentDetails.Timestamp = &now
		}
		return map[string]interface{}{
			"receipt_file":      filename,
			"receipt_preview":   url,
			"payment_timestamp": *p.PaymentDetails.Timestamp,
		}, nil
	})
}

func (s *moderationService) AddShippingPhotos(ctx context.Context, session model.AdminSession, id string, urls []string) (*model.Purchase, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no photos given", ErrMutation)
	}
	return s.mutate(ctx, session, id, func(p *model.Purchase) (map[string]interface{}, error) {
		p.ShippingDetails.ShippingPhotos = append(p.ShippingDetails.ShippingPhotos, urls...)
		// Map updates bypass the gorm serializer, so the column value is
		// marshaled here.
		raw, err := json.Marshal(p.ShippingDetails.ShippingPhotos)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMutation, err)
		}
		return map[string]interface{}{
			"shipping_photos": string(raw),
		}, nil
	})
}

func appendNotes(p *model.Purchase, notes string) {
	if notes == "" {
		return
	}
	if p.AdminNotes != "" {
		p.AdminNotes += "\n"
	}
	p.AdminNotes += notes
}
