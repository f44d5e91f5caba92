package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
)

const FilterAll = "all"

type SortField string

const (
	SortByAmount          SortField = "amount"
	SortByTransactionDate SortField = "transactionDate"
	SortByPaymentDate     SortField = "paymentDate"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortState tracks which column the admin table is ordered by. Selecting the
// active column flips the direction; selecting another column resets to
// ascending.
type SortState struct {
	Field SortField
	Order SortOrder
}

func DefaultSortState() SortState {
	return SortState{Field: SortByTransactionDate, Order: SortAsc}
}

func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Order == SortAsc {
			return SortState{Field: field, Order: SortDesc}
		}
		return SortState{Field: field, Order: SortAsc}
	}
	return SortState{Field: field, Order: SortAsc}
}

type ListQuery struct {
	Search         string
	PaymentStatus  string
	ApprovalStatus string
	SortBy         SortField
	SortOrder      SortOrder
}

type TransactionService interface {
	// List returns the enriched, filtered and sorted admin view. The
	// enriched set is cached per service instance until invalidated.
	List(ctx context.Context, q ListQuery) ([]model.EnrichedTransaction, error)
	Get(ctx context.Context, id string) (*model.EnrichedTransaction, error)
	Enrich(ctx context.Context, purchases []model.Purchase) []model.EnrichedTransaction
	// Patch updates the cached copy of one purchase in place after a
	// confirmed write, avoiding a full re-fetch.
	Patch(id string, apply func(p *model.Purchase)) bool
	Invalidate()
}

type transactionService struct {
	purchaseRepo repository.PurchaseRepository
	offerRepo    repository.OfferRepository
	userRepo     repository.UserRepository

	workers int

	// loadMu serializes cache fills so concurrent first lists trigger a
	// single fetch; mu guards the cache itself.
	loadMu sync.Mutex
	mu     sync.Mutex
	cache  []model.EnrichedTransaction
	loaded bool
}

func NewTransactionService(purchaseRepo repository.PurchaseRepository, offerRepo repository.OfferRepository, userRepo repository.UserRepository, workers int) TransactionService {
	if workers <= 0 {
		workers = 8
	}
	return &transactionService{
		purchaseRepo: purchaseRepo,
		offerRepo:    offerRepo,
		userRepo:     userRepo,
		workers:      workers,
	}
}

func (s *transactionService) List(ctx context.Context, q ListQuery) ([]model.EnrichedTransaction, error) {
	if snapshot, ok := s.snapshot(); ok {
		return FilterAndSort(snapshot, q), nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	// Another list may have filled the cache while we waited.
	if snapshot, ok := s.snapshot(); ok {
		return FilterAndSort(snapshot, q), nil
	}

	purchases, err := s.purchaseRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	enriched := s.Enrich(ctx, purchases)

	s.mu.Lock()
	s.cache = enriched
	s.loaded = true
	snapshot := make([]model.EnrichedTransaction, len(s.cache))
	copy(snapshot, s.cache)
	s.mu.Unlock()

	return FilterAndSort(snapshot, q), nil
}

func (s *transactionService) snapshot() ([]model.EnrichedTransaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false
	}
	snapshot := make([]model.EnrichedTransaction, len(s.cache))
	copy(snapshot, s.cache)
	return snapshot, true
}

func (s *transactionService) Get(ctx context.Context, id string) (*model.EnrichedTransaction, error) {
	p, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	enriched := s.Enrich(ctx, []model.Purchase{*p})
	return &enriched[0], nil
}

// Enrich resolves the offer, buyer and seller of every purchase. Lookups run
// through a bounded worker pool; a miss or lookup error leaves the reference
// nil and never fails the batch, so the output always has one row per input
// purchase, in input order.
func (s *transactionService) Enrich(ctx context.Context, purchases []model.Purchase) []model.EnrichedTransaction {
	out := make([]model.EnrichedTransaction, len(purchases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range purchases {
		i := i
		out[i].Purchase = purchases[i]
		g.Go(func() error {
			if offer, err := s.offerRepo.FindByID(gctx, purchases[i].OfferID); err == nil {
				out[i].Offer = offer
			}
			return nil
		})
		g.Go(func() error {
			if buyer, err := s.userRepo.FindByID(gctx, purchases[i].BuyerID); err == nil {
				out[i].Buyer = buyer
			}
			return nil
		})
		g.Go(func() error {
			if seller, err := s.userRepo.FindByID(gctx, purchases[i].SellerID); err == nil {
				out[i].Seller = seller
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *transactionService) Patch(id string, apply func(p *model.Purchase)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false
	}
	for i := range s.cache {
		if s.cache[i].Purchase.ID == id {
			apply(&s.cache[i].Purchase)
			return true
		}
	}
	return false
}

func (s *transactionService) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

// FilterAndSort narrows the enriched set by free-text search and status
// filters, then orders it. It never mutates its input and re-applying it
// with the same query yields the same result.
func FilterAndSort(list []model.EnrichedTransaction, q ListQuery) []model.EnrichedTransaction {
	out := make([]model.EnrichedTransaction, 0, len(list))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, tx := range list {
		if needle != "" && !matchesSearch(tx, needle) {
			continue
		}
		if q.PaymentStatus != "" && q.PaymentStatus != FilterAll &&
			string(tx.Purchase.Status) != q.PaymentStatus {
			continue
		}
		if q.ApprovalStatus != "" && q.ApprovalStatus != FilterAll &&
			string(tx.Purchase.ApprovalStatus) != q.ApprovalStatus {
			continue
		}
		out = append(out, tx)
	}

	field := q.SortBy
	if field == "" {
		field = SortByTransactionDate
	}
	desc := q.SortOrder == SortDesc
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return lessBy(field, &out[j], &out[i])
		}
		return lessBy(field, &out[i], &out[j])
	})
	return out
}

func matchesSearch(tx model.EnrichedTransaction, needle string) bool {
	fields := []string{
		tx.Purchase.ID,
		tx.Purchase.OfferID,
		tx.Purchase.PaymentDetails.TransactionID,
	}
	if tx.Offer != nil {
		fields = append(fields, tx.Offer.Title)
	}
	if tx.Buyer != nil {
		fields = append(fields, tx.Buyer.Company)
	}
	if tx.Seller != nil {
		fields = append(fields, tx.Seller.Company)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func lessBy(field SortField, a, b *model.EnrichedTransaction) bool {
	switch field {
	case SortByAmount:
		return a.Purchase.FinalAmount.LessThan(b.Purchase.FinalAmount)
	case SortByPaymentDate:
		return paymentTime(a).Before(paymentTime(b))
	default:
		return a.Purchase.PurchaseDate.Before(b.Purchase.PurchaseDate)
	}
}

// paymentTime falls back to the zero time when no payment was recorded, so
// unpaid purchases sort first in ascending order.
func paymentTime(tx *model.EnrichedTransaction) time.Time {
	if ts := tx.Purchase.PaymentDetails.Timestamp; ts != nil {
		return *ts
	}
	return time.Time{}
}
