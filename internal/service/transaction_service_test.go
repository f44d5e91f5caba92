package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sariqmarket/b2b-backend/internal/model"
)

func fixedTime(hoursAgo int) time.Time {
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return base.Add(-time.Duration(hoursAgo) * time.Hour)
}

func testPurchases() []model.Purchase {
	paidAt := fixedTime(10)
	return []model.Purchase{
		{
			ID:           "P1",
			OfferID:      "offer-1",
			BuyerID:      "buyer-1",
			SellerID:     "seller-1",
			Status:       model.PurchaseStatusPending,
			FinalAmount:  decimal.NewFromInt(100),
			PurchaseDate: fixedTime(48),
		},
		{
			ID:             "P2",
			OfferID:        "offer-2",
			BuyerID:        "buyer-2",
			SellerID:       "seller-1",
			Status:         model.PurchaseStatusApproved,
			ApprovalStatus: model.ApprovalStatusApproved,
			FinalAmount:    decimal.NewFromInt(300),
			PurchaseDate:   fixedTime(24),
			PaymentDetails: model.PaymentDetails{
				TransactionID: "TXN-777",
				Timestamp:     &paidAt,
			},
		},
		{
			ID:           "P3",
			OfferID:      "offer-missing",
			BuyerID:      "buyer-missing",
			SellerID:     "seller-missing",
			Status:       model.PurchaseStatusCompleted,
			FinalAmount:  decimal.NewFromInt(200),
			PurchaseDate: fixedTime(12),
		},
	}
}

func newTestTransactionService(purchases ...model.Purchase) (*transactionService, *fakePurchaseRepo) {
	repo := newFakePurchaseRepo(purchases...)
	offers := &fakeOfferRepo{offers: map[string]*model.Offer{
		"offer-1": {ID: "offer-1", Title: "Bug'doy, oliy nav", Location: "Farg'ona", Unit: "tonna"},
		"offer-2": {ID: "offer-2", Title: "Paxta tolasi", Location: "Navoiy", Unit: "kg"},
	}}
	users := &fakeUserRepo{users: map[string]*model.AuthUser{
		"buyer-1":  {ID: "buyer-1", Company: "Qo'qon Agro Savdo"},
		"buyer-2":  {ID: "buyer-2", Company: "Andijon Textile Group"},
		"seller-1": {ID: "seller-1", Company: "Sariq Don Mahsulotlari"},
	}}
	svc := NewTransactionService(repo, offers, users, 4).(*transactionService)
	return svc, repo
}

func TestEnrichKeepsEveryRecord(t *testing.T) {
	svc, _ := newTestTransactionService()
	purchases := testPurchases()

	enriched := svc.Enrich(context.Background(), purchases)

	require.Len(t, enriched, len(purchases))
	for i := range purchases {
		assert.Equal(t, purchases[i].ID, enriched[i].Purchase.ID, "input order preserved")
	}

	assert.NotNil(t, enriched[0].Offer)
	assert.Equal(t, "Bug'doy, oliy nav", enriched[0].Offer.Title)
	assert.NotNil(t, enriched[0].Buyer)
	assert.NotNil(t, enriched[0].Seller)

	// Unresolvable references stay nil without failing the batch.
	assert.Nil(t, enriched[2].Offer)
	assert.Nil(t, enriched[2].Buyer)
	assert.Nil(t, enriched[2].Seller)

	// buyer-2 resolves even though seller-missing on P3 does not.
	assert.NotNil(t, enriched[1].Buyer)
}

func TestFilterAndSortSearch(t *testing.T) {
	svc, _ := newTestTransactionService()
	enriched := svc.Enrich(context.Background(), testPurchases())

	// Purchase id matches even when no company or title contains it.
	got := FilterAndSort(enriched, ListQuery{Search: "P1"})
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].Purchase.ID)

	// Case-insensitive match on payment transaction id.
	got = FilterAndSort(enriched, ListQuery{Search: "txn-777"})
	require.Len(t, got, 1)
	assert.Equal(t, "P2", got[0].Purchase.ID)

	// Buyer company name.
	got = FilterAndSort(enriched, ListQuery{Search: "andijon"})
	require.Len(t, got, 1)
	assert.Equal(t, "P2", got[0].Purchase.ID)

	got = FilterAndSort(enriched, ListQuery{Search: "no-such-thing"})
	assert.Empty(t, got)
}

func TestFilterAndSortStatusFilters(t *testing.T) {
	svc, _ := newTestTransactionService()
	enriched := svc.Enrich(context.Background(), testPurchases())

	got := FilterAndSort(enriched, ListQuery{PaymentStatus: "pending"})
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0].Purchase.ID)

	// The approval filter compares the approval annotation, not the
	// workflow status.
	got = FilterAndSort(enriched, ListQuery{ApprovalStatus: "approved"})
	require.Len(t, got, 1)
	assert.Equal(t, "P2", got[0].Purchase.ID)

	got = FilterAndSort(enriched, ListQuery{PaymentStatus: FilterAll, ApprovalStatus: FilterAll})
	assert.Len(t, got, 3)
}

func TestFilterAndSortOrdering(t *testing.T) {
	svc, _ := newTestTransactionService()
	enriched := svc.Enrich(context.Background(), testPurchases())

	got := FilterAndSort(enriched, ListQuery{SortBy: SortByAmount, SortOrder: SortAsc})
	require.Len(t, got, 3)
	assert.Equal(t, "P1", got[0].Purchase.ID)
	assert.Equal(t, "P3", got[1].Purchase.ID)
	assert.Equal(t, "P2", got[2].Purchase.ID)

	got = FilterAndSort(enriched, ListQuery{SortBy: SortByAmount, SortOrder: SortDesc})
	assert.Equal(t, "P2", got[0].Purchase.ID)

	// Default sort is by purchase date ascending.
	got = FilterAndSort(enriched, ListQuery{})
	assert.Equal(t, "P1", got[0].Purchase.ID)
	assert.Equal(t, "P2", got[1].Purchase.ID)
	assert.Equal(t, "P3", got[2].Purchase.ID)

	// Purchases without a payment timestamp sort as the earliest possible
	// payment date.
	got = FilterAndSort(enriched, ListQuery{SortBy: SortByPaymentDate, SortOrder: SortAsc})
	assert.NotEqual(t, "P2", got[0].Purchase.ID)
	assert.Equal(t, "P2", got[2].Purchase.ID)
}

func TestFilterAndSortIdempotent(t *testing.T) {
	svc, _ := newTestTransactionService()
	enriched := svc.Enrich(context.Background(), testPurchases())

	q := ListQuery{Search: "sariq", SortBy: SortByAmount, SortOrder: SortDesc}
	once := FilterAndSort(enriched, q)
	twice := FilterAndSort(once, q)
	require.Equal(t, len(once), len(twice))
	for i := range once {
		assert.Equal(t, once[i].Purchase.ID, twice[i].Purchase.ID)
	}
}

func TestSortStateToggle(t *testing.T) {
	s := SortState{Field: SortByTransactionDate, Order: SortDesc}

	s = s.Toggle(SortByAmount)
	assert.Equal(t, SortByAmount, s.Field)
	assert.Equal(t, SortAsc, s.Order, "new field resets to ascending")

	s = s.Toggle(SortByAmount)
	assert.Equal(t, SortDesc, s.Order, "same field flips direction")

	s = s.Toggle(SortByAmount)
	assert.Equal(t, SortAsc, s.Order)
}

func TestListCachesUntilInvalidated(t *testing.T) {
	svc, repo := newTestTransactionService(testPurchases()...)
	ctx := context.Background()

	_, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second list served from cache")

	svc.Invalidate()
	_, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls, "invalidate forces a re-fetch")
}

func TestConcurrentListsLoadOnce(t *testing.T) {
	svc, repo := newTestTransactionService(testPurchases()...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := svc.List(ctx, ListQuery{})
			assert.NoError(t, err)
			assert.Len(t, list, 3)
		}()
	}
	wg.Wait()

	repo.mu.Lock()
	calls := repo.listCalls
	repo.mu.Unlock()
	assert.Equal(t, 1, calls, "concurrent first lists share a single fetch")
}
