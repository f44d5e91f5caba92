package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/sariqmarket/b2b-backend/internal/config"
	"github.com/sariqmarket/b2b-backend/internal/db"
	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	purchaseRepo := repository.NewPurchaseRepository(gdb)
	offerRepo := repository.NewOfferRepository(gdb)
	userRepo := repository.NewUserRepository(gdb)

	if os.Getenv("FORCE_SEED") != "true" {
		existing, err := purchaseRepo.ListAll(ctx)
		if err != nil {
			return fmt.Errorf("check existing purchases: %w", err)
		}
		if len(existing) > 0 {
			log.Printf("purchases already present (%d); skipping seed", len(existing))
			return nil
		}
	}

	users := []model.AuthUser{
		{ID: "buyer-qoqon", Company: "Qo'qon Agro Savdo", Email: "orders@qoqonagro.uz", Phone: "+998901112233"},
		{ID: "buyer-andijon", Company: "Andijon Textile Group", Email: "procurement@atg.uz", Phone: "+998935557788"},
		{ID: "seller-sariq", Company: "Sariq Don Mahsulotlari", Email: "sales@sariqdon.uz", Phone: "+998712223344"},
		{ID: "seller-navoi", Company: "Navoi Paxta Export", Email: "export@navoipaxta.uz", Phone: "+998793334455"},
		{ID: "admin-root", Company: "Sariq Market", Email: "admin@sariqmarket.uz", IsAdmin: true},
	}
	for i := range users {
		if err := userRepo.Upsert(ctx, &users[i]); err != nil {
			return fmt.Errorf("upsert user %s: %w", users[i].ID, err)
		}
	}

	offers := []model.Offer{
		{
			ID:           "offer-wheat-1",
			SellerID:     "seller-sariq",
			Title:        "Bug'doy, oliy nav",
			Images:       []string{"https://storage.googleapis.com/sariq-market/offers/wheat-1.jpg"},
			Location:     "Farg'ona",
			Unit:         "tonna",
			PricePerUnit: decimal.NewFromInt(2100),
		},
		{
			ID:           "offer-cotton-1",
			SellerID:     "seller-navoi",
			Title:        "Paxta tolasi, 1-sort",
			Images:       []string{"https://storage.googleapis.com/sariq-market/offers/cotton-1.jpg"},
			Location:     "Navoiy",
			Unit:         "kg",
			PricePerUnit: decimal.NewFromFloat(1.85),
		},
	}
	for i := range offers {
		if err := offerRepo.Create(ctx, &offers[i]); err != nil {
			return fmt.Errorf("create offer %s: %w", offers[i].ID, err)
		}
	}

	now := time.Now()
	paid := now.Add(-36 * time.Hour)
	shipped := now.Add(-24 * time.Hour)
	purchases := []model.Purchase{
		{
			ID:            uuid.NewString(),
			OfferID:       "offer-wheat-1",
			BuyerID:       "buyer-qoqon",
			SellerID:      "seller-sariq",
			Quantity:      40,
			UnitPrice:     decimal.NewFromInt(2100),
			PlatformFee:   decimal.NewFromInt(840),
			FinalAmount:   decimal.NewFromInt(84840),
			Status:        model.PurchaseStatusPending,
			PaymentMethod: model.PaymentMethodBankTransfer,
			PaymentDetails: model.PaymentDetails{
				TransactionID: "BT-20260829-0041",
				ReceiptFile:   "receipt-0041.pdf",
				Timestamp:     &paid,
			},
			PurchaseDate: now.Add(-48 * time.Hour),
		},
		{
			ID:                    uuid.NewString(),
			OfferID:               "offer-cotton-1",
			BuyerID:               "buyer-andijon",
			SellerID:              "seller-navoi",
			Quantity:              15000,
			UnitPrice:             decimal.NewFromFloat(1.85),
			PlatformFee:           decimal.NewFromFloat(277.50),
			FinalAmount:           decimal.NewFromFloat(28027.50),
			Status:                model.PurchaseStatusShipped,
			ApprovalStatus:        model.ApprovalStatusApproved,
			PaymentApprovalStatus: model.ApprovalStatusApproved,
			PaymentMethod:         model.PaymentMethodPayme,
			PaymentDetails: model.PaymentDetails{
				TransactionID: "PM-20260827-1188",
				Timestamp:     &paid,
			},
			ShippingDetails: model.ShippingDetails{
				ShippedAt:      &shipped,
				TrackingNumber: "UZ883200471",
			},
			PurchaseDate: now.Add(-96 * time.Hour),
		},
	}
	for i := range purchases {
		if err := purchaseRepo.Create(ctx, &purchases[i]); err != nil {
			return fmt.Errorf("create purchase %s: %w", purchases[i].ID, err)
		}
	}

	log.Printf("seeded %d users, %d offers, %d purchases", len(users), len(offers), len(purchases))
	return nil
}
