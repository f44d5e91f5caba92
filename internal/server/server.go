package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/sariqmarket/b2b-backend/internal/config"
	"github.com/sariqmarket/b2b-backend/internal/handler"
	appmw "github.com/sariqmarket/b2b-backend/internal/middleware"
	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/repository"
	"github.com/sariqmarket/b2b-backend/internal/service"
	"github.com/sariqmarket/b2b-backend/internal/storage"
)

type Server struct {
	e            *echo.Echo
	purchaseRepo repository.PurchaseRepository
	offerRepo    repository.OfferRepository
	userRepo     repository.UserRepository
	txnSvc       service.TransactionService
	sha          string
	build        string
}

type structValidator struct {
	v *validator.Validate
}

func (sv *structValidator) Validate(i interface{}) error {
	return sv.v.Struct(i)
}

func New(db *gorm.DB, cfg *config.Config, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &structValidator{v: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	purchaseRepo := repository.NewPurchaseRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	userRepo := repository.NewUserRepository(db)

	txnSvc := service.NewTransactionService(purchaseRepo, offerRepo, userRepo, cfg.EnrichWorkers)
	modSvc := service.NewModerationService(purchaseRepo, txnSvc, cfg.Mode(), cfg.OpTimeout)
	statsSvc := service.NewStatsService(purchaseRepo)

	txnHandler := handler.NewTransactionHandler(txnSvc)
	modHandler := handler.NewModerationHandler(modSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	requireAdmin := devSession
	if cfg.FirebaseProjectID != "" {
		authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID)
		if err != nil {
			e.Logger.Fatalf("failed to init firebase auth: %v", err)
		}
		requireAdmin = authMw.RequireAdmin
	} else {
		log.Printf("FIREBASE_PROJECT_ID not set; admin routes run with a local dev session")
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	admin := e.Group("/api/admin", requireAdmin)
	admin.GET("/transactions", txnHandler.List)
	admin.GET("/transactions/:id", txnHandler.Get)
	admin.GET("/stats", statsHandler.Summary)
	admin.POST("/purchases/:id/approve", modHandler.Approve)
	admin.POST("/purchases/:id/reject", modHandler.Reject)
	admin.PUT("/purchases/:id/payment-status", modHandler.SetPaymentStatus)
	admin.PUT("/purchases/:id/approval-status", modHandler.SetApprovalStatus)
	admin.POST("/purchases/:id/ship", modHandler.ApproveShipping)
	admin.POST("/purchases/:id/complete", modHandler.CompleteDelivery)
	admin.POST("/purchases/:id/logistics", modHandler.MarkLogisticsArranged)

	if cfg.StorageBucket != "" {
		uploader, err := storage.NewUploader(context.Background(), cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			e.Logger.Fatalf("failed to init storage: %v", err)
		}
		uploadHandler := handler.NewUploadHandler(uploader, modSvc)
		admin.POST("/purchases/:id/receipt", uploadHandler.Receipt)
		admin.POST("/purchases/:id/shipping-photos", uploadHandler.ShippingPhotos)
	} else {
		log.Printf("STORAGE_BUCKET not set; upload routes disabled")
	}

	return &Server{
		e:            e,
		purchaseRepo: purchaseRepo,
		offerRepo:    offerRepo,
		userRepo:     userRepo,
		txnSvc:       txnSvc,
		sha:          sha,
		build:        buildTime,
	}
}

// devSession stands in for Firebase verification during local development
// when no project id is configured.
func devSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		appmw.SetSession(c, model.AdminSession{UID: "dev-admin", Admin: true})
		return next(c)
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) SetDB(db *gorm.DB) {
	if s.purchaseRepo != nil {
		s.purchaseRepo.SetDB(db)
	}
	if s.offerRepo != nil {
		s.offerRepo.SetDB(db)
	}
	if s.userRepo != nil {
		s.userRepo.SetDB(db)
	}
	s.txnSvc.Invalidate()
}
