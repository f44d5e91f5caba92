package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/service"
)

type TransactionHandler struct {
	svc service.TransactionService
}

func NewTransactionHandler(svc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

type PaymentDetailsResponse struct {
	TransactionID  string  `json:"transactionId,omitempty"`
	ReceiptFile    string  `json:"receiptFile,omitempty"`
	ReceiptPreview string  `json:"receiptPreview,omitempty"`
	Timestamp      *string `json:"timestamp,omitempty"`
}

type ShippingDetailsResponse struct {
	ShippedAt           *string  `json:"shippedAt,omitempty"`
	ShippingPhoto       string   `json:"shippingPhoto,omitempty"`
	ShippingPhotos      []string `json:"shippingPhotos,omitempty"`
	TrackingNumber      string   `json:"trackingNumber,omitempty"`
	ShippingNotes       string   `json:"shippingNotes,omitempty"`
	LogisticsArranged   bool     `json:"logisticsArranged"`
	DeliveredAt         *string  `json:"deliveredAt,omitempty"`
	DeliveryConfirmedBy string   `json:"deliveryConfirmedBy,omitempty"`
	DeliveryConfirmedAt *string  `json:"deliveryConfirmedAt,omitempty"`
}

type OfferResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Images   []string `json:"images,omitempty"`
	Location string   `json:"location,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Company string `json:"company,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type TransactionResponse struct {
	ID                     string                  `json:"id"`
	OfferID                string                  `json:"offerId"`
	BuyerID                string                  `json:"buyerId"`
	SellerID               string                  `json:"sellerId"`
	Quantity               int                     `json:"quantity"`
	UnitPrice              string                  `json:"unitPrice"`
	PlatformFee            string                  `json:"platformFee"`
	FinalAmount            string                  `json:"finalAmount"`
	Status                 string                  `json:"status"`
	ProgressStep           int                     `json:"progressStep"`
	ApprovalStatus         string                  `json:"approvalStatus,omitempty"`
	PaymentApprovalStatus  string                  `json:"paymentApprovalStatus,omitempty"`
	ShippingApprovalStatus string                  `json:"shippingApprovalStatus,omitempty"`
	PaymentMethod          string                  `json:"paymentMethod,omitempty"`
	PaymentDetails         PaymentDetailsResponse  `json:"paymentDetails"`
	ShippingDetails        ShippingDetailsResponse `json:"shippingDetails"`
	AdminNotes             string                  `json:"adminNotes,omitempty"`
	PurchaseDate           string                  `json:"purchaseDate"`
	Version                int64                   `json:"version"`
	Offer                  *OfferResponse          `json:"offer,omitempty"`
	Buyer                  *UserResponse           `json:"buyer,omitempty"`
	Seller                 *UserResponse           `json:"seller,omitempty"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	val := t.Format(time.RFC3339)
	return &val
}

func toTransactionResponse(tx *model.EnrichedTransaction) TransactionResponse {
	p := tx.Purchase
	resp := TransactionResponse{
		ID:                     p.ID,
		OfferID:                p.OfferID,
		BuyerID:                p.BuyerID,
		SellerID:               p.SellerID,
		Quantity:               p.Quantity,
		UnitPrice:              p.UnitPrice.StringFixed(2),
		PlatformFee:            p.PlatformFee.StringFixed(2),
		FinalAmount:            p.FinalAmount.StringFixed(2),
		Status:                 string(p.Status),
		ProgressStep:           model.StepFor(p.Status),
		ApprovalStatus:         string(p.ApprovalStatus),
		PaymentApprovalStatus:  string(p.PaymentApprovalStatus),
		ShippingApprovalStatus: string(p.ShippingApprovalStatus),
		PaymentMethod:          string(p.PaymentMethod),
		PaymentDetails: PaymentDetailsResponse{
			TransactionID:  p.PaymentDetails.TransactionID,
			ReceiptFile:    p.PaymentDetails.ReceiptFile,
			ReceiptPreview: p.PaymentDetails.ReceiptPreview,
			Timestamp:      formatTime(p.PaymentDetails.Timestamp),
		},
		ShippingDetails: ShippingDetailsResponse{
			ShippedAt:           formatTime(p.ShippingDetails.ShippedAt),
			ShippingPhoto:       p.ShippingDetails.ShippingPhoto,
			ShippingPhotos:      p.ShippingDetails.ShippingPhotos,
			TrackingNumber:      p.ShippingDetails.TrackingNumber,
			ShippingNotes:       p.ShippingDetails.ShippingNotes,
			LogisticsArranged:   p.ShippingDetails.LogisticsArranged,
			DeliveredAt:         formatTime(p.ShippingDetails.DeliveredAt),
			DeliveryConfirmedBy: p.ShippingDetails.DeliveryConfirmedBy,
			DeliveryConfirmedAt: formatTime(p.ShippingDetails.DeliveryConfirmedAt),
		},
		AdminNotes:   p.AdminNotes,
		PurchaseDate: p.PurchaseDate.Format(time.RFC3339),
		Version:      p.Version,
	}
	if tx.Offer != nil {
		resp.Offer = &OfferResponse{
			ID:       tx.Offer.ID,
			Title:    tx.Offer.Title,
			Images:   tx.Offer.Images,
			Location: tx.Offer.Location,
			Unit:     tx.Offer.Unit,
		}
	}
	if tx.Buyer != nil {
		resp.Buyer = &UserResponse{
			ID:      tx.Buyer.ID,
			Company: tx.Buyer.Company,
			Email:   tx.Buyer.Email,
			Phone:   tx.Buyer.Phone,
		}
	}
	if tx.Seller != nil {
		resp.Seller = &UserResponse{
			ID:      tx.Seller.ID,
			Company: tx.Seller.Company,
			Email:   tx.Seller.Email,
			Phone:   tx.Seller.Phone,
		}
	}
	return resp
}

func (h *TransactionHandler) List(c echo.Context) error {
	q := service.ListQuery{
		Search:         c.QueryParam("search"),
		PaymentStatus:  c.QueryParam("status"),
		ApprovalStatus: c.QueryParam("approval"),
		SortBy:         service.SortField(c.QueryParam("sortBy")),
		SortOrder:      service.SortOrder(c.QueryParam("sortOrder")),
	}
	switch q.SortBy {
	case "", service.SortByAmount, service.SortByTransactionDate, service.SortByPaymentDate:
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown sortBy"))
	}
	switch q.SortOrder {
	case "", service.SortAsc, service.SortDesc:
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "unknown sortOrder"))
	}
	list, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return serviceError(c, err)
	}
	resp := make([]TransactionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toTransactionResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TransactionHandler) Get(c echo.Context) error {
	tx, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}
