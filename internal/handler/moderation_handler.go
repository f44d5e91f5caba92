package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sariqmarket/b2b-backend/internal/middleware"
	"github.com/sariqmarket/b2b-backend/internal/model"
	"github.com/sariqmarket/b2b-backend/internal/service"
)

type ModerationHandler struct {
	svc service.ModerationService
}

func NewModerationHandler(svc service.ModerationService) *ModerationHandler {
	return &ModerationHandler{svc: svc}
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func purchaseJSON(c echo.Context, p *model.Purchase) error {
	tx := model.EnrichedTransaction{Purchase: *p}
	return c.JSON(http.StatusOK, toTransactionResponse(&tx))
}

func (h *ModerationHandler) Approve(c echo.Context) error {
	var body notesRequest
	_ = c.Bind(&body)
	p, err := h.svc.ApprovePurchase(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), body.Notes)
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) Reject(c echo.Context) error {
	var body notesRequest
	_ = c.Bind(&body)
	p, err := h.svc.RejectPurchase(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), body.Notes)
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) SetPaymentStatus(c echo.Context) error {
	var body statusRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status is required"))
	}
	p, err := h.svc.SetPaymentStatus(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), model.PurchaseStatus(body.Status))
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) SetApprovalStatus(c echo.Context) error {
	var body statusRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid body"))
	}
	if err := c.Validate(&body); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "status is required"))
	}
	p, err := h.svc.SetApprovalStatus(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), model.ApprovalStatus(body.Status))
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) ApproveShipping(c echo.Context) error {
	p, err := h.svc.ApproveShipping(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) CompleteDelivery(c echo.Context) error {
	p, err := h.svc.CompleteDelivery(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

func (h *ModerationHandler) MarkLogisticsArranged(c echo.Context) error {
	if err := h.svc.MarkLogisticsArranged(c.Request().Context(), middleware.SessionFrom(c), c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
