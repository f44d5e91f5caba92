package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sariqmarket/b2b-backend/internal/middleware"
	"github.com/sariqmarket/b2b-backend/internal/service"
	"github.com/sariqmarket/b2b-backend/internal/storage"
)

type UploadHandler struct {
	uploader *storage.Uploader
	svc      service.ModerationService
}

func NewUploadHandler(uploader *storage.Uploader, svc service.ModerationService) *UploadHandler {
	return &UploadHandler{uploader: uploader, svc: svc}
}

func (h *UploadHandler) upload(c echo.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return h.uploader.Upload(c.Request().Context(), prefix, fh.Filename, contentType, src)
}

// Receipt stores one payment receipt (image or pdf) and records its URL on
// the purchase.
func (h *UploadHandler) Receipt(c echo.Context) error {
	fh, err := c.FormFile("receipt")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "receipt file is required"))
	}
	url, err := h.upload(c, "receipts", fh)
	if err != nil {
		return c.JSON(http.StatusBadGateway, NewErrorResponse("upload_failed", err.Error()))
	}
	p, err := h.svc.AttachReceipt(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), fh.Filename, url)
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}

// ShippingPhotos stores the uploaded photos in order and appends their URLs
// to the purchase's shipping details.
func (h *UploadHandler) ShippingPhotos(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "multipart form is required"))
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "at least one photo is required"))
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.upload(c, "shipping", fh)
		if err != nil {
			return c.JSON(http.StatusBadGateway, NewErrorResponse("upload_failed", err.Error()))
		}
		urls = append(urls, url)
	}
	p, err := h.svc.AddShippingPhotos(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), urls)
	if err != nil {
		return serviceError(c, err)
	}
	return purchaseJSON(c, p)
}
