package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/handler/http/response"
)

type QRCodeHandler interface {
	Issue(w http.ResponseWriter, r *http.Request)
	GetActive(w http.ResponseWriter, r *http.Request)
}

type qrcodeHandlerImpl struct {
	qrcodeService qrcode.QRCodeService
}

func NewQRCodeHandler(qrcodeService qrcode.QRCodeService) QRCodeHandler {
	return &qrcodeHandlerImpl{qrcodeService: qrcodeService}
}

// Issue implements QRCodeHandler.
func (h *qrcodeHandlerImpl) Issue(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req qrcode.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Issue QR code decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.qrcodeService.Issue(r.Context(), organizationOf(id), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "QR code generated successfully", result)
}

// GetActive implements QRCodeHandler.
func (h *qrcodeHandlerImpl) GetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	qrType := qrcode.Type(r.URL.Query().Get("type"))
	if qrType == "" {
		qrType = qrcode.TypeCheckIn
	}
	if !qrType.IsValid() {
		response.HandleError(w, qrcode.ErrInvalidQRCodeType)
		return
	}

	result, err := h.qrcodeService.GetActive(r.Context(), organizationOf(id), qrType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
