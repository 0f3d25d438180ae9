package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/device"
	"github.com/cmlabs-hris/qr-attendance-go/internal/handler/http/response"
)

type DeviceHandler interface {
	SubmitChangeRequest(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
	ResolveChangeRequest(w http.ResponseWriter, r *http.Request)
}

type deviceHandlerImpl struct {
	deviceService device.DeviceService
}

func NewDeviceHandler(deviceService device.DeviceService) DeviceHandler {
	return &deviceHandlerImpl{deviceService: deviceService}
}

// SubmitChangeRequest implements DeviceHandler.
func (h *deviceHandlerImpl) SubmitChangeRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req device.SubmitChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Device change request decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.deviceService.SubmitRequest(r.Context(), id.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Device change request submitted", result)
}

// ListPending implements DeviceHandler.
func (h *deviceHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.deviceService.ListPending(r.Context(), organizationOf(id))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ResolveChangeRequest implements DeviceHandler.
func (h *deviceHandlerImpl) ResolveChangeRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req device.ResolveChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Resolve device change decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.deviceService.ResolveRequest(r.Context(), id.UserID, organizationOf(id), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Device change request "+string(result.Status), result)
}
