package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/sse"
	"github.com/go-chi/httplog/v3"
)

const streamKeepalive = 30 * time.Second

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	Past(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)

	// Live feed
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type StreamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
	hub               *sse.Hub
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service, hub *sse.Hub) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
		hub:               hub,
	}
}

// Scan implements AttendanceHandler.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req attendance.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Scan decode error", "error", err)
		response.HandleError(w, attendance.NewScanError(attendance.CodeBadRequest, attendance.ErrInvalidScanRequest, nil))
		return
	}
	req.UserID = id.UserID
	req.OrganizationID = organizationOf(id)
	req.UserAgent = r.UserAgent()
	req.IPAddress = clientIP(r)
	if req.DeviceInfo.DeviceID == "" {
		req.DeviceInfo.DeviceID = r.Header.Get(HeaderDeviceID)
	}

	httplog.SetAttrs(r.Context(),
		slog.String("user_id", req.UserID),
		slog.String("organization_id", req.OrganizationID),
		slog.String("scan_type", string(req.Type)),
	)

	result, err := h.attendanceService.Scan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, result.Message, result)
}

// Past implements AttendanceHandler.
func (h *attendanceHandlerImpl) Past(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := attendance.HistoryFilter{
		Page:  getIntQueryParam(r, "page", 1),
		Limit: getIntQueryParam(r, "limit", 50),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.History(r.Context(), id.UserID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Status implements AttendanceHandler.
func (h *attendanceHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	result, err := h.attendanceService.Status(r.Context(), id.UserID, organizationOf(id))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStreamToken issues a short-lived token for EventSource clients, which cannot send headers.
func (h *attendanceHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(id)
	if err != nil {
		slog.Error("Failed to generate stream token", "error", err)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream pushes accepted scans of the caller's organization as server-sent events.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter (SSE doesn't support custom headers)
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	id, err := h.jwtService.ValidateSSEToken(r.Context(), tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if id.Role != user.RoleOrganization {
		response.HandleError(w, user.ErrAdminPrivilegeRequired)
		return
	}
	organizationID := organizationOf(id)
	if organizationID == "" {
		response.HandleError(w, organization.ErrOrganizationRequired)
		return
	}

	// Check if streaming is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(organizationID)
	defer cleanup()

	// Send initial connection event
	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"organizationId\":%q}\n\n", organizationID)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("Failed to encode stream event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
