package http

import (
	"net/http"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/qr-attendance-go/internal/handler/http/response"
)

type ReportHandler interface {
	Daily(w http.ResponseWriter, r *http.Request)
	Weekly(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

// Daily implements ReportHandler.
func (h *reportHandlerImpl) Daily(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	req := report.DailyReportRequest{Date: r.URL.Query().Get("date")}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Daily(r.Context(), organizationOf(id), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Weekly implements ReportHandler.
func (h *reportHandlerImpl) Weekly(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	req := report.WeeklyReportRequest{WeekStart: r.URL.Query().Get("weekStart")}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.reportService.Weekly(r.Context(), organizationOf(id), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
