package handler

import (
	"net/http"

	"lc_stat/internal/app/service"
	"lc_stat/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	reportService *service.ReportService
}

func NewStatsHandler(reportService *service.ReportService) *StatsHandler {
	return &StatsHandler{reportService: reportService}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/stats", h.stats)
	r.Get("/report", h.defaultReport)
	r.Post("/user-report", h.userReport)
}

// RegisterMeRoutes mounts the routes of the authenticated caller.
func (h *StatsHandler) RegisterMeRoutes(r chi.Router) {
	r.Get("/stats", h.myStats)
}

func (h *StatsHandler) stats(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	common.RespondWithJSON(w, http.StatusOK, h.reportService.ReportForUser(r.Context(), uid))
}

func (h *StatsHandler) defaultReport(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.reportService.DefaultReport(r.Context()))
}

func (h *StatsHandler) userReport(w http.ResponseWriter, r *http.Request) {
	var req service.UserReportRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.RespondWithDomainError(w, err)
		return
	}

	report, err := h.reportService.ReportForRequest(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, report)
}

func (h *StatsHandler) myStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := callerID(w, r)
	if !ok {
		return
	}
	common.RespondWithJSON(w, http.StatusOK, h.reportService.ReportForUser(r.Context(), uid))
}
