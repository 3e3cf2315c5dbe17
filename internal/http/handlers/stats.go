package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"ceoacademy/internal/app"
	"ceoacademy/internal/common"
	"ceoacademy/internal/http/response"
)

type StatsHandler struct {
	stats *app.StatsService
}

func NewStatsHandler(stats *app.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	var generation *int
	if value := strings.TrimSpace(r.URL.Query().Get("generation")); value != "" && !strings.EqualFold(value, "all") {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			response.Error(w, common.NewValidationError("invalid request", map[string]string{"generation": "must be a positive integer"}))
			return
		}
		generation = &parsed
	}
	summary, err := h.stats.Summary(r.Context(), generation)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}
