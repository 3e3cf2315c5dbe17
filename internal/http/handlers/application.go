package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"ceoacademy/internal/app"
	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
	"ceoacademy/internal/http/metrics"
	"ceoacademy/internal/http/middleware"
	"ceoacademy/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	collector    *metrics.Collector
}

func NewApplicationHandler(applications *app.ApplicationService, collector *metrics.Collector) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, collector: collector}
}

type submitRequest struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	BirthDate       string   `json:"birthDate"`
	Gender          string   `json:"gender"`
	CompanyPosition string   `json:"companyPosition"`
	Address         string   `json:"address"`
	Interests       []string `json:"interests"`
	Golf            string   `json:"golf"`
	Referrer        string   `json:"referrer"`
	TaxInvoice      string   `json:"taxInvoice"`
	Generation      int      `json:"generation"`
}

type submitResponse struct {
	Message     string         `json:"message"`
	Application summaryPayload `json:"application"`
}

type summaryPayload struct {
	ID         common.UUID        `json:"id"`
	Name       string             `json:"name"`
	Generation int                `json:"generation"`
	Status     application.Status `json:"status"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.applications.Submit(r.Context(), app.Submission{
		Name:            req.Name,
		Phone:           req.Phone,
		BirthDate:       req.BirthDate,
		Gender:          req.Gender,
		CompanyPosition: req.CompanyPosition,
		Address:         req.Address,
		Interests:       req.Interests,
		Golf:            req.Golf,
		Referrer:        req.Referrer,
		TaxInvoice:      req.TaxInvoice,
		Generation:      req.Generation,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	if h.collector != nil {
		h.collector.IncSubmissions()
	}
	response.JSON(w, http.StatusCreated, submitResponse{
		Message: "application submitted",
		Application: summaryPayload{
			ID:         created.ID,
			Name:       created.Name,
			Generation: created.Generation,
			Status:     created.Status,
		},
	})
}

type listResponse struct {
	Applications []application.Application `json:"applications"`
	Pagination   paginationPayload         `json:"pagination"`
}

type paginationPayload struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	page := intQuery(r, "page", 1)
	pageSize := intQuery(r, "pageSize", intQuery(r, "limit", app.DefaultPageSize))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = app.DefaultPageSize
	}
	if pageSize > app.MaxPageSize {
		pageSize = app.MaxPageSize
	}

	items, total, err := h.applications.List(r.Context(), filter, page, pageSize)
	if err != nil {
		response.Error(w, err)
		return
	}
	totalPages := (total + pageSize - 1) / pageSize
	response.JSON(w, http.StatusOK, listResponse{
		Applications: items,
		Pagination: paginationPayload{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	record, err := h.applications.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, record)
}

type updateStatusRequest struct {
	Status     string  `json:"status"`
	AdminNotes *string `json:"adminNotes"`
	ReviewedBy string  `json:"reviewedBy"`
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"status": "status is required"}))
		return
	}

	reviewerID, err := reviewerFromRequest(r, req.ReviewedBy)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.UpdateStatus(r.Context(), id, application.Status(req.Status), req.AdminNotes, reviewerID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"message":     "application status updated",
		"application": updated,
	})
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "application deleted"})
}

// reviewerFromRequest prefers the explicit reviewedBy field and falls back to
// the authenticated admin.
func reviewerFromRequest(r *http.Request, explicit string) (*common.UUID, error) {
	if value := strings.TrimSpace(explicit); value != "" {
		parsed, err := common.ParseUUID(value)
		if err != nil {
			return nil, common.NewValidationError("invalid request", map[string]string{"reviewedBy": "invalid uuid"})
		}
		return &parsed, nil
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		return &userID, nil
	}
	return nil, nil
}

func idFromRequest(r *http.Request) (common.UUID, error) {
	id, err := common.ParseUUID(mux.Vars(r)["id"])
	if err != nil {
		return "", common.NewValidationError("invalid request", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

func filterFromQuery(r *http.Request) (application.ListFilter, error) {
	var filter application.ListFilter
	if value := strings.TrimSpace(r.URL.Query().Get("status")); value != "" && !strings.EqualFold(value, "all") {
		status := application.NormalizeStatus(application.Status(value))
		if !application.IsKnownStatus(status) {
			return filter, common.NewValidationError("invalid request", map[string]string{"status": "unknown status"})
		}
		filter.Status = &status
	}
	if value := strings.TrimSpace(r.URL.Query().Get("generation")); value != "" && !strings.EqualFold(value, "all") {
		generation, err := strconv.Atoi(value)
		if err != nil || generation < 1 {
			return filter, common.NewValidationError("invalid request", map[string]string{"generation": "must be a positive integer"})
		}
		filter.Generation = &generation
	}
	return filter, nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
