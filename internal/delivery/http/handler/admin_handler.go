package handler

import (
	"encoding/json"
	"net/http"

	"medilink/internal/delivery/dto"
	"medilink/internal/usecase"
	"medilink/pkg/response"
	"medilink/pkg/validator"
)

// AdminHandler serves the admin dashboard and blood request broadcasts.
type AdminHandler struct {
	dashboardUsecase    usecase.DashboardUsecase
	bloodRequestUsecase usecase.BloodRequestUsecase
	validator           *validator.CustomValidator
}

func NewAdminHandler(dashboardUsecase usecase.DashboardUsecase, bloodRequestUsecase usecase.BloodRequestUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		dashboardUsecase:    dashboardUsecase,
		bloodRequestUsecase: bloodRequestUsecase,
		validator:           validator,
	}
}

func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardUsecase.GetDashboard(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (h *AdminHandler) CreateBloodRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBloodRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	request, err := h.bloodRequestUsecase.CreateBloodRequest(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrUnauthenticated:
			response.Unauthorized(w, "Invalid token")
		default:
			response.InternalServerError(w, "Failed to create blood request")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Blood request created successfully", request)
}

func (h *AdminHandler) GetAllBloodRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.bloodRequestUsecase.GetAllBloodRequests(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get blood requests")
		return
	}

	response.Success(w, http.StatusOK, "Blood requests retrieved successfully", requests)
}
