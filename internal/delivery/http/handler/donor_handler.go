package handler

import (
	"encoding/json"
	"net/http"

	"medilink/internal/delivery/dto"
	"medilink/internal/usecase"
	"medilink/pkg/response"
	"medilink/pkg/validator"
)

type DonorHandler struct {
	donorUsecase usecase.DonorRegistrationUsecase
	validator    *validator.CustomValidator
}

func NewDonorHandler(donorUsecase usecase.DonorRegistrationUsecase, validator *validator.CustomValidator) *DonorHandler {
	return &DonorHandler{
		donorUsecase: donorUsecase,
		validator:    validator,
	}
}

func writeDonorError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrUnauthenticated:
		response.Unauthorized(w, "Invalid token")
	case usecase.ErrRegistrationNotFound:
		response.NotFound(w, "Donor registration not found")
	case usecase.ErrRegistrationExists:
		response.Conflict(w, "Donor registration already exists")
	default:
		response.InternalServerError(w, fallback)
	}
}

func (h *DonorHandler) decode(w http.ResponseWriter, r *http.Request) (*dto.DonorRegistrationRequest, bool) {
	var req dto.DonorRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return nil, false
	}
	return &req, true
}

func (h *DonorHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	registration, err := h.donorUsecase.Register(r.Context(), req)
	if err != nil {
		writeDonorError(w, err, "Failed to register donor")
		return
	}

	response.Success(w, http.StatusCreated, "Donor registered successfully", registration)
}

func (h *DonorHandler) GetMyRegistration(w http.ResponseWriter, r *http.Request) {
	registration, err := h.donorUsecase.GetMyRegistration(r.Context())
	if err != nil {
		writeDonorError(w, err, "Failed to get donor registration")
		return
	}

	response.Success(w, http.StatusOK, "Donor registration retrieved successfully", registration)
}

func (h *DonorHandler) UpdateMyRegistration(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	registration, err := h.donorUsecase.UpdateMyRegistration(r.Context(), req)
	if err != nil {
		writeDonorError(w, err, "Failed to update donor registration")
		return
	}

	response.Success(w, http.StatusOK, "Donor registration updated successfully", registration)
}

func (h *DonorHandler) GetAllDonors(w http.ResponseWriter, r *http.Request) {
	donors, err := h.donorUsecase.GetAllDonors(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDonorError(w, err, "Failed to get donors")
		return
	}

	response.Success(w, http.StatusOK, "Donors retrieved successfully", donors)
}
