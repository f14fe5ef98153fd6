package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"medilink/internal/delivery/dto"
	"medilink/internal/ledger"
	"medilink/internal/usecase"
	"medilink/pkg/response"
	"medilink/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DirectoryHandler serves hospitals, doctors and the combined search.
type DirectoryHandler struct {
	hospitalUsecase  usecase.HospitalUsecase
	doctorUsecase    usecase.DoctorUsecase
	directoryUsecase usecase.DirectoryUsecase
	validator        *validator.CustomValidator
}

func NewDirectoryHandler(
	hospitalUsecase usecase.HospitalUsecase,
	doctorUsecase usecase.DoctorUsecase,
	directoryUsecase usecase.DirectoryUsecase,
	validator *validator.CustomValidator,
) *DirectoryHandler {
	return &DirectoryHandler{
		hospitalUsecase:  hospitalUsecase,
		doctorUsecase:    doctorUsecase,
		directoryUsecase: directoryUsecase,
		validator:        validator,
	}
}

func writeDirectoryError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Invalid token")
	case errors.Is(err, usecase.ErrHospitalNotFound):
		response.NotFound(w, "Hospital not found")
	case errors.Is(err, usecase.ErrDoctorNotFound):
		response.NotFound(w, "Doctor not found")
	case errors.Is(err, usecase.ErrHospitalEmailExists):
		response.Conflict(w, "Hospital email already exists")
	case errors.Is(err, usecase.ErrHospitalInUse), errors.Is(err, usecase.ErrDoctorInUse):
		response.Conflict(w, err.Error())
	case errors.Is(err, ledger.ErrLedgerUnavailable):
		response.BadGateway(w, "Ledger registration failed")
	default:
		response.InternalServerError(w, fallback)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func directoryQuery(r *http.Request) *dto.DirectoryQuery {
	q := r.URL.Query()
	return &dto.DirectoryQuery{
		Name:           q.Get("name"),
		Specialization: q.Get("specialization"),
	}
}

func (h *DirectoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.directoryUsecase.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		response.InternalServerError(w, "Failed to search directory")
		return
	}

	response.Success(w, http.StatusOK, "Search completed", res)
}

// Hospitals

func (h *DirectoryHandler) decodeHospital(w http.ResponseWriter, r *http.Request) (*dto.HospitalRequest, bool) {
	var req dto.HospitalRequest
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

func (h *DirectoryHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeHospital(w, r)
	if !ok {
		return
	}

	hospital, err := h.hospitalUsecase.CreateHospital(r.Context(), req)
	if err != nil {
		writeDirectoryError(w, err, "Failed to create hospital")
		return
	}

	response.Success(w, http.StatusCreated, "Hospital created successfully", hospital)
}

func (h *DirectoryHandler) GetHospital(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hospital")
	if !ok {
		return
	}

	hospital, err := h.hospitalUsecase.GetHospital(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err, "Failed to get hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital retrieved successfully", hospital)
}

func (h *DirectoryHandler) GetAllHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.hospitalUsecase.GetAllHospitals(r.Context(), directoryQuery(r))
	if err != nil {
		writeDirectoryError(w, err, "Failed to get hospitals")
		return
	}

	response.Success(w, http.StatusOK, "Hospitals retrieved successfully", hospitals)
}

func (h *DirectoryHandler) UpdateHospital(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hospital")
	if !ok {
		return
	}
	req, ok := h.decodeHospital(w, r)
	if !ok {
		return
	}

	hospital, err := h.hospitalUsecase.UpdateHospital(r.Context(), id, req)
	if err != nil {
		writeDirectoryError(w, err, "Failed to update hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital updated successfully", hospital)
}

func (h *DirectoryHandler) DeleteHospital(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hospital")
	if !ok {
		return
	}

	if err := h.hospitalUsecase.DeleteHospital(r.Context(), id); err != nil {
		writeDirectoryError(w, err, "Failed to delete hospital")
		return
	}

	response.Success(w, http.StatusOK, "Hospital deleted successfully", nil)
}

// Doctors

func (h *DirectoryHandler) decodeDoctor(w http.ResponseWriter, r *http.Request) (*dto.DoctorRequest, bool) {
	var req dto.DoctorRequest
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

func (h *DirectoryHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDoctor(w, r)
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.CreateDoctor(r.Context(), req)
	if err != nil {
		writeDirectoryError(w, err, "Failed to create doctor")
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *DirectoryHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// GetAllDoctors lists doctors; ?approved=true limits the list to approved ones.
func (h *DirectoryHandler) GetAllDoctors(w http.ResponseWriter, r *http.Request) {
	approvedOnly, _ := strconv.ParseBool(r.URL.Query().Get("approved"))

	doctors, err := h.doctorUsecase.GetAllDoctors(r.Context(), directoryQuery(r), approvedOnly)
	if err != nil {
		writeDirectoryError(w, err, "Failed to get doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DirectoryHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctor")
	if !ok {
		return
	}
	req, ok := h.decodeDoctor(w, r)
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.UpdateDoctor(r.Context(), id, req)
	if err != nil {
		writeDirectoryError(w, err, "Failed to update doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor updated successfully", doctor)
}

func (h *DirectoryHandler) SetDoctorApproval(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctor")
	if !ok {
		return
	}

	var req dto.DoctorApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.SetDoctorApproval(r.Context(), id, *req.Approved)
	if err != nil {
		writeDirectoryError(w, err, "Failed to update doctor approval")
		return
	}

	response.Success(w, http.StatusOK, "Doctor approval updated", doctor)
}

func (h *DirectoryHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctor")
	if !ok {
		return
	}

	if err := h.doctorUsecase.DeleteDoctor(r.Context(), id); err != nil {
		writeDirectoryError(w, err, "Failed to delete doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor deleted successfully", nil)
}
