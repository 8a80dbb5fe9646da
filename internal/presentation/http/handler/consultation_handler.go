package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/response"
)

// ConsultationHandler handles outpatient consultation records
type ConsultationHandler struct {
	consultationService *service.ConsultationService
}

// NewConsultationHandler creates a new consultation handler
func NewConsultationHandler(consultationService *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultationService: consultationService}
}

// Create stores a consultation under the next OP number
func (h *ConsultationHandler) Create(c *gin.Context) {
	var req request.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	dob, ok := parseDay(c, "date of birth", req.DateOfBirth)
	if !ok {
		return
	}

	consultation, err := h.consultationService.CreateConsultation(c.Request.Context(), &service.CreateConsultationInput{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Age:              req.Age,
		Gender:           req.Gender,
		DateOfBirth:      dob,
		DoctorName:       req.DoctorName,
		Observation:      req.Observation,
		ConsultantCharge: req.ConsultantCharge,
		ClinicCharge:     req.ClinicCharge,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Consultation saved", consultation)
}

// Get returns one consultation
func (h *ConsultationHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "consultation")
	if !ok {
		return
	}
	consultation, err := h.consultationService.GetConsultation(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Consultation retrieved", consultation)
}

// List lists consultations newest first
func (h *ConsultationHandler) List(c *gin.Context) {
	var req request.ConsultationFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	result, err := h.consultationService.ListConsultations(c.Request.Context(), pageParams(req.Page, req.PerPage), req.Search)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, "Consultations retrieved", result)
}

// NextOPNumber returns the OP number the form should display
func (h *ConsultationHandler) NextOPNumber(c *gin.Context) {
	next, err := h.consultationService.NextOPNumber(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Next OP number", gin.H{"op_number": next})
}
