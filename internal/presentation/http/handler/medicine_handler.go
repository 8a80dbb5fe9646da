package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/response"
)

// MedicineHandler handles the add-medicine screen
type MedicineHandler struct {
	medicineService *service.MedicineService
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(medicineService *service.MedicineService) *MedicineHandler {
	return &MedicineHandler{medicineService: medicineService}
}

// Create records a new purchase lot
func (h *MedicineHandler) Create(c *gin.Context) {
	var req request.AddMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	expiry, ok := parseDay(c, "expiry", req.ExpiryDate)
	if !ok {
		return
	}

	input := &service.AddMedicineInput{
		MedicineName:  req.MedicineName,
		BrandName:     req.BrandName,
		OtherDetails:  req.OtherDetails,
		PurchasePrice: req.PurchasePrice,
		TotalQty:      req.TotalQty,
		MRP:           req.MRP,
		Dosage:        req.Dosage,
		DosageUnit:    req.DosageUnit,
		ExpiryDate:    expiry,
	}

	intake, err := h.medicineService.AddMedicine(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Medicine added successfully", intake)
}
