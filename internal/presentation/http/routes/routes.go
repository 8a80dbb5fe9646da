package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/config"
	domainRepo "github.com/sangkips/pharmacy-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Billing      *handler.BillingHandler
	Report       *handler.ReportHandler
	Medicine     *handler.MedicineHandler
	Consultation *handler.ConsultationHandler
	Registration *handler.RegistrationHandler
	Printer      *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	registerBillingRoutes(v1, h, deps)
	registerInvoiceRoutes(v1, h)
	registerReportRoutes(v1, h)

	v1.POST("/medicines", h.Medicine.Create)

	consultations := v1.Group("/consultations")
	{
		consultations.POST("", h.Consultation.Create)
		consultations.GET("", h.Consultation.List)
		consultations.GET("/next-op-number", h.Consultation.NextOPNumber)
		consultations.GET("/:id", h.Consultation.Get)
	}

	v1.POST("/users/register", h.Registration.Register)

	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}

	return router
}

func registerBillingRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	sessions := v1.Group("/billing/sessions")
	{
		sessions.POST("", h.Billing.CreateSession)
		sessions.GET("/:id", h.Billing.GetSession)

		sessions.POST("/:id/rows", h.Billing.AddRow)
		sessions.DELETE("/:id/rows/:row_id", h.Billing.RemoveRow)
		sessions.PUT("/:id/rows/:row_id/name", h.Billing.TypeName)
		sessions.POST("/:id/rows/:row_id/select", h.Billing.SelectSuggestion)
		sessions.POST("/:id/rows/:row_id/check", h.Billing.CheckMedicine)
		sessions.PUT("/:id/rows/:row_id/quantity", h.Billing.EnterQuantity)

		sessions.PUT("/:id/discount", h.Billing.SetDiscount)
		sessions.PUT("/:id/cash", h.Billing.SetCashGiven)
		sessions.PUT("/:id/patient", h.Billing.SetPatient)

		// a retried submit must not create a second bill
		sessions.POST("/:id/submit", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Billing.Submit)
		sessions.POST("/:id/cancel", h.Billing.Cancel)

		sessions.GET("/:id/invoice", h.Billing.Invoice)
		sessions.GET("/:id/invoice/pdf", h.Billing.InvoicePDF)
		sessions.GET("/:id/invoice/print", h.Billing.PrintableInvoice)
		sessions.POST("/:id/invoice/print", h.Billing.PrintInvoice)
		sessions.GET("/:id/invoice/whatsapp", h.Billing.WhatsApp)
	}
}

func registerInvoiceRoutes(v1 *gin.RouterGroup, h *Handlers) {
	invoices := v1.Group("/invoices")
	{
		invoices.GET("/:invoice_no", h.Billing.ArchivedInvoice)
		invoices.GET("/:invoice_no/pdf", h.Billing.ArchivedInvoicePDF)
	}
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers) {
	reports := v1.Group("/reports")
	{
		reports.GET("/billing", h.Report.BillingHistory)
		reports.GET("/billing/export", h.Report.ExportBillingHistory)
		reports.GET("/billing/:invoice_no", h.Report.BillingRecord)
		reports.GET("/stock", h.Report.Stock)
		reports.GET("/stock/export", h.Report.ExportStock)
		reports.GET("/purchases", h.Report.Purchases)
		reports.GET("/purchases/export", h.Report.ExportPurchases)
	}
}
