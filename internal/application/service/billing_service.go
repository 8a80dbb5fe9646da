package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

// InventoryLookup is the part of the remote pharmacy API the billing form uses
type InventoryLookup interface {
	AvailableQuantity(ctx context.Context, med entity.Medicine) (int, error)
	MRP(ctx context.Context, med entity.Medicine) (money.Amount, error)
	Suggestions(ctx context.Context, partial string) ([]entity.Medicine, error)
	StockStatus(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error)
	SubmitBilling(ctx context.Context, sub billing.Submission) (string, error)
}

// Alert is a transient banner for the billing screen
type Alert struct {
	Kind           apperror.Kind `json:"kind,omitempty"`
	Message        string        `json:"message"`
	Type           string        `json:"type"` // error or success
	DismissAfterMs int64         `json:"dismiss_after_ms"`
}

// FormResult is the form after an operation, with an optional banner
type FormResult struct {
	Form  *billing.Form `json:"form"`
	Alert *Alert        `json:"alert,omitempty"`
}

// BillingOptions configures new billing sessions
type BillingOptions struct {
	InitialRows   int
	CountryCode   string
	AlertDuration time.Duration
	Location      *time.Location
}

// BillingService drives billing form sessions. Remote lookups run without the
// session lock held; their results are applied once the lock is re-acquired.
type BillingService struct {
	sessions    repository.SessionRepository
	invoiceRepo repository.InvoiceRepository
	submitKeys  repository.IdempotencyRepository
	inventory   InventoryLookup
	opts        BillingOptions
	now         func() time.Time
}

// NewBillingService creates a new billing service
func NewBillingService(
	sessions repository.SessionRepository,
	invoiceRepo repository.InvoiceRepository,
	submitKeys repository.IdempotencyRepository,
	inventory InventoryLookup,
	opts BillingOptions,
) *BillingService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &BillingService{
		sessions:    sessions,
		invoiceRepo: invoiceRepo,
		submitKeys:  submitKeys,
		inventory:   inventory,
		opts:        opts,
		now:         time.Now,
	}
}

// CreateSession starts a fresh billing form
func (s *BillingService) CreateSession(ctx context.Context) (*billing.Form, error) {
	form := billing.NewForm(uuid.New(), billing.Options{
		InitialRows: s.opts.InitialRows,
		CountryCode: s.opts.CountryCode,
	})
	if err := s.sessions.Save(ctx, form); err != nil {
		return nil, err
	}
	return form.Clone(), nil
}

// GetSession returns the current state of a billing form
func (s *BillingService) GetSession(ctx context.Context, id uuid.UUID) (*billing.Form, error) {
	var out *billing.Form
	err := s.withForm(ctx, id, func(f *billing.Form) error {
		out = f.Clone()
		return nil
	})
	return out, err
}

// AddRow appends an empty row
func (s *BillingService) AddRow(ctx context.Context, id uuid.UUID) (*FormResult, error) {
	return s.mutate(ctx, id, func(f *billing.Form) error {
		_, err := f.AddRow()
		return err
	})
}

// RemoveRow deletes a row and releases its reservation
func (s *BillingService) RemoveRow(ctx context.Context, id, rowID uuid.UUID) (*FormResult, error) {
	return s.mutate(ctx, id, func(f *billing.Form) error {
		return f.RemoveRow(rowID)
	})
}

// TypeMedicineName records the name field text and refreshes the suggestion list
func (s *BillingService) TypeMedicineName(ctx context.Context, id, rowID uuid.UUID, text string) (*FormResult, error) {
	var partial string
	res, err := s.mutate(ctx, id, func(f *billing.Form) error {
		sanitized, err := f.SetMedicineText(rowID, text)
		if err != nil {
			return err
		}
		partial = strings.TrimSpace(sanitized)
		if partial == "" {
			f.SetSuggestions(nil)
		}
		return nil
	})
	if err != nil || partial == "" {
		return res, err
	}

	list, lookupErr := s.inventory.Suggestions(ctx, partial)
	if lookupErr != nil {
		log.Printf("Suggestion lookup failed (session %s, row %s): %v", id, rowID, lookupErr)
	}

	return s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		if lookupErr != nil {
			f.SetSuggestions(nil)
			return s.errorAlert(apperror.KindLookup, "Unable to load medicine suggestions"), nil
		}
		f.SetSuggestions(list)
		return nil, nil
	})
}

// SelectSuggestion fills a row from a picked suggestion and fetches its MRP
func (s *BillingService) SelectSuggestion(ctx context.Context, id, rowID uuid.UUID, med entity.Medicine) (*FormResult, error) {
	if strings.TrimSpace(med.Name) == "" {
		return nil, apperror.NewFieldError("medicine_name", "Medicine name is required")
	}
	if _, err := s.mutate(ctx, id, func(f *billing.Form) error {
		f.SetSuggestions(nil)
		return f.ApplySuggestion(rowID, med)
	}); err != nil {
		return nil, err
	}

	mrp, lookupErr := s.inventory.MRP(ctx, med)
	if lookupErr != nil {
		log.Printf("MRP lookup failed (session %s, row %s): %v", id, rowID, lookupErr)
	}

	return s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		if lookupErr != nil {
			if !rowShows(f, rowID, med.Label()) {
				return nil, nil
			}
			if err := f.ClearRow(rowID); err != nil {
				return nil, err
			}
			return s.errorAlert(apperror.KindLookup, fmt.Sprintf("%q Medicine not available.", med.Label())), nil
		}
		if _, err := f.ApplyUnitPrice(rowID, med, mrp); err != nil {
			return nil, err
		}
		return nil, nil
	})
}

// CheckMedicine runs the stock and expiry check when the name field loses
// focus. A medicine that is unknown or expired clears the row.
func (s *BillingService) CheckMedicine(ctx context.Context, id, rowID uuid.UUID) (*FormResult, error) {
	var (
		text string
		med  entity.Medicine
	)
	res, err := s.mutate(ctx, id, func(f *billing.Form) error {
		if err := f.Editable(); err != nil {
			return err
		}
		row, err := f.Row(rowID)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(row.MedicineName)
		if resolved, ok := row.ResolveMedicine(); ok {
			med = resolved
		} else {
			med = entity.Medicine{Name: text}
		}
		return nil
	})
	if err != nil || text == "" {
		return res, err
	}

	status, lookupErr := s.inventory.StockStatus(ctx, med)
	if lookupErr != nil {
		log.Printf("Stock check failed (session %s, row %s): %v", id, rowID, lookupErr)
	}

	return s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		if !rowShows(f, rowID, text) {
			return nil, nil
		}
		switch {
		case lookupErr != nil:
			if err := f.ClearRow(rowID); err != nil {
				return nil, err
			}
			return s.errorAlert(apperror.KindLookup, fmt.Sprintf("%q Medicine not available.", text)), nil
		case status.IsExpired(s.now().In(s.opts.Location)):
			if err := f.ClearRow(rowID); err != nil {
				return nil, err
			}
			msg := fmt.Sprintf("%s expired on %s !", med.Label(), status.ExpiredOn.Format("2006-01-02"))
			return s.errorAlert(apperror.KindLookup, msg), nil
		}
		return nil, nil
	})
}

// EnterQuantity runs the reservation check when the quantity field loses focus
func (s *BillingService) EnterQuantity(ctx context.Context, id, rowID uuid.UUID, raw string) (*FormResult, error) {
	qty := billing.ParseQuantity(raw)

	var (
		med  entity.Medicine
		text string
	)
	res, err := s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		if err := f.Editable(); err != nil {
			return nil, err
		}
		row, err := f.Row(rowID)
		if err != nil {
			return nil, err
		}
		text = strings.TrimSpace(row.MedicineName)
		if qty == 0 {
			return nil, f.ClearQuantity(rowID)
		}
		if text == "" {
			if err := f.ClearQuantity(rowID); err != nil {
				return nil, err
			}
			return s.errorAlert(apperror.KindValidation, "Please enter the medicine name first"), nil
		}
		if resolved, ok := row.ResolveMedicine(); ok {
			med = resolved
		} else {
			med = entity.Medicine{Name: text}
		}
		return nil, nil
	})
	if err != nil || qty == 0 || text == "" {
		return res, err
	}

	available, lookupErr := s.inventory.AvailableQuantity(ctx, med)
	if lookupErr != nil {
		log.Printf("Quantity lookup failed (session %s, row %s): %v", id, rowID, lookupErr)
	}

	return s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		if !rowShows(f, rowID, text) {
			return nil, nil
		}
		if lookupErr != nil {
			if err := f.ClearQuantity(rowID); err != nil {
				return nil, err
			}
			return s.errorAlert(apperror.KindLookup, fmt.Sprintf("Unable to check the available quantity for %s", med.Name)), nil
		}

		result, err := f.ApplyQuantity(rowID, qty, available)
		if err != nil {
			return nil, err
		}
		if !result.Accepted {
			msg := fmt.Sprintf("Available Quantity for %s is %d", result.Medicine, result.Remaining)
			return s.errorAlert(apperror.KindStockExceeded, msg), nil
		}
		return nil, nil
	})
}

// SetDiscount parses and applies the discount; empty text means no discount
func (s *BillingService) SetDiscount(ctx context.Context, id uuid.UUID, raw string) (*FormResult, error) {
	discount, _ := money.Parse(raw)
	return s.mutate(ctx, id, func(f *billing.Form) error {
		return f.SetDiscount(discount)
	})
}

// SetCashGiven parses and applies the cash given; empty text clears it
func (s *BillingService) SetCashGiven(ctx context.Context, id uuid.UUID, raw string) (*FormResult, error) {
	var cash *money.Amount
	if v, ok := money.Parse(raw); ok {
		cash = &v
	}
	return s.mutate(ctx, id, func(f *billing.Form) error {
		return f.SetCashGiven(cash)
	})
}

// SetPatient updates the patient, doctor and mobile fields
func (s *BillingService) SetPatient(ctx context.Context, id uuid.UUID, p billing.Patient) (*FormResult, error) {
	return s.mutate(ctx, id, func(f *billing.Form) error {
		return f.SetPatient(p)
	})
}

// Submit validates the bill, persists it remotely and moves the form to the
// invoice view. The session stays locked for the whole call so the bill
// cannot change while it is being saved.
func (s *BillingService) Submit(ctx context.Context, id uuid.UUID) (*FormResult, error) {
	form, unlock, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sub, err := form.BuildPayload()
	if err != nil {
		return nil, err
	}

	invoiceNo, err := s.inventory.SubmitBilling(ctx, sub)
	if err != nil {
		log.Printf("Billing submission failed (session %s): %v", id, err)
		return nil, apperror.NewSubmissionError("Failed to submit the bill, please try again", err)
	}

	invoice := form.MarkSubmitted(invoiceNo, s.invoiceDate())
	s.archive(ctx, invoice)

	return &FormResult{
		Form:  form.Clone(),
		Alert: s.alert("", "Successfully submitted!", "success"),
	}, nil
}

// Cancel discards the bill and starts over with a fresh form
func (s *BillingService) Cancel(ctx context.Context, id uuid.UUID) (*FormResult, error) {
	var out *billing.Form
	err := s.withForm(ctx, id, func(f *billing.Form) error {
		// a retried key must not replay the previous bill's invoice
		if s.submitKeys != nil {
			if err := s.submitKeys.DeleteByScope(ctx, id.String()); err != nil {
				log.Printf("Failed to clear submit keys for session %s: %v", id, err)
				return apperror.ErrInternalServer
			}
		}
		f.Reset()
		out = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &FormResult{Form: out}, nil
}

// Invoice returns the submitted invoice snapshot of a session
func (s *BillingService) Invoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := s.withForm(ctx, id, func(f *billing.Form) error {
		inv, err := f.SubmittedInvoice()
		out = inv
		return err
	})
	return out, err
}

// ArchivedInvoice returns an archived invoice by number
func (s *BillingService) ArchivedInvoice(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return inv, nil
}

// archive stores the snapshot for re-export; failure does not undo the submit
func (s *BillingService) archive(ctx context.Context, invoice *entity.Invoice) {
	if s.invoiceRepo == nil {
		return
	}
	stored := *invoice
	stored.Items = append([]entity.InvoiceItem(nil), invoice.Items...)
	if err := s.invoiceRepo.Create(ctx, &stored); err != nil {
		log.Printf("Warning: failed to archive invoice %s: %v", invoice.InvoiceNo, err)
	}
}

func (s *BillingService) invoiceDate() time.Time {
	y, m, d := s.now().In(s.opts.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *BillingService) withForm(ctx context.Context, id uuid.UUID, fn func(f *billing.Form) error) error {
	form, unlock, err := s.sessions.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(form)
}

func (s *BillingService) mutate(ctx context.Context, id uuid.UUID, fn func(f *billing.Form) error) (*FormResult, error) {
	return s.mutateWithAlert(ctx, id, func(f *billing.Form) (*Alert, error) {
		return nil, fn(f)
	})
}

func (s *BillingService) mutateWithAlert(ctx context.Context, id uuid.UUID, fn func(f *billing.Form) (*Alert, error)) (*FormResult, error) {
	var res FormResult
	err := s.withForm(ctx, id, func(f *billing.Form) error {
		alert, err := fn(f)
		if err != nil {
			return err
		}
		res.Alert = alert
		res.Form = f.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *BillingService) errorAlert(kind apperror.Kind, message string) *Alert {
	return s.alert(kind, message, "error")
}

func (s *BillingService) alert(kind apperror.Kind, message, typ string) *Alert {
	return &Alert{
		Kind:           kind,
		Message:        message,
		Type:           typ,
		DismissAfterMs: s.opts.AlertDuration.Milliseconds(),
	}
}

// rowShows reports whether the row still exists and shows the given text;
// a lookup answer for text the user has since changed is dropped.
func rowShows(f *billing.Form, rowID uuid.UUID, text string) bool {
	row, err := f.Row(rowID)
	if err != nil {
		return false
	}
	return strings.TrimSpace(row.MedicineName) == strings.TrimSpace(text)
}
