package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
)

// SessionRepository holds the live billing form sessions
type SessionRepository interface {
	Save(ctx context.Context, form *billing.Form) error
	// Lock returns the session's form with its lock held. The caller must call
	// unlock exactly once and must not touch the form afterwards.
	Lock(ctx context.Context, id uuid.UUID) (form *billing.Form, unlock func(), err error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count() int
}

// InvoiceRepository archives submitted invoices for later export
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// GetByInvoiceNo returns nil, nil when no invoice has the number
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
}
