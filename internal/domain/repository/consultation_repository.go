package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
)

// ConsultationRepository defines the interface for consultation record operations
type ConsultationRepository interface {
	// Create assigns the next OP number and stores the record
	Create(ctx context.Context, consultation *entity.Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultation, error)
	// NextOPNumber returns the number the next record will get
	NextOPNumber(ctx context.Context) (int, error)
	// List returns records newest first, optionally filtered by patient name
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Consultation, int64, error)
}
