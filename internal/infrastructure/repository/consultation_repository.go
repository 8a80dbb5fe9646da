package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
	"gorm.io/gorm"
)

type consultationRepository struct {
	db *gorm.DB
}

// NewConsultationRepository creates a new consultation repository
func NewConsultationRepository(db *gorm.DB) domainRepo.ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextOPNumber(tx)
		if err != nil {
			return err
		}
		consultation.OPNumber = next
		return tx.Create(consultation).Error
	})
}

func (r *consultationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := r.db.WithContext(ctx).First(&consultation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &consultation, err
}

func (r *consultationRepository) NextOPNumber(ctx context.Context) (int, error) {
	return nextOPNumber(r.db.WithContext(ctx))
}

func (r *consultationRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Consultation, int64, error) {
	var consultations []entity.Consultation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Consultation{})

	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("op_number DESC").
		Find(&consultations).Error

	return consultations, total, err
}

func nextOPNumber(db *gorm.DB) (int, error) {
	var last int
	err := db.Model(&entity.Consultation{}).
		Select("COALESCE(MAX(op_number), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}
