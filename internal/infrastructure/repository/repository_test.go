package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entity.Invoice{},
		&entity.InvoiceItem{},
		&entity.Consultation{},
		&entity.IdempotencyKey{},
	))
	return db
}

func TestInvoiceRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := &entity.Invoice{
		InvoiceNo:   "INV-1",
		SessionID:   uuid.New(),
		InvoiceDate: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		PatientName: "John Doe",
		CountryCode: "+91",
		MobileNo:    "9876543210",
		SubTotal:    money.FromCents(3000),
		Discount:    money.FromCents(500),
		GrandTotal:  money.FromCents(2500),
		CashGiven:   money.FromCents(3000),
		Balance:     money.FromCents(500),
		Items: []entity.InvoiceItem{
			{Position: 2, RowID: uuid.New(), MedicineName: "Cetirizine 10mg", Quantity: 5, UnitPrice: money.FromCents(200), Total: money.FromCents(1000)},
			{Position: 1, RowID: uuid.New(), MedicineName: "Paracetamol 500mg", Quantity: 10, UnitPrice: money.FromCents(200), Total: money.FromCents(2000)},
		},
	}
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.GetByInvoiceNo(ctx, "INV-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "John Doe", got.PatientName)
	assert.Equal(t, money.FromCents(2500), got.GrandTotal)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Paracetamol 500mg", got.Items[0].MedicineName)
	assert.Equal(t, money.FromCents(1000), got.Items[1].Total)

	missing, err := repo.GetByInvoiceNo(ctx, "INV-404")
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &entity.Invoice{InvoiceNo: "INV-1", PatientName: "Other", InvoiceDate: time.Now()}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestConsultationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConsultationRepository(db)
	ctx := context.Background()

	next, err := repo.NextOPNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	names := []string{"Asha", "Ravi", "Meena"}
	for _, name := range names {
		c := &entity.Consultation{FirstName: name, LastName: "Kumar", TotalCharge: money.FromCents(50000)}
		require.NoError(t, repo.Create(ctx, c))
	}

	next, err = repo.NextOPNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	params := &pagination.PaginationParams{Page: 1, PerPage: 2}
	list, total, err := repo.List(ctx, params, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, 3, list[0].OPNumber)
	assert.Equal(t, "Meena", list[0].FirstName)

	list, total, err = repo.List(ctx, &pagination.PaginationParams{Page: 1, PerPage: 10}, "rav")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)

	got, err := repo.GetByID(ctx, list[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.OPNumber)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIdempotencyRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewIdempotencyRepository(db)
	ctx := context.Background()

	scope := uuid.NewString()
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key:          "abc",
		Scope:        scope,
		Endpoint:     "POST /submit",
		ResponseCode: 200,
		ResponseBody: `{"success":true}`,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key:       "old",
		Scope:     scope,
		Endpoint:  "POST /submit",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))

	got, err := repo.GetByKey(ctx, "abc", scope)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 200, got.ResponseCode)

	other, err := repo.GetByKey(ctx, "abc", "another-session")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, repo.DeleteExpired(ctx))
	old, err := repo.GetByKey(ctx, "old", scope)
	require.NoError(t, err)
	assert.Nil(t, old)

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{
		Key:       "abc",
		Scope:     "another-session",
		Endpoint:  "POST /submit",
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	require.NoError(t, repo.DeleteByScope(ctx, scope))
	gone, err := repo.GetByKey(ctx, "abc", scope)
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := repo.GetByKey(ctx, "abc", "another-session")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
