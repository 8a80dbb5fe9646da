package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/domain/enum"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	infraRepo "github.com/sangkips/pharmacy-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-api/pkg/apperror"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

type mockInventory struct {
	AvailableQuantityFunc func(ctx context.Context, med entity.Medicine) (int, error)
	MRPFunc               func(ctx context.Context, med entity.Medicine) (money.Amount, error)
	SuggestionsFunc       func(ctx context.Context, partial string) ([]entity.Medicine, error)
	StockStatusFunc       func(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error)
	SubmitBillingFunc     func(ctx context.Context, sub billing.Submission) (string, error)
}

func (m *mockInventory) AvailableQuantity(ctx context.Context, med entity.Medicine) (int, error) {
	return m.AvailableQuantityFunc(ctx, med)
}

func (m *mockInventory) MRP(ctx context.Context, med entity.Medicine) (money.Amount, error) {
	return m.MRPFunc(ctx, med)
}

func (m *mockInventory) Suggestions(ctx context.Context, partial string) ([]entity.Medicine, error) {
	return m.SuggestionsFunc(ctx, partial)
}

func (m *mockInventory) StockStatus(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
	return m.StockStatusFunc(ctx, med)
}

func (m *mockInventory) SubmitBilling(ctx context.Context, sub billing.Submission) (string, error) {
	return m.SubmitBillingFunc(ctx, sub)
}

// pharmacyInventory answers like a remote API stocking paracetamol at 2.00
func pharmacyInventory(available int) *mockInventory {
	return &mockInventory{
		AvailableQuantityFunc: func(ctx context.Context, med entity.Medicine) (int, error) {
			return available, nil
		},
		MRPFunc: func(ctx context.Context, med entity.Medicine) (money.Amount, error) {
			return money.FromCents(200), nil
		},
		SuggestionsFunc: func(ctx context.Context, partial string) ([]entity.Medicine, error) {
			return []entity.Medicine{{Name: "Paracetamol", Dosage: "500mg"}}, nil
		},
		StockStatusFunc: func(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
			return inventory.StockStatus{}, nil
		},
		SubmitBillingFunc: func(ctx context.Context, sub billing.Submission) (string, error) {
			return "INV-100", nil
		},
	}
}

type memoryInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[string]*entity.Invoice
	err      error
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: map[string]*entity.Invoice{}}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.invoices[inv.InvoiceNo] = inv
	return nil
}

func (r *memoryInvoiceRepo) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[invoiceNo], nil
}

var paracetamol = entity.Medicine{Name: "Paracetamol", Dosage: "500mg"}

func newBillingService(t *testing.T, inv InventoryLookup, invoices *memoryInvoiceRepo) *BillingService {
	t.Helper()
	sessions := infraRepo.NewMemorySessionRepository(time.Hour, 0)
	t.Cleanup(sessions.Close)
	svc := NewBillingService(sessions, invoices, nil, inv, BillingOptions{
		InitialRows:   3,
		CountryCode:   "+91",
		AlertDuration: 3 * time.Second,
		Location:      time.UTC,
	})
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 15, 30, 0, 0, time.UTC) }
	return svc
}

// addMedicine selects paracetamol on a row and enters a quantity
func addMedicine(t *testing.T, svc *BillingService, id, rowID uuid.UUID, qty string) *FormResult {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SelectSuggestion(ctx, id, rowID, paracetamol)
	require.NoError(t, err)
	res, err := svc.EnterQuantity(ctx, id, rowID, qty)
	require.NoError(t, err)
	return res
}

func TestBillingService_CreateAndGet(t *testing.T) {
	svc := newBillingService(t, pharmacyInventory(100), newMemoryInvoiceRepo())
	ctx := context.Background()

	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	assert.Len(t, form.Rows, 3)
	assert.Equal(t, enum.FormStateEditing, form.State)

	got, err := svc.GetSession(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, form.ID, got.ID)

	_, err = svc.GetSession(ctx, uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestBillingService_FullBill(t *testing.T) {
	invoices := newMemoryInvoiceRepo()
	inv := pharmacyInventory(100)
	var submitted billing.Submission
	inv.SubmitBillingFunc = func(ctx context.Context, sub billing.Submission) (string, error) {
		submitted = sub
		return "INV-100", nil
	}
	svc := newBillingService(t, inv, invoices)
	ctx := context.Background()

	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	addMedicine(t, svc, form.ID, form.Rows[0].ID, "10")
	res := addMedicine(t, svc, form.ID, form.Rows[1].ID, "5 tabs")
	assert.Nil(t, res.Alert)
	assert.Equal(t, 15, res.Form.Ledger.Reserved("Paracetamol"))
	assert.Equal(t, money.FromCents(3000), res.Form.Totals.SubTotal)

	_, err = svc.SetDiscount(ctx, form.ID, "5")
	require.NoError(t, err)
	res, err = svc.SetCashGiven(ctx, form.ID, "30")
	require.NoError(t, err)
	assert.Equal(t, money.FromCents(2500), res.Form.Totals.GrandTotal)
	require.NotNil(t, res.Form.Totals.Balance)
	assert.Equal(t, money.FromCents(500), *res.Form.Totals.Balance)

	_, err = svc.SetPatient(ctx, form.ID, billing.Patient{Name: "John Doe", DoctorName: "Dr Rao", MobileNo: "98765 43210"})
	require.NoError(t, err)

	res, err = svc.Submit(ctx, form.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Alert)
	assert.Equal(t, "success", res.Alert.Type)
	assert.Equal(t, int64(3000), res.Alert.DismissAfterMs)
	assert.Equal(t, enum.FormStateSubmitted, res.Form.State)
	require.NotNil(t, res.Form.Invoice)
	assert.Equal(t, "INV-100", res.Form.Invoice.InvoiceNo)
	assert.Equal(t, "9/3/2024", res.Form.Invoice.FormattedDate())

	assert.Len(t, submitted.Rows, 2)
	assert.Equal(t, "9876543210", submitted.MobileNo)

	archived, err := svc.ArchivedInvoice(ctx, "INV-100")
	require.NoError(t, err)
	assert.Equal(t, "John Doe", archived.PatientName)

	invoice, err := svc.Invoice(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, money.FromCents(2500), invoice.GrandTotal)

	_, err = svc.AddRow(ctx, form.ID)
	assert.ErrorIs(t, err, billing.ErrFormSubmitted)

	res, err = svc.Cancel(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FormStateEditing, res.Form.State)
	assert.Empty(t, res.Form.Ledger)
	assert.Nil(t, res.Form.Invoice)

	_, err = svc.Invoice(ctx, form.ID)
	assert.ErrorIs(t, err, billing.ErrNotSubmitted)
}

func TestBillingService_EnterQuantity_StockExceeded(t *testing.T) {
	svc := newBillingService(t, pharmacyInventory(10), newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res := addMedicine(t, svc, form.ID, form.Rows[0].ID, "12")

	require.NotNil(t, res.Alert)
	assert.Equal(t, apperror.KindStockExceeded, res.Alert.Kind)
	assert.Equal(t, "Available Quantity for Paracetamol is 10", res.Alert.Message)
	assert.Zero(t, res.Form.Rows[0].Quantity)
	assert.True(t, res.Form.Rows[0].Total.IsZero())
	assert.Empty(t, res.Form.Ledger)
}

func TestBillingService_EnterQuantity_LookupFailure(t *testing.T) {
	inv := pharmacyInventory(10)
	inv.AvailableQuantityFunc = func(ctx context.Context, med entity.Medicine) (int, error) {
		return 0, inventory.ErrUnavailable
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res := addMedicine(t, svc, form.ID, form.Rows[0].ID, "2")

	require.NotNil(t, res.Alert)
	assert.Equal(t, apperror.KindLookup, res.Alert.Kind)
	assert.Zero(t, res.Form.Rows[0].Quantity)
	assert.Equal(t, money.FromCents(200), res.Form.Rows[0].UnitPrice)
}

func TestBillingService_EnterQuantity_WithoutName(t *testing.T) {
	svc := newBillingService(t, pharmacyInventory(10), newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.EnterQuantity(ctx, form.ID, form.Rows[0].ID, "3")
	require.NoError(t, err)
	require.NotNil(t, res.Alert)
	assert.Equal(t, apperror.KindValidation, res.Alert.Kind)
	assert.Zero(t, res.Form.Rows[0].Quantity)
}

func TestBillingService_CheckMedicine_ExpiryUsesLocalDate(t *testing.T) {
	expired := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	inv := pharmacyInventory(10)
	inv.StockStatusFunc = func(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
		return inventory.StockStatus{ExpiredOn: &expired}, nil
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	// 20:00 UTC on the 9th is already the 10th in Kolkata
	svc.opts.Location = time.FixedZone("IST", 5*3600+30*60)
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)
	rowID := form.Rows[0].ID
	_, err = svc.TypeMedicineName(ctx, form.ID, rowID, "Paracetamol 500mg")
	require.NoError(t, err)

	res, err := svc.CheckMedicine(ctx, form.ID, rowID)
	require.NoError(t, err)
	require.NotNil(t, res.Alert)
	assert.Equal(t, "Paracetamol 500mg expired on 2024-03-09 !", res.Alert.Message)
}

func TestBillingService_CheckMedicine(t *testing.T) {
	expired := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		status    inventory.StockStatus
		err       error
		wantAlert string
	}{
		{name: "in stock", status: inventory.StockStatus{}},
		{name: "not yet expired", status: inventory.StockStatus{ExpiredOn: ptrTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))}},
		{name: "expired", status: inventory.StockStatus{ExpiredOn: &expired}, wantAlert: "Paracetamol 500mg expired on 2024-01-31 !"},
		{name: "not found", err: inventory.ErrNotFound, wantAlert: `"Paracetamol 500mg" Medicine not available.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := pharmacyInventory(10)
			inv.StockStatusFunc = func(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
				assert.Equal(t, paracetamol, med)
				return tt.status, tt.err
			}
			svc := newBillingService(t, inv, newMemoryInvoiceRepo())
			ctx := context.Background()
			form, err := svc.CreateSession(ctx)
			require.NoError(t, err)
			rowID := form.Rows[0].ID

			_, err = svc.TypeMedicineName(ctx, form.ID, rowID, "Paracetamol 500mg")
			require.NoError(t, err)
			res, err := svc.CheckMedicine(ctx, form.ID, rowID)
			require.NoError(t, err)

			if tt.wantAlert == "" {
				assert.Nil(t, res.Alert)
				assert.Equal(t, "Paracetamol 500mg", res.Form.Rows[0].MedicineName)
				return
			}
			require.NotNil(t, res.Alert)
			assert.Equal(t, tt.wantAlert, res.Alert.Message)
			assert.Equal(t, "error", res.Alert.Type)
			assert.True(t, res.Form.Rows[0].IsBlank())
		})
	}
}

func TestBillingService_CheckMedicine_EmptyName(t *testing.T) {
	inv := pharmacyInventory(10)
	inv.StockStatusFunc = func(ctx context.Context, med entity.Medicine) (inventory.StockStatus, error) {
		t.Fatal("no lookup expected for an empty name")
		return inventory.StockStatus{}, nil
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.CheckMedicine(ctx, form.ID, form.Rows[0].ID)
	require.NoError(t, err)
	assert.Nil(t, res.Alert)
}

func TestBillingService_TypeMedicineName(t *testing.T) {
	inv := pharmacyInventory(10)
	var partials []string
	inv.SuggestionsFunc = func(ctx context.Context, partial string) ([]entity.Medicine, error) {
		partials = append(partials, partial)
		return []entity.Medicine{paracetamol}, nil
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.TypeMedicineName(ctx, form.ID, form.Rows[0].ID, "9Para")
	require.NoError(t, err)
	assert.Equal(t, []string{"Para"}, partials)
	assert.Equal(t, []entity.Medicine{paracetamol}, res.Form.Suggestions)
	assert.Equal(t, "Para", res.Form.Rows[0].MedicineName)

	res, err = svc.TypeMedicineName(ctx, form.ID, form.Rows[0].ID, "")
	require.NoError(t, err)
	assert.Len(t, partials, 1)
	assert.Empty(t, res.Form.Suggestions)
}

func TestBillingService_SelectSuggestion_MRPFailure(t *testing.T) {
	inv := pharmacyInventory(10)
	inv.MRPFunc = func(ctx context.Context, med entity.Medicine) (money.Amount, error) {
		return 0, errors.New("timeout")
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.SelectSuggestion(ctx, form.ID, form.Rows[0].ID, paracetamol)
	require.NoError(t, err)
	require.NotNil(t, res.Alert)
	assert.Equal(t, apperror.KindLookup, res.Alert.Kind)
	assert.True(t, res.Form.Rows[0].IsBlank())
}

func TestBillingService_Submit_ValidationBlocksNetworkCall(t *testing.T) {
	inv := pharmacyInventory(100)
	inv.SubmitBillingFunc = func(ctx context.Context, sub billing.Submission) (string, error) {
		t.Fatal("submission must not reach the remote API")
		return "", nil
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	addMedicine(t, svc, form.ID, form.Rows[0].ID, "1")
	_, err = svc.SetPatient(ctx, form.ID, billing.Patient{Name: "John3", MobileNo: "9876543210"})
	require.NoError(t, err)
	_, err = svc.SetCashGiven(ctx, form.ID, "10")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, form.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	assert.Equal(t, "Patient Name should not contain numbers", err.Error())

	// partially filled row
	_, err = svc.SetPatient(ctx, form.ID, billing.Patient{Name: "John", MobileNo: "9876543210"})
	require.NoError(t, err)
	_, err = svc.TypeMedicineName(ctx, form.ID, form.Rows[1].ID, "Paracetamol 500mg")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, form.ID)
	assert.Equal(t, "Please fill in all fields", err.Error())
}

func TestBillingService_Submit_Failure(t *testing.T) {
	inv := pharmacyInventory(100)
	inv.SubmitBillingFunc = func(ctx context.Context, sub billing.Submission) (string, error) {
		return "", inventory.ErrUnavailable
	}
	svc := newBillingService(t, inv, newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	addMedicine(t, svc, form.ID, form.Rows[0].ID, "1")
	_, err = svc.SetPatient(ctx, form.ID, billing.Patient{Name: "John", MobileNo: "9876543210"})
	require.NoError(t, err)
	_, err = svc.SetCashGiven(ctx, form.ID, "10")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, form.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindSubmission))
	assert.ErrorIs(t, err, inventory.ErrUnavailable)

	got, err := svc.GetSession(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FormStateEditing, got.State)
	assert.Equal(t, 1, got.Rows[0].Quantity)
	assert.Equal(t, "John", got.Patient.Name)
}

func TestBillingService_Submit_ArchiveFailureIsNotFatal(t *testing.T) {
	invoices := newMemoryInvoiceRepo()
	invoices.err = errors.New("db down")
	svc := newBillingService(t, pharmacyInventory(100), invoices)
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	addMedicine(t, svc, form.ID, form.Rows[0].ID, "1")
	_, err = svc.SetPatient(ctx, form.ID, billing.Patient{Name: "John", MobileNo: "9876543210"})
	require.NoError(t, err)
	_, err = svc.SetCashGiven(ctx, form.ID, "2")
	require.NoError(t, err)

	res, err := svc.Submit(ctx, form.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FormStateSubmitted, res.Form.State)

	_, err = svc.ArchivedInvoice(ctx, "INV-100")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

type mockSubmitKeys struct {
	DeleteByScopeFunc func(ctx context.Context, scope string) error
}

func (m *mockSubmitKeys) GetByKey(ctx context.Context, key, scope string) (*entity.IdempotencyKey, error) {
	return nil, nil
}

func (m *mockSubmitKeys) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return nil
}

func (m *mockSubmitKeys) DeleteByScope(ctx context.Context, scope string) error {
	return m.DeleteByScopeFunc(ctx, scope)
}

func (m *mockSubmitKeys) DeleteExpired(ctx context.Context) error {
	return nil
}

func TestBillingService_CancelClearsSubmitKeys(t *testing.T) {
	tests := []struct {
		name      string
		deleteErr error
		wantErr   bool
	}{
		{name: "keys cleared"},
		{name: "clear fails", deleteErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newBillingService(t, pharmacyInventory(100), newMemoryInvoiceRepo())
			ctx := context.Background()
			form, err := svc.CreateSession(ctx)
			require.NoError(t, err)
			addMedicine(t, svc, form.ID, form.Rows[0].ID, "4")

			var cleared []string
			svc.submitKeys = &mockSubmitKeys{DeleteByScopeFunc: func(ctx context.Context, scope string) error {
				cleared = append(cleared, scope)
				return tt.deleteErr
			}}

			res, err := svc.Cancel(ctx, form.ID)
			assert.Equal(t, []string{form.ID.String()}, cleared)
			if tt.wantErr {
				require.Error(t, err)
				got, err := svc.GetSession(ctx, form.ID)
				require.NoError(t, err)
				assert.Equal(t, 4, got.Ledger.Reserved("Paracetamol"), "bill kept when keys remain")
				return
			}
			require.NoError(t, err)
			assert.Empty(t, res.Form.Ledger)
		})
	}
}

func TestBillingService_RemoveRow(t *testing.T) {
	svc := newBillingService(t, pharmacyInventory(100), newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	addMedicine(t, svc, form.ID, form.Rows[0].ID, "10")
	addMedicine(t, svc, form.ID, form.Rows[1].ID, "5")

	res, err := svc.RemoveRow(ctx, form.ID, form.Rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Form.Ledger.Reserved("Paracetamol"))
	assert.Len(t, res.Form.Rows, 2)

	res, err = svc.AddRow(ctx, form.ID)
	require.NoError(t, err)
	assert.Len(t, res.Form.Rows, 3)
}

func TestBillingService_CashGivenCleared(t *testing.T) {
	svc := newBillingService(t, pharmacyInventory(100), newMemoryInvoiceRepo())
	ctx := context.Background()
	form, err := svc.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.SetCashGiven(ctx, form.ID, "50")
	require.NoError(t, err)
	require.NotNil(t, res.Form.Totals.Balance)

	res, err = svc.SetCashGiven(ctx, form.ID, "")
	require.NoError(t, err)
	assert.Nil(t, res.Form.Totals.CashGiven)
	assert.Nil(t, res.Form.Totals.Balance)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
