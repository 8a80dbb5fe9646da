// Package inventory is the client for the remote pharmacy API that owns
// medicine stock, prices, bills and user accounts.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/pharmacy-api/internal/domain/billing"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

var (
	// ErrNotFound is returned when the remote API answers 404
	ErrNotFound = errors.New("inventory: not found")
	// ErrUnavailable is returned for transport failures and other non-2xx answers
	ErrUnavailable = errors.New("inventory: service unavailable")
	// ErrRejected is returned when the remote API refuses a request in its body status
	ErrRejected = errors.New("inventory: request rejected")
)

// StatusError carries the remote status and a trimmed body
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inventory status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps the status onto ErrNotFound or ErrUnavailable
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrUnavailable
}

// StockStatus is the expiry check for one medicine
type StockStatus struct {
	ExpiredOn *time.Time
}

// IsExpired reports whether the stock expired before the given day
func (s StockStatus) IsExpired(now time.Time) bool {
	if s.ExpiredOn == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := s.ExpiredOn.Date()
	return time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC).Before(today)
}

// Client talks to the remote pharmacy API
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with a per-request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// AvailableQuantity returns the stock left for a medicine and dosage
func (c *Client) AvailableQuantity(ctx context.Context, med entity.Medicine) (int, error) {
	var out quantityResponse
	if err := c.get(ctx, "quantity", medicineQuery(med), &out); err != nil {
		return 0, err
	}
	return int(out.AvailableQuantity), nil
}

// MRP returns the current retail price of a medicine and dosage
func (c *Client) MRP(ctx context.Context, med entity.Medicine) (money.Amount, error) {
	var out mrpResponse
	if err := c.get(ctx, "getMRP", medicineQuery(med), &out); err != nil {
		return money.Zero, err
	}
	return out.MRP, nil
}

// Suggestions autocompletes a partially typed medicine name
func (c *Client) Suggestions(ctx context.Context, partial string) ([]entity.Medicine, error) {
	var out suggestionsResponse
	q := url.Values{}
	q.Set("partialName", partial)
	if err := c.get(ctx, "suggestions", q, &out); err != nil {
		return nil, err
	}

	list := make([]entity.Medicine, 0, len(out.Suggestions))
	for _, s := range out.Suggestions {
		list = append(list, entity.Medicine{Name: s.MedicineName, Dosage: s.Dosage})
	}
	return list, nil
}

// StockStatus looks up whether a medicine is stocked and when it expires
func (c *Client) StockStatus(ctx context.Context, med entity.Medicine) (StockStatus, error) {
	var out stockStatusResponse
	if err := c.get(ctx, "allstock", medicineQuery(med), &out); err != nil {
		return StockStatus{}, err
	}
	return StockStatus{ExpiredOn: out.Expired.ptr()}, nil
}

// SubmitBilling persists a bill and returns the invoice number assigned to it
func (c *Client) SubmitBilling(ctx context.Context, sub billing.Submission) (string, error) {
	req := billingRequest{
		MedicineRows: make([]billingRow, 0, len(sub.Rows)),
		SubTotal:     sub.SubTotal.String(),
		Discount:     sub.Discount.String(),
		GrandTotal:   sub.GrandTotal.String(),
		PatientName:  sub.PatientName,
		DoctorName:   sub.DoctorName,
		MobileNo:     sub.MobileNo,
		CashGiven:    sub.CashGiven.String(),
		Balance:      sub.Balance.String(),
		MedicineName: sub.MedicineNames(),
	}
	for _, r := range sub.Rows {
		req.MedicineRows = append(req.MedicineRows, billingRow{
			ID:           r.RowID.String(),
			MedicineName: r.MedicineName,
			Qty:          strconv.Itoa(r.Quantity),
			QtyPrice:     r.UnitPrice.String(),
			Total:        r.Total.String(),
		})
	}

	var out billingResponse
	if err := c.postJSON(ctx, "billing", req, &out); err != nil {
		return "", err
	}
	if out.InvoiceNumber == "" {
		return "", fmt.Errorf("%w: no invoice number in response", ErrUnavailable)
	}
	return string(out.InvoiceNumber), nil
}

// BillingHistory lists every stored bill
func (c *Client) BillingHistory(ctx context.Context) ([]entity.BillingRecord, error) {
	var rows []billingRecordWire
	if err := c.get(ctx, "billingdata", nil, &rows); err != nil {
		return nil, err
	}

	records := make([]entity.BillingRecord, 0, len(rows))
	for _, w := range rows {
		rec, err := w.toEntity()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// BillingRecord fetches one bill. The remote API answers with one row per
// stored line group; their items are merged in order.
func (c *Client) BillingRecord(ctx context.Context, invoiceNo string) (*entity.BillingRecord, error) {
	var rows []billingRecordWire
	if err := c.get(ctx, "billingdata/"+url.PathEscape(invoiceNo), nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	rec, err := rows[0].toEntity()
	if err != nil {
		return nil, err
	}
	for _, w := range rows[1:] {
		more, err := w.toEntity()
		if err != nil {
			return nil, err
		}
		rec.Items = append(rec.Items, more.Items...)
	}
	return &rec, nil
}

// Stock lists the current stock lots
func (c *Client) Stock(ctx context.Context) ([]entity.StockItem, error) {
	return c.stockItems(ctx, "stock")
}

// Purchases lists every recorded purchase
func (c *Client) Purchases(ctx context.Context) ([]entity.StockItem, error) {
	return c.stockItems(ctx, "allpurchase")
}

func (c *Client) stockItems(ctx context.Context, path string) ([]entity.StockItem, error) {
	var rows []stockItemWire
	if err := c.get(ctx, path, nil, &rows); err != nil {
		return nil, err
	}
	items := make([]entity.StockItem, 0, len(rows))
	for _, w := range rows {
		items = append(items, w.toEntity())
	}
	return items, nil
}

// AddPurchase records a new purchase lot
func (c *Client) AddPurchase(ctx context.Context, in entity.MedicineIntake) error {
	req := purchaseRequest{
		MedicineName:   in.MedicineName,
		BrandName:      in.BrandName,
		OtherDetails:   in.OtherDetails,
		PurchasePrice:  in.PurchasePrice.String(),
		TotalQty:       strconv.Itoa(in.TotalQty),
		PurchaseAmount: in.PurchaseAmount.String(),
		Dosage:         in.Dosage,
		DosageUnit:     in.DosageUnit,
		ExpiryDate:     in.ExpiryDate.Format("2006-01-02"),
		MRP:            in.MRP.String(),
	}
	return c.postJSON(ctx, "purchase", req, nil)
}

// EmailRegistered reports whether an account already uses the email.
// The remote API signals a taken address with status 400 in the body.
func (c *Client) EmailRegistered(ctx context.Context, email string) (bool, error) {
	q := url.Values{}
	q.Set("email", email)
	var out statusResponse
	if err := c.get(ctx, "check-email", q, &out); err != nil {
		return false, err
	}
	return int(out.Status) == http.StatusBadRequest, nil
}

// Register creates a user account. The remote API expects a multipart form.
func (c *Client) Register(ctx context.Context, reg entity.Registration) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := [][2]string{
		{"user_first_name", reg.FirstName},
		{"user_last_name", reg.LastName},
		{"user_email", reg.Email},
		{"user_mobile_number", reg.MobileNumber},
		{"user_role", reg.Role},
		{"user_password", reg.Password},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("register", nil), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out statusResponse
	if err := c.do(req, &out); err != nil {
		return err
	}
	if out.Status != 0 && int(out.Status) != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = "registration refused"
		}
		return fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, q), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, req.URL.Path, err)
	}
	return nil
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func medicineQuery(med entity.Medicine) url.Values {
	q := url.Values{}
	q.Set("medicinename", med.Name)
	q.Set("dosage", med.Dosage)
	return q
}
