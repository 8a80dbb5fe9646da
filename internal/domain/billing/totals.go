package billing

import (
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/pkg/money"
)

// Totals is derived state of the form; it is recomputed on every change and
// never edited directly.
type Totals struct {
	SubTotal   money.Amount  `json:"sub_total"`
	Discount   money.Amount  `json:"discount"`
	GrandTotal money.Amount  `json:"grand_total"`
	CashGiven  *money.Amount `json:"cash_given"`
	Balance    *money.Amount `json:"balance"`
}

// ComputeTotals derives subtotal, grand total and balance. Balance is only
// known once cash given has been entered.
func ComputeTotals(rows []*entity.LineItem, discount money.Amount, cashGiven *money.Amount) Totals {
	var sub money.Amount
	for _, r := range rows {
		sub += r.Total
	}

	t := Totals{
		SubTotal:   sub,
		Discount:   discount,
		GrandTotal: sub - discount,
	}
	if cashGiven != nil {
		cash := *cashGiven
		balance := cash - t.GrandTotal
		t.CashGiven = &cash
		t.Balance = &balance
	}
	return t
}
