package request

// BillingHistoryRequest filters the billing history report
type BillingHistoryRequest struct {
	Mobile  string `form:"mobile"`
	From    string `form:"from"`
	To      string `form:"to"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// StockReportRequest filters the stock and purchase reports. From and To
// apply to the expiry date for stock and to the purchase date for purchases.
type StockReportRequest struct {
	Name    string `form:"name"`
	From    string `form:"from"`
	To      string `form:"to"`
	Format  string `form:"format"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}
