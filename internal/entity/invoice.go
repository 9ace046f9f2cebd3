package entity

// InvoiceRecord is the structured output of one extraction. A record is
// either entirely absent (extraction failed) or carries all four top-level
// groups, even when individual leaf values are null. Numeric fields are bare
// numbers, never formatted strings; the VAT rate is a percentage (10 means
// 10%), never a fraction.
type InvoiceRecord struct {
	CompanyInfo    CompanyInfo    `json:"company_info"`
	InvoiceDetails InvoiceDetails `json:"invoice_details"`
	FinancialInfo  FinancialInfo  `json:"financial_info"`
	Items          []LineItem     `json:"items"`
}

// CompanyInfo identifies the seller and buyer as printed on the invoice.
type CompanyInfo struct {
	SellerName    *string `json:"seller_name"`
	SellerTaxCode *string `json:"seller_tax_code"`
	SellerAddress *string `json:"seller_address"`
	BuyerName     *string `json:"buyer_name"`
	BuyerTaxCode  *string `json:"buyer_tax_code"`
	BuyerAddress  *string `json:"buyer_address"`
}

type InvoiceDetails struct {
	InvoiceNumber *string `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date"`
	Serial        *string `json:"serial"`
	FormNumber    *string `json:"form_number"`
	Currency      *string `json:"currency"`
}

type FinancialInfo struct {
	TotalAmountBeforeTax *float64 `json:"total_amount_before_tax"`
	VATRate              *float64 `json:"vat_rate"`
	VATAmount            *float64 `json:"vat_amount"`
	TotalAmountAfterTax  *float64 `json:"total_amount_after_tax"`
}

// LineItem is one row of the invoice's goods/services table, in original
// order.
type LineItem struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	UnitPrice   *float64 `json:"unit_price"`
	Amount      *float64 `json:"amount"`
}

// StringOrEmpty dereferences an optional string for display and export.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NumberOrZero dereferences an optional number. Tabular exports default
// absent numerics to zero to keep the column numeric.
func NumberOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
