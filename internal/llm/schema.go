package llm

// RequiredTopLevelKeys are the four groups every extracted record must
// carry. The shape gate checks presence only; the JSON Schema below goes
// deeper.
var RequiredTopLevelKeys = []string{"company_info", "invoice_details", "financial_info", "items"}

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map, mirroring the structure promised in SystemPromptV1. It is
// used for the optional strict validation pass; leaves stay nullable because
// the prompt tells the model to emit null for missing fields.
func BuildInvoiceJSONSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": RequiredTopLevelKeys,
		"properties": map[string]any{
			"company_info": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"seller_name":     nullableString(),
					"seller_tax_code": nullableString(),
					"seller_address":  nullableString(),
					"buyer_name":      nullableString(),
					"buyer_tax_code":  nullableString(),
					"buyer_address":   nullableString(),
				},
			},
			"invoice_details": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"invoice_number": nullableString(),
					"invoice_date":   nullableString(),
					"serial":         nullableString(),
					"form_number":    nullableString(),
					"currency":       nullableString(),
				},
			},
			"financial_info": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"total_amount_before_tax": nullableNumber(),
					"vat_rate":                nullableNumber(),
					"vat_amount":              nullableNumber(),
					"total_amount_after_tax":  nullableNumber(),
				},
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": nullableString(),
						"quantity":    nullableNumber(),
						"unit":        nullableString(),
						"unit_price":  nullableNumber(),
						"amount":      nullableNumber(),
					},
				},
			},
		},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}
