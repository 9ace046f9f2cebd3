package llm

import "encoding/base64"

// SystemPromptV1 is the extraction contract sent to the model. The field
// names and rules below are a versioned interface: every downstream consumer
// (sanitizer, validator, exports) expects exactly this schema, so any change
// here must bump the version and be reviewed as an API change.
const SystemPromptV1 = `You are an AI assistant specialized in extracting data from Vietnamese invoices (Hóa đơn VAT/GTGT).

Extract the following information and return it as a valid JSON object with this exact structure:

{
    "company_info": {
        "seller_name": "Company name selling the service/product",
        "seller_tax_code": "Tax code of seller (Mã số thuế)",
        "seller_address": "Address of seller",
        "buyer_name": "Company name buying the service/product",
        "buyer_tax_code": "Tax code of buyer (Mã số thuế)",
        "buyer_address": "Address of buyer"
    },
    "invoice_details": {
        "invoice_number": "Invoice number (Số hóa đơn)",
        "invoice_date": "Invoice date (Ngày hóa đơn)",
        "serial": "Invoice serial (Ký hiệu)",
        "form_number": "Form number (Mẫu số)",
        "currency": "Currency (VND, USD, etc.)"
    },
    "financial_info": {
        "total_amount_before_tax": 0,
        "vat_rate": 10,
        "vat_amount": 0,
        "total_amount_after_tax": 0
    },
    "items": [
        {
            "description": "Service/product description",
            "quantity": 1,
            "unit": "Unit (cái, kg, etc.)",
            "unit_price": 0,
            "amount": 0
        }
    ]
}

IMPORTANT RULES:
1. If any field is not found, set it to null
2. All monetary values must be numbers (no currency symbols or formatting)
3. Quantities must be numbers
4. Return ONLY valid JSON, no additional text or markdown
5. Preserve Vietnamese characters correctly
6. VAT rate should be the percentage number (10 for 10%, not 0.1)

Focus on accuracy and Vietnamese text recognition. Extract all visible information from the invoice.`

const (
	imageTaskInstruction = "Extract all information from this Vietnamese invoice image. Return only valid JSON:"
	textTaskInstruction  = "Extract information from this Vietnamese invoice text. Return only valid JSON:"
)

// BuildMessages produces the message list for one chat/completions call:
// one system instruction and one user turn, text-only or text+image. No
// conversation history is retained across documents.
func BuildMessages(req ExtractRequest) []map[string]any {
	system := map[string]any{"role": "system", "content": SystemPromptV1}

	var user map[string]any
	if req.IsImage() {
		user = map[string]any{
			"role": "user",
			"content": []map[string]any{
				{"type": "text", "text": imageTaskInstruction},
				{
					"type": "image_url",
					"image_url": map[string]any{
						"url":    DataURL(req.ImageMIME, req.ImageBytes),
						"detail": "high",
					},
				},
			},
		}
	} else {
		user = map[string]any{
			"role":    "user",
			"content": textTaskInstruction + "\n\n" + req.Text,
		}
	}
	return []map[string]any{system, user}
}

// DataURL encodes image bytes as a data URI transport payload.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
