package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hoadon-ai/extractor/internal/entity"
)

func testService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

func sampleRecord() entity.InvoiceRecord {
	return entity.InvoiceRecord{
		CompanyInfo: entity.CompanyInfo{
			SellerName:    strPtr("Công ty TNHH Thương mại Điện tử"),
			SellerTaxCode: strPtr("0312345678"),
			BuyerName:     strPtr("Công ty Cổ phần Dịch vụ"),
			BuyerTaxCode:  strPtr("0398765432"),
		},
		InvoiceDetails: entity.InvoiceDetails{
			InvoiceNumber: strPtr("0001234"),
			InvoiceDate:   strPtr("15/08/2025"),
			Serial:        strPtr("AA/25E"),
			Currency:      strPtr("VND"),
		},
		FinancialInfo: entity.FinancialInfo{
			TotalAmountBeforeTax: numPtr(1000000),
			VATRate:              numPtr(10),
			VATAmount:            numPtr(100000),
			TotalAmountAfterTax:  numPtr(1100000),
		},
		Items: []entity.LineItem{
			{Description: strPtr("Dịch vụ tư vấn"), Quantity: numPtr(2), Unit: strPtr("giờ"), UnitPrice: numPtr(400000), Amount: numPtr(800000)},
			{Description: strPtr("Phí vận chuyển"), Quantity: numPtr(1), UnitPrice: numPtr(200000), Amount: numPtr(200000)},
		},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := testService()
	rec := sampleRecord()

	data, err := s.JSONBytes(rec)
	if err != nil {
		t.Fatalf("JSONBytes() error: %v", err)
	}

	var back entity.InvoiceRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	if !reflect.DeepEqual(rec, back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, rec)
	}
}

func TestJSONPreservesDiacritics(t *testing.T) {
	s := testService()
	data, err := s.JSONBytes(sampleRecord())
	if err != nil {
		t.Fatalf("JSONBytes() error: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Công ty TNHH Thương mại Điện tử") {
		t.Errorf("diacritics were escaped instead of preserved:\n%s", out)
	}
	if strings.Contains(out, `\u`) {
		t.Errorf("output contains unicode escapes:\n%s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("output is not indented:\n%s", out)
	}
}

func TestCSVRowLayout(t *testing.T) {
	s := testService()
	rec := sampleRecord()

	data, err := s.CSVBytes(rec)
	if err != nil {
		t.Fatalf("CSVBytes() error: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	// header + summary + one row per item
	if want := 1 + 1 + len(rec.Items); len(rows) != want {
		t.Fatalf("got %d rows, want %d", len(rows), want)
	}
	if rows[1][0] != "Invoice Summary" {
		t.Errorf("row 0 discriminator = %q, want \"Invoice Summary\"", rows[1][0])
	}
	for i := range rec.Items {
		if got, want := rows[2+i][0], fmt.Sprintf("Item %d", i+1); got != want {
			t.Errorf("item row %d discriminator = %q, want %q", i, got, want)
		}
	}
}

func TestCSVSummaryValues(t *testing.T) {
	s := testService()
	data, err := s.CSVBytes(sampleRecord())
	if err != nil {
		t.Fatalf("CSVBytes() error: %v", err)
	}
	rows, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	header, summary := rows[0], rows[1]

	byCol := map[string]string{}
	for i, h := range header {
		byCol[h] = summary[i]
	}
	if byCol["Invoice Number"] != "0001234" {
		t.Errorf("Invoice Number = %q", byCol["Invoice Number"])
	}
	if byCol["VAT Rate"] != "10" {
		t.Errorf("VAT Rate = %q, want bare percentage", byCol["VAT Rate"])
	}
	if byCol["Total After Tax"] != "1100000" {
		t.Errorf("Total After Tax = %q, want bare number", byCol["Total After Tax"])
	}
}

func TestCSVDefaultsAbsentNumericsToZero(t *testing.T) {
	s := testService()
	rec := entity.InvoiceRecord{
		Items: []entity.LineItem{{Description: strPtr("hàng mẫu")}},
	}
	data, err := s.CSVBytes(rec)
	if err != nil {
		t.Fatalf("CSVBytes() error: %v", err)
	}
	rows, _ := csv.NewReader(bytes.NewReader(data)).ReadAll()
	header, item := rows[0], rows[2]

	for i, h := range header {
		switch h {
		case "Quantity", "Unit Price", "Amount":
			if item[i] != "0" {
				t.Errorf("%s = %q, want 0 (numeric column must stay numeric)", h, item[i])
			}
		}
	}
}

func TestXLSXWorkbook(t *testing.T) {
	s := testService()
	data, err := s.XLSXBytes(sampleRecord())
	if err != nil {
		t.Fatalf("XLSXBytes() error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer func() { _ = f.Close() }()

	got, err := f.GetCellValue("Invoice", "B7")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "0001234" {
		t.Errorf("invoice number cell = %q, want 0001234", got)
	}
}

func TestArtifactFor(t *testing.T) {
	s := testService()
	rec := sampleRecord()

	tests := []struct {
		format   string
		wantType string
	}{
		{format: "json", wantType: "application/json"},
		{format: "csv", wantType: "text/csv"},
		{format: "xlsx", wantType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			a, err := s.ArtifactFor("scan.png", tt.format, rec)
			if err != nil {
				t.Fatalf("ArtifactFor(%s) error: %v", tt.format, err)
			}
			if want := "scan.png_extracted." + tt.format; a.Filename != want {
				t.Errorf("filename = %q, want %q", a.Filename, want)
			}
			if a.ContentType != tt.wantType {
				t.Errorf("content type = %q, want %q", a.ContentType, tt.wantType)
			}
			if len(a.Data) == 0 {
				t.Errorf("artifact %q is empty", a.Filename)
			}
		})
	}

	if _, err := s.ArtifactFor("scan.png", "pdf", rec); err == nil {
		t.Errorf("ArtifactFor accepted an unknown format")
	}
}

func TestArtifactNames(t *testing.T) {
	s := testService()
	artifacts, err := s.Artifacts("hoadon-042.pdf", sampleRecord())
	if err != nil {
		t.Fatalf("Artifacts() error: %v", err)
	}
	want := []string{
		"hoadon-042.pdf_extracted.json",
		"hoadon-042.pdf_extracted.csv",
		"hoadon-042.pdf_extracted.xlsx",
	}
	if len(artifacts) != len(want) {
		t.Fatalf("got %d artifacts, want %d", len(artifacts), len(want))
	}
	for i, a := range artifacts {
		if a.Filename != want[i] {
			t.Errorf("artifact %d = %q, want %q", i, a.Filename, want[i])
		}
		if len(a.Data) == 0 {
			t.Errorf("artifact %q is empty", a.Filename)
		}
	}
}
