package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hoadon-ai/extractor/internal/entity"
)

// Service serializes a validated invoice record into its downloadable
// forms: pretty-printed JSON, a flattened CSV table, and an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Artifact is one downloadable serialization.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// JSONBytes re-serializes the record with two-space indentation. HTML
// escaping is off so Vietnamese diacritics survive literally instead of as
// \u escapes.
func (s *Service) JSONBytes(rec entity.InvoiceRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Flattened CSV column set: the union of summary columns and item columns.
// The "Type" field discriminates the heterogeneous rows.
var csvHeader = []string{
	"Type",
	"Seller Name", "Seller Tax Code", "Buyer Name", "Buyer Tax Code",
	"Invoice Number", "Invoice Date",
	"Total Before Tax", "VAT Rate", "VAT Amount", "Total After Tax",
	"Description", "Quantity", "Unit", "Unit Price", "Amount",
}

// CSVBytes flattens the record: row 0 is the invoice-level summary, rows
// 1..N are the line items in original order. Numeric fields absent from the
// record become 0 here, not null, to keep the column numeric.
func (s *Service) CSVBytes(rec entity.InvoiceRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	ci, id, fi := rec.CompanyInfo, rec.InvoiceDetails, rec.FinancialInfo
	summary := []string{
		"Invoice Summary",
		entity.StringOrEmpty(ci.SellerName),
		entity.StringOrEmpty(ci.SellerTaxCode),
		entity.StringOrEmpty(ci.BuyerName),
		entity.StringOrEmpty(ci.BuyerTaxCode),
		entity.StringOrEmpty(id.InvoiceNumber),
		entity.StringOrEmpty(id.InvoiceDate),
		formatNumber(entity.NumberOrZero(fi.TotalAmountBeforeTax)),
		formatNumber(entity.NumberOrZero(fi.VATRate)),
		formatNumber(entity.NumberOrZero(fi.VATAmount)),
		formatNumber(entity.NumberOrZero(fi.TotalAmountAfterTax)),
		"", "", "", "", "",
	}
	if err := w.Write(summary); err != nil {
		return nil, fmt.Errorf("write summary row: %w", err)
	}

	for i, item := range rec.Items {
		row := []string{
			fmt.Sprintf("Item %d", i+1),
			"", "", "", "", "", "", "", "", "", "",
			entity.StringOrEmpty(item.Description),
			formatNumber(entity.NumberOrZero(item.Quantity)),
			entity.StringOrEmpty(item.Unit),
			formatNumber(entity.NumberOrZero(item.UnitPrice)),
			formatNumber(entity.NumberOrZero(item.Amount)),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write item row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSXBytes renders the record as a single-sheet workbook: a summary block
// followed by the item table.
func (s *Service) XLSXBytes(rec entity.InvoiceRecord) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Invoice"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	ci, id, fi := rec.CompanyInfo, rec.InvoiceDetails, rec.FinancialInfo
	summary := [][2]any{
		{"Seller Name", entity.StringOrEmpty(ci.SellerName)},
		{"Seller Tax Code", entity.StringOrEmpty(ci.SellerTaxCode)},
		{"Seller Address", entity.StringOrEmpty(ci.SellerAddress)},
		{"Buyer Name", entity.StringOrEmpty(ci.BuyerName)},
		{"Buyer Tax Code", entity.StringOrEmpty(ci.BuyerTaxCode)},
		{"Buyer Address", entity.StringOrEmpty(ci.BuyerAddress)},
		{"Invoice Number", entity.StringOrEmpty(id.InvoiceNumber)},
		{"Invoice Date", entity.StringOrEmpty(id.InvoiceDate)},
		{"Serial", entity.StringOrEmpty(id.Serial)},
		{"Form Number", entity.StringOrEmpty(id.FormNumber)},
		{"Currency", entity.StringOrEmpty(id.Currency)},
		{"Total Before Tax", entity.NumberOrZero(fi.TotalAmountBeforeTax)},
		{"VAT Rate (%)", entity.NumberOrZero(fi.VATRate)},
		{"VAT Amount", entity.NumberOrZero(fi.VATAmount)},
		{"Total After Tax", entity.NumberOrZero(fi.TotalAmountAfterTax)},
	}
	row := 1
	for _, kv := range summary {
		write(1, row, kv[0])
		write(2, row, kv[1])
		row++
	}

	row++
	itemHeader := []string{"#", "Description", "Quantity", "Unit", "Unit Price", "Amount"}
	for i, h := range itemHeader {
		write(i+1, row, h)
	}
	for i, item := range rec.Items {
		row++
		write(1, row, i+1)
		write(2, row, entity.StringOrEmpty(item.Description))
		write(3, row, entity.NumberOrZero(item.Quantity))
		write(4, row, entity.StringOrEmpty(item.Unit))
		write(5, row, entity.NumberOrZero(item.UnitPrice))
		write(6, row, entity.NumberOrZero(item.Amount))
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 42)
	_ = f.SetColWidth(sheet, "C", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Formats lists the artifact formats in the order they are produced.
var Formats = []string{"json", "csv", "xlsx"}

// ArtifactFor serializes the record into a single format. Download paths
// that want one file use this so the other serializations are never built.
func (s *Service) ArtifactFor(uploadName, format string, rec entity.InvoiceRecord) (Artifact, error) {
	var (
		data        []byte
		contentType string
		err         error
	)
	switch format {
	case "json":
		data, err = s.JSONBytes(rec)
		contentType = "application/json"
	case "csv":
		data, err = s.CSVBytes(rec)
		contentType = "text/csv"
	case "xlsx":
		data, err = s.XLSXBytes(rec)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return Artifact{}, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename:    uploadName + "_extracted." + format,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Artifacts produces the full downloadable set for one extraction. File
// names are the upload's name plus fixed suffixes.
func (s *Service) Artifacts(uploadName string, rec entity.InvoiceRecord) ([]Artifact, error) {
	start := time.Now()

	artifacts := make([]Artifact, 0, len(Formats))
	for _, format := range Formats {
		a, err := s.ArtifactFor(uploadName, format, rec)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	s.logger.Info("export.ok",
		"name", uploadName,
		"items", len(rec.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return artifacts, nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}
