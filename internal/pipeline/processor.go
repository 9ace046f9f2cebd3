package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hoadon-ai/extractor/internal/common"
	"github.com/hoadon-ai/extractor/internal/entity"
	"github.com/hoadon-ai/extractor/internal/llm"
	"github.com/hoadon-ai/extractor/internal/normalize"
)

// Config holds behavior flags for the processor.
type Config struct {
	// StrictSchema hard-fails an extraction whose record violates the
	// invoice JSON Schema. When false (the default), a shape failure is
	// reported as a warning and the record is surfaced best-effort.
	StrictSchema bool
}

// Result is the outcome of one successful extraction.
type Result struct {
	Record   entity.InvoiceRecord
	RawJSON  []byte // the sanitized model output the record was parsed from
	Warnings []string
	Elapsed  time.Duration
}

// Processor runs one document through normalize → prompt/complete →
// sanitize → validate. Synchronous and one-shot: no retry, no caching, no
// shared state across invocations.
type Processor struct {
	logger     *slog.Logger
	cfg        Config
	normalizer *normalize.Normalizer
	client     llm.CompletionClient
}

func NewProcessor(logger *slog.Logger, cfg Config, n *normalize.Normalizer, client llm.CompletionClient) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, cfg: cfg, normalizer: n, client: client}
}

// IsConfigured reports whether the underlying model client can run.
func (p *Processor) IsConfigured() bool {
	return p.client.IsConfigured()
}

// ProcessDocument extracts a structured invoice record from one uploaded
// document. Every failure is terminal for this attempt only; the processor
// stays ready for the next document.
func (p *Processor) ProcessDocument(ctx context.Context, doc normalize.Document) (Result, error) {
	if !p.client.IsConfigured() {
		return Result{}, common.NewAppError("CONFIG_ERROR", "model client is not configured", common.ErrConfiguration)
	}

	rid := uuid.New().String()
	start := time.Now()
	p.logger.Info("pipeline.start", "req_id", rid, "name", doc.Name, "mime", doc.MIMEType, "bytes", len(doc.Content))

	norm, err := p.normalizer.Normalize(doc)
	if err != nil {
		p.logger.Warn("pipeline.normalize_failed", "req_id", rid, "name", doc.Name, "error", err)
		return Result{}, err
	}

	req := llm.ExtractRequest{
		ImageBytes: norm.ImageBytes,
		ImageMIME:  norm.ImageMIME,
		Text:       norm.Text,
	}

	reply, err := p.client.Complete(ctx, req)
	if err != nil {
		p.logger.Error("pipeline.model_failed", "req_id", rid, "error", err)
		return Result{}, err
	}

	record, rawJSON, err := llm.ExtractJSONObject(reply)
	if err != nil {
		// The raw text is diagnostic only; it is never surfaced as data.
		p.logger.Warn("pipeline.parse_failed", "req_id", rid, "error", err, "raw", reply)
		return Result{}, err
	}

	var warnings []string
	if ok, reason := llm.ValidateShape(record); !ok {
		if p.cfg.StrictSchema {
			p.logger.Warn("pipeline.shape_failed", "req_id", rid, "reason", reason)
			return Result{}, common.NewAppError("SHAPE_VALIDATION_ERROR", reason, common.ErrShapeValidation)
		}
		p.logger.Warn("pipeline.shape_warning", "req_id", rid, "reason", reason)
		warnings = append(warnings, reason)
	}
	if p.cfg.StrictSchema {
		if err := llm.ValidateJSONAgainstSchema(llm.BuildInvoiceJSONSchema(), rawJSON); err != nil {
			p.logger.Warn("pipeline.schema_failed", "req_id", rid, "error", err)
			return Result{}, common.NewAppError("SHAPE_VALIDATION_ERROR", "record violates invoice schema",
				fmt.Errorf("%w: %w", common.ErrShapeValidation, err))
		}
	}

	var typed entity.InvoiceRecord
	if err := json.Unmarshal(rawJSON, &typed); err != nil {
		p.logger.Warn("pipeline.bind_failed", "req_id", rid, "error", err)
		return Result{}, common.NewAppError("RESPONSE_PARSE_ERROR", "record does not bind to invoice shape",
			fmt.Errorf("%w: %w", common.ErrResponseParse, err))
	}

	elapsed := time.Since(start)
	p.logger.Info("pipeline.ok",
		"req_id", rid,
		"name", doc.Name,
		"items", len(typed.Items),
		"warnings", len(warnings),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return Result{Record: typed, RawJSON: rawJSON, Warnings: warnings, Elapsed: elapsed}, nil
}
