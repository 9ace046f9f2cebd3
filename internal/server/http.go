package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoadon-ai/extractor/constants"
	"github.com/hoadon-ai/extractor/internal/common"
	"github.com/hoadon-ai/extractor/internal/export"
	"github.com/hoadon-ai/extractor/internal/normalize"
	"github.com/hoadon-ai/extractor/internal/pipeline"
)

// Server exposes the extraction pipeline over HTTP: one multipart upload in,
// the structured record or a downloadable artifact out. No state is kept
// between requests.
type Server struct {
	logger      *slog.Logger
	processor   *pipeline.Processor
	exporter    *export.Service
	maxUploadMB int64
}

func New(logger *slog.Logger, p *pipeline.Processor, e *export.Service, maxUploadMB int64) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &Server{logger: logger, processor: p, exporter: e, maxUploadMB: maxUploadMB}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = s.maxUploadMB << 20

	r.GET("/healthz", s.handleHealth)
	r.POST("/api/v1/extract", s.handleExtract)
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	if !s.processor.IsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unconfigured", "error": "OPENAI_API_KEY is not set"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleExtract accepts one invoice file and runs the pipeline. With
// ?format=json|csv|xlsx the matching artifact is returned as an attachment;
// otherwise the response body carries the record plus any validation
// warnings.
func (s *Server) handleExtract(c *gin.Context) {
	if !s.processor.IsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction is not configured: OPENAI_API_KEY is not set"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing multipart field 'file'"})
		return
	}
	if fileHeader.Size > s.maxUploadMB<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload exceeds size limit"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if constants.MapMIMEToFormat(mimeType) == "" {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported media type; accepted: PDF, PNG, JPEG"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open upload"})
		return
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	doc := normalize.Document{
		Name:     fileHeader.Filename,
		Content:  content,
		MIMEType: mimeType,
	}

	result, err := s.processor.ProcessDocument(c.Request.Context(), doc)
	if err != nil {
		status, msg := mapError(err)
		s.logger.Warn("http.extract.failed", "name", doc.Name, "status", status, "error", err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	switch format := c.Query("format"); format {
	case "":
		c.JSON(http.StatusOK, gin.H{
			"record":     result.Record,
			"warnings":   result.Warnings,
			"elapsed_ms": result.Elapsed.Milliseconds(),
		})
	case "json", "csv", "xlsx":
		artifact, err := s.exporter.ArtifactFor(doc.Name, format, result.Record)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
		c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format; accepted: json, csv, xlsx"})
	}
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrConfiguration):
		return http.StatusServiceUnavailable, "extraction is not configured"
	case errors.Is(err, common.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported media type; accepted: PDF, PNG, JPEG"
	case errors.Is(err, common.ErrNormalization):
		return http.StatusUnprocessableEntity, "no usable content in the uploaded document"
	case errors.Is(err, common.ErrResponseParse), errors.Is(err, common.ErrShapeValidation):
		return http.StatusUnprocessableEntity, "could not extract data from the invoice"
	case errors.Is(err, common.ErrModelInvocation):
		return http.StatusBadGateway, "invoice processing failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
