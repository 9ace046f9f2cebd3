package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hoadon-ai/extractor/internal/export"
	"github.com/hoadon-ai/extractor/internal/llm"
	"github.com/hoadon-ai/extractor/internal/normalize"
	"github.com/hoadon-ai/extractor/internal/pipeline"
)

type stubClient struct {
	reply      string
	configured bool
}

func (s *stubClient) IsConfigured() bool { return s.configured }

func (s *stubClient) Complete(context.Context, llm.ExtractRequest) (string, error) {
	return s.reply, nil
}

func newTestServer(client llm.CompletionClient) *Server {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.NewProcessor(logger, pipeline.Config{}, normalize.NewNormalizer(logger), client)
	return New(logger, p, export.NewService(logger), 25)
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

const emptyGroupsReply = "```json\n{\"company_info\":{},\"invoice_details\":{},\"financial_info\":{},\"items\":[]}\n```"

func TestExtractEndpoint(t *testing.T) {
	srv := newTestServer(&stubClient{configured: true, reply: emptyGroupsReply})
	router := srv.Router()

	body, contentType := multipartUpload(t, "invoice.png", "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Record map[string]json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, key := range []string{"company_info", "invoice_details", "financial_info", "items"} {
		if _, ok := resp.Record[key]; !ok {
			t.Errorf("response record missing %q", key)
		}
	}
}

func TestExtractEndpointCSVDownload(t *testing.T) {
	srv := newTestServer(&stubClient{configured: true, reply: emptyGroupsReply})
	router := srv.Router()

	body, contentType := multipartUpload(t, "invoice.png", "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract?format=csv", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice.png_extracted.csv") {
		t.Errorf("Content-Disposition = %q, want derived filename", cd)
	}
	if !strings.Contains(rec.Body.String(), "Invoice Summary") {
		t.Errorf("csv body missing summary row:\n%s", rec.Body.String())
	}
}

func TestExtractEndpointRejectsUnsupportedMedia(t *testing.T) {
	srv := newTestServer(&stubClient{configured: true, reply: emptyGroupsReply})
	router := srv.Router()

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", rec.Code)
	}
}

func TestExtractEndpointMissingFile(t *testing.T) {
	srv := newTestServer(&stubClient{configured: true, reply: emptyGroupsReply})
	router := srv.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExtractEndpointUnparseableReply(t *testing.T) {
	srv := newTestServer(&stubClient{configured: true, reply: "not json at all"})
	router := srv.Router()

	body, contentType := multipartUpload(t, "invoice.png", "image/png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "could not extract data") {
		t.Errorf("body = %s, want extraction failure message", rec.Body.String())
	}
}

func TestHealthzUnconfigured(t *testing.T) {
	srv := newTestServer(&stubClient{configured: false})
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when the API key is absent", rec.Code)
	}
}
