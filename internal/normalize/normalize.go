package normalize

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/hoadon-ai/extractor/constants"
	"github.com/hoadon-ai/extractor/internal/common"
)

// Document is one uploaded file: raw bytes plus the declared media type.
// It lives for a single extraction attempt and is never persisted.
type Document struct {
	Name     string
	Content  []byte
	MIMEType string
}

// Result is the canonical representation handed to the prompt builder.
// Exactly one variant is populated: ImageBytes+ImageMIME for image uploads,
// Text for PDF uploads.
type Result struct {
	Format     string // constants.PDF | constants.IMAGE
	ImageBytes []byte
	ImageMIME  string
	Text       string
	Width      int
	Height     int
	Pages      int
	Duration   time.Duration
}

type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize picks a strategy based on the declared media type. Unsupported
// types are rejected here, before any decoding work.
func (n *Normalizer) Normalize(doc Document) (Result, error) {
	start := time.Now()
	format := constants.MapMIMEToFormat(doc.MIMEType)
	switch format {
	case constants.IMAGE:
		res, err := n.normalizeImage(doc)
		res.Duration = time.Since(start)
		return res, err
	case constants.PDF:
		res, err := n.normalizePDF(doc)
		res.Duration = time.Since(start)
		return res, err
	default:
		n.logger.Warn("normalize.unsupported_media", "name", doc.Name, "mime", doc.MIMEType)
		return Result{}, common.NewAppError("UNSUPPORTED_MEDIA",
			fmt.Sprintf("unsupported media type: %q", doc.MIMEType),
			common.ErrUnsupportedMedia)
	}
}
