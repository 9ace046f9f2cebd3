package llm

import "context"

// ExtractRequest carries the normalized document content for one model
// call. Exactly one variant is populated: ImageBytes+ImageMIME for image
// uploads, Text for PDF uploads.
type ExtractRequest struct {
	ImageBytes []byte
	ImageMIME  string
	Text       string
}

// IsImage reports which request variant is populated.
func (r ExtractRequest) IsImage() bool {
	return len(r.ImageBytes) > 0
}

// CompletionClient is the interface the pipeline depends on. It issues a
// single synchronous request to a hosted completion endpoint and returns the
// raw textual completion. No retry, no streaming.
type CompletionClient interface {
	// IsConfigured reports whether the client holds the credentials it
	// needs. An unconfigured client makes the whole pipeline refuse to run.
	IsConfigured() bool

	// Complete sends one request and returns the model's raw text reply.
	Complete(ctx context.Context, req ExtractRequest) (string, error)
}
