// Package extract wraps the external AI extraction service. Given raw
// document bytes it returns one structured candidate record or a classified
// failure. The client never retries; retry policy belongs to the ingestion
// pipeline.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"

	"github.com/resumeforge/reconcile/internal/types"
)

// DefaultModel is the extraction model. Override with RECONCILE_EXTRACT_MODEL.
const DefaultModel = "claude-sonnet-4-5-20250929"

// systemPrompt instructs the model to emit the SF-330 Section E record.
const systemPrompt = `You are a structured resume parser for U.S. Government Standard Form 330 Section E resumes.
Extract the following fields from the provided document and return them as a JSON object.

IMPORTANT PARSING INSTRUCTIONS:
- Look for ACTUAL detailed project descriptions, NOT placeholder text
- Ignore text like "Brief scope, size, cost, etc." - find the real project details
- For project scope, extract the detailed technical description that follows "Scope:"
- For costs and fees, look for actual dollar amounts (e.g., "$4.1M", "$349k")
- If information is not provided or unclear, use empty string "" rather than placeholder text

{
  "name": "",
  "role_in_contract": "",
  "years_experience": {"total": "", "with_current_firm": ""},
  "firm_name_and_location": "",
  "education": "",
  "current_professional_registration": "",
  "other_professional_qualifications": "",
  "relevant_projects": [
    {
      "title_and_location": "",
      "year_completed": {"professional_services": "", "construction": ""},
      "description": {"scope": "", "cost": "", "fee": "", "role": ""}
    }
  ]
}

There can be multiple relevant projects. Use best effort to extract and normalize each section.
Return only the JSON object, no additional text or formatting.`

// Extractor turns one resume document into a candidate record.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (*types.CandidateRecord, error)
}

// Config holds extraction client settings.
type Config struct {
	// APIKey for the extraction service. Falls back to ANTHROPIC_API_KEY.
	APIKey string

	// Model to extract with. Default: DefaultModel.
	Model string

	// MaxDocumentBytes rejects oversized input before any network call.
	// Default: 20MB (the service's own document limit is 32MB).
	MaxDocumentBytes int

	// RequestTimeout bounds one extraction call. Default: 120s.
	RequestTimeout time.Duration

	// CallsPerMinute rate-limits outbound extraction calls. 0 disables.
	// Default: 20.
	CallsPerMinute int

	// MaxTokens for the response. Default: 4096.
	MaxTokens int
}

// DefaultConfig returns the extraction configuration used in production.
func DefaultConfig() Config {
	return Config{
		Model:            DefaultModel,
		MaxDocumentBytes: 20 * 1024 * 1024,
		RequestTimeout:   120 * time.Second,
		CallsPerMinute:   20,
		MaxTokens:        4096,
	}
}

// FromEnv applies RECONCILE_EXTRACT_* environment overrides on top of c.
func (c Config) FromEnv() Config {
	if v := os.Getenv("RECONCILE_EXTRACT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	return c
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("max_document_bytes must be positive (got %d)", c.MaxDocumentBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive (got %v)", c.RequestTimeout)
	}
	if c.CallsPerMinute < 0 {
		return fmt.Errorf("calls_per_minute cannot be negative (got %d)", c.CallsPerMinute)
	}
	return nil
}

// Client calls the Anthropic API to extract structured records from resume
// documents.
type Client struct {
	client  *anthropic.Client
	cfg     Config
	limiter *rate.Limiter
}

var _ Extractor = (*Client)(nil)

// NewClient creates an extraction client.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	var limiter *rate.Limiter
	if cfg.CallsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.CallsPerMinute)/60.0), 1)
	}

	return &Client{client: &client, cfg: cfg, limiter: limiter}, nil
}

// Extract sends one document to the extraction service and parses the
// structured record out of the response. Failures are always classified;
// callers decide retry policy from the error kind.
func (c *Client) Extract(ctx context.Context, data []byte, filename string) (*types.CandidateRecord, error) {
	if len(data) == 0 {
		return nil, &Error{Kind: UnsupportedFormat, Filename: filename, Err: fmt.Errorf("empty document")}
	}
	if len(data) > c.cfg.MaxDocumentBytes {
		return nil, &Error{Kind: UnsupportedFormat, Filename: filename,
			Err: fmt.Errorf("document is %d bytes, limit %d", len(data), c.cfg.MaxDocumentBytes)}
	}

	block, err := documentBlock(data, filename)
	if err != nil {
		return nil, &Error{Kind: UnsupportedFormat, Filename: filename, Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: Timeout, Filename: filename, Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	response, err := c.client.Messages.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(block),
		},
	})
	if err != nil {
		if callCtx.Err() != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: Timeout, Filename: filename, Err: err}
		}
		return nil, &Error{Kind: ServiceError, Filename: filename, Err: err}
	}

	var text strings.Builder
	for _, b := range response.Content {
		if b.Type == "text" {
			text.WriteString(b.Text)
		}
	}

	record, err := ParseRecord(text.String())
	if err != nil {
		return nil, &Error{Kind: ServiceError, Filename: filename, Err: err}
	}
	if record.IsEmpty() {
		return nil, &Error{Kind: EmptyResult, Filename: filename,
			Err: fmt.Errorf("service extracted no usable fields")}
	}
	return record, nil
}

// documentBlock builds the content block for one document: PDFs go up as
// base64 document attachments, DOCX files as their extracted text.
func documentBlock(data []byte, filename string) (anthropic.ContentBlockParamUnion, error) {
	switch DetectKind(data, filename) {
	case KindPDF:
		return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
			Data: base64.StdEncoding.EncodeToString(data),
		}), nil
	case KindDOCX:
		text, err := docxText(data)
		if err != nil {
			return anthropic.ContentBlockParamUnion{}, fmt.Errorf("unreadable docx: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return anthropic.ContentBlockParamUnion{}, fmt.Errorf("docx contains no text")
		}
		return anthropic.NewTextBlock(text), nil
	default:
		return anthropic.ContentBlockParamUnion{}, fmt.Errorf("not a PDF or Word document")
	}
}
