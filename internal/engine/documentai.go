package engine

import (
	"context"
	"fmt"
	"sync"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig identifies a Google Document AI OCR processor.
type DocumentAIConfig struct {
	ProjectID       string
	Location        string // e.g. "us" or "eu"
	ProcessorID     string
	CredentialsFile string // service account JSON; empty uses ambient credentials
}

// DocumentAI sends page images to a Document AI processor. Page
// segmentation and engine mode have no equivalent there and are ignored;
// the language hint is passed as OCR language hints.
type DocumentAI struct {
	cfg DocumentAIConfig

	mu     sync.Mutex
	client *documentai.DocumentProcessorClient
}

// NewDocumentAI creates a Document AI engine. The API client is dialled
// lazily on first use.
func NewDocumentAI(cfg DocumentAIConfig) *DocumentAI {
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	return &DocumentAI{cfg: cfg}
}

// Name returns "documentai".
func (d *DocumentAI) Name() string { return "documentai" }

// ProcessorName returns the full resource name of the processor.
func (d *DocumentAI) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.cfg.ProjectID, d.cfg.Location, d.cfg.ProcessorID)
}

func (d *DocumentAI) getClient(ctx context.Context) (*documentai.DocumentProcessorClient, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client != nil {
		return d.client, nil
	}

	opts := []option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("%s-documentai.googleapis.com:443", d.cfg.Location)),
	}
	if d.cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(d.cfg.CredentialsFile))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	d.client = client
	return client, nil
}

// Recognize processes one PNG page and returns the document text.
func (d *DocumentAI) Recognize(ctx context.Context, image []byte, lang string, _ Settings) (string, error) {
	client, err := d.getClient(ctx)
	if err != nil {
		return "", err
	}

	req := &documentaipb.ProcessRequest{
		Name: d.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: "image/png",
			},
		},
		SkipHumanReview: true,
	}
	if hints := LanguageHints(lang); len(hints) > 0 {
		req.ProcessOptions = &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{LanguageHints: hints},
			},
		}
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: documentai: %w", ErrRecognition, err)
	}
	if resp.GetDocument() == nil {
		return "", nil
	}
	return resp.GetDocument().GetText(), nil
}

// Close releases the API connection.
func (d *DocumentAI) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

// Tesseract language codes mapped to the BCP-47 codes Document AI expects.
var bcp47 = map[string]string{
	"heb": "he",
	"grc": "el",
	"ell": "el",
	"eng": "en",
	"arc": "arc",
	"syr": "syr",
	"lat": "la",
}

// LanguageHints converts a Tesseract-style hint ("heb+eng") into BCP-47
// codes, dropping codes with no known mapping.
func LanguageHints(lang string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range Languages(lang) {
		code, ok := bcp47[l]
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

var _ Engine = (*DocumentAI)(nil)
