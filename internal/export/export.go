// Package export produces downloadable PDFs of published documents. Two
// strategies exist; a deployment runs exactly one of them.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legalpub/internal/config"
	"legalpub/internal/logger"
	"legalpub/internal/model"
)

// Strategy names an export implementation.
type Strategy string

const (
	// StrategyStructured lays the document out natively with PDF primitives.
	StrategyStructured Strategy = "structured"
	// StrategyCapture rasterizes the rendered web page and paginates it.
	StrategyCapture Strategy = "capture"
)

// ContentType of every artifact.
const ContentType = "application/pdf"

// ErrCaptureTargetMissing is returned when the rendered page has no
// document content container.
var ErrCaptureTargetMissing = errors.New("document content container not found")

// Artifact is a finished PDF held in memory.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Exporter turns a published document into a PDF artifact. On error no
// artifact is returned.
type Exporter interface {
	Strategy() Strategy
	Export(ctx context.Context, doc *model.LegalDocument) (*Artifact, error)
}

// New returns the exporter selected by cfg.Strategy. An empty strategy
// selects the structured exporter.
func New(cfg config.ExportConfig, site config.SiteConfig, log *logger.Logger) (Exporter, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(cfg.Strategy))) {
	case "", StrategyStructured:
		return NewStructured(log), nil
	case StrategyCapture:
		return NewCapture(NewRodCapturer(cfg, log), site.InternalURL), nil
	}
	return nil, fmt.Errorf("unknown export strategy %q", cfg.Strategy)
}

// Slugify lowercases s and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pending = false
			sb.WriteRune(r)
			continue
		}
		pending = true
	}
	return sb.String()
}

// Filename derives the download name from a document title.
func Filename(title string) string {
	base := Slugify(title)
	if base == "" {
		base = "document"
	}
	return base + ".pdf"
}

func newArtifact(doc *model.LegalDocument, body []byte) *Artifact {
	return &Artifact{
		Filename:    Filename(doc.Title),
		ContentType: ContentType,
		Body:        body,
	}
}
