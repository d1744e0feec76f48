package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"

	"legalpub/internal/model"
)

// A4 portrait in points.
const (
	a4Width  = 595.28
	a4Height = 841.89
)

// PageAspect is the height-to-width ratio of an A4 page.
const PageAspect = a4Height / a4Width

// Capturer screenshots the document content container of a rendered page
// and returns it as PNG.
type Capturer interface {
	Capture(ctx context.Context, pageURL string) ([]byte, error)
}

// CaptureExporter rasterizes the public document page and slices the
// image into A4 pages.
type CaptureExporter struct {
	capturer Capturer
	baseURL  string
}

// NewCapture returns a capture exporter that renders pages from baseURL.
func NewCapture(c Capturer, baseURL string) *CaptureExporter {
	return &CaptureExporter{capturer: c, baseURL: strings.TrimRight(baseURL, "/")}
}

func (e *CaptureExporter) Strategy() Strategy { return StrategyCapture }

// PageURL is the address the capturer loads for doc.
func (e *CaptureExporter) PageURL(doc *model.LegalDocument) string {
	return e.baseURL + "/documents/" + url.PathEscape(doc.Slug)
}

func (e *CaptureExporter) Export(ctx context.Context, doc *model.LegalDocument) (*Artifact, error) {
	raw, err := e.capturer.Capture(ctx, e.PageURL(doc))
	if err != nil {
		return nil, fmt.Errorf("capture %s: %w", doc.Slug, err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode capture %s: %w", doc.Slug, err)
	}
	pages := Paginate(img, PageAspect)
	if len(pages) == 0 {
		return nil, fmt.Errorf("capture %s: empty image", doc.Slug)
	}
	body, err := AssemblePages(pages, doc.Title, doc.PublicationDate)
	if err != nil {
		return nil, fmt.Errorf("assemble %s: %w", doc.Slug, err)
	}
	return newArtifact(doc, body), nil
}

// Close releases the capturer when it holds a browser.
func (e *CaptureExporter) Close() error {
	if c, ok := e.capturer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Paginate slices img top to bottom into pages of its own width and a
// height of width*aspect pixels. The last page is padded with white.
func Paginate(img image.Image, aspect float64) []*image.RGBA {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || aspect <= 0 {
		return nil
	}
	pageH := int(float64(b.Dx())*aspect + 0.5)
	if pageH < 1 {
		pageH = 1
	}

	var pages []*image.RGBA
	for y := b.Min.Y; y < b.Max.Y; y += pageH {
		page := image.NewRGBA(image.Rect(0, 0, b.Dx(), pageH))
		draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
		h := pageH
		if rest := b.Max.Y - y; rest < h {
			h = rest
		}
		draw.Draw(page, image.Rect(0, 0, b.Dx(), h), img, image.Pt(b.Min.X, y), draw.Over)
		pages = append(pages, page)
	}
	return pages
}

// AssemblePages writes one full-bleed A4 page per image.
func AssemblePages(pages []*image.RGBA, title string, created time.Time) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errors.New("no pages")
	}
	pdf := newPDF(title, &model.LegalDocument{PublicationDate: created})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		var buf bytes.Buffer
		if err := png.Encode(&buf, page); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}
		name := "page-" + strconv.Itoa(i+1)
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.ImageOptions(name, 0, 0, a4Width, a4Height, false, opts, 0, "")
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
