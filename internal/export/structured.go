package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"

	"legalpub/internal/compose"
	"legalpub/internal/logger"
	"legalpub/internal/model"
	"legalpub/internal/render"
)

const (
	pageMargin  = 64.0
	fontFamily  = "Times"
	lineFactor  = 1.45
	listIndent  = 18.0
	markerWidth = 18.0
	quoteIndent = 18.0
)

// textStyle is how one block style is set in the PDF.
type textStyle struct {
	size  float64
	style string
	align string
}

func (t textStyle) lineHeight() float64 { return t.size * lineFactor }

// pdfBlockStyle maps every block style onto a text style; unknown styles
// use the paragraph style.
func pdfBlockStyle(s model.Style) textStyle {
	switch s {
	case model.StyleH1:
		return textStyle{18, "B", "L"}
	case model.StyleH2:
		return textStyle{16, "B", "L"}
	case model.StyleH3, model.StyleH4, model.StyleH5, model.StyleH6:
		return textStyle{15, "B", "L"}
	case model.StyleBlockquote:
		return textStyle{15, "I", "J"}
	case model.StyleCentered:
		return textStyle{15, "", "C"}
	default:
		return textStyle{15, "", "J"}
	}
}

// StructuredExporter lays documents out with fpdf using the composed
// section order.
type StructuredExporter struct {
	log *logger.Logger
}

// NewStructured returns the structured exporter.
func NewStructured(log *logger.Logger) *StructuredExporter {
	if log == nil {
		log = logger.Nop()
	}
	return &StructuredExporter{log: log.With("component", "structured_exporter")}
}

func (e *StructuredExporter) Strategy() Strategy { return StrategyStructured }

// Export builds the PDF in memory. Identical documents produce identical bytes.
func (e *StructuredExporter) Export(ctx context.Context, doc *model.LegalDocument) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, lost, err := writeStructured(doc, compose.Compose(doc))
	if err != nil {
		return nil, fmt.Errorf("structured pdf %s: %w", doc.Slug, err)
	}
	if lost > 0 {
		e.log.Warn("unencodable_text", "slug", doc.Slug, "runes", lost)
	}
	return newArtifact(doc, body), nil
}

type pdfWriter struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	lost int
}

// cp1252 returns the core-font translator. The Times core font only
// encodes Windows-1252; fpdf prints any other rune (Ω, ✓, CJK) as '.',
// and the wrapper counts those so the loss is reported.
func cp1252(pdf *fpdf.Fpdf, lost *int) func(string) string {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	return func(s string) string {
		for _, r := range s {
			if r < utf8.RuneSelf {
				continue
			}
			if out := tr(string(r)); out == "" || out == "." {
				*lost++
			}
		}
		return tr(s)
	}
}

func newPDF(title string, doc *model.LegalDocument) *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.PublicationDate)
	pdf.SetModificationDate(doc.PublicationDate)
	pdf.SetTitle(title, true)
	pdf.SetCreator("legalpub", false)
	return pdf
}

// writeStructured also returns how many runes the core font could not encode.
func writeStructured(doc *model.LegalDocument, sections []compose.Section) ([]byte, int, error) {
	pdf := newPDF(doc.Title, doc)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf}
	w.tr = cp1252(pdf, &w.lost)
	for _, s := range sections {
		w.section(s)
	}
	if err := pdf.Error(); err != nil {
		return nil, 0, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), w.lost, nil
}

func (w *pdfWriter) lines(ts textStyle, text []string) {
	w.pdf.SetFont(fontFamily, ts.style, ts.size)
	for _, l := range text {
		w.pdf.MultiCell(0, ts.lineHeight(), w.tr(l), "", ts.align, false)
	}
}

func (w *pdfWriter) section(s compose.Section) {
	switch s.Kind {
	case compose.SectionCourtHeader:
		w.lines(textStyle{11, "B", "C"}, s.Text())
		w.pdf.Ln(14)
	case compose.SectionNoticeTitle:
		w.lines(textStyle{20, "B", "C"}, s.Text())
		w.pdf.Ln(16)
	case compose.SectionCaseInformation:
		w.lines(textStyle{13, "", "L"}, s.Text())
		w.pdf.Ln(12)
	case compose.SectionSubtitle:
		w.lines(textStyle{14, "B", "C"}, s.Text())
		w.pdf.Ln(14)
	case compose.SectionBody:
		w.blocks(s.Blocks)
	case compose.SectionSignature:
		w.pdf.Ln(18)
		w.lines(textStyle{13, "", "L"}, s.Text())
	}
}

func (w *pdfWriter) blocks(blocks []model.Block) {
	for _, g := range render.GroupBlocks(blocks) {
		if g.List == model.ListNone {
			w.block(g.Blocks[0])
			continue
		}
		w.list(g)
	}
}

func (w *pdfWriter) block(b model.Block) {
	style := b.ParsedStyle()
	ts := pdfBlockStyle(style)
	if style != model.StyleBlockquote {
		w.inline(b, ts)
		w.pdf.Ln(ts.size * 0.6)
		return
	}

	page, top := w.pdf.PageNo(), w.pdf.GetY()
	w.indent(quoteIndent)
	w.inline(b, ts)
	w.indent(0)
	if w.pdf.PageNo() == page {
		w.pdf.SetDrawColor(150, 150, 150)
		w.pdf.SetLineWidth(2)
		w.pdf.Line(pageMargin+4, top, pageMargin+4, w.pdf.GetY())
		w.pdf.SetLineWidth(1)
		w.pdf.SetDrawColor(0, 0, 0)
	}
	w.pdf.Ln(ts.size * 0.6)
}

// list numbers items per contiguous run and per nesting level.
func (w *pdfWriter) list(g render.Group) {
	ts := pdfBlockStyle(model.StyleNormal)
	ts.align = "L"
	counters := map[int]int{}
	for _, b := range g.Blocks {
		level := b.Depth()
		for k := range counters {
			if k > level {
				delete(counters, k)
			}
		}
		counters[level]++

		marker := "•"
		if g.List == model.ListNumber {
			marker = strconv.Itoa(counters[level]) + "."
		}
		offset := listIndent * float64(level)
		w.pdf.SetX(pageMargin + offset)
		w.pdf.SetFont(fontFamily, "", ts.size)
		w.pdf.CellFormat(markerWidth, ts.lineHeight(), w.tr(marker), "", 0, "L", false, 0, "")
		w.pdf.SetLeftMargin(pageMargin + offset + markerWidth)
		w.inline(b, ts)
		w.indent(0)
		w.pdf.Ln(4)
	}
	w.pdf.Ln(ts.size * 0.4)
}

// indent moves the left margin and the cursor to pageMargin+by.
func (w *pdfWriter) indent(by float64) {
	w.pdf.SetLeftMargin(pageMargin + by)
	w.pdf.SetX(pageMargin + by)
}

type run struct {
	text  string
	style string
}

// inline writes a block's spans. Blocks whose spans share one font style
// go through MultiCell so alignment applies; mixed blocks flow with Write.
func (w *pdfWriter) inline(b model.Block, ts textStyle) {
	runs := make([]run, 0, len(b.Children))
	uniform := true
	for i, span := range b.Children {
		r := run{text: span.Text, style: fontStyle(ts.style, b.ResolveMarks(span))}
		if i > 0 && r.style != runs[0].style {
			uniform = false
		}
		runs = append(runs, r)
	}

	lh := ts.lineHeight()
	if len(runs) == 0 || uniform {
		style := ts.style
		if len(runs) > 0 {
			style = runs[0].style
		}
		w.pdf.SetFont(fontFamily, style, ts.size)
		w.pdf.MultiCell(0, lh, w.tr(b.PlainText()), "", ts.align, false)
		return
	}
	for _, r := range runs {
		w.pdf.SetFont(fontFamily, r.style, ts.size)
		w.pdf.Write(lh, w.tr(r.text))
	}
	w.pdf.Ln(lh)
}

// fontStyle merges the block's base style with strong, em and underline
// marks. Code and link marks do not change the font.
func fontStyle(base string, marks []model.Mark) string {
	var bold, italic, underline bool
	for _, c := range base {
		switch c {
		case 'B':
			bold = true
		case 'I':
			italic = true
		case 'U':
			underline = true
		}
	}
	for _, m := range marks {
		switch m.Kind {
		case model.MarkStrong:
			bold = true
		case model.MarkEm:
			italic = true
		case model.MarkUnderline:
			underline = true
		}
	}
	out := ""
	if bold {
		out += "B"
	}
	if italic {
		out += "I"
	}
	if underline {
		out += "U"
	}
	return out
}
