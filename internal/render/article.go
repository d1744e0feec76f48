package render

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"legalpub/internal/compose"
	"legalpub/internal/model"
)

// ContentAttr marks the container the capture exporter screenshots.
const ContentAttr = "data-document-content"

// RenderArticle materializes a composed document as one <article>. The
// body uses the legal rule table.
func RenderArticle(sections []compose.Section) *html.Node {
	article := element(atom.Article, "legal-document", html.Attribute{Key: ContentAttr})
	for _, s := range sections {
		if n := renderSection(s); n != nil {
			article.AppendChild(n)
		}
	}
	return article
}

func renderSection(s compose.Section) *html.Node {
	switch s.Kind {
	case compose.SectionCourtHeader:
		return lines("legal-court-header", "legal-court-line", s.Text())
	case compose.SectionNoticeTitle:
		wrap := element(atom.Div, "legal-notice")
		for _, l := range s.Text() {
			wrap.AppendChild(textElement(atom.H1, "legal-notice-title", l))
		}
		return wrap
	case compose.SectionCaseInformation:
		return lines("legal-case-info", "legal-case-line", s.Text())
	case compose.SectionSubtitle:
		return preformatted("legal-subtitle", s.Text())
	case compose.SectionBody:
		body := element(atom.Div, "legal-body")
		for _, n := range RenderBlocks(s.Blocks, model.VariantLegal) {
			body.AppendChild(n)
		}
		return body
	case compose.SectionSignature:
		return preformatted("legal-signature", s.Text())
	}
	return nil
}

func lines(wrapClass, lineClass string, text []string) *html.Node {
	wrap := element(atom.Div, wrapClass)
	for _, l := range text {
		wrap.AppendChild(textElement(atom.Div, lineClass, l))
	}
	return wrap
}

// preformatted keeps embedded newlines; the stylesheet sets white-space: pre-line.
func preformatted(class string, text []string) *html.Node {
	wrap := element(atom.Div, class)
	for _, t := range text {
		wrap.AppendChild(textElement(atom.Div, "legal-pre", t))
	}
	return wrap
}
