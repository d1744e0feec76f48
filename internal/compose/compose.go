// Package compose arranges a legal document into the fixed section layout
// shared by the web page and the structured PDF.
package compose

import (
	"strings"

	"legalpub/internal/model"
)

// NoticeTitle is printed on every document regardless of its own title.
const NoticeTitle = "Notice to Clerk of Court and Public Memorial"

// Kind identifies a section of the composed layout.
type Kind int

const (
	SectionCourtHeader Kind = iota
	SectionNoticeTitle
	SectionCaseInformation
	SectionSubtitle
	SectionBody
	SectionSignature
)

func (k Kind) String() string {
	switch k {
	case SectionCourtHeader:
		return "court_header"
	case SectionNoticeTitle:
		return "notice_title"
	case SectionCaseInformation:
		return "case_information"
	case SectionSubtitle:
		return "subtitle"
	case SectionBody:
		return "body"
	case SectionSignature:
		return "signature"
	}
	return "unknown"
}

// Section is one element of the layout. Line-based sections carry one
// entry per source line; preformatted sections carry a single entry with
// its newlines intact. Only SectionBody has Blocks.
type Section struct {
	Kind         Kind
	Lines        []string
	Preformatted bool
	Upper        bool
	Blocks       []model.Block
}

// Text returns the lines as they are displayed.
func (s Section) Text() []string {
	if !s.Upper {
		return s.Lines
	}
	out := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		out[i] = strings.ToUpper(l)
	}
	return out
}

// Compose lays doc out in the fixed order court header, notice title,
// case information, subtitle, body, signature. Empty optional sections
// are omitted; the notice title is always present.
func Compose(doc *model.LegalDocument) []Section {
	out := make([]Section, 0, 6)
	if doc.CourtHeader != "" {
		out = append(out, Section{
			Kind:  SectionCourtHeader,
			Lines: strings.Split(doc.CourtHeader, "\n"),
			Upper: true,
		})
	}
	out = append(out, Section{
		Kind:  SectionNoticeTitle,
		Lines: []string{NoticeTitle},
		Upper: true,
	})
	if doc.CaseInformation != "" {
		out = append(out, Section{
			Kind:  SectionCaseInformation,
			Lines: strings.Split(doc.CaseInformation, "\n"),
		})
	}
	if doc.DocumentSubtitle != "" {
		out = append(out, Section{
			Kind:         SectionSubtitle,
			Lines:        []string{doc.DocumentSubtitle},
			Preformatted: true,
			Upper:        true,
		})
	}
	if len(doc.Content) > 0 {
		out = append(out, Section{
			Kind:   SectionBody,
			Blocks: doc.Content,
		})
	}
	if doc.SignatureBlock != "" {
		out = append(out, Section{
			Kind:         SectionSignature,
			Lines:        []string{doc.SignatureBlock},
			Preformatted: true,
		})
	}
	return out
}

// Kinds lists the section kinds of a composition in order.
func Kinds(sections []Section) []Kind {
	out := make([]Kind, len(sections))
	for i, s := range sections {
		out[i] = s.Kind
	}
	return out
}
