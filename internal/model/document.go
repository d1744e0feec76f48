package model

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// DocumentType is the closed set of legal document kinds.
type DocumentType string

const (
	TypeNotice DocumentType = "notice"
	TypeMotion DocumentType = "motion"
	TypeOrder  DocumentType = "order"
	TypeFiling DocumentType = "filing"
	TypeOther  DocumentType = "other"
)

// Valid reports whether t belongs to the document type enum.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeNotice, TypeMotion, TypeOrder, TypeFiling, TypeOther:
		return true
	}
	return false
}

// Status is the editorial state of a document. Only StatusPublished
// documents are ever handed to the rendering and export layers.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// MaxExcerptLength bounds the preview summary.
const MaxExcerptLength = 300

// LegalDocument is a published legal record as stored in the content repository.
// It is a read-only snapshot for the lifetime of a request.
type LegalDocument struct {
	ID               string       `json:"id"`
	Slug             string       `json:"slug"`
	Title            string       `json:"title"`
	DocumentType     DocumentType `json:"document_type"`
	Status           Status       `json:"status"`
	PublicationDate  time.Time    `json:"publication_date"`
	FilingDate       *time.Time   `json:"filing_date,omitempty"`
	CourtHeader      string       `json:"court_header,omitempty"`
	CaseInformation  string       `json:"case_information,omitempty"`
	DocumentSubtitle string       `json:"document_subtitle,omitempty"`
	Content          []Block      `json:"content"`
	SignatureBlock   string       `json:"signature_block,omitempty"`
	Excerpt          string       `json:"excerpt,omitempty"`
	CaseNumber       string       `json:"case_number,omitempty"`
	Tags             []string     `json:"tags,omitempty"`
	PDFFileKey       string       `json:"pdf_file_key,omitempty"`
}

// IsPublished reports whether the document may be exposed publicly.
func (d *LegalDocument) IsPublished() bool {
	return d != nil && d.Status == StatusPublished
}

// Summary projects the document onto its list representation.
func (d *LegalDocument) Summary() DocumentSummary {
	return DocumentSummary{
		ID:              d.ID,
		Slug:            d.Slug,
		Title:           d.Title,
		DocumentType:    d.DocumentType,
		PublicationDate: d.PublicationDate,
		CourtHeader:     d.CourtHeader,
		Excerpt:         d.Excerpt,
		CaseNumber:      d.CaseNumber,
		Tags:            d.Tags,
	}
}

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrSlugRequired    = errors.New("slug is required")
	ErrContentRequired = errors.New("content is required")
	ErrPublicationDate = errors.New("publication date is required")
	ErrInvalidType     = errors.New("invalid document type")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrExcerptTooLong  = errors.New("excerpt exceeds 300 characters")
)

// Validate applies the content schema rules. Rendering never calls it;
// unrecognized values are a schema concern.
func (d *LegalDocument) Validate() error {
	switch {
	case d.Title == "":
		return ErrTitleRequired
	case d.Slug == "":
		return ErrSlugRequired
	case len(d.Content) == 0:
		return ErrContentRequired
	case d.PublicationDate.IsZero():
		return ErrPublicationDate
	case !d.DocumentType.Valid():
		return fmt.Errorf("%w: %q", ErrInvalidType, d.DocumentType)
	case d.Status != StatusDraft && d.Status != StatusPublished:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, d.Status)
	case utf8.RuneCountInString(d.Excerpt) > MaxExcerptLength:
		return ErrExcerptTooLong
	}
	return nil
}

// DocumentSummary is the list projection used by the archive and home pages.
type DocumentSummary struct {
	ID              string       `json:"id"`
	Slug            string       `json:"slug"`
	Title           string       `json:"title"`
	DocumentType    DocumentType `json:"document_type"`
	PublicationDate time.Time    `json:"publication_date"`
	CourtHeader     string       `json:"court_header,omitempty"`
	Excerpt         string       `json:"excerpt,omitempty"`
	CaseNumber      string       `json:"case_number,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
}

// SlugEntry is a sitemap row.
type SlugEntry struct {
	Slug            string    `json:"slug"`
	PublicationDate time.Time `json:"publication_date"`
}
