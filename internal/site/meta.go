package site

import (
	"encoding/json"
	"strings"

	"legalpub/internal/config"
	"legalpub/internal/model"
)

// dateLayout is how schema.org and OpenGraph dates are written.
const dateLayout = "2006-01-02"

// Meta is the head metadata of a document page.
type Meta struct {
	Title         string
	Description   string
	Canonical     string
	OGType        string
	OGImage       string
	PublishedTime string
	Section       string
	Tags          []string
}

// Description is the excerpt, or a generic line naming the title.
func Description(doc *model.LegalDocument) string {
	if s := strings.TrimSpace(doc.Excerpt); s != "" {
		return s
	}
	return "Legal document: " + doc.Title
}

// DocumentMeta builds title, description, canonical URL and OpenGraph
// article fields for doc.
func DocumentMeta(cfg config.SiteConfig, doc *model.LegalDocument) Meta {
	canonical := DocumentURL(cfg.BaseURL, doc.Slug)
	return Meta{
		Title:         doc.Title,
		Description:   Description(doc),
		Canonical:     canonical,
		OGType:        "article",
		OGImage:       canonical + "/og.png",
		PublishedTime: doc.PublicationDate.Format(dateLayout),
		Section:       string(doc.DocumentType),
		Tags:          doc.Tags,
	}
}

type jsonLDOrg struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *jsonLDImage `json:"logo,omitempty"`
}

type jsonLDImage struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type jsonLDArticle struct {
	Context          string    `json:"@context"`
	Type             string    `json:"@type"`
	Headline         string    `json:"headline"`
	Description      string    `json:"description"`
	DatePublished    string    `json:"datePublished"`
	DateModified     string    `json:"dateModified,omitempty"`
	Author           jsonLDOrg `json:"author"`
	Publisher        jsonLDOrg `json:"publisher"`
	MainEntityOfPage string    `json:"mainEntityOfPage"`
	ArticleSection   string    `json:"articleSection"`
	Keywords         string    `json:"keywords,omitempty"`
	Identifier       string    `json:"identifier,omitempty"`
}

// JSONLD renders the schema.org Article of doc. The filing date becomes
// dateModified; tags and case number are included when present. The
// encoder escapes <, > and & so the output is safe inside a script tag.
func JSONLD(cfg config.SiteConfig, doc *model.LegalDocument) ([]byte, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	a := jsonLDArticle{
		Context:       "https://schema.org",
		Type:          "Article",
		Headline:      doc.Title,
		Description:   Description(doc),
		DatePublished: doc.PublicationDate.Format(dateLayout),
		Author:        jsonLDOrg{Type: "Organization", Name: cfg.Name},
		Publisher: jsonLDOrg{
			Type: "Organization",
			Name: cfg.Name,
			Logo: &jsonLDImage{Type: "ImageObject", URL: base + "/static/logo.svg"},
		},
		MainEntityOfPage: DocumentURL(base, doc.Slug),
		ArticleSection:   string(doc.DocumentType),
		Identifier:       doc.CaseNumber,
	}
	if doc.FilingDate != nil {
		a.DateModified = doc.FilingDate.Format(dateLayout)
	}
	if len(doc.Tags) > 0 {
		a.Keywords = strings.Join(doc.Tags, ", ")
	}
	return json.Marshal(a)
}
