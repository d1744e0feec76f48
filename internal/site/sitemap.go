// Package site builds the crawler and sharing metadata of the public site:
// sitemap, robots rules, page meta tags, JSON-LD and social cards.
package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"legalpub/internal/model"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type staticPage struct {
	path       string
	changeFreq string
	priority   float64
}

var staticPages = []staticPage{
	{"", "daily", 1.0},
	{"/documents", "daily", 0.9},
	{"/about", "monthly", 0.7},
	{"/terms", "monthly", 0.6},
}

// DocumentURL is the canonical address of a document page.
func DocumentURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/documents/" + url.PathEscape(slug)
}

// Sitemap lists the static pages, stamped with now, followed by one entry
// per published document.
func Sitemap(baseURL string, entries []model.SlugEntry, now time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	set := urlSet{Xmlns: sitemapNS}
	for _, p := range staticPages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + p.path,
			LastMod:    now.UTC().Format(time.RFC3339),
			ChangeFreq: p.changeFreq,
			Priority:   fmt.Sprintf("%.1f", p.priority),
		})
	}
	for _, e := range entries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        DocumentURL(base, e.Slug),
			LastMod:    e.PublicationDate.UTC().Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.8",
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Robots allows everything except the studio and the API, and points
// crawlers at the sitemap.
func Robots(baseURL string) string {
	var sb strings.Builder
	sb.WriteString("User-Agent: *\n")
	sb.WriteString("Allow: /\n")
	sb.WriteString("Disallow: /studio/\n")
	sb.WriteString("Disallow: /api/\n")
	sb.WriteString("\n")
	sb.WriteString("Sitemap: " + strings.TrimRight(baseURL, "/") + "/sitemap.xml\n")
	return sb.String()
}
