// Package catalog filters and orders document summaries for the archive.
// Every function is pure and returns a fresh slice.
package catalog

import (
	"sort"
	"strings"

	"legalpub/internal/model"
)

// Sort is an archive ordering.
type Sort string

const (
	SortDateDesc Sort = "date-desc"
	SortDateAsc  Sort = "date-asc"
	SortTitleAsc Sort = "title-asc"
)

// ParseSort maps a query value onto a Sort. Unknown values fall back to
// SortDateDesc.
func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortDateAsc:
		return SortDateAsc
	case SortTitleAsc:
		return SortTitleAsc
	}
	return SortDateDesc
}

// Query is the archive filter state. Empty fields do not filter.
type Query struct {
	Text string
	Type model.DocumentType
	Sort Sort
}

// Apply filters docs by Text and Type, then orders the result. The input
// slice is never modified.
func Apply(docs []model.DocumentSummary, q Query) []model.DocumentSummary {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]model.DocumentSummary, 0, len(docs))
	for _, d := range docs {
		if q.Type != "" && d.DocumentType != q.Type {
			continue
		}
		if needle != "" && !matches(d, needle) {
			continue
		}
		out = append(out, d)
	}

	switch ParseSort(string(q.Sort)) {
	case SortDateAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PublicationDate.Before(out[j].PublicationDate)
		})
	case SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return titleLess(out[i].Title, out[j].Title)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].PublicationDate.After(out[j].PublicationDate)
		})
	}
	return out
}

func matches(d model.DocumentSummary, needle string) bool {
	if strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.CaseNumber), needle) ||
		strings.Contains(strings.ToLower(d.Excerpt), needle) {
		return true
	}
	for _, tag := range d.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// titleLess compares case-insensitively and breaks ties by byte order.
func titleLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Types returns the distinct document types present in docs, sorted.
func Types(docs []model.DocumentSummary) []model.DocumentType {
	seen := make(map[model.DocumentType]struct{})
	out := make([]model.DocumentType, 0)
	for _, d := range docs {
		if d.DocumentType == "" {
			continue
		}
		if _, ok := seen[d.DocumentType]; ok {
			continue
		}
		seen[d.DocumentType] = struct{}{}
		out = append(out, d.DocumentType)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
