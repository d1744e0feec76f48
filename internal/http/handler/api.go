package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"legalpub/internal/catalog"
	"legalpub/internal/model"
	"legalpub/internal/service"
)

// DocumentListResponse is the body of GET /api/documents.
type DocumentListResponse struct {
	Data []model.DocumentSummary `json:"data"`
	// Count is the number of documents after filtering.
	Count int `json:"count"`
	// Total is the number of published documents.
	Total int                  `json:"total"`
	Types []model.DocumentType `json:"types"`
}

// queryFromCtx reads the archive filter state. Unknown sort values fall
// back to newest first.
func queryFromCtx(c *fiber.Ctx) catalog.Query {
	return catalog.Query{
		Text: c.Query("q"),
		Type: model.DocumentType(strings.TrimSpace(c.Query("type"))),
		Sort: catalog.ParseSort(c.Query("sort")),
	}
}

// ListDocuments returns the filtered and sorted list of published documents.
//
// @Summary List published documents
// @Tags documents
// @Produce json
// @Param q query string false "Search in title, case number, excerpt and tags"
// @Param type query string false "Document type" Enums(notice, motion, order, filing, other)
// @Param sort query string false "Ordering" Enums(date-desc, date-asc, title-asc)
// @Success 200 {object} DocumentListResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := queryFromCtx(c)
		if q.Type != "" && !q.Type.Valid() {
			return writeError(c, fiber.StatusBadRequest, "INVALID_TYPE", "invalid document type")
		}
		if raw := c.Query("sort"); raw != "" && string(catalog.ParseSort(raw)) != strings.ToLower(strings.TrimSpace(raw)) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SORT", "invalid sort")
		}

		docs, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		items := catalog.Apply(docs, q)
		return c.JSON(DocumentListResponse{
			Data:  items,
			Count: len(items),
			Total: len(docs),
			Types: catalog.Types(docs),
		})
	}
}

// GetDocument returns one published document by slug.
//
// @Summary Get a published document
// @Tags documents
// @Produce json
// @Param slug path string true "Document slug"
// @Success 200 {object} model.LegalDocument
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/documents/{slug} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := docSvc.Get(c.UserContext(), c.Params("slug"))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSlugRequired):
				return writeError(c, fiber.StatusBadRequest, "SLUG_REQUIRED", "slug is required")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(doc)
	}
}

// DownloadPDF exports a document with the configured strategy. Failures
// answer with a plain-text reason.
//
// @Summary Download a document as PDF
// @Tags documents
// @Produce application/pdf
// @Param slug query string true "Document slug"
// @Success 200 {file} binary
// @Failure 400 {string} string "Missing slug parameter"
// @Failure 404 {string} string "Document not found"
// @Failure 500 {string} string "Error generating PDF"
// @Router /api/download-pdf [get]
func DownloadPDF(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Query("slug")
		if slug == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Missing slug parameter")
		}

		art, err := docSvc.Export(c.UserContext(), slug)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSlugRequired):
				return c.Status(fiber.StatusBadRequest).SendString("Missing slug parameter")
			case errors.Is(err, service.ErrNotFound):
				return c.Status(fiber.StatusNotFound).SendString("Document not found")
			}
			return c.Status(fiber.StatusInternalServerError).SendString("Error generating PDF")
		}

		c.Set(fiber.HeaderContentType, art.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+art.Filename+`"`)
		c.Set(fiber.HeaderContentLength, strconv.Itoa(len(art.Body)))
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusOK).Send(art.Body)
	}
}
