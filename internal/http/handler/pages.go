package handler

import (
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"legalpub/internal/catalog"
	"legalpub/internal/compose"
	"legalpub/internal/config"
	"legalpub/internal/export"
	"legalpub/internal/model"
	"legalpub/internal/render"
	"legalpub/internal/service"
	"legalpub/internal/site"
	"legalpub/internal/web"
)

func head(cfg config.SiteConfig, title, description, path string) web.Head {
	return web.Head{
		SiteName:    cfg.Name,
		Title:       title,
		Description: description,
		Canonical:   strings.TrimRight(cfg.BaseURL, "/") + path,
	}
}

func renderPage(c *fiber.Ctx, name string, data any) error {
	return c.Render(name, data)
}

func notFoundPage(c *fiber.Ctx, cfg config.SiteConfig) error {
	c.Status(fiber.StatusNotFound)
	return renderPage(c, web.PageNotFound, web.StaticData{
		Head: web.Head{SiteName: cfg.Name, Title: "Document Not Found"},
	})
}

// loadDocument resolves the :slug param. ok is false when a response has
// already been written.
func loadDocument(c *fiber.Ctx, docSvc service.DocumentService, cfg config.SiteConfig) (doc *model.LegalDocument, ok bool, err error) {
	doc, err = docSvc.Get(c.UserContext(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrSlugRequired) {
			return nil, false, notFoundPage(c, cfg)
		}
		return nil, false, fiber.ErrInternalServerError
	}
	return doc, true, nil
}

// Home renders the landing page with the most recent documents.
func Home(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := docSvc.Recent(c.UserContext())
		if err != nil {
			return fiber.ErrInternalServerError
		}
		return renderPage(c, web.PageHome, web.HomeData{
			Head:      head(cfg, "", "Published court proceedings and legal documents.", "/"),
			Documents: docs,
		})
	}
}

// Archive renders every published document narrowed by the q, type and
// sort query parameters.
func Archive(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := docSvc.List(c.UserContext())
		if err != nil {
			return fiber.ErrInternalServerError
		}
		q := queryFromCtx(c)
		return renderPage(c, web.PageArchive, web.ArchiveData{
			Head: head(cfg, "Legal Document Archive",
				"Browse all published legal documents, court proceedings, and official filings.", "/documents"),
			Documents: catalog.Apply(docs, q),
			Types:     catalog.Types(docs),
			Query:     q,
			Total:     len(docs),
		})
	}
}

// DocumentPage renders one document. ?access=show reveals the PDF
// download button.
func DocumentPage(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, ok, err := loadDocument(c, docSvc, cfg)
		if !ok {
			return err
		}

		article, err := render.RenderHTML(render.RenderArticle(compose.Compose(doc)))
		if err != nil {
			return fiber.ErrInternalServerError
		}
		ld, err := site.JSONLD(cfg, doc)
		if err != nil {
			return fiber.ErrInternalServerError
		}
		// A presign failure only hides the View PDF link.
		pdfURL, _ := docSvc.AttachmentURL(c.UserContext(), doc)

		meta := site.DocumentMeta(cfg, doc)
		return renderPage(c, web.PageDocument, web.DocumentData{
			Head: web.Head{
				SiteName:    cfg.Name,
				Title:       meta.Title,
				Description: meta.Description,
				Canonical:   meta.Canonical,
				OG:          &meta,
				JSONLD:      template.JS(ld),
				Markdown:    "/documents/" + doc.Slug + "/markdown",
			},
			Document:     doc,
			Article:      template.HTML(article),
			ShowDownload: c.Query("access") == "show",
			Filename:     export.Filename(doc.Title),
			PDFURL:       pdfURL,
		})
	}
}

// DocumentMarkdown serves the Markdown alternate of a document.
func DocumentMarkdown(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, ok, err := loadDocument(c, docSvc, cfg)
		if !ok {
			return err
		}
		md, err := render.Markdown(compose.Compose(doc))
		if err != nil {
			return fiber.ErrInternalServerError
		}
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.Send(md)
	}
}

// DocumentOGImage serves the social card of a document.
func DocumentOGImage(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, ok, err := loadDocument(c, docSvc, cfg)
		if !ok {
			return err
		}
		png, err := site.OGImage(cfg, doc)
		if err != nil {
			return fiber.ErrInternalServerError
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(png)
	}
}

// About renders the about page.
func About(cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderPage(c, web.PageAbout, web.StaticData{
			Head: head(cfg, "About", "About the legal document archive.", "/about"),
		})
	}
}

// Terms renders the terms of use.
func Terms(cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderPage(c, web.PageTerms, web.StaticData{
			Head: head(cfg, "Terms of Use", "Website terms of use.", "/terms"),
		})
	}
}

// Sitemap serves sitemap.xml built from the published slugs.
func Sitemap(docSvc service.DocumentService, cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := docSvc.Slugs(c.UserContext())
		if err != nil {
			return fiber.ErrInternalServerError
		}
		body, err := site.Sitemap(cfg.BaseURL, entries, time.Now())
		if err != nil {
			return fiber.ErrInternalServerError
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
		return c.Send(body)
	}
}

// Robots serves robots.txt.
func Robots(cfg config.SiteConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(site.Robots(cfg.BaseURL))
	}
}
