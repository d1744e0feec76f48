package handler

import (
	"database/sql"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/prometheus/client_golang/prometheus"

	"legalpub/internal/config"
	"legalpub/internal/http/middleware"
	"legalpub/internal/service"
	"legalpub/internal/web"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Public
// pages and site metadata share the revalidation cache policy; the API,
// export and ops endpoints do not.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, cfg config.SiteConfig, gatherer prometheus.Gatherer) {
	// Ops
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	if gatherer != nil {
		app.Get("/metrics", Metrics(gatherer))
	}

	// API
	api := app.Group("/api")
	api.Get("/documents", ListDocuments(docSvc))
	api.Get("/documents/:slug", GetDocument(docSvc))
	api.Get("/download-pdf", DownloadPDF(docSvc))

	// Static assets
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))

	// Public site
	cached := middleware.CacheControl(cfg.Revalidate())
	app.Get("/", cached, Home(docSvc, cfg))
	app.Get("/documents", cached, Archive(docSvc, cfg))
	app.Get("/documents/:slug", cached, DocumentPage(docSvc, cfg))
	app.Get("/documents/:slug/markdown", cached, DocumentMarkdown(docSvc, cfg))
	app.Get("/documents/:slug/og.png", cached, DocumentOGImage(docSvc, cfg))
	app.Get("/about", cached, About(cfg))
	app.Get("/terms", cached, Terms(cfg))
	app.Get("/sitemap.xml", cached, Sitemap(docSvc, cfg))
	app.Get("/robots.txt", cached, Robots(cfg))
}
