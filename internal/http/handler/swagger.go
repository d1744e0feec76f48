package handler

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/swaggo/swag"
)

// RegisterSwagger serves the API docs under /swagger/. Host and scheme
// come from the public base URL and are fixed before the first request,
// so handlers only ever read spec.
func RegisterSwagger(app *fiber.App, spec *swag.Spec, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" || u.Scheme == "" {
		return fmt.Errorf("base url %q needs a scheme and host", baseURL)
	}
	spec.Host = u.Host
	spec.Schemes = []string{u.Scheme}

	app.Get("/swagger/*", swagger.HandlerDefault)
	return nil
}
