package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CacheControl marks successful GET responses as publicly cacheable for
// maxAge and allows stale copies to be served while they revalidate.
// Responses that already carry Cache-Control are left alone.
func CacheControl(maxAge time.Duration) fiber.Handler {
	secs := int(maxAge / time.Second)
	value := fmt.Sprintf("public, max-age=0, s-maxage=%d, stale-while-revalidate=%d", secs, secs)

	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || c.Method() != fiber.MethodGet || secs <= 0 {
			return err
		}
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		if len(c.Response().Header.Peek(fiber.HeaderCacheControl)) == 0 {
			c.Set(fiber.HeaderCacheControl, value)
		}
		return nil
	}
}
