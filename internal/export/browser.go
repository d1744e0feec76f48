package export

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"legalpub/internal/config"
	"legalpub/internal/logger"
)

// ContentSelector locates the element that is captured.
const ContentSelector = "[data-document-content]"

const (
	viewportWidth  = 1024
	viewportHeight = 1400
)

// normalizeColors rewrites every computed color property under the
// element as an explicit rgb()/rgba() value, so the screenshot does not
// depend on color functions the rasterizer may not support.
const normalizeColors = `function () {
  const props = ['color', 'backgroundColor', 'borderTopColor', 'borderRightColor',
    'borderBottomColor', 'borderLeftColor', 'outlineColor', 'textDecorationColor', 'fill', 'stroke'];
  const ctx = document.createElement('canvas').getContext('2d');
  const toRGB = (value) => {
    ctx.fillStyle = '#000';
    ctx.fillStyle = value;
    const v = ctx.fillStyle;
    if (v.startsWith('#')) {
      const n = parseInt(v.slice(1), 16);
      return 'rgb(' + ((n >> 16) & 255) + ', ' + ((n >> 8) & 255) + ', ' + (n & 255) + ')';
    }
    return v;
  };
  const nodes = [this, ...this.querySelectorAll('*')];
  for (const node of nodes) {
    const cs = getComputedStyle(node);
    for (const p of props) {
      const v = cs[p];
      if (!v || v === 'none') continue;
      node.style[p] = toRGB(v);
    }
  }
  return nodes.length;
}`

// contentBox returns the element's border box in document coordinates.
const contentBox = `function () {
  const r = this.getBoundingClientRect();
  return {x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height};
}`

// RodCapturer drives a headless Chromium through go-rod. Every capture
// runs in its own incognito context.
type RodCapturer struct {
	cfg config.ExportConfig
	log *logger.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
}

var _ Capturer = (*RodCapturer)(nil)

// NewRodCapturer returns a capturer that connects lazily on first use.
func NewRodCapturer(cfg config.ExportConfig, log *logger.Logger) *RodCapturer {
	if log == nil {
		log = logger.Nop()
	}
	return &RodCapturer{cfg: cfg, log: log.With("component", "rod_capturer")}
}

func (c *RodCapturer) connect() (*rod.Browser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browser != nil {
		if _, err := c.browser.Version(); err == nil {
			return c.browser, nil
		}
		c.log.Warn("browser_stale", "event", "reconnect")
		_ = c.release()
	}

	controlURL := c.cfg.BrowserControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if c.cfg.BrowserBin != "" {
			l = l.Bin(c.cfg.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
		c.launched = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		_ = c.release()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	c.browser = browser
	c.log.Info("browser_connected", "control_url", controlURL)
	return browser, nil
}

// Capture loads pageURL in a fresh incognito page and screenshots the
// content container. The page and its context are closed on every path.
func (c *RodCapturer) Capture(ctx context.Context, pageURL string) ([]byte, error) {
	browser, err := c.connect()
	if err != nil {
		return nil, err
	}

	incognito, err := browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}
	defer func() { _ = incognito.Close() }()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	scale := c.cfg.Scale
	if scale <= 0 {
		scale = 2
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: scale,
		Mobile:            false,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	p := page.Context(ctx).Timeout(c.cfg.Timeout())
	if err := p.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	found, el, err := p.Has(ContentSelector)
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	if !found {
		return nil, ErrCaptureTargetMissing
	}
	if _, err := el.Eval(normalizeColors); err != nil {
		return nil, fmt.Errorf("normalize colors: %w", err)
	}

	box, err := el.Eval(contentBox)
	if err != nil {
		return nil, fmt.Errorf("measure content: %w", err)
	}
	clip, err := contentClip(
		box.Value.Get("x").Num(),
		box.Value.Get("y").Num(),
		box.Value.Get("width").Num(),
		box.Value.Get("height").Num(),
	)
	if err != nil {
		return nil, err
	}

	// The clip is in CSS pixels; the PNG comes back at clip size times
	// the device scale factor, including the part below the viewport.
	shot, err := proto.PageCaptureScreenshot{
		Format:                proto.PageCaptureScreenshotFormatPng,
		Clip:                  clip,
		FromSurface:           true,
		CaptureBeyondViewport: true,
	}.Call(p)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return shot.Data, nil
}

// contentClip turns a measured box into a screenshot clip at scale 1.
func contentClip(x, y, width, height float64) (*proto.PageViewport, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("content box is empty (%.0fx%.0f)", width, height)
	}
	return &proto.PageViewport{X: x, Y: y, Width: width, Height: height, Scale: 1}, nil
}

// Close shuts the browser down and, when it was launched here, waits for
// the process to exit and removes its profile directory.
func (c *RodCapturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release()
}

// release must be called with mu held.
func (c *RodCapturer) release() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launched != nil {
		c.launched.Kill()
		c.launched.Cleanup()
		c.launched = nil
	}
	return err
}
