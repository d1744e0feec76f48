package site

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"legalpub/internal/config"
	"legalpub/internal/model"
)

// Social card dimensions.
const (
	OGWidth  = 1200
	OGHeight = 630
)

var (
	fontsOnce sync.Once
	fontsErr  error
	boldFont  *truetype.Font
	plainFont *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if boldFont, fontsErr = truetype.Parse(gobold.TTF); fontsErr != nil {
			return
		}
		plainFont, fontsErr = truetype.Parse(goregular.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
}

var (
	cardBackground = color.RGBA{R: 0xf4, G: 0xf4, B: 0xf5, A: 0xff}
	cardInk        = color.RGBA{R: 0x18, G: 0x18, B: 0x1b, A: 0xff}
	cardMuted      = color.RGBA{R: 0x52, G: 0x52, B: 0x5b, A: 0xff}
	cardRule       = color.RGBA{R: 0xa1, G: 0xa1, B: 0xaa, A: 0xff}
)

// OGImage draws the 1200x630 PNG social card of doc: site name, document
// type, wrapped title and publication date.
func OGImage(cfg config.SiteConfig, doc *model.LegalDocument) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	const pad = 80.0
	dc := gg.NewContext(OGWidth, OGHeight)
	dc.SetColor(cardBackground)
	dc.DrawRectangle(0, 0, OGWidth, OGHeight)
	dc.Fill()

	dc.SetColor(cardRule)
	dc.DrawRectangle(pad, pad+52, OGWidth-2*pad, 2)
	dc.Fill()

	dc.SetFontFace(face(boldFont, 30))
	dc.SetColor(cardMuted)
	dc.DrawString(strings.ToUpper(cfg.Name), pad, pad+30)

	if doc.DocumentType != "" {
		label := strings.ToUpper(string(doc.DocumentType))
		w, _ := dc.MeasureString(label)
		dc.DrawString(label, OGWidth-pad-w, pad+30)
	}

	dc.SetFontFace(face(boldFont, 60))
	dc.SetColor(cardInk)
	lines := dc.WordWrap(doc.Title, OGWidth-2*pad)
	if len(lines) > 4 {
		lines = append(lines[:3], strings.TrimSpace(lines[3])+" …")
	}
	y := pad + 150.0
	for _, l := range lines {
		dc.DrawString(l, pad, y)
		y += 72
	}

	dc.SetFontFace(face(plainFont, 28))
	dc.SetColor(cardMuted)
	footer := "Published " + doc.PublicationDate.Format("January 2, 2006")
	if doc.CaseNumber != "" {
		footer += "  ·  Case " + doc.CaseNumber
	}
	dc.DrawString(footer, pad, OGHeight-pad)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}
