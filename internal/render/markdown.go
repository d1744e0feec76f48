package render

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"legalpub/internal/compose"
)

// Markdown converts a composed document to Markdown.
func Markdown(sections []compose.Section) ([]byte, error) {
	return htmltomarkdown.ConvertNode(RenderArticle(sections))
}
