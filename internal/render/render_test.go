package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"legalpub/internal/compose"
	"legalpub/internal/model"
)

func para(text string, marks ...string) model.Block {
	return model.Block{Style: "normal", Children: []model.Span{{Text: text, Marks: marks}}}
}

func item(kind, text string) model.Block {
	return model.Block{ListItem: kind, Level: 1, Children: []model.Span{{Text: text}}}
}

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Blockquote: true, atom.Li: true,
}

func countBlocks(nodes []*html.Node) int {
	n := 0
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && blockAtoms[node.DataAtom] {
			n++
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	return n
}

func render(t *testing.T, blocks []model.Block, v model.Variant) string {
	t.Helper()
	out, err := RenderHTML(RenderBlocks(blocks, v)...)
	require.NoError(t, err)
	return out
}

func TestGroupBlocks(t *testing.T) {
	blocks := []model.Block{
		item("bullet", "a"),
		item("bullet", "b"),
		para("c"),
		item("bullet", "d"),
	}

	groups := GroupBlocks(blocks)

	require.Len(t, groups, 3)
	assert.Equal(t, model.ListBullet, groups[0].List)
	assert.Len(t, groups[0].Blocks, 2)
	assert.Equal(t, model.ListNone, groups[1].List)
	assert.Equal(t, model.ListBullet, groups[2].List)
	assert.Len(t, groups[2].Blocks, 1)
}

func TestGroupBlocks_KindChangeSplitsRun(t *testing.T) {
	groups := GroupBlocks([]model.Block{
		item("number", "1"),
		item("number", "2"),
		item("bullet", "x"),
		para("p1"),
		para("p2"),
	})

	require.Len(t, groups, 4)
	assert.Equal(t, model.ListNumber, groups[0].List)
	assert.Equal(t, model.ListBullet, groups[1].List)
	assert.Nil(t, GroupBlocks(nil))
}

func TestRenderBlocks_PreservesBlockCount(t *testing.T) {
	blocks := []model.Block{
		{Style: "h1", Children: []model.Span{{Text: "Title"}}},
		item("bullet", "a"),
		item("bullet", "b"),
		para("c"),
		{Style: "blockquote", Children: []model.Span{{Text: "q"}}},
		item("number", "1"),
		{Style: "mystery", Children: []model.Span{{Text: "odd"}}},
		{Style: "normal"},
	}

	for _, v := range []model.Variant{model.VariantDefault, model.VariantLegal} {
		nodes := RenderBlocks(blocks, v)
		assert.Len(t, nodes, 7)
		assert.Equal(t, len(blocks), countBlocks(nodes))
	}
}

func TestRenderBlocks_Lists(t *testing.T) {
	out := render(t, []model.Block{
		item("bullet", "a"),
		item("bullet", "b"),
		para("c"),
		item("number", "one"),
		{ListItem: "number", Level: 2, Children: []model.Span{{Text: "nested"}}},
	}, model.VariantDefault)

	assert.Equal(t,
		`<ul class="pt-ul"><li class="pt-li">a</li><li class="pt-li">b</li></ul>`+
			`<p class="pt-p">c</p>`+
			`<ol class="pt-ol"><li class="pt-li">one</li><li class="pt-li" data-level="2">nested</li></ol>`,
		out)
}

func TestRenderBlocks_UnknownStyleFallsBackToParagraph(t *testing.T) {
	out := render(t, []model.Block{{Style: "title-xl", Children: []model.Span{{Text: "still here"}}}}, model.VariantLegal)

	assert.Equal(t, `<p class="legal-p">still here</p>`, out)
}

func TestRenderBlocks_EmptySpanAndEmptyBlock(t *testing.T) {
	out := render(t, []model.Block{
		{Style: "h2", Children: []model.Span{{Text: ""}}},
		{Style: "normal"},
	}, model.VariantLegal)

	assert.Equal(t, `<h2 class="legal-h2"></h2><p class="legal-p"></p>`, out)

	nodes := RenderBlocks([]model.Block{{Children: []model.Span{{Text: ""}}}}, model.VariantLegal)
	require.NotNil(t, nodes[0].FirstChild)
	assert.Equal(t, html.TextNode, nodes[0].FirstChild.Type)
}

func TestRenderBlocks_MarkLayeringIsFixed(t *testing.T) {
	a := render(t, []model.Block{para("x", "underline", "em", "strong")}, model.VariantLegal)
	b := render(t, []model.Block{para("x", "strong", "underline", "em")}, model.VariantLegal)

	want := `<p class="legal-p"><strong class="legal-strong"><em class="legal-em"><span class="legal-underline">x</span></em></strong></p>`
	assert.Equal(t, want, a)
	assert.Equal(t, want, b)
}

func TestRenderBlocks_LegalDropsCodeAndLink(t *testing.T) {
	block := model.Block{
		Children: []model.Span{
			{Text: "see ", Marks: []string{"code"}},
			{Text: "here", Marks: []string{"lnk", "strong"}},
		},
		MarkDefs: []model.MarkDef{{Key: "lnk", Type: "link", Href: "https://example.com"}},
	}

	legal := render(t, []model.Block{block}, model.VariantLegal)
	assert.Equal(t, `<p class="legal-p">see <strong class="legal-strong">here</strong></p>`, legal)

	def := render(t, []model.Block{block}, model.VariantDefault)
	assert.Equal(t,
		`<p class="pt-p"><code class="pt-code">see </code>`+
			`<strong class="pt-strong"><a class="pt-link" href="https://example.com" rel="noopener noreferrer">here</a></strong></p>`,
		def)
}

func TestRenderBlocks_UnsafeLinkIsUnwrapped(t *testing.T) {
	block := model.Block{
		Children: []model.Span{{Text: "click", Marks: []string{"bad"}}},
		MarkDefs: []model.MarkDef{{Key: "bad", Type: "link", Href: "javascript:alert(1)"}},
	}

	out := render(t, []model.Block{block}, model.VariantDefault)

	assert.Equal(t, `<p class="pt-p">click</p>`, out)
}

func TestRenderBlocks_EscapesText(t *testing.T) {
	out := render(t, []model.Block{para(`<script>alert("x")</script> & more`)}, model.VariantLegal)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "&amp; more")
}

func TestRules_TotalOverStyles(t *testing.T) {
	for _, v := range []model.Variant{model.VariantDefault, model.VariantLegal} {
		r := Rules(v)
		for s := model.StyleUnknown; s <= model.StyleBlockquote+3; s++ {
			br := r.Block(s)
			assert.NotZero(t, br.Tag, "style %d", s)
			assert.NotEmpty(t, br.Class, "style %d", s)
		}
		assert.Equal(t, r.Block(model.StyleNormal), r.Block(model.StyleUnknown))
	}
}

func TestRenderArticle(t *testing.T) {
	doc := &model.LegalDocument{
		CourtHeader:      "United States District Court\nTampa Division",
		CaseInformation:  "Case No.: 8:25-cv-1",
		DocumentSubtitle: "First line\nsecond line",
		Content:          []model.Block{{Style: "h3", Children: []model.Span{{Text: "Facts"}}}},
		SignatureBlock:   "Respectfully,\n/s/ Jane",
	}

	out, err := RenderHTML(RenderArticle(compose.Compose(doc)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<article class="legal-document" data-document-content="">`))
	assert.Contains(t, out, `<div class="legal-court-line">UNITED STATES DISTRICT COURT</div><div class="legal-court-line">TAMPA DIVISION</div>`)
	assert.Contains(t, out, `<h1 class="legal-notice-title">NOTICE TO CLERK OF COURT AND PUBLIC MEMORIAL</h1>`)
	assert.Contains(t, out, `<div class="legal-case-line">Case No.: 8:25-cv-1</div>`)
	assert.Contains(t, out, "FIRST LINE\nSECOND LINE")
	assert.Contains(t, out, `<h3 class="legal-h3">Facts</h3>`)
	assert.Contains(t, out, "Respectfully,\n/s/ Jane")

	order := []string{"legal-court-header", "legal-notice", "legal-case-info", "legal-subtitle", "legal-body", "legal-signature"}
	last := -1
	for _, class := range order {
		idx := strings.Index(out, `class="`+class+`"`)
		require.Greater(t, idx, last, class)
		last = idx
	}
}

func TestMarkdown(t *testing.T) {
	doc := &model.LegalDocument{
		Content: []model.Block{
			{Style: "h2", Children: []model.Span{{Text: "Facts"}}},
			para("The court", "strong"),
			item("bullet", "first"),
		},
	}

	md, err := Markdown(compose.Compose(doc))
	require.NoError(t, err)

	text := string(md)
	assert.Contains(t, text, "# NOTICE TO CLERK OF COURT AND PUBLIC MEMORIAL")
	assert.Contains(t, text, "## Facts")
	assert.Contains(t, text, "**The court**")
	assert.Contains(t, text, "first")
}
