// Package render turns portable-text blocks and composed documents into
// HTML node trees, serialized HTML and Markdown.
package render

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"legalpub/internal/model"
)

// Group is either a maximal run of list items of one kind or a single
// non-list block.
type Group struct {
	List   model.ListKind
	Blocks []model.Block
}

// GroupBlocks partitions blocks into groups without reordering or
// dropping any of them.
func GroupBlocks(blocks []model.Block) []Group {
	var out []Group
	for _, b := range blocks {
		kind := b.List()
		if kind != model.ListNone && len(out) > 0 && out[len(out)-1].List == kind {
			last := &out[len(out)-1]
			last.Blocks = append(last.Blocks, b)
			continue
		}
		out = append(out, Group{List: kind, Blocks: []model.Block{b}})
	}
	return out
}

// RenderBlocks renders blocks under the rules of v. Every input block
// yields exactly one block-level element.
func RenderBlocks(blocks []model.Block, v model.Variant) []*html.Node {
	rules := Rules(v)
	groups := GroupBlocks(blocks)
	out := make([]*html.Node, 0, len(groups))
	for _, g := range groups {
		if g.List == model.ListNone {
			out = append(out, renderBlock(rules, g.Blocks[0]))
			continue
		}
		lr := rules.List(g.List)
		list := element(lr.Tag, lr.Class)
		ir := rules.Item()
		for _, b := range g.Blocks {
			li := element(ir.Tag, ir.Class)
			if d := b.Depth(); d > 1 {
				li.Attr = append(li.Attr, html.Attribute{Key: "data-level", Val: strconv.Itoa(d)})
			}
			appendInline(li, rules, b)
			list.AppendChild(li)
		}
		out = append(out, list)
	}
	return out
}

func renderBlock(rules RuleSet, b model.Block) *html.Node {
	br := rules.Block(b.ParsedStyle())
	n := element(br.Tag, br.Class)
	appendInline(n, rules, b)
	return n
}

// appendInline adds one node per span to parent. Marks wrap the text
// outermost-first in the order strong, em, underline, code, link.
func appendInline(parent *html.Node, rules RuleSet, b model.Block) {
	for _, span := range b.Children {
		n := &html.Node{Type: html.TextNode, Data: span.Text}
		marks := b.ResolveMarks(span)
		for i := len(marks) - 1; i >= 0; i-- {
			mr := rules.Mark(marks[i].Kind)
			if mr.Tag == 0 {
				continue
			}
			w := element(mr.Tag, mr.Class)
			if mr.Tag == atom.A {
				href, ok := safeHref(marks[i].Href)
				if !ok {
					continue
				}
				w.Attr = append(w.Attr,
					html.Attribute{Key: "href", Val: href},
					html.Attribute{Key: "rel", Val: "noopener noreferrer"},
				)
			}
			w.AppendChild(n)
			n = w
		}
		parent.AppendChild(n)
	}
}

// safeHref accepts relative references and http, https and mailto URLs.
func safeHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return u.String(), true
	}
	return "", false
}

func element(a atom.Atom, class string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
	}
	n.Attr = append(n.Attr, attrs...)
	return n
}

func textElement(a atom.Atom, class, text string) *html.Node {
	n := element(a, class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// RenderHTML serializes nodes in order.
func RenderHTML(nodes ...*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
