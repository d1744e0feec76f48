package render

import (
	"golang.org/x/net/html/atom"

	"legalpub/internal/model"
)

// BlockRule is the element and class a block style renders to.
type BlockRule struct {
	Tag   atom.Atom
	Class string
}

// MarkRule is the wrapper element of an inline mark. A zero Tag means the
// variant ignores the mark and the text renders unwrapped.
type MarkRule struct {
	Tag   atom.Atom
	Class string
}

// RuleSet is a variant's style-to-markup table. Both variants share the
// same block and mark taxonomy; they differ in treatment only.
type RuleSet struct {
	Variant model.Variant
}

// Rules returns the rule table of v.
func Rules(v model.Variant) RuleSet {
	return RuleSet{Variant: v}
}

// Block maps a style onto its rule. StyleUnknown and anything not listed
// take the plain paragraph rule.
func (r RuleSet) Block(s model.Style) BlockRule {
	if r.Variant == model.VariantLegal {
		return legalBlock(s)
	}
	return defaultBlock(s)
}

func legalBlock(s model.Style) BlockRule {
	switch s {
	case model.StyleCentered:
		return BlockRule{atom.P, "legal-centered"}
	case model.StyleH1:
		return BlockRule{atom.H1, "legal-h1"}
	case model.StyleH2:
		return BlockRule{atom.H2, "legal-h2"}
	case model.StyleH3:
		return BlockRule{atom.H3, "legal-h3"}
	case model.StyleH4:
		return BlockRule{atom.H4, "legal-h4"}
	case model.StyleH5:
		return BlockRule{atom.H5, "legal-h5"}
	case model.StyleH6:
		return BlockRule{atom.H6, "legal-h6"}
	case model.StyleBlockquote:
		return BlockRule{atom.Blockquote, "legal-quote"}
	default:
		return BlockRule{atom.P, "legal-p"}
	}
}

func defaultBlock(s model.Style) BlockRule {
	switch s {
	case model.StyleCentered:
		return BlockRule{atom.P, "pt-centered"}
	case model.StyleH1:
		return BlockRule{atom.H1, "pt-h1"}
	case model.StyleH2:
		return BlockRule{atom.H2, "pt-h2"}
	case model.StyleH3:
		return BlockRule{atom.H3, "pt-h3"}
	case model.StyleH4:
		return BlockRule{atom.H4, "pt-h4"}
	case model.StyleH5:
		return BlockRule{atom.H5, "pt-h5"}
	case model.StyleH6:
		return BlockRule{atom.H6, "pt-h6"}
	case model.StyleBlockquote:
		return BlockRule{atom.Blockquote, "pt-quote"}
	default:
		return BlockRule{atom.P, "pt-p"}
	}
}

// Mark maps an inline mark onto its wrapper. The legal variant renders
// strong, em and underline only.
func (r RuleSet) Mark(k model.MarkKind) MarkRule {
	if r.Variant == model.VariantLegal {
		switch k {
		case model.MarkStrong:
			return MarkRule{atom.Strong, "legal-strong"}
		case model.MarkEm:
			return MarkRule{atom.Em, "legal-em"}
		case model.MarkUnderline:
			return MarkRule{atom.Span, "legal-underline"}
		default:
			return MarkRule{}
		}
	}
	switch k {
	case model.MarkStrong:
		return MarkRule{atom.Strong, "pt-strong"}
	case model.MarkEm:
		return MarkRule{atom.Em, "pt-em"}
	case model.MarkUnderline:
		return MarkRule{atom.Span, "pt-underline"}
	case model.MarkCode:
		return MarkRule{atom.Code, "pt-code"}
	case model.MarkLink:
		return MarkRule{atom.A, "pt-link"}
	default:
		return MarkRule{}
	}
}

// List returns the container rule for a list kind.
func (r RuleSet) List(k model.ListKind) BlockRule {
	prefix := "pt-"
	if r.Variant == model.VariantLegal {
		prefix = "legal-"
	}
	if k == model.ListNumber {
		return BlockRule{atom.Ol, prefix + "ol"}
	}
	return BlockRule{atom.Ul, prefix + "ul"}
}

// Item returns the list item rule.
func (r RuleSet) Item() BlockRule {
	if r.Variant == model.VariantLegal {
		return BlockRule{atom.Li, "legal-li"}
	}
	return BlockRule{atom.Li, "pt-li"}
}
