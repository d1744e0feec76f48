package model

// Style is the closed set of block style tags. Unrecognized tags parse to
// StyleUnknown and are rendered as plain paragraphs.
type Style int

const (
	StyleUnknown Style = iota
	StyleNormal
	StyleCentered
	StyleH1
	StyleH2
	StyleH3
	StyleH4
	StyleH5
	StyleH6
	StyleBlockquote
)

var styleNames = map[string]Style{
	"normal":     StyleNormal,
	"centered":   StyleCentered,
	"h1":         StyleH1,
	"h2":         StyleH2,
	"h3":         StyleH3,
	"h4":         StyleH4,
	"h5":         StyleH5,
	"h6":         StyleH6,
	"blockquote": StyleBlockquote,
}

// ParseStyle maps a stored style tag onto Style. An empty tag is "normal".
func ParseStyle(s string) Style {
	if s == "" {
		return StyleNormal
	}
	if st, ok := styleNames[s]; ok {
		return st
	}
	return StyleUnknown
}

// HeadingLevel returns 1..6 for heading styles and 0 otherwise.
func (s Style) HeadingLevel() int {
	if s >= StyleH1 && s <= StyleH6 {
		return int(s-StyleH1) + 1
	}
	return 0
}

// ListKind is the list-membership axis of a block.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumber
)

// ParseListKind maps a stored listItem tag onto ListKind.
func ParseListKind(s string) ListKind {
	switch s {
	case "bullet":
		return ListBullet
	case "number":
		return ListNumber
	}
	return ListNone
}

// MarkKind is the closed set of inline marks.
type MarkKind int

const (
	MarkStrong MarkKind = iota
	MarkEm
	MarkUnderline
	MarkCode
	MarkLink
)

// Mark is a resolved inline mark. Href is set for links only.
type Mark struct {
	Kind MarkKind
	Href string
}

var decorators = map[string]MarkKind{
	"strong":    MarkStrong,
	"em":        MarkEm,
	"underline": MarkUnderline,
	"code":      MarkCode,
}

// Span is a run of text carrying zero or more marks. A mark is either a
// decorator name or the key of one of the owning block's MarkDefs.
type Span struct {
	Key   string   `json:"_key,omitempty" yaml:"key,omitempty"`
	Text  string   `json:"text" yaml:"text"`
	Marks []string `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// MarkDef is an annotation referenced from span marks by key.
type MarkDef struct {
	Key  string `json:"_key" yaml:"key"`
	Type string `json:"_type" yaml:"type"`
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Block is one portable-text block: a paragraph, heading, quote or list item.
type Block struct {
	Key      string    `json:"_key,omitempty" yaml:"key,omitempty"`
	Style    string    `json:"style,omitempty" yaml:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty" yaml:"listItem,omitempty"`
	Level    int       `json:"level,omitempty" yaml:"level,omitempty"`
	Children []Span    `json:"children" yaml:"children"`
	MarkDefs []MarkDef `json:"markDefs,omitempty" yaml:"markDefs,omitempty"`
}

// ParsedStyle returns the block style. List items always use StyleNormal.
func (b Block) ParsedStyle() Style {
	if b.List() != ListNone {
		return StyleNormal
	}
	return ParseStyle(b.Style)
}

// List returns the block's list membership.
func (b Block) List() ListKind {
	return ParseListKind(b.ListItem)
}

// Depth returns the list nesting level, at least 1.
func (b Block) Depth() int {
	if b.Level < 1 {
		return 1
	}
	return b.Level
}

// PlainText concatenates the text of all spans.
func (b Block) PlainText() string {
	n := 0
	for _, c := range b.Children {
		n += len(c.Text)
	}
	buf := make([]byte, 0, n)
	for _, c := range b.Children {
		buf = append(buf, c.Text...)
	}
	return string(buf)
}

// ResolveMarks turns a span's raw marks into Marks ordered by kind, so the
// layering order never depends on how the editor stored them. Unknown
// decorators and dangling annotation keys are dropped.
func (b Block) ResolveMarks(s Span) []Mark {
	var present [MarkLink + 1]bool
	href := ""
	for _, raw := range s.Marks {
		if k, ok := decorators[raw]; ok {
			present[k] = true
			continue
		}
		for _, def := range b.MarkDefs {
			if def.Key == raw && def.Type == "link" {
				present[MarkLink] = true
				href = def.Href
				break
			}
		}
	}
	var out []Mark
	for k := MarkStrong; k <= MarkLink; k++ {
		if !present[k] {
			continue
		}
		m := Mark{Kind: k}
		if k == MarkLink {
			m.Href = href
		}
		out = append(out, m)
	}
	return out
}

// Variant selects the style-to-markup rule table.
type Variant int

const (
	VariantDefault Variant = iota
	VariantLegal
)

// ParseVariant maps "legal" to VariantLegal and anything else to VariantDefault.
func ParseVariant(s string) Variant {
	if s == "legal" {
		return VariantLegal
	}
	return VariantDefault
}
