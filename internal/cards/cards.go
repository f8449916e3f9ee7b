// Package cards is a small Adaptive Card document model. Only the elements the bot
// renders are modelled.
package cards

// ContentType is the attachment content type of an Adaptive Card.
const ContentType = "application/vnd.microsoft.card.adaptive"

// Version is the Adaptive Card schema version emitted. 1.0 renders in every Teams client.
const Version = "1.0"

// Text sizes, weights and spacings.
const (
	SizeLarge     = "large"
	WeightBolder  = "bolder"
	SpacingMedium = "medium"
	StyleEmphasis = "emphasis"
)

// Card is an AdaptiveCard document.
type Card struct {
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
}

// Element is a body element: *TextBlock, *FactSet or *Container.
type Element interface {
	elementType() string
}

type TextBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Weight   string `json:"weight,omitempty"`
	Size     string `json:"size,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
	Spacing  string `json:"spacing,omitempty"`
}

type Fact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type FactSet struct {
	Type  string `json:"type"`
	Facts []Fact `json:"facts"`
}

type Container struct {
	Type    string    `json:"type"`
	Items   []Element `json:"items"`
	Style   string    `json:"style,omitempty"`
	Spacing string    `json:"spacing,omitempty"`
}

// Action is an Action.Submit; Data is posted back as the activity value.
type Action struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Data  any    `json:"data,omitempty"`
}

func (*TextBlock) elementType() string { return "TextBlock" }
func (*FactSet) elementType() string   { return "FactSet" }
func (*Container) elementType() string { return "Container" }

// New returns a card with the given body.
func New(body ...Element) *Card {
	return &Card{Type: "AdaptiveCard", Version: Version, Body: body}
}

// Add appends body elements.
func (c *Card) Add(els ...Element) *Card {
	c.Body = append(c.Body, els...)
	return c
}

// Submit appends an Action.Submit.
func (c *Card) Submit(title string, data any) *Card {
	c.Actions = append(c.Actions, Action{Type: "Action.Submit", Title: title, Data: data})
	return c
}

// Title is a large bolder heading.
func Title(text string) *TextBlock {
	return &TextBlock{Type: "TextBlock", Text: text, Weight: WeightBolder, Size: SizeLarge}
}

func Text(text string) *TextBlock {
	return &TextBlock{Type: "TextBlock", Text: text}
}

// Wrapped is a text block that wraps long lines.
func Wrapped(text string) *TextBlock {
	return &TextBlock{Type: "TextBlock", Text: text, Wrap: true}
}

func Facts(facts ...Fact) *FactSet {
	return &FactSet{Type: "FactSet", Facts: facts}
}

// Box groups items in an emphasis container with medium spacing.
func Box(items ...Element) *Container {
	return &Container{Type: "Container", Items: items, Style: StyleEmphasis, Spacing: SpacingMedium}
}

// Walk calls fn for every element in the card body, depth first.
func (c *Card) Walk(fn func(Element)) {
	var walk func([]Element)
	walk = func(els []Element) {
		for _, el := range els {
			fn(el)
			if box, ok := el.(*Container); ok {
				walk(box.Items)
			}
		}
	}
	walk(c.Body)
}

// Texts returns the text of every TextBlock in the card, in document order.
func (c *Card) Texts() []string {
	var out []string
	c.Walk(func(el Element) {
		if tb, ok := el.(*TextBlock); ok {
			out = append(out, tb.Text)
		}
	})
	return out
}

// FactValues returns title→value for every fact in the card. Later facts with the same
// title overwrite earlier ones.
func (c *Card) FactValues() map[string]string {
	out := map[string]string{}
	c.Walk(func(el Element) {
		if fs, ok := el.(*FactSet); ok {
			for _, f := range fs.Facts {
				out[f.Title] = f.Value
			}
		}
	})
	return out
}
