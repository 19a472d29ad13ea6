package span

import "fmt"

// Span is the smallest extracted text unit: one run of text sharing a single
// font style, with its position on the page. Spans are immutable once extracted.
type Span struct {
	Text       string
	FontSize   float64
	FontFlags  int
	FontFamily string
	Color      uint32
	OriginX    float64
	OriginY    float64 // top-down: 0 is the top edge of the page
	BBox       BBox
	Page       int
}

// BBox is an axis-aligned bounding box in top-down page coordinates.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// Signature identifies a font style. Many spans map to one signature.
type Signature struct {
	Size   float64
	Flags  int
	Family string
	Color  uint32
}

// Sig returns the style signature of a span.
func (s Span) Sig() Signature {
	return Signature{Size: s.FontSize, Flags: s.FontFlags, Family: s.FontFamily, Color: s.Color}
}

// TagKind distinguishes the three structural roles a style can play.
type TagKind int

const (
	Paragraph TagKind = iota
	SubLevel
	HeadingLevel
)

// Tag labels a style signature with its structural role. Level is meaningful
// for SubLevel and HeadingLevel only.
type Tag struct {
	Kind  TagKind
	Level int
}

func (t Tag) String() string {
	switch t.Kind {
	case SubLevel:
		return fmt.Sprintf("<s%d>", t.Level)
	case HeadingLevel:
		return fmt.Sprintf("<h%d>", t.Level)
	default:
		return "<p>"
	}
}

// IsHeading reports whether the tag marks heading text.
func (t Tag) IsHeading() bool { return t.Kind == HeadingLevel }
