package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/docsift/docsift/internal/outline"
	"github.com/docsift/docsift/internal/span"
)

// PDFExtractor builds outlines from PDF page geometry: per-run font name,
// size and position, merged into line spans and classified by font statistics.
type PDFExtractor struct {
	// Tagger overrides the heading heuristic; nil means frequency-based.
	Tagger span.Tagger
}

const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

func (p *PDFExtractor) Extract(r io.Reader, filename string) (*outline.Document, error) {
	// The pdf library needs a ReadSeeker+size, so stage to a temp file.
	tmp, err := os.CreateTemp("", "docsift-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPages(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("extract pdf geometry: %w", err)
	}

	b := &outline.Builder{Tagger: p.Tagger}
	return b.Build(pages)
}

// extractPages reads every page's text runs with geometry. The underlying
// library panics on some malformed content streams, so the whole pass is
// wrapped in a recover that surfaces as an error.
func extractPages(path string) (pages []outline.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf content: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, outline.Page{Width: defaultPageWidth, Height: defaultPageHeight})
			continue
		}
		w, h := pageSize(page)
		spans := mergeRuns(page.Content().Text, i-1, h)
		pages = append(pages, outline.Page{Width: w, Height: h, Spans: spans})
	}
	return pages, nil
}

// pageSize reads the MediaBox, walking up the page tree for inherited values.
func pageSize(page pdflib.Page) (w, h float64) {
	v := page.V
	for depth := 0; depth < 8 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			w = box.Index(2).Float64() - box.Index(0).Float64()
			h = box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

// mergeRuns groups consecutive text runs that share a font, size and baseline
// into single spans, inserting spaces across visible horizontal gaps. The
// library reports coordinates bottom-up; spans come out top-down so the
// header/footer band filter can work on origin Y directly.
func mergeRuns(runs []pdflib.Text, pageIdx int, pageHeight float64) []span.Span {
	var spans []span.Span
	var cur *span.Span
	var lastX, lastW, lastY float64

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			spans = append(spans, *cur)
		}
		cur = nil
	}

	for _, t := range runs {
		if t.S == "" {
			continue
		}
		sameLine := cur != nil &&
			cur.FontFamily == t.Font &&
			cur.FontSize == t.FontSize &&
			abs(t.Y-lastY) < 0.2

		if !sameLine {
			flush()
			yTop := pageHeight - t.Y
			cur = &span.Span{
				FontSize:   t.FontSize,
				FontFlags:  fontFlags(t.Font),
				FontFamily: t.Font,
				OriginX:    t.X,
				OriginY:    yTop,
				Page:       pageIdx,
				BBox:       span.BBox{X0: t.X, Y0: yTop - t.FontSize, X1: t.X + t.W, Y1: yTop},
			}
		} else if t.X-(lastX+lastW) > t.FontSize*0.25 {
			cur.Text += " "
		}

		cur.Text += t.S
		if x1 := t.X + t.W; x1 > cur.BBox.X1 {
			cur.BBox.X1 = x1
		}
		if t.X < cur.BBox.X0 {
			cur.BBox.X0 = t.X
		}
		lastX, lastW, lastY = t.X, t.W, t.Y
	}
	flush()
	return spans
}

// fontFlags derives style flags from the font name; the library exposes no
// explicit style bits.
func fontFlags(name string) int {
	flags := 0
	lower := strings.ToLower(name)
	if strings.Contains(lower, "bold") {
		flags |= 1 << 4
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= 1 << 1
	}
	return flags
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
