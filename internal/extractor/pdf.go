package extractor

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// Word is one text fragment with its position on the page. X is the left
// edge and Top is measured from the top of the page, so "lower on the page"
// means a larger Top.
type Word struct {
	Text   string
	X      float64
	Top    float64
	Width  float64
	Height float64
}

// Box is a page region: left/right x-coordinates and top/bottom measured
// from the page top.
type Box struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
}

// Page holds the positioned words of a single PDF page in reading order.
type Page struct {
	Width  float64
	Height float64
	words  []Word
}

// Document wraps an open PDF and hands out per-page word geometry.
// Opening the document is the only fatal failure in the whole pipeline;
// everything downstream degrades per page or per row.
type Document struct {
	r    *pdf.Reader
	data []byte
	name string
}

// Open reads a PDF from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return OpenBytes(data, path)
}

// OpenBytes decodes a PDF from memory. The name is used only in errors and
// log output.
func OpenBytes(data []byte, name string) (doc *Document, err error) {
	// The pdf library panics on malformed xref tables; surface that as an
	// open error instead of crashing the caller.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("open %s: PDF library crashed: %v", name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	if r.NumPage() == 0 {
		return nil, fmt.Errorf("open %s: PDF has no pages", name)
	}
	return &Document{r: r, data: data, name: name}, nil
}

// Name returns the source name given at open time.
func (d *Document) Name() string { return d.name }

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.r.NumPage() }

// Page extracts the word geometry of page i (1-based).
func (d *Document) Page(i int) (p *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("page %d of %s: PDF library crashed: %v", i, d.name, r)
		}
	}()

	if i < 1 || i > d.r.NumPage() {
		return nil, fmt.Errorf("page %d of %s: out of range", i, d.name)
	}
	page := d.r.Page(i)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d of %s: missing page object", i, d.name)
	}

	width, height := pageSize(page)
	content := page.Content()
	return &Page{
		Width:  width,
		Height: height,
		words:  buildWords(content.Text, height),
	}, nil
}

// PageText returns the plain text of page i in reading order. When the
// library output fails the readability gate (broken font maps produce
// garbage), the raw content-stream fallback is tried before giving up.
func (d *Document) PageText(i int) string {
	var text string
	if page, err := d.Page(i); err == nil {
		text = page.Text()
	}
	if isReadableText(text) {
		return text
	}
	if raw := rawText(d.data); isReadableText(raw) {
		return raw
	}
	return text
}

// Words returns the page's words in reading order. Callers must not mutate
// the returned slice.
func (p *Page) Words() []Word { return p.words }

// Text joins the page's words into lines by vertical proximity.
func (p *Page) Text() string {
	var b strings.Builder
	lineTop := -1.0
	for i, w := range p.words {
		switch {
		case i == 0:
			lineTop = w.Top
		case w.Top-lineTop > rowBandTolerance:
			b.WriteByte('\n')
			lineTop = w.Top
		default:
			b.WriteByte(' ')
		}
		b.WriteString(w.Text)
	}
	return b.String()
}

// Crop returns a view of the page restricted to the given box.
func (p *Page) Crop(box Box) *Page {
	var kept []Word
	for _, w := range p.words {
		if w.X >= box.X0 && w.X < box.X1 && w.Top >= box.Top && w.Top < box.Bottom {
			kept = append(kept, w)
		}
	}
	return &Page{Width: p.Width, Height: p.Height, words: kept}
}

// NewPage builds a page from pre-positioned words, re-sorted into reading
// order. Intended for synthetic pages in tests.
func NewPage(width, height float64, words []Word) *Page {
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Top != sorted[b].Top {
			return sorted[a].Top < sorted[b].Top
		}
		return sorted[a].X < sorted[b].X
	})
	return &Page{Width: width, Height: height, words: sorted}
}

const (
	// rowBandTolerance groups glyphs into the same visual line.
	rowBandTolerance = 3.0
	// wordGapScale times the font size is the horizontal gap that separates
	// two words; below it glyph runs are merged into one word.
	wordGapScale = 0.3
	wordGapMin   = 1.0
)

// buildWords merges character-level library output into words. Glyphs are
// grouped into horizontal bands by Y, sorted left to right, and joined while
// the gap to the previous glyph stays under the font-size-scaled threshold.
// The library's bottom-up Y is converted to top-down here.
func buildWords(texts []pdf.Text, pageHeight float64) []Word {
	var chars []pdf.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		chars = append(chars, t)
	}
	if len(chars) == 0 {
		return nil
	}

	// Bands from the top of the page down: descending Y.
	sort.SliceStable(chars, func(a, b int) bool { return chars[a].Y > chars[b].Y })

	var words []Word
	for start := 0; start < len(chars); {
		end := start + 1
		for end < len(chars) && chars[start].Y-chars[end].Y <= rowBandTolerance {
			end++
		}
		band := make([]pdf.Text, end-start)
		copy(band, chars[start:end])
		sort.SliceStable(band, func(a, b int) bool { return band[a].X < band[b].X })
		words = append(words, joinBand(band, pageHeight)...)
		start = end
	}
	return words
}

func joinBand(band []pdf.Text, pageHeight float64) []Word {
	var words []Word
	var cur Word
	var curEnd float64

	flush := func() {
		if cur.Text != "" {
			cur.Width = curEnd - cur.X
			words = append(words, cur)
			cur = Word{}
		}
	}

	for _, c := range band {
		gap := c.X - curEnd
		threshold := wordGapScale * c.FontSize
		if threshold < wordGapMin {
			threshold = wordGapMin
		}
		if cur.Text == "" || gap > threshold {
			flush()
			cur = Word{
				Text:   c.S,
				X:      c.X,
				Top:    pageHeight - c.Y,
				Height: c.FontSize,
			}
			curEnd = c.X + c.W
			continue
		}
		cur.Text += c.S
		if c.FontSize > cur.Height {
			cur.Height = c.FontSize
		}
		if c.X+c.W > curEnd {
			curEnd = c.X + c.W
		}
	}
	flush()
	return words
}

func pageSize(p pdf.Page) (width, height float64) {
	// MediaBox may be inherited from an ancestor Pages node.
	v := p.V
	for depth := 0; depth < 8 && !v.IsNull(); depth++ {
		if box := v.Key("MediaBox"); !box.IsNull() && box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
		v = v.Key("Parent")
	}
	return 612, 792 // US Letter
}

// isReadableText gates extracted text on length and the ratio of plain ASCII
// characters. Identity-encoded fonts decode to accented garbage that a
// unicode.IsLetter check would wave through, so the check is strict ASCII.
func isReadableText(text string) bool {
	if len(strings.TrimSpace(text)) <= 50 {
		return false
	}
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
			strings.ContainsRune(".,-/:;()'\"$%&@#!?+=*", r) {
			readable++
		}
	}
	return total > 0 && float64(readable)/float64(total) > 0.6
}
