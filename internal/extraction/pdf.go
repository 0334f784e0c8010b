package extraction

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jonathan/outline-ranker/internal/types"
)

const (
	// defaultPageHeight is US Letter, used when no MediaBox is found
	defaultPageHeight = 792.0
	defaultPageWidth  = 612.0
	// spaceGapRatio is the horizontal gap, relative to font size, that becomes a space
	spaceGapRatio = 0.2
	// splitGapRatio is the gap that ends one span and starts another on the same row
	splitGapRatio = 3.0
	// maxParentDepth bounds the walk up the page tree for inherited attributes
	maxParentDepth = 32
)

// PDFSupplier extracts spans with github.com/ledongthuc/pdf
type PDFSupplier struct{}

// NewPDFSupplier creates a PDF span supplier
func NewPDFSupplier() *PDFSupplier {
	return &PDFSupplier{}
}

// Extract opens the PDF at path and returns its spans page by page
func (s *PDFSupplier) Extract(ctx context.Context, path string) (doc *types.Document, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Message: "failed to open PDF", Cause: err}
	}
	defer func() { _ = f.Close() }()

	return s.extract(ctx, filepath.Base(path), path, reader)
}

// ExtractReader reads a PDF from r, e.g. an uploaded file. id names the document.
func (s *PDFSupplier) ExtractReader(ctx context.Context, id string, r io.ReaderAt, size int64) (*types.Document, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, &SourceError{Path: id, Message: "failed to parse PDF", Cause: err}
	}
	return s.extract(ctx, id, id, reader)
}

func (s *PDFSupplier) extract(ctx context.Context, id, path string, reader *pdf.Reader) (doc *types.Document, err error) {
	// The parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &SourceError{Path: path, Message: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	doc = &types.Document{ID: id, MetadataTitle: metadataTitle(reader)}

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		width, height := pageSize(page.V)
		content := page.Content()
		doc.Pages = append(doc.Pages, types.Page{
			Number: i,
			Width:  width,
			Height: height,
			Lines:  buildLines(content.Text, i, height),
		})
	}

	if len(doc.Pages) == 0 {
		return nil, &SourceError{Path: path, Message: "document has no readable pages"}
	}

	return doc, nil
}

func metadataTitle(reader *pdf.Reader) string {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}

// pageSize reads the MediaBox, following the Parent chain since it is inheritable
func pageSize(v pdf.Value) (width, height float64) {
	for depth := 0; depth < maxParentDepth && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := math.Abs(box.Index(2).Float64() - box.Index(0).Float64())
			h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64())
			if w > 0 && h > 0 {
				return w, h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageWidth, defaultPageHeight
}

// buildLines groups glyph runs into rows by baseline, orders rows top-down, and
// merges adjacent glyphs of the same font and size into spans.
func buildLines(glyphs []pdf.Text, pageNum int, pageHeight float64) []types.Line {
	rows := make(map[int][]pdf.Text)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		key := int(math.Round(g.Y))
		rows[key] = append(rows[key], g)
	}

	keys := make([]int, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	// PDF user space grows upward, so the top row has the largest Y
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	lines := make([]types.Line, 0, len(keys))
	for _, k := range keys {
		row := rows[k]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		spans := mergeRow(row, pageNum, pageHeight)
		if len(spans) > 0 {
			lines = append(lines, types.Line{Page: pageNum, Spans: spans})
		}
	}
	return lines
}

func mergeRow(row []pdf.Text, pageNum int, pageHeight float64) []types.Span {
	var spans []types.Span
	var sb strings.Builder
	var cur pdf.Text
	var x0, x1 float64
	open := false

	flush := func() {
		if !open {
			return
		}
		spans = append(spans, newSpan(sb.String(), cur, x0, x1, pageNum, pageHeight))
		sb.Reset()
		open = false
	}

	for _, g := range row {
		if open {
			gap := g.X - x1
			sameStyle := g.Font == cur.Font && math.Abs(g.FontSize-cur.FontSize) < 0.01
			if !sameStyle || gap > splitGapRatio*cur.FontSize {
				flush()
			} else if gap > spaceGapRatio*cur.FontSize && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.S, " ") {
				sb.WriteByte(' ')
			}
		}
		if !open {
			cur = g
			x0, x1 = g.X, g.X
			open = true
		}
		sb.WriteString(g.S)
		if end := g.X + g.W; end > x1 {
			x1 = end
		}
	}
	flush()

	return spans
}

func newSpan(text string, style pdf.Text, x0, x1 float64, pageNum int, pageHeight float64) types.Span {
	baseline := pageHeight - style.Y
	return types.Span{
		Text: text,
		BBox: types.BBox{
			X0: x0,
			Y0: baseline - style.FontSize,
			X1: x1,
			Y1: baseline,
		},
		FontSize: math.Round(style.FontSize*100) / 100,
		Bold:     isBoldFont(style.Font),
		Page:     pageNum,
	}
}

func isBoldFont(font string) bool {
	lower := strings.ToLower(font)
	for _, marker := range []string{"bold", "black", "heavy", "semibold"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
