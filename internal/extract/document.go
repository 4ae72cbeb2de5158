// Package extract reads the text layer of a contracheque PDF and
// reconstructs one raw table grid per page, plus the page's raw text
// and the holder's identity. It is the extraction collaborator sitting
// in front of the normalization engine: per-page failures degrade to
// skipped tables, never to a fatal error for the whole document.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"contracheques/internal/normalize"
)

// Page is one extracted page: its number (1-based), raw text for the
// date resolver, and the reconstructed table grid.
type Page struct {
	Number int
	Text   string
	Grid   normalize.RawTableGrid
}

// Document is the extraction result handed to the pipeline.
type Document struct {
	Name      string
	Matricula string
	Pages     []Page
}

// ReadDocument validates the PDF and extracts every page. The identity
// is read from page 1; pages whose text layer cannot be read are
// silently absent from the result.
func ReadDocument(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	doc := &Document{Name: NotDetermined, Matricula: NotDetermined}
	for n := 1; n <= r.NumPage(); n++ {
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			continue
		}

		trs := toTextRows(rows)
		page := Page{
			Number: n,
			Text:   joinText(trs),
			Grid:   buildGrid(trs, n),
		}
		if n == 1 {
			doc.Name, doc.Matricula = ExtractIdentity(page.Text)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// textRow is one physical text line: its vertical position and the
// words on it, ordered left to right.
type textRow struct {
	y     float64
	words []word
}

type word struct {
	x, w float64
	s    string
}

// end is the word's right edge, used for gap-based cell clustering.
func (w word) end() float64 { return w.x + w.w }

// toTextRows groups the reader's text fragments into physical lines,
// merging adjacent fragments that belong to the same word. The reader
// may emit a word as several show operations; fragments closer than
// joinTol points are glued back together.
func toTextRows(rows pdf.Rows) []textRow {
	const joinTol = 1.0

	out := make([]textRow, 0, len(rows))
	for _, row := range rows {
		tr := textRow{y: float64(row.Position)}
		for _, t := range row.Content {
			s := strings.TrimSpace(t.S)
			if s == "" {
				continue
			}
			if n := len(tr.words); n > 0 && t.X-tr.words[n-1].end() < joinTol {
				prev := &tr.words[n-1]
				prev.s += s
				prev.w = t.X + t.W - prev.x
				continue
			}
			tr.words = append(tr.words, word{x: t.X, w: t.W, s: s})
		}
		if len(tr.words) > 0 {
			out = append(out, tr)
		}
	}
	return out
}

func joinText(rows []textRow) string {
	var sb strings.Builder
	for _, row := range rows {
		for i, w := range row.words {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.s)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
