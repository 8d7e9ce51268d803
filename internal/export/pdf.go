package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"

	"contextly/internal/model"
)

const (
	// DefaultFileName is the artifact name offered for download.
	DefaultFileName = "selected-qa.pdf"
	// ContentType of rendered artifacts.
	ContentType = "application/pdf"
)

// PDFRenderer lays out a snapshot and serializes it to PDF through pdfcpu's JSON page description.
type PDFRenderer struct {
	layout   Layout
	fileName string
}

// NewPDFRenderer creates a renderer. An empty fileName falls back to DefaultFileName.
func NewPDFRenderer(layout Layout, fileName string) *PDFRenderer {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &PDFRenderer{layout: layout, fileName: fileName}
}

// Render lays out snap and returns the serialized artifact.
func (r *PDFRenderer) Render(ctx context.Context, snap Snapshot) (*model.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrRender, err)
	}

	doc := r.layout.Arrange(snap)

	var buf bytes.Buffer
	if err := r.Write(doc, &buf); err != nil {
		return nil, err
	}

	return &model.Artifact{
		Name:        r.fileName,
		ContentType: ContentType,
		Data:        buf.Bytes(),
		Pages:       len(doc.Pages),
	}, nil
}

// Write serializes an arranged document to w.
func (r *PDFRenderer) Write(doc Document, w io.Writer) error {
	desc, err := r.describe(doc)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("%w: encode page description: %v", model.ErrRender, err)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	if err := api.Create(nil, bytes.NewReader(raw), w, conf); err != nil {
		return fmt.Errorf("%w: %v", model.ErrRender, err)
	}
	return nil
}

// pdfcpu create description, see pdfcpu's "create" command.
type pdfDescription struct {
	Paper string             `json:"paper"`
	Crop  string             `json:"crop,omitempty"`
	Pages map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func (r *PDFRenderer) describe(doc Document) (pdfDescription, error) {
	paper, crop, err := pageFormat(r.layout.PageWidth, r.layout.PageHeight)
	if err != nil {
		return pdfDescription{}, err
	}
	desc := pdfDescription{
		Paper: paper,
		Crop:  crop,
		Pages: make(map[string]pdfPage, len(doc.Pages)),
	}
	fnt := pdfFont{Name: r.layout.FontName, Size: r.layout.FontSize}

	for _, p := range doc.Pages {
		texts := make([]pdfText, 0, len(p.Lines))
		for _, l := range p.Lines {
			if l.Text == "" {
				continue
			}
			if err := checkEncodable(r.layout.FontName, l.Text); err != nil {
				return pdfDescription{}, err
			}
			texts = append(texts, pdfText{
				Value: l.Text,
				// pdfcpu positions from the lower left corner
				Pos:  [2]float64{l.X, r.layout.PageHeight - l.Y},
				Font: fnt,
			})
		}
		desc.Pages[strconv.Itoa(p.Number)] = pdfPage{Content: pdfContent{Text: texts}}
	}
	return desc, nil
}

// pageFormat returns the pdfcpu paper name for a page of w x h points. A size without a named
// format gets the smallest paper holding it and a crop box trimming the page to w x h.
func pageFormat(w, h float64) (paper, crop string, err error) {
	names := make([]string, 0, len(types.PaperSize))
	for name := range types.PaperSize {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestArea := "", math.MaxFloat64
	for _, name := range names {
		d := types.PaperSize[name]
		short, long := math.Min(d.Width, d.Height), math.Max(d.Width, d.Height)
		for _, o := range []struct {
			suffix string
			w, h   float64
		}{{"P", short, long}, {"L", long, short}} {
			if o.w == w && o.h == h {
				return name + o.suffix, "", nil
			}
			if o.w >= w && o.h >= h && o.w*o.h < bestArea {
				best, bestArea = name+o.suffix, o.w*o.h
			}
		}
	}
	if best == "" {
		return "", "", fmt.Errorf("%w: page size %gx%g exceeds every paper format", model.ErrRender, w, h)
	}
	return best, fmt.Sprintf("[0 0 %g %g]", w, h), nil
}

// checkEncodable rejects text a standard PDF font cannot show. Helvetica and the other core text
// fonts use WinAnsiEncoding, which drops anything outside it.
func checkEncodable(fontName, text string) error {
	if !font.IsCoreFont(fontName) || fontName == "Symbol" || fontName == "ZapfDingbats" {
		return nil
	}
	if _, err := charmap.Windows1252.NewEncoder().String(text); err != nil {
		return fmt.Errorf("%w: font %s cannot encode %q", model.ErrRender, fontName, text)
	}
	return nil
}
