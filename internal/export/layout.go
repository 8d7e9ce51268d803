package export

import (
	"strings"
	"unicode/utf8"

	"contextly/internal/model"
)

// Snapshot is an immutable view of a ledger and its selection taken for one export call.
type Snapshot struct {
	Pairs    []model.QAPair
	Selected map[int]bool
}

// LineKind tells what a laid out line carries.
type LineKind int

const (
	TitleLine LineKind = iota
	QuestionLine
	AnswerLine
)

// Line is one text line placed on a page. Y grows downwards from the top edge.
type Line struct {
	Kind  LineKind
	Index int // ledger index, -1 for the title
	Text  string
	X     float64
	Y     float64
}

// Page is one laid out page, numbered from 1.
type Page struct {
	Number int
	Lines  []Line
}

// Document is the laid out export, ready for serialization.
type Document struct {
	Pages []Page
}

// Text returns every line of the document in reading order.
func (d Document) Text() []string {
	var out []string
	for _, p := range d.Pages {
		for _, l := range p.Lines {
			out = append(out, l.Text)
		}
	}
	return out
}

// Layout holds page geometry in PDF points.
//
// A question line advances the cursor by QuestionAdvance; the last line of an answer advances it by
// AnswerAdvance so entries are visually separated. Wrapped continuation lines advance by QuestionAdvance.
type Layout struct {
	PageWidth       float64
	PageHeight      float64
	TopMargin       float64
	BottomMargin    float64
	LeftMargin      float64
	QuestionAdvance float64
	AnswerAdvance   float64
	FontName        string
	FontSize        int
	WrapWidth       int // runes per line, 0 disables wrapping
	Title           string
}

// DefaultLayout is an A4 portrait page with the spacing of the original download button.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:       595,
		PageHeight:      842,
		TopMargin:       28,
		BottomMargin:    28,
		LeftMargin:      28,
		QuestionAdvance: 23,
		AnswerAdvance:   34,
		FontName:        "Helvetica",
		FontSize:        12,
		WrapWidth:       90,
	}
}

// Arrange lays out the selected pairs of snap in ascending ledger order.
//
// A pair that does not fit in the space left on a page that already holds lines starts on a new page.
// A pair taller than a whole page is split wherever the cursor runs past the printable height.
func (l Layout) Arrange(snap Snapshot) Document {
	b := &pageBuilder{layout: l}
	b.newPage()

	if l.Title != "" {
		for _, text := range wrap(l.Title, l.WrapWidth) {
			b.emit(TitleLine, -1, text)
			b.cursor += l.QuestionAdvance
		}
		b.cursor += l.AnswerAdvance - l.QuestionAdvance
	}

	for i, pair := range snap.Pairs {
		if !snap.Selected[i] {
			continue
		}
		q := wrap("Q: "+pair.Question, l.WrapWidth)
		a := wrap("A: "+pair.Answer, l.WrapWidth)

		lastLineY := b.cursor + float64(len(q)+len(a)-1)*l.QuestionAdvance
		if lastLineY > b.limit() && !b.pageEmpty() {
			b.newPage()
		}

		for _, text := range q {
			b.emit(QuestionLine, i, text)
			b.cursor += l.QuestionAdvance
		}
		for j, text := range a {
			b.emit(AnswerLine, i, text)
			if j == len(a)-1 {
				b.cursor += l.AnswerAdvance
			} else {
				b.cursor += l.QuestionAdvance
			}
		}
	}

	return Document{Pages: b.pages}
}

type pageBuilder struct {
	layout Layout
	pages  []Page
	cursor float64
}

func (b *pageBuilder) newPage() {
	b.pages = append(b.pages, Page{Number: len(b.pages) + 1})
	b.cursor = b.layout.TopMargin
}

func (b *pageBuilder) limit() float64 {
	return b.layout.PageHeight - b.layout.BottomMargin
}

func (b *pageBuilder) pageEmpty() bool {
	return len(b.pages[len(b.pages)-1].Lines) == 0
}

func (b *pageBuilder) emit(kind LineKind, index int, text string) {
	if b.cursor > b.limit() && !b.pageEmpty() {
		b.newPage()
	}
	p := &b.pages[len(b.pages)-1]
	p.Lines = append(p.Lines, Line{
		Kind:  kind,
		Index: index,
		Text:  text,
		X:     b.layout.LeftMargin,
		Y:     b.cursor,
	})
}

// wrap splits s into lines of at most width runes, breaking on spaces where possible.
// Embedded newlines always break.
func wrap(s string, width int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		out = append(out, wrapParagraph(para, width)...)
	}
	return out
}

func wrapParagraph(s string, width int) []string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return []string{s}
	}

	var lines []string
	var cur []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(cur) == 0:
			cur = w
		case len(cur)+1+len(w) <= width:
			cur = append(append(cur, ' '), w...)
		default:
			lines = append(lines, string(cur))
			cur = w
		}
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
