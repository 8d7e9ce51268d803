// Package cli is an interactive terminal client for a single session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"contextly/internal/model"
	"contextly/internal/session"
	"contextly/internal/storage"
	"contextly/internal/validation"
)

const helpText = `commands:
  upload <path>...    send documents to the backend
  remove <name>       drop a document from the list
  files               list uploaded documents
  ask <question>      ask about the uploaded documents
  list                show questions and answers
  toggle <index>      select or unselect a pair for export
  export [dir]        write the selected pairs to a PDF
  help                show this help
  quit                leave`

// Shell reads commands line by line and applies them to a session.
type Shell struct {
	sess      *session.Session
	validator *validation.Validator
	exportDir string
	open      func(path string) (io.ReadCloser, error)

	out                  io.Writer
	ok, warn, fail, info *color.Color
}

// New returns a shell for sess. Exports go to exportDir unless a command names another directory.
func New(sess *session.Session, v *validation.Validator, exportDir string) *Shell {
	if exportDir == "" {
		exportDir = "."
	}
	return &Shell{
		sess:      sess,
		validator: v,
		exportDir: exportDir,
		open:      func(path string) (io.ReadCloser, error) { return os.Open(path) },
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
		fail:      color.New(color.FgRed),
		info:      color.New(color.FgCyan),
	}
}

// Run processes commands from in until quit, end of input, or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = out
	s.info.Fprintln(out, "contextly: type help for commands")

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s> ", s.sess.State())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(cmd) {
		case "":
		case "upload":
			s.upload(ctx, strings.Fields(arg))
		case "remove":
			s.remove(arg)
		case "files":
			s.files()
		case "ask":
			s.ask(ctx, arg)
		case "list":
			s.list()
		case "toggle":
			s.toggle(arg)
		case "export":
			s.export(ctx, arg)
		case "help":
			fmt.Fprintln(out, helpText)
		case "quit", "exit":
			return nil
		default:
			s.warn.Fprintf(out, "unknown command %q, type help\n", cmd)
		}
	}
}

func (s *Shell) upload(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		s.warn.Fprintln(s.out, "usage: upload <path>...")
		return
	}

	files := make([]session.UploadFile, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if err := s.validator.FileName(name); err != nil {
			s.report(err)
			return
		}
		rc, err := s.open(p)
		if err != nil {
			s.fail.Fprintf(s.out, "cannot open %s: %v\n", p, err)
			return
		}
		defer rc.Close()
		files = append(files, session.UploadFile{Name: name, Content: rc})
	}

	descs, err := s.sess.UploadFiles(ctx, files)
	for _, d := range descs {
		s.ok.Fprintf(s.out, "uploaded %s (%d chunks)\n", d.Name, d.Chunks)
	}
	if err != nil {
		s.report(err)
	}
}

func (s *Shell) remove(name string) {
	if name == "" {
		s.warn.Fprintln(s.out, "usage: remove <name>")
		return
	}
	s.sess.RemoveFile(name)
	s.files()
}

func (s *Shell) files() {
	files := s.sess.Files()
	if len(files) == 0 {
		fmt.Fprintln(s.out, "no documents")
		return
	}
	for _, f := range files {
		fmt.Fprintf(s.out, "  %s\n", f.Name)
	}
}

func (s *Shell) ask(ctx context.Context, question string) {
	if !s.sess.CanAsk() {
		s.warn.Fprintln(s.out, "upload a document first")
		return
	}
	index, pair, err := s.sess.SubmitQuestion(ctx, question)
	if err != nil {
		s.report(err)
		return
	}
	s.printPair(index, false, pair)
}

func (s *Shell) list() {
	view := s.sess.View()
	if len(view.Pairs) == 0 {
		fmt.Fprintln(s.out, "no questions yet")
		return
	}
	for _, p := range view.Pairs {
		s.printPair(p.Index, p.Selected, p.QAPair)
	}
}

func (s *Shell) printPair(index int, selected bool, pair model.QAPair) {
	mark := " "
	if selected {
		mark = "x"
	}
	fmt.Fprintf(s.out, "[%s] %d Q: %s\n", mark, index, pair.Question)
	fmt.Fprintf(s.out, "      A: %s\n", pair.Answer)
}

func (s *Shell) toggle(arg string) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		s.warn.Fprintln(s.out, "usage: toggle <index>")
		return
	}
	selected, err := s.sess.ToggleSelection(index)
	if err != nil {
		s.report(err)
		return
	}
	if selected {
		fmt.Fprintf(s.out, "selected %d\n", index)
	} else {
		fmt.Fprintf(s.out, "unselected %d\n", index)
	}
}

func (s *Shell) export(ctx context.Context, dir string) {
	if dir == "" {
		dir = s.exportDir
	}
	sink := storage.NewFileSink(dir)
	art, err := s.sess.ExportSelected(ctx, sink)
	if err != nil {
		s.report(err)
		return
	}
	s.ok.Fprintf(s.out, "wrote %s (%d pages)\n", sink.Path(art.Name), art.Pages)
}

func (s *Shell) report(err error) {
	switch {
	case errors.Is(err, model.ErrNetwork):
		s.fail.Fprintf(s.out, "backend unavailable: %v\n", err)
	case errors.Is(err, model.ErrNoDocuments):
		s.warn.Fprintln(s.out, "upload a document first")
	case errors.Is(err, model.ErrNothingSelected):
		s.warn.Fprintln(s.out, "nothing selected, use toggle <index>")
	case errors.Is(err, model.ErrIndexOutOfRange):
		s.warn.Fprintln(s.out, "no pair at that index")
	case errors.Is(err, model.ErrBlankQuestion):
		s.warn.Fprintln(s.out, "usage: ask <question>")
	case errors.Is(err, validation.ErrInvalid):
		s.warn.Fprintln(s.out, err)
	default:
		s.fail.Fprintf(s.out, "error: %v\n", err)
	}
}
