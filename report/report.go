// Package report renders violations for people and for tools.
package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/frroossst/readonlylint/enforce"
)

// Format is an output format.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrFormat is returned for unknown formats.
var ErrFormat = errors.New("unknown report format")

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON, YAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// LineSource returns line n (1-based) of file, or "" when unavailable.
type LineSource func(file string, n int) string

// FromDisk reads source lines from the file system.
func FromDisk(file string, n int) string {
	f, err := os.Open(file)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if line == n {
			return scanner.Text()
		}
	}
	return ""
}

// IsTerminal reports whether w is a terminal that accepts colour.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type styles struct {
	err, location, gutter, note, help lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain}
	}
	return styles{
		err:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		location: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		gutter:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		note:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// Printer writes violations to w.
type Printer struct {
	w      io.Writer
	format Format
	source LineSource
	styles styles
}

// Option configures a Printer.
type Option func(*Printer)

// WithColor forces colour on or off. By default it is on for terminals.
func WithColor(on bool) Option {
	return func(p *Printer) { p.styles = newStyles(on) }
}

// WithSource sets where source lines are read from.
func WithSource(src LineSource) Option {
	return func(p *Printer) { p.source = src }
}

// New returns a printer.
func New(w io.Writer, format Format, opts ...Option) *Printer {
	p := &Printer{w: w, format: format, source: FromDisk, styles: newStyles(IsTerminal(w))}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Print writes every violation, followed by a summary for text output.
func (p *Printer) Print(vs []enforce.Violation) error {
	switch p.format {
	case JSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(documentOf(vs))
	case YAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(documentOf(vs)); err != nil {
			return err
		}
		return enc.Close()
	case Text, "":
		for _, v := range vs {
			if _, err := io.WriteString(p.w, p.Format(v)); err != nil {
				return err
			}
		}
		if len(vs) > 0 {
			_, err := fmt.Fprintf(p.w, "\n%s\n", p.styles.err.Render(summary(len(vs))))
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrFormat, p.format)
}

func summary(n int) string {
	if n == 1 {
		return "1 violation found"
	}
	return fmt.Sprintf("%d violations found", n)
}

// Format renders one violation in the rustc style.
func (p *Printer) Format(v enforce.Violation) string {
	return formatText(v, p.source(v.Anchor.File, v.Anchor.Line), p.styles)
}

// Message renders v without colour, reading its source line with src.
// Hosts that print through their own channel use this.
func Message(v enforce.Violation, src LineSource) string {
	line := ""
	if src != nil {
		line = src(v.Anchor.File, v.Anchor.Line)
	}
	return formatText(v, line, newStyles(false))
}

func formatText(v enforce.Violation, sourceLine string, st styles) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(st.err.Render(fmt.Sprintf("error[%s]", v.Kind)))
	sb.WriteString(": " + v.Message() + "\n")
	sb.WriteString(st.location.Render(fmt.Sprintf("  --> %s:%d:%d", filepath.Base(v.Anchor.File), v.Anchor.Line, v.Anchor.Column)))
	sb.WriteString("\n")

	if sourceLine != "" {
		sb.WriteString(st.gutter.Render("   |") + "\n")
		sb.WriteString(st.gutter.Render(fmt.Sprintf("%4d |", v.Anchor.Line)) + " " + sourceLine + "\n")
		sb.WriteString(st.gutter.Render("   |") + "\n")
	}

	if v.Name != "" {
		sb.WriteString(st.note.Render(fmt.Sprintf("   = note: '%s' is %s, required %s", v.Name, v.Actual, v.Required)) + "\n")
	}
	if v.Fix != nil {
		sb.WriteString(st.help.Render(fmt.Sprintf("   = help: %s (fixable)", v.Fix.Label)) + "\n")
	}
	for _, s := range v.Suggestions {
		sb.WriteString(st.help.Render("   = help: suggestion: "+s.Label) + "\n")
	}
	return sb.String()
}

type document struct {
	Count      int         `json:"count" yaml:"count"`
	Violations []violation `json:"violations" yaml:"violations"`
}

type violation struct {
	enforce.Violation `yaml:",inline"`
	Message           string `json:"message" yaml:"message"`
}

func documentOf(vs []enforce.Violation) document {
	doc := document{Count: len(vs), Violations: make([]violation, 0, len(vs))}
	for _, v := range vs {
		doc.Violations = append(doc.Violations, violation{Violation: v, Message: v.Message()})
	}
	return doc
}
