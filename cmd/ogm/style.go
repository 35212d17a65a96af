package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorBlue  = lipgloss.Color("#1D9BF0")
	colorGreen = lipgloss.Color("#00BA7C")
	colorDim   = lipgloss.Color("#8899A6")
)

// styles renders CLI output. The zero value renders plain text.
type styles struct {
	enabled bool

	title    lipgloss.Style
	label    lipgloss.Style
	keyword  lipgloss.Style
	dim      lipgloss.Style
	relation lipgloss.Style
}

// stylesFor styles output written to w when it is a terminal.
func stylesFor(w io.Writer) styles {
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return styles{}
	}

	return styles{
		enabled:  true,
		title:    lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		label:    lipgloss.NewStyle().Bold(true),
		keyword:  lipgloss.NewStyle().Foreground(colorGreen),
		dim:      lipgloss.NewStyle().Foreground(colorDim),
		relation: lipgloss.NewStyle().Italic(true).Foreground(colorBlue),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}

	return style.Render(text)
}

func (s styles) Title(text string) string    { return s.render(s.title, text) }
func (s styles) Label(text string) string    { return s.render(s.label, text) }
func (s styles) Keyword(text string) string  { return s.render(s.keyword, text) }
func (s styles) Dim(text string) string      { return s.render(s.dim, text) }
func (s styles) Relation(text string) string { return s.render(s.relation, text) }
