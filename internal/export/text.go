package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dusk-indust/excerpt/internal/selector"
)

// Theme holds the terminal styles used for diagnostics.
type Theme struct {
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Path     lipgloss.Style
	Selector lipgloss.Style
}

// NewTheme returns the default diagnostic styles.
func NewTheme() Theme {
	return Theme{
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Path:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Faint(true),
		Selector: lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	}
}

// FormatError renders a selection failure as
//
//	excerpt error in <file>:
//	  <message>
//	  selector: <selector>
//
// The selector line is present only when the error names one.
func (t Theme) FormatError(file string, err error) string {
	if file == "" {
		file = "<stdin>"
	}
	var b strings.Builder
	b.WriteString(t.Error.Render("excerpt error in"))
	b.WriteString(" ")
	b.WriteString(t.Path.Render(file))
	b.WriteString(t.Error.Render(":"))
	b.WriteString("\n  ")
	b.WriteString(err.Error())

	var se *selector.Error
	if errors.As(err, &se) && se.Selector != "" {
		b.WriteString("\n  selector: ")
		b.WriteString(t.Selector.Render(se.Selector))
	}
	return b.String()
}

// FormatError renders err with the default theme.
func FormatError(file string, err error) string {
	return NewTheme().FormatError(file, err)
}

// RenderMarkdown renders Markdown for the terminal, wrapped at width
// columns. A width of zero means 80.
func RenderMarkdown(text string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// FencedCode wraps selected source in a Markdown code fence tagged with the
// file type, so Python and data files render highlighted.
func FencedCode(text string, ft selector.FileType) string {
	lang := string(ft)
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + text + "\n" + fence
}
