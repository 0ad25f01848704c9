// Package render prints fix results in the terminal with the changed
// regions styled.
package render

import (
	"fmt"
	"strings"

	"codefix/internal/highlight"

	"github.com/charmbracelet/lipgloss"
)

// FixResult mirrors the data of a fix response.
type FixResult struct {
	FixedCode   string             `json:"fixedCode"`
	Explanation string             `json:"explanation"`
	Suggestions []string           `json:"suggestions"`
	Changes     []highlight.Change `json:"changes"`
}

// Renderer formats fix results. Without color, additions are wrapped as
// {+text+} and deletion markers as [-text-].
type Renderer struct {
	color    bool
	added    lipgloss.Style
	deleted  lipgloss.Style
	heading  lipgloss.Style
	noteMark lipgloss.Style
}

func New(color bool) *Renderer {
	return &Renderer{
		color:    color,
		added:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		deleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Underline(true),
		heading:  lipgloss.NewStyle().Bold(true),
		noteMark: lipgloss.NewStyle().Faint(true),
	}
}

// Fix renders the fixed code with highlights followed by the explanation,
// suggestions and one numbered note per highlighted change. Highlights are
// recomputed from the changes rather than taken from the response.
func (r *Renderer) Fix(result FixResult) string {
	sections := highlight.Map(result.FixedCode, result.Changes)
	spans := highlight.Render(result.FixedCode, sections)

	numbers := make(map[*highlight.Change]int, len(sections))
	var notes []*highlight.Change
	for i := range sections {
		change := sections[i].Change
		if _, seen := numbers[change]; seen || change == nil {
			continue
		}
		notes = append(notes, change)
		numbers[change] = len(notes)
	}

	var b strings.Builder
	b.WriteString(r.title("Fixed code"))
	for _, span := range spans {
		if !span.Highlighted {
			b.WriteString(span.Text)
			continue
		}
		b.WriteString(r.span(span))
		if n, ok := numbers[span.Change]; ok {
			b.WriteString(r.mark(fmt.Sprintf("[%d]", n)))
		}
	}
	if !strings.HasSuffix(result.FixedCode, "\n") {
		b.WriteString("\n")
	}

	if result.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(r.title("Explanation"))
		b.WriteString(result.Explanation)
		b.WriteString("\n")
	}
	if len(result.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(r.title("Suggestions"))
		for _, s := range result.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n")
		b.WriteString(r.title("Changes"))
		for i, change := range notes {
			b.WriteString(r.note(i+1, highlight.DetailFor(change)))
		}
	}
	return b.String()
}

func (r *Renderer) span(span highlight.Span) string {
	if !r.color {
		if span.IsDeletion {
			return "[-" + span.Text + "-]"
		}
		return "{+" + span.Text + "+}"
	}
	style := r.added
	text := span.Text
	if span.IsDeletion {
		style = r.deleted
		if text == "" {
			text = "⌫"
		}
	}
	// Render pads multi-line input into a block, so style line by line.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) note(n int, d highlight.Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", r.mark(fmt.Sprintf("[%d]", n)), d.Comment)
	if d.HasBefore {
		b.WriteString("    before: " + indent(d.Before) + "\n")
	}
	if d.HasAfter {
		after := indent(d.After)
		if r.color {
			if d.Deleted {
				after = r.deleted.Render(after)
			} else {
				after = r.added.Render(after)
			}
		}
		b.WriteString("    after:  " + after + "\n")
	}
	return b.String()
}

func (r *Renderer) title(text string) string {
	if r.color {
		return r.heading.Render(text) + "\n"
	}
	return "== " + text + " ==\n"
}

func (r *Renderer) mark(text string) string {
	if r.color {
		return r.noteMark.Render(text)
	}
	return text
}

func indent(text string) string {
	return strings.ReplaceAll(strings.TrimRight(text, "\n"), "\n", "\n            ")
}
