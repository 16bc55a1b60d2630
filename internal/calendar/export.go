package calendar

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"

	"github.com/cwarden/wkcal/internal/week"
)

// Formats accepted by Export.
var Formats = []string{"json", "yaml", "toml", "markdown", "text"}

type exportDoc struct {
	Scope       string      `json:"scope" yaml:"scope" toml:"scope"`
	Mode        string      `json:"mode" yaml:"mode" toml:"mode"`
	StartOfWeek string      `json:"startOfWeek" yaml:"startOfWeek" toml:"startOfWeek"`
	Days        []exportDay `json:"days" yaml:"days" toml:"days"`
}

type exportDay struct {
	Key   string       `json:"key" yaml:"key" toml:"key"`
	Label string       `json:"label" yaml:"label" toml:"label"`
	Date  string       `json:"date,omitempty" yaml:"date,omitempty" toml:"date,omitempty"`
	Today bool         `json:"today,omitempty" yaml:"today,omitempty" toml:"today,omitempty"`
	Tasks []exportTask `json:"tasks" yaml:"tasks" toml:"tasks"`
}

type exportTask struct {
	ID        string `json:"id" yaml:"id" toml:"id"`
	Text      string `json:"text" yaml:"text" toml:"text"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

func newExportDoc(m *RenderModel) exportDoc {
	doc := exportDoc{
		Scope:       m.Scope,
		Mode:        m.Mode.String(),
		StartOfWeek: string(m.StartOfWeek),
		Days:        make([]exportDay, 0, len(m.Days)),
	}
	for _, d := range m.Days {
		day := exportDay{
			Key:   d.Key,
			Label: d.Label,
			Today: d.Today,
			Tasks: make([]exportTask, 0, len(d.Tasks)),
		}
		if !d.Date.IsZero() {
			day.Date = d.Date.Format(week.DateLayout)
		}
		for _, t := range d.Tasks {
			day.Tasks = append(day.Tasks, exportTask{ID: t.ID, Text: t.Text, Completed: t.Completed})
		}
		doc.Days = append(doc.Days, day)
	}
	return doc
}

// Export writes m to w in the named format.
func Export(w io.Writer, m *RenderModel, format string) error {
	switch strings.ToLower(format) {
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newExportDoc(m))
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newExportDoc(m)); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(newExportDoc(m))
	case "markdown", "md":
		return WriteMarkdown(w, m)
	case "text", "txt":
		return WriteText(w, m, 60)
	}
	return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// WriteMarkdown writes the week as a one-row markdown table, suitable for
// pasting into a note.
func WriteMarkdown(w io.Writer, m *RenderModel) error {
	var b strings.Builder

	b.WriteString("|")
	for _, d := range m.Days {
		b.WriteString(" " + heading(d) + " |")
	}
	b.WriteString("\n|")
	for range m.Days {
		b.WriteString(" --- |")
	}
	b.WriteString("\n|")
	for _, d := range m.Days {
		items := make([]string, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			items = append(items, box+" "+escapeCell(t.Text))
		}
		b.WriteString(" " + strings.Join(items, "<br>") + " |")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes one block per day with task text wrapped to width.
func WriteText(w io.Writer, m *RenderModel, width int) error {
	var b strings.Builder
	for i, d := range m.Days {
		if i > 0 {
			b.WriteString("\n")
		}
		title := heading(d)
		if d.Today {
			title += " *"
		}
		b.WriteString(title + "\n")
		if len(d.Tasks) == 0 {
			b.WriteString("  -\n")
			continue
		}
		for _, t := range d.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			wrapped := wordwrap.String(t.Text, max(width-6, 10))
			lines := strings.Split(wrapped, "\n")
			b.WriteString("  " + box + " " + lines[0] + "\n")
			for _, line := range lines[1:] {
				b.WriteString("      " + line + "\n")
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func heading(d Day) string {
	if d.DateLabel != "" {
		return d.Label + " " + d.DateLabel
	}
	return d.Label
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
