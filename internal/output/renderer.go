// internal/output/renderer.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dorontal/scrapelog/internal/logline"
	"github.com/dorontal/scrapelog/internal/report"
)

// Renderer writes command results to an output stream.
type Renderer interface {
	Report(r report.Report) error
	Reports(rs []report.Report, counts map[string]int) error
	Lines(lines []logline.Line) error
	Raw(line string) error
	Query(path, query string, found bool) error
}

// New returns the renderer for format ("text" or "json").
func New(format string, w io.Writer) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextRenderer(w), nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want text or json)", format)
}

// ---------------------------------------------------------------------------
// Text Renderer
// ---------------------------------------------------------------------------

var (
	styleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleFailed   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleDebug    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	styleInfo     = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleCritical = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true)
	styleTime = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextRenderer prints human-readable, colourised output.
type TextRenderer struct {
	w   io.Writer
	now func() time.Time
}

// NewTextRenderer returns a Renderer that writes text to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w, now: time.Now}
}

func (r *TextRenderer) Report(rep report.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", statusTag(rep.Status), rep.Path)
	if !rep.OK() {
		fmt.Fprintf(&b, "  %s %s\n", styleLabel.Render("reason:"), rep.Reason)
		fmt.Fprintf(&b, "  %s %s\n", styleLabel.Render("error: "), rep.Error)
		_, err := io.WriteString(r.w, b.String())
		return err
	}

	fmt.Fprintf(&b, "  %s %s → %s (%s)\n", styleLabel.Render("session: "),
		rep.Start.Format(logline.TimestampLayout), rep.End.Format(logline.TimestampLayout), rep.Duration)
	fmt.Fprintf(&b, "  %s %s\n", styleLabel.Render("lines:   "), humanize.Comma(int64(rep.Lines)))
	fmt.Fprintf(&b, "  %s %s  %s  %s\n", styleLabel.Render("problems:"),
		count(styleWarning, rep.Warnings, "warning"),
		count(styleError, rep.Errors, "error"),
		count(styleCritical, rep.Criticals, "critical"))
	if rep.Query != "" {
		fmt.Fprintf(&b, "  %s %s\n", styleLabel.Render("query:   "), rep.Query)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TextRenderer) Reports(rs []report.Report, counts map[string]int) error {
	var b strings.Builder
	if len(rs) == 0 {
		b.WriteString("no checks recorded\n")
	}
	for _, rep := range rs {
		detail := rep.Reason
		if rep.OK() {
			detail = fmt.Sprintf("%s lines, %d warn, %d err, %d crit, %s",
				humanize.Comma(int64(rep.Lines)), rep.Warnings, rep.Errors, rep.Criticals, rep.Duration)
		}
		fmt.Fprintf(&b, "%s %-14s %s  %s\n",
			statusTag(rep.Status),
			humanize.RelTime(rep.CheckedAt, r.now(), "ago", "from now"),
			rep.Path, styleLabel.Render(detail))
	}
	if len(counts) > 0 {
		fmt.Fprintf(&b, "\n%s %d ok, %d failed\n", styleLabel.Render("totals:"),
			counts[report.StatusOK], counts[report.StatusFailed])
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TextRenderer) Lines(lines []logline.Line) error {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s %s\n",
			styleTime.Render(l.Time.Format(logline.TimestampLayout)),
			severityTag(l.Severity),
			l.Message)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *TextRenderer) Raw(line string) error {
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func (r *TextRenderer) Query(path, query string, found bool) error {
	if !found {
		_, err := fmt.Fprintf(r.w, "no query in last session of %s\n", path)
		return err
	}
	_, err := fmt.Fprintln(r.w, query)
	return err
}

func statusTag(status string) string {
	if status == report.StatusOK {
		return styleOK.Render("OK    ")
	}
	return styleFailed.Render("FAILED")
}

func severityTag(s logline.Severity) string {
	padded := fmt.Sprintf("%-8s", s.Label())
	switch s {
	case logline.Debug:
		return styleDebug.Render(padded)
	case logline.Warning:
		return styleWarning.Render(padded)
	case logline.Error:
		return styleError.Render(padded)
	case logline.Critical:
		return styleCritical.Render(padded)
	default:
		return styleInfo.Render(padded)
	}
}

func count(style lipgloss.Style, n int, noun string) string {
	text := humanize.Comma(int64(n)) + " " + noun
	if n != 1 {
		text += "s"
	}
	if n == 0 {
		return styleLabel.Render(text)
	}
	return style.Render(text)
}

// ---------------------------------------------------------------------------
// JSON Renderer
// ---------------------------------------------------------------------------

// JSONRenderer prints one JSON document per result.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSONRenderer returns a Renderer that writes JSON to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Report(rep report.Report) error {
	return r.enc.Encode(rep)
}

func (r *JSONRenderer) Reports(rs []report.Report, counts map[string]int) error {
	if rs == nil {
		rs = []report.Report{}
	}
	return r.enc.Encode(struct {
		Checks []report.Report `json:"checks"`
		Counts map[string]int  `json:"counts,omitempty"`
	}{rs, counts})
}

func (r *JSONRenderer) Lines(lines []logline.Line) error {
	for _, l := range lines {
		if err := r.enc.Encode(l); err != nil {
			return err
		}
	}
	return nil
}

func (r *JSONRenderer) Raw(line string) error {
	return r.enc.Encode(struct {
		Raw string `json:"raw"`
	}{line})
}

func (r *JSONRenderer) Query(path, query string, found bool) error {
	return r.enc.Encode(struct {
		Path  string `json:"path"`
		Query string `json:"query,omitempty"`
		Found bool   `json:"found"`
	}{path, query, found})
}
