// Package output renders command results in text, markdown or JSON.
// Commands never print directly; they go through a Renderer so output
// stays consistent and scriptable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Mode selects the output rendering.
type Mode string

const (
	// ModeAuto picks styled text on a terminal and markdown when piped.
	ModeAuto Mode = "auto"
	// ModeText renders plain styled text.
	ModeText Mode = "text"
	// ModeMarkdown renders markdown.
	ModeMarkdown Mode = "markdown"
	// ModeJSON renders a single JSON document.
	ModeJSON Mode = "json"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeText, ModeMarkdown, ModeJSON:
		return true
	}
	return false
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles Styles
	isTTY  bool
}

// NewRenderer creates a renderer over the given writers. An empty mode
// defaults to auto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: defaultStyles(),
		isTTY:  isTerminal(out),
	}
}

// EffectiveMode resolves ModeAuto against the output destination.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Writer returns the underlying output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the underlying error writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Styles returns the style set.
func (r *Renderer) Styles() Styles {
	return r.styles
}

// Println writes a line to the output writer.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output writer.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header. Level 1 is a title, level 2 a
// subsection.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		return
	}
	if level <= 1 {
		r.Println(r.styles.Header.Render(text))
	} else {
		r.Println(r.styles.Bold.Render(text))
	}
	r.Println()
}

// StatusLine writes one aligned name/status line with an optional
// detail tail. The status string picks the style: completed and
// success render green, failed and error red, cancelled yellow,
// anything else muted.
func (r *Renderer) StatusLine(name, status, detail string) {
	styled := r.statusText(status)
	if detail != "" {
		r.Printf("%s  %s  %s\n", styled, name, r.styles.Muted.Render(detail))
		return
	}
	r.Printf("%s  %s\n", styled, name)
}

func (r *Renderer) statusText(status string) string {
	padded := fmt.Sprintf("%-9s", status)
	switch strings.ToLower(status) {
	case "success", "completed", "ok":
		return r.styles.StatusSuccess.Render(padded)
	case "failed", "error":
		return r.styles.StatusFailed.Render(padded)
	case "cancelled", "warning":
		return r.styles.Warning.Render(padded)
	default:
		return r.styles.Muted.Render(padded)
	}
}

// Success writes a check-marked confirmation line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render("✓ " + msg))
}

// Warning writes a warning line.
func (r *Renderer) Warning(msg string) {
	r.Println(r.styles.Warning.Render("! " + msg))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// ID renders an identifier fragment for inline use.
func (r *Renderer) ID(id string) string {
	return r.styles.ID.Render(id)
}

// JSON writes v as an indented JSON document.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
