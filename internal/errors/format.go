package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// Formatter renders AppErrors for a terminal.
type Formatter struct {
	// Color enables ANSI colors.
	Color bool
}

func (f Formatter) color(code, text string) string {
	if !f.Color {
		return text
	}
	return code + text + colorReset
}

// Format renders e with colors.
func (e *AppError) Format() string {
	return Formatter{Color: true}.Format(e)
}

// Format renders e as a multi-line message.
func (f Formatter) Format(e *AppError) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(f.color(colorRed+colorBold, "ERROR"))
	if e.Code != "" {
		b.WriteString(f.color(colorBold, " "+e.Code))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(f.color(colorGray, "Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(f.color(colorCyan, "Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatCompact returns a single-line form.
func (e *AppError) FormatCompact() string {
	return e.Error()
}

// MarshalJSON encodes the error for machine-readable CLI output.
func (e *AppError) MarshalJSON() ([]byte, error) {
	out := struct {
		Code       string   `json:"code,omitempty"`
		Category   Category `json:"category,omitempty"`
		Message    string   `json:"message"`
		Detail     string   `json:"detail,omitempty"`
		Suggestion string   `json:"suggestion,omitempty"`
		Cause      string   `json:"cause,omitempty"`
	}{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Print writes err to w, formatted when it is an AppError.
func Print(w io.Writer, err error, color bool) {
	var ae *AppError
	if stderrors.As(err, &ae) {
		fmt.Fprint(w, Formatter{Color: color}.Format(ae))
		return
	}
	f := Formatter{Color: color}
	fmt.Fprintf(w, "\n%s: %s\n\n", f.color(colorRed+colorBold, "ERROR"), err.Error())
}
