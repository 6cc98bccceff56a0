package vm

import (
	"fmt"
	"io"
	"strings"
)

// TraceWriter writes indented diagnostic dumps of classes and trait tables.
type TraceWriter struct {
	w      io.Writer
	indent int
	tab    string
}

// NewTraceWriter creates a trace writer indenting with two spaces.
func NewTraceWriter(w io.Writer) *TraceWriter {
	return &TraceWriter{w: w, tab: "  "}
}

// WriteLn writes one line at the current indentation.
func (tw *TraceWriter) WriteLn(s string) {
	fmt.Fprintf(tw.w, "%s%s\n", strings.Repeat(tw.tab, tw.indent), s)
}

// Enter writes s and indents subsequent lines.
func (tw *TraceWriter) Enter(s string) {
	tw.WriteLn(s)
	tw.indent++
}

// Leave outdents and writes s.
func (tw *TraceWriter) Leave(s string) {
	tw.Outdent()
	tw.WriteLn(s)
}

// Outdent removes one level of indentation.
func (tw *TraceWriter) Outdent() {
	if tw.indent > 0 {
		tw.indent--
	}
}

// WriteArray writes one numbered line per element.
func (tw *TraceWriter) WriteArray(items []string) {
	for i, item := range items {
		tw.WriteLn(fmt.Sprintf("%d: %s", i, item))
	}
}
