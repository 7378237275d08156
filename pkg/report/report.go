// Package report shows the status of a run. It keeps a single current line,
// overwritten on every update, and echoes each update to a terminal.
package report

import (
	"fmt"
	"io"
	"sync"
)

type Color int

const (
	None Color = iota
	Green
	Red
)

func (c Color) ansi() string {
	switch c {
	case Green:
		return "\x1b[32m"
	case Red:
		return "\x1b[31m"
	default:
		return ""
	}
}

const ansiReset = "\x1b[0m"

type Reporter struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	text  string
	tint  Color
}

// New writes to w. Colors are emitted only when color is true.
func New(w io.Writer, color bool) *Reporter {
	return &Reporter{w: w, color: color}
}

// Status replaces the current text without changing its color.
func (r *Reporter) Status(text string) {
	r.write(text, None, false)
}

// Success replaces the current text and tints it green.
func (r *Reporter) Success(text string) {
	r.write(text, Green, true)
}

// Error replaces the current text and tints it red.
func (r *Reporter) Error(text string) {
	r.write(text, Red, true)
}

// Errorf formats and reports an error line.
func (r *Reporter) Errorf(format string, args ...any) {
	r.Error(fmt.Sprintf(format, args...))
}

// Last returns the current text and tint.
func (r *Reporter) Last() (string, Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text, r.tint
}

func (r *Reporter) write(text string, c Color, setTint bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.text = text
	if setTint {
		r.tint = c
	}
	if r.w == nil {
		return
	}
	if r.color && r.tint != None {
		fmt.Fprintln(r.w, r.tint.ansi()+text+ansiReset)
		return
	}
	fmt.Fprintln(r.w, text)
}
