package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// terminal puts stdin in raw mode, so that key presses arrive one at a time
// without echo, and restores it on Close.
type terminal struct {
	fd       int
	oldState *term.State
	out      io.Writer
}

func openTerminal(in *os.File, out io.Writer) (*terminal, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("could not put the terminal in raw mode: %w", err)
	}
	return &terminal{fd: fd, oldState: oldState, out: out}, nil
}

// readKeys sends every byte read from r to keys, until r fails.
func readKeys(r io.Reader, keys chan<- byte) {
	defer close(keys)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			keys <- b
		}
		if err != nil {
			return
		}
	}
}

// width returns the number of columns, or 80 if unknown.
func (t *terminal) width() int {
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// drawStatus overwrites the current line with s, cut to the terminal width.
func (t *terminal) drawStatus(s string) {
	if w := t.width() - 1; len(s) > w {
		s = s[:w]
	}
	fmt.Fprintf(t.out, "\r\x1b[K%s", s)
}

func (t *terminal) Close() error {
	fmt.Fprint(t.out, "\r\x1b[K")
	return term.Restore(t.fd, t.oldState)
}

// crlfWriter starts every line written to w from the first column, which a
// terminal in raw mode does not do by itself. The status line is cleared
// first, so that log lines do not mix with it.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	q := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := c.w.Write(append([]byte("\r\x1b[K"), q...)); err != nil {
		return 0, err
	}
	return len(p), nil
}
