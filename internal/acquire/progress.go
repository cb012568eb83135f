// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"fmt"
	"io"
)

// progressWriter reports download progress to w as bytes pass through it.
// With a known total it prints whole-percent steps; otherwise it prints
// every megabyte.
type progressWriter struct {
	w       io.Writer
	label   string
	total   int64
	written int64
	last    int64
}

func newProgressWriter(w io.Writer, label string, total int64) *progressWriter {
	return &progressWriter{w: w, label: label, total: total, last: -1}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := len(b)
	p.written += int64(n)

	var step int64
	if p.total > 0 {
		step = p.written * 100 / p.total
	} else {
		step = p.written >> 20
	}
	if step != p.last {
		p.last = step
		p.print()
	}
	return n, nil
}

func (p *progressWriter) print() {
	if p.total > 0 {
		fmt.Fprintf(p.w, "\r  %s: %3d%% (%s / %s)", p.label, p.last, humanBytes(p.written), humanBytes(p.total))
		return
	}
	fmt.Fprintf(p.w, "\r  %s: %s", p.label, humanBytes(p.written))
}

// done terminates the progress line.
func (p *progressWriter) done() {
	if p.last >= 0 {
		fmt.Fprintln(p.w)
	}
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}
