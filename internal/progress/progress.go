/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package progress renders transfer progress for the command line.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/gitrgoliveira/go-securesend/internal/core"
	"github.com/gitrgoliveira/go-securesend/internal/crypto"
)

const barWidth = 40

// Reporter draws a single-line progress bar on a terminal and one plain
// line per unit elsewhere. The final summary is always written.
type Reporter struct {
	w      io.Writer
	name   string
	isTerm bool

	ok  *color.Color
	bad *color.Color

	start      time.Time
	lastUpdate time.Time
	lastBytes  int64
	emaSpeed   float64 // bytes per second
	alpha      float64
	last       core.Progress
}

// NewReporter writes to w on behalf of the file called name.
func NewReporter(w io.Writer, name string, noColor bool) *Reporter {
	r := &Reporter{
		w:      w,
		name:   name,
		isTerm: isTerminal(w),
		ok:     color.New(color.FgGreen, color.Bold),
		bad:    color.New(color.FgRed, color.Bold),
		alpha:  0.1,
	}
	r.start = time.Now()
	r.lastUpdate = r.start
	if noColor || !r.isTerm {
		r.ok.DisableColor()
		r.bad.DisableColor()
	} else {
		r.ok.EnableColor()
		r.bad.EnableColor()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

// Update records p and redraws the bar. It is suitable as a core.WithProgress callback.
func (r *Reporter) Update(p core.Progress) {
	r.updateSpeed(p.Sent)
	r.last = p
	if !r.isTerm {
		fmt.Fprintf(r.w, "sent %s of %s (%d chunks)\n",
			humanize.Bytes(uint64(max(p.Sent, 0))),  // #nosec G115 -- clamped non-negative
			humanize.Bytes(uint64(max(p.Total, 0))), // #nosec G115 -- clamped non-negative
			p.Chunks)
		return
	}
	fmt.Fprint(r.w, "\r"+r.Line(p)+"\x1b[K")
}

func (r *Reporter) updateSpeed(current int64) {
	now := time.Now()
	elapsed := now.Sub(r.lastUpdate).Seconds()
	if elapsed > 0 {
		speed := float64(current-r.lastBytes) / elapsed
		if r.emaSpeed == 0 {
			r.emaSpeed = speed
		} else {
			r.emaSpeed = r.alpha*speed + (1-r.alpha)*r.emaSpeed
		}
	}
	r.lastUpdate = now
	r.lastBytes = current
}

// Line renders p without control characters.
func (r *Reporter) Line(p core.Progress) string {
	frac := min(max(p.Fraction(), 0), 1)
	done := int(frac * barWidth)

	var bar strings.Builder
	bar.WriteByte('[')
	for i := range barWidth {
		switch {
		case i < done:
			bar.WriteByte('=')
		case i == done:
			bar.WriteByte('>')
		default:
			bar.WriteByte(' ')
		}
	}
	bar.WriteByte(']')

	return fmt.Sprintf("%-20s %s %6.2f%% %10s/s  %s",
		truncate(r.name, 20),
		bar.String(),
		frac*100,
		humanize.Bytes(uint64(max(r.emaSpeed, 0))),
		humanize.Bytes(uint64(max(p.Total, 0))), // #nosec G115 -- clamped non-negative
	)
}

// Finish ends the bar and prints a one-line summary of the outcome. Failures
// show only their kind.
func (r *Reporter) Finish(err error) {
	if r.isTerm {
		fmt.Fprintln(r.w)
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	if err != nil {
		fmt.Fprintf(r.w, "%s %s after %s of %s (%s)\n",
			r.bad.Sprint("FAILED"), r.name,
			humanize.Bytes(uint64(max(r.last.Sent, 0))),  // #nosec G115 -- clamped non-negative
			humanize.Bytes(uint64(max(r.last.Total, 0))), // #nosec G115 -- clamped non-negative
			crypto.KindOf(err))
		return
	}
	fmt.Fprintf(r.w, "%s %s: %s in %d chunks (%s)\n",
		r.ok.Sprint("SENT"), r.name,
		humanize.Bytes(uint64(max(r.last.Sent, 0))), // #nosec G115 -- clamped non-negative
		r.last.Chunks, elapsed)
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}
