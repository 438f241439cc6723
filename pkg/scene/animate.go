package scene

import (
	"strconv"
	"strings"
)

// FrameFunc builds the scene for animation time t in [0, 1).
type FrameFunc func(t float64) *Node

// Frame is one guarded block of an animated render: the block is active
// while Start <= $t < End and shows the scene built for time T.
type Frame struct {
	Start float64
	End   float64
	T     float64
}

// Frames returns the time slices of an animation with the given number of
// steps. With backAndForth the step count is doubled and the second half
// replays the first in reverse, so the motion ends where it started.
func Frames(steps int, backAndForth bool) []Frame {
	if steps <= 0 {
		return nil
	}
	if backAndForth {
		steps *= 2
	}
	frames := make([]Frame, steps)
	for i := range frames {
		start := float64(i) / float64(steps)
		t := start
		if backAndForth {
			if start < 0.5 {
				t = 2 * start
			} else {
				t = 2 - 2*start
			}
		}
		frames[i] = Frame{
			Start: start,
			End:   float64(i+1) / float64(steps),
			T:     t,
		}
	}
	return frames
}

// RenderAnimated calls f once per frame and emits each scene inside an
// "if ($t >= start && $t < end)" guard. The include directives and variable
// declarations of every frame are hoisted above the first guard.
func RenderAnimated(f FrameFunc, steps int, backAndForth bool, header string) string {
	frames := Frames(steps, backAndForth)
	roots := make([]*Node, len(frames))
	for i, fr := range frames {
		roots[i] = f(fr.T)
	}

	var b strings.Builder
	b.WriteString(header)
	writePrelude(&b, roots)
	for i, fr := range frames {
		b.WriteString("\nif ($t >= " + formatTime(fr.Start) + " && $t < " + formatTime(fr.End) + ") {")
		if roots[i] != nil {
			b.WriteString(indent(renderBody(roots[i])))
		}
		b.WriteString("\n}\n")
	}
	return b.String()
}

// formatTime writes the shortest decimal that round-trips, always with a
// fractional part: 0 -> "0.0", 0.25 -> "0.25".
func formatTime(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
