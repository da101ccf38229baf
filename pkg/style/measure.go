package style

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Typography. A terminal cell is about 0.55em wide in the sans-serif faces
// the renderers use, which is close enough to size boxes without a font
// rasterizer.
const (
	FontSize      = 14.0
	FontSizeFixed = 16.0
	CharWidth     = 0.55
	LineHeight    = 1.25
	TextMaxWidth  = 160.0
	Padding       = 20.0
	MinWidth      = 60.0
	MinHeight     = 40.0
)

// TextWidth returns the rendered width of s in pixels at the given font size.
func TextWidth(s string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(s)) * fontSize * CharWidth
}

// Measure wraps label at [TextMaxWidth] and returns the box that fits it
// with [Padding] on every side.
func Measure(label string, fontSize float64) (w, h float64, lines []string) {
	maxCells := cellsFor(TextMaxWidth, fontSize)
	lines = wrap(label, maxCells)

	widest := 0.0
	for _, l := range lines {
		widest = math.Max(widest, TextWidth(l, fontSize))
	}
	w = math.Max(MinWidth, math.Ceil(widest+2*Padding))
	h = math.Max(MinHeight, math.Ceil(float64(len(lines))*fontSize*LineHeight+2*Padding))
	return w, h, lines
}

func cellsFor(width, fontSize float64) int {
	return max(1, int(width/(fontSize*CharWidth)))
}

// fitLine truncates label to one line of the given pixel width.
func fitLine(label string, width, fontSize float64) string {
	cells := cellsFor(width, fontSize)
	if runewidth.StringWidth(label) <= cells {
		return label
	}
	return runewidth.Truncate(label, cells, "…")
}

// wrap breaks s into lines of at most maxCells terminal cells, preferring
// word boundaries and splitting words that are longer than a line.
func wrap(s string, maxCells int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		if curW > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
	}

	for _, word := range words {
		ww := runewidth.StringWidth(word)
		for ww > maxCells {
			flush()
			head := runewidth.Truncate(word, maxCells, "")
			if head == "" {
				// a single rune wider than the line
				r := []rune(word)
				head = string(r[0])
			}
			lines = append(lines, head)
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		if ww == 0 {
			continue
		}
		if curW > 0 && curW+1+ww > maxCells {
			flush()
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		cur.WriteString(word)
		curW += ww
	}
	flush()
	return lines
}
