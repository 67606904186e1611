package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/hexgait/internal/dynamo"
	"github.com/san-kum/hexgait/internal/gait"
)

type Point struct {
	X, Y float64
}

// TraceSVG draws points as a single polyline scaled to fit the canvas.
func TraceSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	writeHeader(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

const (
	labelWidth = 48
	stanceFill = "#00ff88"
	swingFill  = "#222233"
)

// GaitDiagramSVG draws the classic gait diagram: one row per leg, filled
// where the logged angle command is in the stance sector of p.
func GaitDiagramSVG(times []float64, angles [dynamo.NumLegs][]float64, p gait.Params, width, rowHeight int) string {
	if len(times) < 2 {
		return ""
	}
	t0, t1 := times[0], times[len(times)-1]
	span := t1 - t0
	if span <= 0 {
		span = 1
	}
	plotWidth := float64(width - labelWidth)
	xOf := func(t float64) float64 {
		return labelWidth + (t-t0)/span*plotWidth
	}

	height := dynamo.NumLegs * rowHeight
	var sb strings.Builder
	writeHeader(&sb, width, height)

	for leg := 0; leg < dynamo.NumLegs; leg++ {
		y := leg * rowHeight
		sb.WriteString(fmt.Sprintf(`<text x="4" y="%d" fill="#888899" font-family="monospace" font-size="%d">leg %d</text>
`, y+rowHeight*2/3, rowHeight/2, leg))
		sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%.1f" height="%d" fill="%s"/>
`, labelWidth, y+1, plotWidth, rowHeight-2, swingFill))

		series := angles[leg]
		start := -1
		flush := func(end int) {
			x0, x1 := xOf(times[start]), xOf(times[end])
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%d" width="%.1f" height="%d" fill="%s"/>
`, x0, y+1, x1-x0, rowHeight-2, stanceFill))
		}
		for i := range times {
			slow := i < len(series) && p.IsSlow(series[i])
			switch {
			case slow && start < 0:
				start = i
			case !slow && start >= 0:
				flush(i)
				start = -1
			}
		}
		if start >= 0 {
			flush(len(times) - 1)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}
