// Package canvas provides drawing primitives for the design canvas.
package canvas

import (
	"image"
	"image/color"

	"pool-designer/pkg/colorutil"
	"pool-designer/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters and the
// symbols measurement labels use (feet/inch marks, decimal point).
var letterPatterns = map[rune][5]uint8{
	'A':  {0b010, 0b101, 0b111, 0b101, 0b101},
	'B':  {0b110, 0b101, 0b110, 0b101, 0b110},
	'C':  {0b011, 0b100, 0b100, 0b100, 0b011},
	'D':  {0b110, 0b101, 0b101, 0b101, 0b110},
	'E':  {0b111, 0b100, 0b110, 0b100, 0b111},
	'F':  {0b111, 0b100, 0b110, 0b100, 0b100},
	'G':  {0b011, 0b100, 0b101, 0b101, 0b011},
	'H':  {0b101, 0b101, 0b111, 0b101, 0b101},
	'I':  {0b111, 0b010, 0b010, 0b010, 0b111},
	'J':  {0b001, 0b001, 0b001, 0b101, 0b010},
	'K':  {0b101, 0b101, 0b110, 0b101, 0b101},
	'L':  {0b100, 0b100, 0b100, 0b100, 0b111},
	'M':  {0b101, 0b111, 0b101, 0b101, 0b101},
	'N':  {0b101, 0b111, 0b111, 0b101, 0b101},
	'O':  {0b010, 0b101, 0b101, 0b101, 0b010},
	'P':  {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q':  {0b010, 0b101, 0b101, 0b111, 0b011},
	'R':  {0b110, 0b101, 0b110, 0b101, 0b101},
	'S':  {0b011, 0b100, 0b010, 0b001, 0b110},
	'T':  {0b111, 0b010, 0b010, 0b010, 0b010},
	'U':  {0b101, 0b101, 0b101, 0b101, 0b111},
	'V':  {0b101, 0b101, 0b101, 0b101, 0b010},
	'W':  {0b101, 0b101, 0b101, 0b111, 0b101},
	'X':  {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y':  {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z':  {0b111, 0b001, 0b010, 0b100, 0b111},
	'+':  {0b000, 0b010, 0b111, 0b010, 0b000},
	'-':  {0b000, 0b000, 0b111, 0b000, 0b000},
	'\'': {0b010, 0b010, 0b000, 0b000, 0b000},
	'"':  {0b101, 0b101, 0b000, 0b000, 0b000},
	'.':  {0b000, 0b000, 0b000, 0b000, 0b010},
	' ':  {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// drawOverlay draws an overlay's primitives on the output image.
func (dc *DesignCanvas) drawOverlay(output *image.RGBA, overlay *Overlay) {
	col := overlay.Color

	for _, poly := range overlay.Polygons {
		dc.drawPolygon(output, poly, col)
	}
	for _, circle := range overlay.Circles {
		dc.drawCircle(output, circle, col)
	}
	for _, line := range overlay.Lines {
		thickness := line.Thickness
		if thickness <= 0 {
			thickness = 2
		}
		dc.drawLine(output,
			int(line.From.X*dc.zoom), int(line.From.Y*dc.zoom),
			int(line.To.X*dc.zoom), int(line.To.Y*dc.zoom),
			col, thickness)
	}
	for _, text := range overlay.Texts {
		dc.drawText(output, text, col)
	}
}

// drawPolygon draws a filled or outlined polygon on the output image.
func (dc *DesignCanvas) drawPolygon(output *image.RGBA, poly OverlayPolygon, col color.RGBA) {
	if len(poly.Points) < 3 {
		return
	}

	bounds := output.Bounds()

	scaled := make([]geometry.Point2D, len(poly.Points))
	minY, maxY := poly.Points[0].Y*dc.zoom, poly.Points[0].Y*dc.zoom
	for i, p := range poly.Points {
		scaled[i] = geometry.Point2D{X: p.X * dc.zoom, Y: p.Y * dc.zoom}
		if scaled[i].Y < minY {
			minY = scaled[i].Y
		}
		if scaled[i].Y > maxY {
			maxY = scaled[i].Y
		}
	}

	if poly.Filled {
		// scanline fill
		for y := int(minY); y <= int(maxY); y++ {
			if y < bounds.Min.Y || y >= bounds.Max.Y {
				continue
			}

			var xInts []float64
			n := len(scaled)
			for i := 0; i < n; i++ {
				p1 := scaled[i]
				p2 := scaled[(i+1)%n]
				if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
					(p2.Y <= float64(y) && p1.Y > float64(y)) {
					t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
					xInts = append(xInts, p1.X+t*(p2.X-p1.X))
				}
			}

			for i := 0; i < len(xInts)-1; i++ {
				for j := i + 1; j < len(xInts); j++ {
					if xInts[j] < xInts[i] {
						xInts[i], xInts[j] = xInts[j], xInts[i]
					}
				}
			}

			for i := 0; i+1 < len(xInts); i += 2 {
				for x := int(xInts[i]); x <= int(xInts[i+1]); x++ {
					if x >= bounds.Min.X && x < bounds.Max.X {
						existing := output.RGBAAt(x, y)
						output.Set(x, y, colorutil.Blend(existing, col, 0.35))
					}
				}
			}
		}
	}

	n := len(scaled)
	for i := 0; i < n; i++ {
		p1 := scaled[i]
		p2 := scaled[(i+1)%n]
		dc.drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, 2)
	}
}

// drawCircle draws a filled or outlined circle on the output image.
func (dc *DesignCanvas) drawCircle(output *image.RGBA, circle OverlayCircle, col color.RGBA) {
	bounds := output.Bounds()

	cx := circle.Center.X * dc.zoom
	cy := circle.Center.Y * dc.zoom
	r := circle.Radius
	if r < 2 {
		r = 2
	}

	minX, maxX := int(cx-r-1), int(cx+r+1)
	minY, maxY := int(cy-r-1), int(cy+r+1)
	r2 := r * r
	innerR2 := (r - 2) * (r - 2)

	for y := minY; y <= maxY; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := minX; x <= maxX; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			dist2 := dx*dx + dy*dy

			if circle.Filled {
				if dist2 <= r2 {
					output.Set(x, y, col)
				}
			} else if dist2 <= r2 && dist2 >= innerR2 {
				output.Set(x, y, col)
			}
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm.
func (dc *DesignCanvas) drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawText draws a centered text label using the 3x5 bitmap font.
func (dc *DesignCanvas) drawText(output *image.RGBA, text OverlayText, col color.RGBA) {
	scale := text.Scale
	if scale <= 0 {
		scale = int(dc.zoom * 2)
	}
	if scale < 1 {
		scale = 1
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale

	runes := []rune(text.Text)
	labelWidth := len(runes)*charWidth + (len(runes)-1)*spacing

	startX := int(text.Center.X*dc.zoom) - labelWidth/2
	startY := int(text.Center.Y*dc.zoom) - charHeight/2

	bounds := output.Bounds()

	for i, ch := range runes {
		pattern := getCharPattern(ch)
		charX := startX + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) != 0 {
					for dy := 0; dy < scale; dy++ {
						for dx := 0; dx < scale; dx++ {
							px := charX + c*scale + dx
							py := startY + row*scale + dy
							if px >= bounds.Min.X && px < bounds.Max.X &&
								py >= bounds.Min.Y && py < bounds.Max.Y {
								output.Set(px, py, col)
							}
						}
					}
				}
			}
		}
	}
}

// drawGrid draws the snapping grid across the visible area.
func (dc *DesignCanvas) drawGrid(output *image.RGBA, spacing float64, col color.RGBA) {
	if spacing <= 0 {
		return
	}
	bounds := output.Bounds()
	step := spacing * dc.zoom
	if step < 4 {
		// too dense to be useful at this zoom
		return
	}

	for x := 0.0; x < float64(bounds.Max.X); x += step {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			output.Set(int(x), y, col)
		}
	}
	for y := 0.0; y < float64(bounds.Max.Y); y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			output.Set(x, int(y), col)
		}
	}
}
