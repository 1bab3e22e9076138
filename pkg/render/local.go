package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"

	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/source"
)

const (
	cardWidth  = 360
	thumbH     = cardWidth * 9 / 16
	cardTextH  = 86
	cardH      = thumbH + cardTextH
	cardGap    = 16
	pageMargin = 24
	headerH    = 64
)

var (
	pageBG    = color.RGBA{0x14, 0x14, 0x1e, 0xff}
	cardBG    = color.RGBA{0x1e, 0x1e, 0x2a, 0xff}
	thumbBG   = color.RGBA{0x2a, 0x2a, 0x38, 0xff}
	titleFG   = image.NewUniform(color.RGBA{0xee, 0xee, 0xee, 0xff})
	sectionFG = image.NewUniform(color.RGBA{0x7d, 0xa7, 0xff, 0xff})
	statsFG   = image.NewUniform(color.RGBA{0x99, 0x99, 0x99, 0xff})
	mutedFG   = image.NewUniform(color.RGBA{0x66, 0x66, 0x66, 0xff})
)

// renderLocal draws the report as a card grid and returns PNG bytes.
func (r *Renderer) renderLocal(title string, picks []rank.Pick, covers map[string]string) ([]byte, error) {
	cols := gridColumns(len(picks))
	rows := (len(picks) + cols - 1) / cols

	width := pageMargin*2 + cols*cardWidth + (cols-1)*cardGap
	height := pageMargin + headerH + rows*cardH + (rows-1)*cardGap + pageMargin

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(pageBG), image.Point{}, draw.Src)

	f := loadFaces()
	drawText(canvas, f.title, titleFG, pageMargin, pageMargin+24, title)
	drawText(canvas, f.small, statsFG, pageMargin, pageMargin+46, time.Now().Format("2006-01-02"))

	for i, p := range picks {
		x := pageMargin + (i%cols)*(cardWidth+cardGap)
		y := pageMargin + headerH + (i/cols)*(cardH+cardGap)
		r.drawCard(canvas, f, x, y, p, covers[p.Item.CoverURL])
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// gridColumns picks the layout by item count: a single column reads best for
// one or two picks, three columns only once the grid fills out.
func gridColumns(n int) int {
	switch {
	case n <= 2:
		return 1
	case n <= 6:
		return 2
	default:
		return 3
	}
}

func (r *Renderer) drawCard(canvas *image.RGBA, f faceSet, x, y int, p rank.Pick, coverPath string) {
	cardRect := image.Rect(x, y, x+cardWidth, y+cardH)
	draw.Draw(canvas, cardRect, image.NewUniform(cardBG), image.Point{}, draw.Src)

	thumbRect := image.Rect(x, y, x+cardWidth, y+thumbH)
	if img := loadCover(coverPath); img != nil {
		drawCoverFit(canvas, thumbRect, img)
	} else {
		draw.Draw(canvas, thumbRect, image.NewUniform(thumbBG), image.Point{}, draw.Src)
		label := p.Item.Source
		w := measure(f.body, label)
		drawText(canvas, f.body, mutedFG, x+(cardWidth-w)/2, y+thumbH/2+5, label)
	}

	tx := x + 14
	ty := y + thumbH + 20
	header := source.SectionDisplay(p.Section) + " · " + p.Item.Source
	drawText(canvas, f.small, sectionFG, tx, ty, header)

	lines := wrapText(f.body, p.Item.Title, cardWidth-28, 2)
	for _, line := range lines {
		ty += 22
		drawText(canvas, f.body, titleFG, tx, ty, line)
	}
	drawText(canvas, f.small, statsFG, tx, y+cardH-12, StatsLine(p.Item))
}

// drawCoverFit scales the cover to fill dst and center-crops the overflow.
func drawCoverFit(canvas *image.RGBA, dst image.Rectangle, img image.Image) {
	sb := img.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	dw, dh := dst.Dx(), dst.Dy()
	if sw == 0 || sh == 0 {
		return
	}

	src := sb
	if sw*dh > dw*sh {
		// source wider than slot, crop left/right
		cropW := sh * dw / dh
		off := (sw - cropW) / 2
		src = image.Rect(sb.Min.X+off, sb.Min.Y, sb.Min.X+off+cropW, sb.Max.Y)
	} else {
		cropH := sw * dh / dw
		off := (sh - cropH) / 2
		src = image.Rect(sb.Min.X, sb.Min.Y+off, sb.Max.X, sb.Min.Y+off+cropH)
	}
	xdraw.BiLinear.Scale(canvas, dst, img, src, xdraw.Src, nil)
}

// loadCover reads a cached cover from a file path or a data URI.
func loadCover(path string) image.Image {
	if path == "" {
		return nil
	}
	var raw []byte
	if strings.HasPrefix(path, "data:") {
		i := strings.Index(path, ",")
		if i < 0 {
			return nil
		}
		decoded, err := base64.StdEncoding.DecodeString(path[i+1:])
		if err != nil {
			return nil
		}
		raw = decoded
	} else {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		raw = b
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil
	}
	return img
}

func drawText(canvas *image.RGBA, face font.Face, src *image.Uniform, x, y int, text string) {
	d := font.Drawer{
		Dst:  canvas,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func measure(face font.Face, text string) int {
	return font.MeasureString(face, text).Ceil()
}

// wrapText breaks text into at most maxLines lines fitting width, measured
// glyph by glyph so CJK titles without spaces wrap too. The last line gets an
// ellipsis when text overflows.
func wrapText(face font.Face, text string, width, maxLines int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var lines []string
	var line []rune
	for i := 0; i < len(runes); i++ {
		line = append(line, runes[i])
		if measure(face, string(line)) <= width {
			continue
		}
		if len(line) > 1 {
			line = line[:len(line)-1]
			i--
		}
		lines = append(lines, string(line))
		line = nil
		if len(lines) == maxLines {
			break
		}
	}
	if len(lines) < maxLines && len(line) > 0 {
		lines = append(lines, string(line))
		line = nil
	}

	if len(line) > 0 || countRunes(lines) < len(runes) {
		last := []rune(lines[len(lines)-1])
		for len(last) > 0 && measure(face, string(last)+"…") > width {
			last = last[:len(last)-1]
		}
		lines[len(lines)-1] = string(last) + "…"
	}
	return lines
}

func countRunes(lines []string) int {
	n := 0
	for _, l := range lines {
		n += len([]rune(l))
	}
	return n
}
