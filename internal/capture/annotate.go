// Package capture turns page screenshots into failure evidence: the image,
// optionally downscaled, under a banner naming the failed step.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// basicfont.Face7x13 metrics.
const (
	glyphWidth  = 7
	lineHeight  = 15
	bannerInset = 6
)

var (
	bannerColor  = color.RGBA{R: 176, G: 0, B: 32, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Scale resizes img by factor. Factors outside (0, 1) return img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor >= 1 {
		return img
	}
	b := img.Bounds()
	w := max(1, int(float64(b.Dx())*factor))
	h := max(1, int(float64(b.Dy())*factor))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// Annotate decodes a PNG screenshot, scales it and puts caption lines in a
// banner above it. Lines longer than the image is wide are wrapped.
func Annotate(data []byte, caption []string, factor float64) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	img := Banner(Scale(src, factor), caption)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Banner returns a copy of img with caption drawn in a strip above it.
func Banner(img image.Image, caption []string) *image.RGBA {
	b := img.Bounds()
	perLine := max(1, (b.Dx()-2*bannerInset)/glyphWidth)
	var lines []string
	for _, c := range caption {
		lines = append(lines, wrap(c, perLine)...)
	}
	bannerH := 0
	if len(lines) > 0 {
		bannerH = len(lines)*lineHeight + 2*bannerInset
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()+bannerH))
	draw.Draw(out, image.Rect(0, 0, b.Dx(), bannerH), image.NewUniform(bannerColor), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, bannerH, b.Dx(), bannerH+b.Dy()), img, b.Min, draw.Src)

	for i, line := range lines {
		// Dot is the baseline; basicfont ascends 11px.
		y := bannerInset + i*lineHeight + 11
		drawTextWithOutline(out, line, bannerInset, y)
	}
	return out
}

// wrap splits s into chunks of at most n runes.
func wrap(s string, n int) []string {
	r := []rune(s)
	if len(r) == 0 {
		return []string{""}
	}
	var out []string
	for len(r) > n {
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return append(out, string(r))
}

func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawText(img, text, x+dx, y+dy, outlineColor)
		}
	}
	drawText(img, text, x, y, textColor)
}

func drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// Encode writes img as png or jpg. quality applies to jpg only.
func Encode(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "", "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "jpg", "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q (use png or jpg)", format)
	}
	return buf.Bytes(), nil
}
