package ui

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/draw"
)

// RenderImage downscales an image and renders it with half-block characters,
// two pixel rows per terminal row: the upper pixel becomes the foreground of
// '▀', the lower one the background. maxW/maxH are in cells.
func RenderImage(img image.Image, maxW, maxH int) string {
	if img == nil || maxW < 1 || maxH < 1 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// A cell is about twice as tall as it is wide, and each cell carries two
	// pixel rows, so pixel space is maxW x 2*maxH.
	pw, ph := fit(b.Dx(), b.Dy(), maxW, 2*maxH)
	if ph%2 == 1 {
		ph++
	}
	scaled := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	var out strings.Builder
	for y := 0; y < ph; y += 2 {
		for x := 0; x < pw; x++ {
			tr, tg, tb, _ := scaled.At(x, y).RGBA()
			br, bg, bb, _ := scaled.At(x, y+1).RGBA()
			fmt.Fprintf(&out, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				tr>>8, tg>>8, tb>>8, br>>8, bg>>8, bb>>8)
		}
		out.WriteString("\x1b[0m")
		if y+2 < ph {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

// fit scales (w, h) down to fit inside (maxW, maxH) preserving aspect ratio.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	rw := float64(maxW) / float64(w)
	rh := float64(maxH) / float64(h)
	r := rw
	if rh < r {
		r = rh
	}
	ow := int(float64(w) * r)
	oh := int(float64(h) * r)
	if ow < 1 {
		ow = 1
	}
	if oh < 1 {
		oh = 1
	}
	return ow, oh
}
