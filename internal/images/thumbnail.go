// Package images derives thumbnails from uploaded activity photos.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

const (
	// ThumbnailSize is the bounding box a thumbnail must fit, in pixels.
	ThumbnailSize = 274
	// jpegQuality for encoded thumbnails.
	jpegQuality = 85
)

// Thumbnail decodes a JPEG or PNG photo and returns a JPEG thumbnail that
// fits within ThumbnailSize x ThumbnailSize, preserving aspect ratio. Images
// already inside the bounding box are re-encoded without scaling.
func Thumbnail(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("decode image: empty bounds")
	}

	tw, th := fit(w, h, ThumbnailSize)
	out := src
	if tw != w || th != h {
		dst := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// fit returns the largest dimensions within max x max keeping w:h ratio,
// never upscaling.
func fit(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, maxInt(1, h*max/w)
	}
	return maxInt(1, w*max/h), max
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
