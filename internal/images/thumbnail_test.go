package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnailScalesDownLargeImage(t *testing.T) {
	src := encodePNG(t, 1200, 800)

	out, err := Thumbnail(bytes.NewReader(src))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, ThumbnailSize, img.Bounds().Dx())
	require.Equal(t, 182, img.Bounds().Dy()) // 800*274/1200

	// Portrait images constrain on height instead.
	out, err = Thumbnail(bytes.NewReader(encodePNG(t, 600, 900)))
	require.NoError(t, err)
	img, err = jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, ThumbnailSize, img.Bounds().Dy())
	require.Equal(t, 182, img.Bounds().Dx()) // 600*274/900
}

func TestThumbnailKeepsSmallImage(t *testing.T) {
	out, err := Thumbnail(bytes.NewReader(encodePNG(t, 100, 60)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 100, img.Bounds().Dx())
	require.Equal(t, 60, img.Bounds().Dy())
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	_, err := Thumbnail(bytes.NewReader([]byte("definitely not an image")))
	require.Error(t, err)
}
