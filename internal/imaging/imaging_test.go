package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func jpegOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255})))
	return buf.Bytes()
}

func decoded(t *testing.T, p *Photo) image.Rectangle {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return img.Bounds()
}

func TestPrepareJPEG(t *testing.T) {
	p, err := Prepare(bytes.NewReader(jpegOf(t, 100, 80)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.MIME)
	assert.Equal(t, 100, p.Width)
	assert.Equal(t, 80, p.Height)
	assert.NotEmpty(t, p.Data)
}

func TestPrepareConvertsPNG(t *testing.T) {
	p, err := Prepare(bytes.NewReader(pngOf(t, 60, 60)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.MIME)
	assert.Equal(t, image.Rect(0, 0, 60, 60), decoded(t, p))
}

func TestPrepareDownscalesKeepingAspect(t *testing.T) {
	p, err := Prepare(bytes.NewReader(jpegOf(t, 2048, 1024)))
	require.NoError(t, err)

	b := decoded(t, p)
	assert.Equal(t, MaxDimension, b.Dx())
	assert.Equal(t, MaxDimension/2, b.Dy())
}

func TestPrepareTallImage(t *testing.T) {
	p, err := Prepare(bytes.NewReader(pngOf(t, 300, 1500)))
	require.NoError(t, err)
	assert.Equal(t, MaxDimension, p.Height)
	assert.Equal(t, 300*MaxDimension/1500, p.Width)
}

func TestPrepareSmallImageNotUpscaled(t *testing.T) {
	p, err := Prepare(bytes.NewReader(jpegOf(t, 50, 50)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 50, 50), decoded(t, p))
}

func TestPrepareRejects(t *testing.T) {
	tests := map[string][]byte{
		"text": []byte("not an image"),
		"gif":  []byte("GIF89a..."),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Prepare(bytes.NewReader(data))
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestPrepareTruncatedJPEG(t *testing.T) {
	data := jpegOf(t, 100, 100)
	_, err := Prepare(bytes.NewReader(data[:len(data)/3]))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPrepareTooLarge(t *testing.T) {
	data := append([]byte("\xff\xd8\xff"), make([]byte, MaxUploadBytes)...)
	_, err := Prepare(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTooLarge)
}
