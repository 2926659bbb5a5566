package service

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTranscodeAlwaysProducesJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	inputs := [][]byte{
		encodePNG(t, img),
		gifBuf.Bytes(),
	}

	for _, in := range inputs {
		out, err := Transcode(in)
		require.NoError(t, err)

		_, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
	}
}

func TestTranscodeRejectsEmptyBuffer(t *testing.T) {
	_, err := Transcode(nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestTranscodeRejectsGarbage(t *testing.T) {
	_, err := Transcode([]byte("this is not an image at all"))
	assert.Error(t, err)
}

func TestTranscodeCapsOversizedDimensions(t *testing.T) {
	// Wide but short so only one axis is over the cap
	img := image.NewRGBA(image.Rect(0, 0, 4100, 10))

	out, err := Transcode(encodePNG(t, img))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.LessOrEqual(t, decoded.Bounds().Dx(), maxDimension)
	assert.LessOrEqual(t, decoded.Bounds().Dy(), maxDimension)
}

func TestTranscodeKeepsSmallDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 640, 480))

	out, err := Transcode(encodePNG(t, img))
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 640, decoded.Bounds().Dx())
	assert.Equal(t, 480, decoded.Bounds().Dy())
}
