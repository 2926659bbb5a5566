package validators

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("user@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not an email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Jo <jo@example.com>"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator(strings.Repeat("a", 250)+"@example.com"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("longenough"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("x", 256)), ErrPasswordTooLong)
}

// buildFileHeader round-trips content through a real multipart form so
// the header behaves exactly like one gin hands to a handler.
func buildFileHeader(t *testing.T, fileName, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + fileName + `"`}
	h["Content-Type"] = []string{contentType}

	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File["file"][0]
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestImageValidatorAcceptsRealImage(t *testing.T) {
	fh := buildFileHeader(t, "photo.png", "image/png", pngBytes(t))

	code, f, err := ImageValidator(fh, 10<<20)
	require.NoError(t, err)
	require.NotNil(t, f)
	defer f.Close()

	assert.Zero(t, code)
}

func TestImageValidatorRejectsMissingFile(t *testing.T) {
	code, _, err := ImageValidator(nil, 10<<20)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestImageValidatorRejectsWrongContentType(t *testing.T) {
	fh := buildFileHeader(t, "movie.mp4", "video/mp4", []byte("definitely not an image"))

	code, _, err := ImageValidator(fh, 10<<20)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}

func TestImageValidatorRejectsSpoofedHeader(t *testing.T) {
	fh := buildFileHeader(t, "fake.png", "image/png", []byte("plain text pretending"))

	code, _, err := ImageValidator(fh, 10<<20)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
}

func TestImageValidatorRejectsOversizedFile(t *testing.T) {
	fh := buildFileHeader(t, "big.png", "image/png", pngBytes(t))

	code, _, err := ImageValidator(fh, 1)
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestImageValidatorRejectsEmptyFile(t *testing.T) {
	fh := buildFileHeader(t, "empty.png", "image/png", nil)

	code, _, err := ImageValidator(fh, 10<<20)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ErrorIs(t, err, ErrFileEmpty)
}
