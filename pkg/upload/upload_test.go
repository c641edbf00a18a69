package upload

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestSave(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.Save(fileHeader(t, "avatar.png", "image/png", []byte("png-bytes")))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ".png"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestSaveNamesAreUnique(t *testing.T) {
	store := NewStore(t.TempDir())

	a, err := store.Save(fileHeader(t, "x.jpg", "image/jpeg", []byte("a")))
	require.NoError(t, err)
	b, err := store.Save(fileHeader(t, "x.jpg", "image/jpeg", []byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Save(fileHeader(t, "evil.sh", "application/x-sh", []byte("#!/bin/sh")))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written for rejected uploads")
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := NewStore(t.TempDir())

	big := bytes.Repeat([]byte("x"), 500_001)
	_, err := store.Save(fileHeader(t, "big.png", "image/png", big))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRemove(t *testing.T) {
	store := NewStore(t.TempDir())

	path, err := store.Save(fileHeader(t, "avatar.png", "image/png", []byte("png")))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, store.Remove(filepath.Join(t.TempDir(), "missing.png")))
}
