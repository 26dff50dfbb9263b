package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*LocalStore, string) {
	dir := t.TempDir()
	store, err := NewLocalStore("http://localhost:8080", dir, "a-test-secret-that-is-long-enough")
	require.NoError(t, err)
	return store, dir
}

func TestLocalStore_SaveAndRead(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.SaveFile("movements/2026/03/photo.jpg", strings.NewReader("jpeg bytes"))
	assert.NoError(t, err)

	file, err := store.ReadFile("movements/2026/03/photo.jpg")
	assert.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	assert.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	exists, size, err := store.FileExists(context.Background(), "movements/2026/03/photo.jpg")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(10), size)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, dir := newTestStore(t)

	for _, key := range []string{
		"../../escaped.txt",
		"movements/../../escaped.txt",
		"/etc/escaped.txt",
		"",
	} {
		err := store.SaveFile(key, strings.NewReader("x"))
		assert.Error(t, err, key)

		_, err = store.ReadFile(key)
		assert.Error(t, err, key)

		_, err = store.GeneratePresignedUploadURL(context.Background(), key, "image/jpeg", time.Minute)
		assert.Error(t, err, key)
	}

	// Nothing may land outside the photos directory.
	_, err := os.Stat(filepath.Join(dir, "escaped.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_UploadToken(t *testing.T) {
	store, _ := newTestStore(t)
	key := "movements/2026/03/photo.jpg"

	rawURL, err := store.GeneratePresignedUploadURL(context.Background(), key, "image/jpeg", time.Minute)
	assert.NoError(t, err)

	parsed, err := url.Parse(rawURL)
	assert.NoError(t, err)
	parts := strings.Split(parsed.Path, "/")
	token := parts[len(parts)-1]
	assert.Equal(t, key, parsed.Query().Get("key"))

	assert.True(t, store.VerifyUploadToken(token, key))
	assert.False(t, store.VerifyUploadToken(token, "movements/2026/03/other.jpg"))
	assert.False(t, store.VerifyUploadToken("forged-token", key))

	// A store with a different secret never accepts the token.
	other, err := NewLocalStore("http://localhost:8080", t.TempDir(), "a-different-secret-also-long-enough")
	assert.NoError(t, err)
	assert.False(t, other.VerifyUploadToken(token, key))
}
