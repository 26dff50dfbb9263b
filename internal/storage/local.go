package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps photos on the local filesystem and fakes the presigned-URL
// flow by pointing both directions at the server's own upload/download
// handlers. Upload URLs carry an HMAC of the key, so an upload is accepted
// only for a key this store actually issued a URL for.
type LocalStore struct {
	baseURL   string
	photosDir string
	secret    []byte
}

func NewLocalStore(baseURL, uploadsDir, secret string) (*LocalStore, error) {
	photosDir := filepath.Join(uploadsDir, "photos")
	if err := os.MkdirAll(photosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory: %w", err)
	}
	return &LocalStore{baseURL: baseURL, photosDir: photosDir, secret: []byte(secret)}, nil
}

// resolvePath maps a storage key onto the photos directory and rejects any
// key whose cleaned path would escape it.
func (s *LocalStore) resolvePath(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	full := filepath.Join(s.photosDir, filepath.Clean(key))
	if full != s.photosDir && !strings.HasPrefix(full, s.photosDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return full, nil
}

func (s *LocalStore) signUploadToken(key string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("upload:" + key))
	return hex.EncodeToString(mac.Sum(nil)[:16])
}

func (s *LocalStore) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error) {
	if _, err := s.resolvePath(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s", s.baseURL, s.signUploadToken(key), key), nil
}

// VerifyUploadToken checks that the token in an upload URL was issued for
// the given key.
func (s *LocalStore) VerifyUploadToken(token, key string) bool {
	return hmac.Equal([]byte(token), []byte(s.signUploadToken(key)))
}

func (s *LocalStore) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := s.resolvePath(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/download/%s?key=%s", s.baseURL, encodeKey(key), key), nil
}

func (s *LocalStore) FileExists(ctx context.Context, key string) (bool, int64, error) {
	path, err := s.resolvePath(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) DeleteFile(ctx context.Context, key string) error {
	path, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) SaveFile(key string, reader io.Reader) error {
	fullPath, err := s.resolvePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *LocalStore) ReadFile(key string) (io.ReadCloser, error) {
	path, err := s.resolvePath(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
