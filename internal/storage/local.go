package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalHost copies assets under a directory that the HTTP server exposes
// at baseURL.
type LocalHost struct {
	baseDir string
	baseURL string
	now     func() time.Time
}

func NewLocalHost(baseDir, baseURL string) *LocalHost {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if baseURL == "" {
		baseURL = "/static"
	}
	return &LocalHost{baseDir: baseDir, baseURL: baseURL, now: time.Now}
}

func (h *LocalHost) Dir() string { return h.baseDir }

func (h *LocalHost) Upload(ctx context.Context, localPath string, kind Kind) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mimeType, err := detectMime(localPath, kind)
	if err != nil {
		return "", err
	}

	// <folder>/YYYY/MM/DD/<uuid><ext>
	now := h.now()
	relDir := path.Join(kind.Folder(), fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day()))
	absDir := filepath.Join(h.baseDir, filepath.FromSlash(relDir))
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := uuid.NewString() + extFor(localPath, mimeType)
	absPath := filepath.Join(absDir, name)

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	dst, err := os.Create(absPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("close file: %w", err)
	}

	return h.baseURL + "/" + path.Join(relDir, name), nil
}
