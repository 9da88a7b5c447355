package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the asset category; it selects the target folder and allowed types.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) Folder() string {
	if k == KindVideo {
		return "listings/videos"
	}
	return "listings/photos"
}

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedMimeTypes = map[Kind]map[string]bool{
	KindImage: {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	KindVideo: {
		"video/mp4":  true,
		"video/webm": true,
		// DetectContentType reports some mp4/mov containers this way
		"application/octet-stream": true,
	},
}

// AssetHost stores a local file durably and returns its public URL.
// Implementations never retry a failed upload.
type AssetHost interface {
	Upload(ctx context.Context, localPath string, kind Kind) (string, error)
}

// detectMime sniffs the first 512 bytes of the file and checks it against the kind.
func detectMime(path string, kind Kind) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if n == 0 {
		return "", ErrEmptyFile
	}
	mimeType := strings.Split(http.DetectContentType(buf[:n]), ";")[0]
	if !allowedMimeTypes[kind][mimeType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	return mimeType, nil
}

// UploadMultipart spools a multipart file to a temporary file, hands it to
// the host and removes the temporary file whether or not the upload worked.
func UploadMultipart(ctx context.Context, host AssetHost, fh *multipart.FileHeader, kind Kind) (string, error) {
	if fh.Size == 0 {
		return "", ErrEmptyFile
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "propzy-upload-*"+strings.ToLower(filepath.Ext(fh.Filename)))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return host.Upload(ctx, tmpPath, kind)
}

func extFor(path, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		return ext
	}
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	default:
		return ".bin"
	}
}
