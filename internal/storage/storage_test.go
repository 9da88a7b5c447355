package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func fileHeader(t *testing.T, field, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

type recordingHost struct {
	path string
	err  error
}

func (h *recordingHost) Upload(_ context.Context, localPath string, _ Kind) (string, error) {
	h.path = localPath
	if _, err := os.Stat(localPath); err != nil {
		return "", err
	}
	if h.err != nil {
		return "", h.err
	}
	return "https://cdn.example.com/x.png", nil
}

func TestUploadMultipart_RemovesTempFileOnSuccess(t *testing.T) {
	host := &recordingHost{}
	url, err := UploadMultipart(context.Background(), host, fileHeader(t, "photos", "a.png", pngBytes), KindImage)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", url)

	_, statErr := os.Stat(host.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUploadMultipart_RemovesTempFileOnFailure(t *testing.T) {
	host := &recordingHost{err: errors.New("remote down")}
	_, err := UploadMultipart(context.Background(), host, fileHeader(t, "photos", "a.png", pngBytes), KindImage)
	require.Error(t, err)
	require.NotEmpty(t, host.path)

	_, statErr := os.Stat(host.path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalHost_Upload(t *testing.T) {
	dir := t.TempDir()
	host := NewLocalHost(dir, "/static")

	url, err := host.Upload(context.Background(), writeTemp(t, "a.png", pngBytes), KindImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/static/listings/photos/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	stored := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/static/")))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestLocalHost_RejectsWrongKind(t *testing.T) {
	host := NewLocalHost(t.TempDir(), "/static")

	_, err := host.Upload(context.Background(), writeTemp(t, "a.txt", []byte("plain text here")), KindImage)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = host.Upload(context.Background(), writeTemp(t, "empty.png", nil), KindImage)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Host_Upload(t *testing.T) {
	client := &fakeS3{}
	host := &S3Host{client: client, bucket: "assets", publicURL: "https://cdn.example.com"}

	url, err := host.Upload(context.Background(), writeTemp(t, "a.png", pngBytes), KindImage)
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "assets", *client.input.Bucket)
	assert.Equal(t, "image/png", *client.input.ContentType)
	assert.True(t, strings.HasPrefix(*client.input.Key, "listings/photos/"))
	assert.Equal(t, "https://cdn.example.com/"+*client.input.Key, url)
	assert.Equal(t, pngBytes, client.body)
}
