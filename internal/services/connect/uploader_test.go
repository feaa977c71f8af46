package connect

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"lapse/internal/services"
	"lapse/internal/testsupport"
)

func TestUploadSendsHeadersAndBody(t *testing.T) {
	var (
		gotMethod      string
		gotToken       string
		gotFingerprint string
		gotContentType string
		gotBody        []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotToken = r.Header.Get("Token")
		gotFingerprint = r.Header.Get("Fingerprint")
		gotContentType = r.Header.Get("Content-type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	snapshot := writeSnapshot(t, []byte("jpeg-bytes"))
	service := newTestService(t, server.URL)

	if err := service.Upload(context.Background(), snapshot); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotToken != "tok" || gotFingerprint != "fp" {
		t.Fatalf("credential headers missing: token=%q fingerprint=%q", gotToken, gotFingerprint)
	}
	if gotContentType != "image/jpg" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if string(gotBody) != "jpeg-bytes" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestUploadRotatesSnapshot(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	original := encodeJPEG(t, 8, 4)
	snapshot := writeSnapshot(t, original)

	cfg := testsupport.NewConfig(t)
	cfg.Connect.Token = "tok"
	cfg.Connect.Fingerprint = "fp"
	cfg.Connect.UploadURL = server.URL
	cfg.Camera.Rotation = 90
	service := New(cfg)

	if err := service.Upload(context.Background(), snapshot); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if bytes.Equal(gotBody, original) {
		t.Fatal("uploaded bytes match the unrotated snapshot")
	}
	img, err := jpeg.Decode(bytes.NewReader(gotBody))
	if err != nil {
		t.Fatalf("decode uploaded body: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 8 {
		t.Fatalf("expected 4x8 after rotation, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestUploadPassesUndecodableBytesThrough(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	snapshot := writeSnapshot(t, []byte("not a jpeg"))

	cfg := testsupport.NewConfig(t)
	cfg.Connect.Token = "tok"
	cfg.Connect.Fingerprint = "fp"
	cfg.Connect.UploadURL = server.URL
	cfg.Camera.Rotation = 180
	service := New(cfg)

	if err := service.Upload(context.Background(), snapshot); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if string(gotBody) != "not a jpeg" {
		t.Fatalf("corrupt snapshot should upload unmodified, got %q", gotBody)
	}
}

func TestRotateJPEGDimensions(t *testing.T) {
	original := encodeJPEG(t, 8, 4)

	cases := []struct {
		rotation      int
		width, height int
	}{
		{0, 8, 4},
		{90, 4, 8},
		{180, 8, 4},
		{270, 4, 8},
	}
	for _, tc := range cases {
		rotated := rotateJPEG(original, tc.rotation)
		img, err := jpeg.Decode(bytes.NewReader(rotated))
		if err != nil {
			t.Fatalf("rotation %d: decode: %v", tc.rotation, err)
		}
		if img.Bounds().Dx() != tc.width || img.Bounds().Dy() != tc.height {
			t.Fatalf("rotation %d: expected %dx%d, got %dx%d",
				tc.rotation, tc.width, tc.height, img.Bounds().Dx(), img.Bounds().Dy())
		}
	}
}

func TestUploadDisabledWithoutCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Connect.Token = ""
	cfg.Connect.Fingerprint = ""
	service := New(cfg)

	if service.Enabled() {
		t.Fatal("expected uploader disabled without credentials")
	}
	// No server behind the URL; a real request would fail loudly.
	if err := service.Upload(context.Background(), "/nonexistent.jpg"); err != nil {
		t.Fatalf("disabled upload should be a no-op, got %v", err)
	}
}

func TestUploadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusForbidden)
	}))
	defer server.Close()

	snapshot := writeSnapshot(t, []byte("x"))
	service := newTestService(t, server.URL)

	err := service.Upload(context.Background(), snapshot)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestUploadMissingSnapshot(t *testing.T) {
	service := newTestService(t, "http://127.0.0.1:1")
	err := service.Upload(context.Background(), "/does/not/exist.jpg")
	if err == nil {
		t.Fatal("expected error for missing snapshot")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func newTestService(t *testing.T, uploadURL string) *Service {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Connect.Token = "tok"
	cfg.Connect.Fingerprint = "fp"
	cfg.Connect.UploadURL = uploadURL
	return New(cfg)
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func writeSnapshot(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}
