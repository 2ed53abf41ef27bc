package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		raw, host string
		want      Mode
		wantErr   bool
	}{
		{"", "", ModeLocal, false},
		{"", "http://fake-gcs:4443", ModeGCSEmulator, false},
		{"GCS", "", ModeGCS, false},
		{"s3", "", "", true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.raw, tc.host)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseMode(%q,%q) = %q, %v", tc.raw, tc.host, got, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Mode: ModeGCS}).Validate(); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	if err := (Config{Mode: ModeGCSEmulator, Bucket: "b", EmulatorHost: "fake-gcs"}).Validate(); err == nil {
		t.Fatalf("expected invalid emulator host error")
	}
	if err := (Config{Mode: ModeLocal, LocalDir: "/tmp/x"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(logger.Nop(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := s.Put(ctx, "a.pdf", strings.NewReader("%PDF-1.4"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	rc, err := s.Open(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", b)
	}
	if err := s.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a.pdf"); err != nil {
		t.Fatalf("Delete (again): %v", err)
	}
	if _, err := s.Open(ctx, "a.pdf"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Open after delete: expected ErrObjectNotFound, got %v", err)
	}
	if err := s.Put(ctx, "../escape.pdf", strings.NewReader("x"), ""); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
