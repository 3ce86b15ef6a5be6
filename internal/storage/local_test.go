package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()

	stored, err := s.Upload(ctx, "resumes/u1/cv.txt", "text/plain", strings.NewReader("hello resume"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if stored != "resumes/u1/cv.txt" {
		t.Errorf("stored path = %q", stored)
	}

	rc, err := s.Open(ctx, stored)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	if string(b) != "hello resume" {
		t.Errorf("content = %q", b)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := s.Upload(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := s.Open(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatal("expected traversal to be rejected on open")
	}
}
