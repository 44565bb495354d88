package fs

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stereohaus/beatstore/blob"
)

func TestPutOpenRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	if err := s.Put(ctx, blob.KindPreview, "track.mp3", strings.NewReader("audio-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ref, err := s.Open(ctx, blob.KindPreview, "track.mp3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ref.Close()

	data, err := io.ReadAll(ref.Reader)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("got %q", data)
	}
	if ref.ContentType != "audio/mpeg" {
		t.Errorf("content type %q", ref.ContentType)
	}
	if ref.Size != int64(len("audio-bytes")) {
		t.Errorf("size %d", ref.Size)
	}
}

func TestOpenMissing(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Open(context.Background(), blob.KindCover, "nope.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected IsNotExist error, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s := New(t.TempDir())
	for _, name := range []string{"../etc/passwd", "a/b.mp3", `a\b.mp3`, ""} {
		if _, err := s.Open(context.Background(), blob.KindPreview, name); err == nil {
			t.Errorf("Open(%q) should fail", name)
		}
	}
}

func TestListSorted(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	kind := blob.ContractKind("premium")

	for _, name := range []string{"contrato_es.pdf", "agreement_en.pdf"} {
		if err := s.Put(ctx, kind, name, strings.NewReader("pdf")); err != nil {
			t.Fatalf("Put(%s): %v", name, err)
		}
	}

	names, err := s.List(ctx, kind)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"agreement_en.pdf", "contrato_es.pdf"}
	if len(names) != len(want) {
		t.Fatalf("got %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListMissingKind(t *testing.T) {
	s := New(t.TempDir())
	names, err := s.List(context.Background(), blob.KindStems)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("expected empty, got %v", names)
	}
}

func TestContentTypeFallback(t *testing.T) {
	if got := ContentType("weird.xyz"); got != "application/octet-stream" {
		t.Errorf("got %q", got)
	}
}
