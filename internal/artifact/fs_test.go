package artifact

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newFS(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFSStore_PutGet(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()

	if err := s.Put(ctx, "sess", "current/report.pdf", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	r, err := s.Get(ctx, "sess", "current/report.pdf")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "pdf bytes" {
		t.Errorf("got %q", data)
	}
}

func TestFSStore_GetMissing(t *testing.T) {
	s := newFS(t)
	if _, err := s.Get(context.Background(), "sess", "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestFSStore_PutOverwrites(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()
	for _, v := range []string{"v1", "v2"} {
		if err := s.Put(ctx, "sess", "outlines/a.json", strings.NewReader(v)); err != nil {
			t.Fatalf("Put %s: %v", v, err)
		}
	}
	r, err := s.Get(ctx, "sess", "outlines/a.json")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "v2" {
		t.Errorf("got %q, want v2", data)
	}
}

func TestFSStore_ListByPrefix(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()
	for _, key := range []string{"current/b.pdf", "current/a.pdf", "past/c.pdf", "outlines/a.json"} {
		if err := s.Put(ctx, "sess", key, strings.NewReader("x")); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.List(ctx, "sess", "current/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"current/a.pdf", "current/b.pdf"}
	if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("keys = %v, want %v", keys, want)
	}

	keys, err = s.List(ctx, "other-session", "")
	if err != nil {
		t.Fatalf("List empty session: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("unrelated session keys = %v", keys)
	}
}

func TestFSStore_DeleteSession(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()
	if err := s.Put(ctx, "sess", "current/a.pdf", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "keep", "current/b.pdf", strings.NewReader("y")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSession(ctx, "sess"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := s.Get(ctx, "sess", "current/a.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted session artifact still readable: %v", err)
	}
	if _, err := s.Get(ctx, "keep", "current/b.pdf"); err != nil {
		t.Errorf("other session artifact lost: %v", err)
	}
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()
	if err := s.Put(ctx, "sess", "../escape", strings.NewReader("x")); err == nil {
		t.Error("Put with traversal key should fail")
	}
	if err := s.Put(ctx, "../sess", "a", strings.NewReader("x")); err == nil {
		t.Error("Put with traversal session should fail")
	}
	if err := s.Delete(ctx, "sess", "missing"); err != nil {
		t.Errorf("Delete of missing key should be nil, got %v", err)
	}
}
