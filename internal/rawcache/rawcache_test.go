package rawcache

import (
	"os"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "skald-rawcache-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetMiss(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Get("o/r#main/docs/a.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected miss on empty store")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := testStore(t)
	key := "o/r#main/docs/a.md"

	if err := s.Put(key, "# Hello"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	content, ok, err := s.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if content != "# Hello" {
		t.Errorf("content = %q", content)
	}

	// Overwrite is allowed; last writer wins.
	if err := s.Put(key, "# Updated"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	content, _, _ = s.Get(key)
	if content != "# Updated" {
		t.Errorf("content after overwrite = %q", content)
	}
}
