package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetGetFresh(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	in := &Entry{Body: []byte(`{"data": []}`), ETag: `"abc"`, StatusCode: 200}
	if err := c.Set("http://localhost:1234/api/v0/models", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	out, fresh := c.Get("http://localhost:1234/api/v0/models")
	if out == nil {
		t.Fatal("expected a hit")
	}
	if !fresh {
		t.Error("entry should be fresh within the TTL")
	}
	if string(out.Body) != `{"data": []}` || out.ETag != `"abc"` {
		t.Errorf("entry = %+v", out)
	}
}

func TestGetMiss(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if out, fresh := c.Get("never stored"); out != nil || fresh {
		t.Errorf("Get = (%v, %v), want miss", out, fresh)
	}
}

func TestExpiredEntryIsStaleButReturned(t *testing.T) {
	c, err := New(t.TempDir(), time.Nanosecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Set("k", &Entry{Body: []byte("old"), StatusCode: 200}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	out, fresh := c.Get("k")
	if out == nil {
		t.Fatal("stale entries must still be returned for revalidation")
	}
	if fresh {
		t.Error("entry should be stale past the TTL")
	}
	if string(out.Body) != "old" {
		t.Errorf("body = %q", out.Body)
	}
}

func TestCorruptEntryIsRemoved(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Set("k", &Entry{Body: []byte("ok"), StatusCode: 200}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("expected one cache file, got %v", files)
	}
	if err := os.WriteFile(files[0], []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if out, _ := c.Get("k"); out != nil {
		t.Errorf("corrupt entry returned: %+v", out)
	}
	if _, err := os.Stat(files[0]); !os.IsNotExist(err) {
		t.Error("corrupt cache file not removed")
	}
}

func TestKeysAreIsolated(t *testing.T) {
	c, err := New(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Set("a", &Entry{Body: []byte("A"), StatusCode: 200}); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("b", &Entry{Body: []byte("B"), StatusCode: 200}); err != nil {
		t.Fatal(err)
	}

	ea, _ := c.Get("a")
	eb, _ := c.Get("b")
	if ea == nil || eb == nil {
		t.Fatal("expected hits for both keys")
	}
	if string(ea.Body) != "A" || string(eb.Body) != "B" {
		t.Errorf("bodies = %q, %q", ea.Body, eb.Body)
	}
}
