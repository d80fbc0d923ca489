package shm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"testing"
)

// publishRegion stands in for the simulation process by creating a segment
// under /dev/shm directly.
func publishRegion(t *testing.T, content []byte) string {
	t.Helper()

	name := fmt.Sprintf("simtelem-test-%d-%s", os.Getpid(), t.Name())
	path := shmDir + name
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Skipf("cannot publish test region in %s: %v", shmDir, err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })

	return name
}

func TestOpenMissingRegionReportsNotPublished(t *testing.T) {
	_, err := Open("simtelem-test-does-not-exist", 64)
	if !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
}

func TestSnapshotReflectsPublisherContent(t *testing.T) {
	content := bytes.Repeat([]byte{0xAB}, 128)
	name := publishRegion(t, content)

	r, err := Open(name, len(content))
	if err != nil {
		t.Fatalf("open region: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	snap, err := r.Snapshot(len(content))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !bytes.Equal(snap, content) {
		t.Fatalf("snapshot does not match published content")
	}

	// A snapshot is a copy, not a view.
	snap[0] = 0x00
	again, err := r.Snapshot(1)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if again[0] != 0xAB {
		t.Fatalf("snapshot aliases the mapping")
	}
}

func TestOpenTruncatedRegionFails(t *testing.T) {
	name := publishRegion(t, make([]byte, 32))

	_, err := Open(name, 256)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	name := publishRegion(t, make([]byte, 64))

	r, err := Open(name, 64)
	if err != nil {
		t.Fatalf("open region: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := r.Snapshot(16); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}
