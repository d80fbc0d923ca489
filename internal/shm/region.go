// Package shm attaches to named shared-memory regions that another process
// publishes. It never creates regions: the publisher owns them, this package
// only maps existing ones read-only.
package shm

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotPublished means the named region does not exist (yet).
	ErrNotPublished = errors.New("shm: region not published")
	// ErrClosed means the region handle was closed.
	ErrClosed = errors.New("shm: region closed")
	// ErrTruncated means the published region is smaller than requested.
	ErrTruncated = errors.New("shm: region smaller than requested size")
)

// Region is a read-only view of one named shared-memory segment.
type Region struct {
	name string
	size int

	mu   sync.Mutex
	data []byte
	sys  sysHandle
}

// Open attaches to an existing named region of at least size bytes.
// The name is the bare segment name; platform decoration (the /dev/shm
// directory, the Local\ session prefix) is applied here.
func Open(name string, size int) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("shm: invalid region size %d", size)
	}

	return openRegion(name, size)
}

func (r *Region) Name() string {
	return r.name
}

func (r *Region) Size() int {
	return r.size
}

// Snapshot copies the first n bytes of the mapping at call time. There is no
// atomicity against the publisher's writes; a torn read is possible and the
// caller is expected to tolerate it.
func (r *Region) Snapshot(n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil, ErrClosed
	}
	if n <= 0 || n > len(r.data) {
		return nil, fmt.Errorf("shm: snapshot of %d bytes outside mapping of %d: %w", n, len(r.data), ErrTruncated)
	}

	buf := make([]byte, n)
	copy(buf, r.data[:n])

	return buf, nil
}

// Close releases the mapping. Safe to call more than once.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == nil {
		return nil
	}
	err := r.unmapLocked()
	r.data = nil

	return err
}
