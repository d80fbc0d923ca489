package shm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

const shmDir = "/dev/shm/"

type sysHandle struct{}

func openRegion(name string, size int) (*Region, error) {
	path := shmDir + name
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("shm: open %s: %w", path, ErrNotPublished)
		}

		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)

		return nil, fmt.Errorf("shm: stat %s: %w", path, err)
	}
	if st.Size < int64(size) {
		_ = unix.Close(fd)

		return nil, fmt.Errorf("shm: %s is %d bytes, need %d: %w", path, st.Size, size, ErrTruncated)
	}

	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	// The mapping keeps its own reference; the descriptor is not needed
	// after mmap succeeds or fails.
	_ = unix.Close(fd)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}

	return &Region{name: name, size: size, data: data}, nil
}

func (r *Region) unmapLocked() error {
	return unix.Munmap(r.data)
}
