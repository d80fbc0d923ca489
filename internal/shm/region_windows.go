package shm

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// The simulation publishes its mappings in the per-session namespace.
const namePrefix = `Local\`

type sysHandle struct {
	mapping windows.Handle
	view    uintptr
}

func openRegion(name string, size int) (*Region, error) {
	fullName, err := windows.UTF16PtrFromString(namePrefix + name)
	if err != nil {
		return nil, fmt.Errorf("shm: region name %q: %w", name, err)
	}

	mapping, err := windows.OpenFileMapping(windows.FILE_MAP_READ, 0, fullName)
	if err != nil {
		if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil, fmt.Errorf("shm: open %s%s: %w", namePrefix, name, ErrNotPublished)
		}

		return nil, fmt.Errorf("shm: open %s%s: %w", namePrefix, name, err)
	}

	view, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		_ = windows.CloseHandle(mapping)

		return nil, fmt.Errorf("shm: map view of %s%s: %w", namePrefix, name, err)
	}

	return &Region{
		name: name,
		size: size,
		data: unsafe.Slice((*byte)(unsafe.Pointer(view)), size),
		sys:  sysHandle{mapping: mapping, view: view},
	}, nil
}

func (r *Region) unmapLocked() error {
	err := windows.UnmapViewOfFile(r.sys.view)
	if closeErr := windows.CloseHandle(r.sys.mapping); err == nil {
		err = closeErr
	}
	r.sys = sysHandle{}

	return err
}
