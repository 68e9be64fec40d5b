//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package sectorio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const blkgetsize64 = 0x80081272

// FileStorage is a Storage backed by a regular file or a raw block device
// node, used when a PIO/virtio backend is not available (host-side tooling,
// loopback-mounted images).
type FileStorage struct {
	f           *os.File
	sectorCount uint64
}

// OpenFileStorage opens path as a Storage. If path names a block device,
// its size is probed with BLKGETSIZE64; otherwise the regular file's size
// is used, and it must already be a multiple of SectorSize.
func OpenFileStorage(path string, writable bool) (*FileStorage, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("sectorio: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("sectorio: stat %s: %w", path, err)
	}
	var size int64
	if info.Mode()&os.ModeDevice != 0 {
		deviceSize, err := unix.IoctlGetInt(int(f.Fd()), blkgetsize64)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("sectorio: BLKGETSIZE64 %s: %w", path, err)
		}
		size = int64(deviceSize)
	} else {
		size = info.Size()
	}
	if size%SectorSize != 0 {
		f.Close()
		return nil, fmt.Errorf("sectorio: %s size %d is not a multiple of %d", path, size, SectorSize)
	}
	return &FileStorage{f: f, sectorCount: uint64(size) / SectorSize}, nil
}

// Close releases the underlying file descriptor.
func (fs *FileStorage) Close() error {
	return fs.f.Close()
}

func (fs *FileStorage) SectorCount() uint64 {
	return fs.sectorCount
}

func (fs *FileStorage) ReadSector(index uint64) Sector {
	if index >= fs.sectorCount {
		panic("sectorio: read out of range")
	}
	var sector Sector
	if _, err := fs.f.ReadAt(sector[:], int64(index)*SectorSize); err != nil {
		panic(fmt.Sprintf("sectorio: read sector %d: %v", index, err))
	}
	return sector
}

func (fs *FileStorage) WriteSector(index uint64, data Sector) {
	if index >= fs.sectorCount {
		panic("sectorio: write out of range")
	}
	if _, err := fs.f.WriteAt(data[:], int64(index)*SectorSize); err != nil {
		panic(fmt.Sprintf("sectorio: write sector %d: %v", index, err))
	}
}
