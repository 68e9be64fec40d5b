//go:build linux

// Package fusefs projects an ext2 session as a read-only FUSE filesystem,
// giving the narrow fs.Session capability a practical, drivable consumer.
package fusefs

import (
	"context"
	"os"
	"syscall"

	"bazil.org/fuse"
	fusefslib "bazil.org/fuse/fs"

	"github.com/afdw/ext2os/fs"
)

// FS is a read-only bazil.org/fuse filesystem backed by an fs.Session.
type FS struct {
	session fs.Session
}

// New wraps session as a FUSE filesystem rooted at session.Root().
func New(session fs.Session) *FS {
	return &FS{session: session}
}

func (f *FS) Root() (fusefslib.Node, error) {
	return &node{fs: f, inodeIndex: f.session.Root()}, nil
}

// node is both a directory and a regular file node; which operations are
// valid on it is determined by the underlying inode's file type, same as
// any POSIX inode.
type node struct {
	fs         *FS
	inodeIndex uint64
}

var (
	_ fusefslib.Node               = (*node)(nil)
	_ fusefslib.NodeStringLookuper = (*node)(nil)
	_ fusefslib.HandleReadDirAller = (*node)(nil)
	_ fusefslib.HandleReader       = (*node)(nil)
)

func (n *node) Attr(ctx context.Context, a *fuse.Attr) error {
	stat := n.fs.session.FileStat(n.inodeIndex)
	a.Inode = n.inodeIndex
	a.Size = stat.Size
	a.Mode = os.FileMode(stat.Mode.Permissions())
	if stat.Mode.FileType() == fs.Dir {
		a.Mode |= os.ModeDir
	}
	a.Nlink = uint32(stat.LinksCount)
	a.Uid = uint32(stat.UID)
	a.Gid = uint32(stat.GID)
	return nil
}

func (n *node) Lookup(ctx context.Context, name string) (fusefslib.Node, error) {
	for _, e := range n.fs.session.ReadDir(n.inodeIndex) {
		if e.InodeIndex != 0 && e.Name == name {
			return &node{fs: n.fs, inodeIndex: e.InodeIndex}, nil
		}
	}
	return nil, syscall.ENOENT
}

func (n *node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries := n.fs.session.ReadDir(n.inodeIndex)
	out := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		if e.InodeIndex == 0 {
			continue
		}
		dt := fuse.DT_Unknown
		if e.HasFileType {
			switch e.FileType {
			case fs.Dir:
				dt = fuse.DT_Dir
			case fs.RegularFile:
				dt = fuse.DT_File
			case fs.SymbolicLink:
				dt = fuse.DT_Link
			}
		}
		out = append(out, fuse.Dirent{Inode: e.InodeIndex, Name: e.Name, Type: dt})
	}
	return out, nil
}

func (n *node) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	stat := n.fs.session.FileStat(n.inodeIndex)
	start := uint64(req.Offset)
	if start >= stat.Size {
		return nil
	}
	end := start + uint64(req.Size)
	if end > stat.Size {
		end = stat.Size
	}
	resp.Data = n.fs.session.ReadRegularFileRange(n.inodeIndex, fs.ByteRange{Start: start, End: end})
	return nil
}
