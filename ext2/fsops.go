package ext2

import (
	"fmt"
	"strings"

	"github.com/afdw/ext2os/fs"
)

// Root returns the root directory's inode index (the ext2 convention: 2).
func (s *Session) Root() uint64 {
	return 2
}

func (s *Session) FileStat(inodeIndex uint64) fs.FileStat {
	in := s.readInode(inodeIndex)
	return fs.FileStat{
		Mode:             in.mode,
		UID:              in.uid,
		GID:              in.gid,
		LinksCount:       in.linksCount,
		Size:             in.size,
		AccessTime:       in.accessTime,
		CreationTime:     in.creationTime,
		ModificationTime: in.modificationTime,
	}
}

// Create allocates a new inode of the given type and permissions. The
// returned inode starts with links_count 0 and size 0; the caller is
// responsible for linking it into a directory and updating links_count.
func (s *Session) Create(fileType fs.FileType, permissions uint32) uint64 {
	inodeIndex := s.allocateInode()
	in := inode{
		mode:         fs.ModeFromFileTypeAndPermissions(permissions, fileType),
		dataBlockMap: [15]uint64{},
	}
	s.writeInode(inodeIndex, in)
	return inodeIndex
}

// Remove truncates the inode's content to zero (freeing every data and
// indirect block it owns) before clearing its inode-bitmap bit. The
// truncate-first ordering is deliberate: freeing the inode without first
// reclaiming its blocks would leak them with no remaining owner to account
// for them.
func (s *Session) Remove(inodeIndex uint64) {
	in := s.readInode(inodeIndex)
	s.resize(&in, 0)
	s.writeInode(inodeIndex, in)
	s.freeInode(inodeIndex)
}

func (s *Session) SetLinksCount(inodeIndex uint64, linksCount uint16) {
	in := s.readInode(inodeIndex)
	in.linksCount = linksCount
	s.writeInode(inodeIndex, in)
}

func (s *Session) ReadRegularFileRange(inodeIndex uint64, r fs.ByteRange) []byte {
	in := s.readInode(inodeIndex)
	return s.readDataRange(&in, r)
}

func (s *Session) WriteRegularFileRange(inodeIndex uint64, r fs.ByteRange, data []byte) {
	in := s.readInode(inodeIndex)
	s.writeDataRange(&in, r, data)
	s.writeInode(inodeIndex, in)
}

func (s *Session) ResizeRegularFile(inodeIndex uint64, size uint64) {
	in := s.readInode(inodeIndex)
	s.resize(&in, size)
	s.writeInode(inodeIndex, in)
}

func (s *Session) ReadDir(inodeIndex uint64) []fs.DirEntry {
	in := s.readInode(inodeIndex)
	raw := manyDirEntriesFromBytes(s.readData(&in))
	out := make([]fs.DirEntry, 0, len(raw))
	for _, e := range raw {
		out = append(out, dirEntryToFS(e))
	}
	return out
}

func (s *Session) WriteDir(inodeIndex uint64, entries []fs.DirEntry) {
	in := s.readInode(inodeIndex)
	raw := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		raw = append(raw, dirEntryFromFS(e))
	}
	data := manyDirEntriesToBytes(raw)
	s.resize(&in, uint64(len(data)))
	s.writeData(&in, data)
	s.writeInode(inodeIndex, in)
}

// Lookup finds name among the live entries of the directory at dirInode.
// Tombstone entries (inode index 0) are never matched.
func (s *Session) Lookup(dirInode uint64, name string) (inodeIndex uint64, fileType fs.FileType, ok bool) {
	for _, e := range s.ReadDir(dirInode) {
		if e.InodeIndex != 0 && e.Name == name {
			return e.InodeIndex, e.FileType, true
		}
	}
	return 0, 0, false
}

// ResolvePath walks path (slash-separated, relative to the root directory)
// through successive Lookup calls.
func (s *Session) ResolvePath(path string) (uint64, error) {
	inodeIndex := s.Root()
	path = strings.Trim(path, "/")
	if path == "" {
		return inodeIndex, nil
	}
	for _, part := range strings.Split(path, "/") {
		next, _, ok := s.Lookup(inodeIndex, part)
		if !ok {
			return 0, fmt.Errorf("ext2: no such file or directory: %q", path)
		}
		inodeIndex = next
	}
	return inodeIndex, nil
}
