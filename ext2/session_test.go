package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afdw/ext2os/fs"
	"github.com/afdw/ext2os/sectorio"
)

func newTestImage(t *testing.T, megabytes uint64) *Session {
	t.Helper()
	storage := sectorio.NewMemStorage(megabytes * 1024 * 1024 / sectorio.SectorSize)
	return Format(storage, Params{BlockSize: 1024, InodeCount: 256})
}

func TestMountSanity(t *testing.T) {
	s := newTestImage(t, 4)
	stat := s.FileStat(s.Root())
	require.Equal(t, fs.Dir, stat.Mode.FileType())
	entries := s.ReadDir(s.Root())
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	require.True(t, names["."])
	require.True(t, names[".."])
}

func TestCreateAndReadSmallFile(t *testing.T) {
	s := newTestImage(t, 4)
	i := s.Create(fs.RegularFile, 0o644)
	s.ResizeRegularFile(i, 5)
	s.WriteRegularFileRange(i, fs.ByteRange{Start: 0, End: 5}, []byte("hello"))
	require.Equal(t, []byte("hello"), s.ReadRegularFileRange(i, fs.ByteRange{Start: 0, End: 5}))
}

func TestSparseReadIsZero(t *testing.T) {
	s := newTestImage(t, 4)
	before := s.superblock.freeBlocksCount
	i := s.Create(fs.RegularFile, 0o644)
	s.ResizeRegularFile(i, 1_000_000)
	data := s.ReadRegularFileRange(i, fs.ByteRange{Start: 0, End: 1_000_000})
	require.Len(t, data, 1_000_000)
	for _, b := range data {
		require.Zero(t, b)
	}
	require.Equal(t, before, s.superblock.freeBlocksCount)
}

func TestIndirectBoundaryAndReclaim(t *testing.T) {
	s := newTestImage(t, 4)
	before := s.superblock.freeBlocksCount
	i := s.Create(fs.RegularFile, 0o644)
	blockSize := s.superblock.blockSize()
	size := 13 * blockSize
	s.ResizeRegularFile(i, size)

	payload := make([]byte, blockSize)
	for j := range payload {
		payload[j] = byte(j)
	}
	r := fs.ByteRange{Start: 12 * blockSize, End: 13 * blockSize}
	s.WriteRegularFileRange(i, r, payload)
	require.Equal(t, payload, s.ReadRegularFileRange(i, r))

	s.WriteRegularFileRange(i, r, make([]byte, blockSize))
	require.Equal(t, make([]byte, blockSize), s.ReadRegularFileRange(i, r))

	s.ResizeRegularFile(i, 0)
	require.Equal(t, before, s.superblock.freeBlocksCount)
}

func TestWriteStraddlingMultipleBlocks(t *testing.T) {
	s := newTestImage(t, 4)
	i := s.Create(fs.RegularFile, 0o644)
	blockSize := s.superblock.blockSize()
	s.ResizeRegularFile(i, 3*blockSize)

	data := make([]byte, blockSize+2)
	for j := range data {
		data[j] = byte(j % 251)
	}
	r := fs.ByteRange{Start: blockSize - 1, End: blockSize - 1 + uint64(len(data))}
	s.WriteRegularFileRange(i, r, data)
	require.Equal(t, data, s.ReadRegularFileRange(i, r))
}

func TestDirRoundTrip(t *testing.T) {
	s := newTestImage(t, 4)
	sub := s.Create(fs.Dir, 0o755)
	s.SetLinksCount(sub, 2)
	s.WriteDir(sub, []fs.DirEntry{
		{InodeIndex: sub, FileType: fs.Dir, HasFileType: true, Name: "."},
		{InodeIndex: s.Root(), FileType: fs.Dir, HasFileType: true, Name: ".."},
	})
	entries := s.ReadDir(sub)
	s.WriteDir(sub, entries)
	require.Equal(t, entries, s.ReadDir(sub))
}

func TestResolvePath(t *testing.T) {
	s := newTestImage(t, 4)
	sub := s.Create(fs.Dir, 0o755)
	s.SetLinksCount(sub, 2)
	root := s.ReadDir(s.Root())
	root = append(root, fs.DirEntry{InodeIndex: sub, FileType: fs.Dir, HasFileType: true, Name: "sub"})
	s.WriteDir(s.Root(), root)

	file := s.Create(fs.RegularFile, 0o644)
	s.SetLinksCount(file, 1)
	s.WriteDir(sub, []fs.DirEntry{{InodeIndex: file, FileType: fs.RegularFile, HasFileType: true, Name: "name"}})

	resolved, err := s.ResolvePath("/sub/name")
	require.NoError(t, err)
	require.Equal(t, file, resolved)
}

func TestRemoveReclaimsBlocks(t *testing.T) {
	s := newTestImage(t, 4)
	before := s.superblock.freeBlocksCount
	i := s.Create(fs.RegularFile, 0o644)
	s.ResizeRegularFile(i, 50_000)
	s.WriteRegularFileRange(i, fs.ByteRange{Start: 0, End: 5}, []byte("hello"))
	s.Remove(i)
	require.Equal(t, before, s.superblock.freeBlocksCount)
}
