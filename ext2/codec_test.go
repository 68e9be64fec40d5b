package ext2

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afdw/ext2os/fs"
)

func TestBitmapMasking(t *testing.T) {
	bm := bitmap{data: make([]byte, 1)}
	bm.set(1, true)
	bm.set(3, true)
	require.True(t, bm.get(1))
	require.True(t, bm.get(3))
	require.False(t, bm.get(0))
	require.False(t, bm.get(2))
	bm.set(1, false)
	require.False(t, bm.get(1))
	require.True(t, bm.get(3))
}

func TestBGDRoundTrip(t *testing.T) {
	bgd := blockGroupDescriptor{
		blockBitmapBlockIndex:     10,
		inodeBitmapBlockIndex:     11,
		inodeTableFirstBlockIndex: 12,
		freeBlocksCount:           100,
		freeInodesCount:           50,
		usedDirsCount:             3,
	}
	require.Equal(t, bgd, bgdFromBytes(bgd.toBytes()))
}

func TestInodeRoundTrip(t *testing.T) {
	in := inode{
		mode:         fs.ModeFromFileTypeAndPermissions(0o644, fs.RegularFile),
		uid:          1000,
		size:         12345,
		linksCount:   1,
		sectorCount:  24,
		dataBlockMap: [15]uint64{1, 2, 3},
	}
	require.Equal(t, in, inodeFromBytes(in.toBytes()))
}

func TestDirEntryRoundTrip(t *testing.T) {
	entries := []dirEntry{
		{inodeIndex: 2, fileType: fs.Dir, hasFileType: true, name: "."},
		{inodeIndex: 11, fileType: fs.RegularFile, hasFileType: true, name: "a-longer-name.txt"},
	}
	data := manyDirEntriesToBytes(entries)
	require.Equal(t, entries, manyDirEntriesFromBytes(data))
}

func TestSuperblockRoundTrip(t *testing.T) {
	sb := superblock{
		inodesCount:           256,
		blocksCount:           4096,
		firstDataBlock:        1,
		logBlockSize:          0,
		blockCountPerGroup:    8192,
		inodeCountPerGroup:    256,
		firstUsableInodeIndex: 11,
		inodeSize:             128,
		blockGroupIndex:       0,
		featuresRoCompat:      featureSparseSuper,
	}
	decoded := superblockFromBytes(sb.toBytes(0))
	require.Equal(t, sb, decoded)
}
