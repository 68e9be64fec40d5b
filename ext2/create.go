package ext2

import (
	"fmt"

	"github.com/afdw/ext2os/fs"
	"github.com/afdw/ext2os/sectorio"
)

// Params configures a freshly formatted ext2 image, mirroring the role
// filesystem/ext4.Params plays for the teacher's ext4 formatter.
type Params struct {
	// BlockSize must be a power of two multiple of 1024 (1024, 2048, ...).
	BlockSize uint64
	// InodeCount is the total number of inodes to provision, spread evenly
	// across as many block groups as the storage size requires.
	InodeCount uint64
}

const rootInodeIndex = 2

// Format lays out a fresh ext2 image on storage and returns a Session
// mounting it, with the root directory already created and populated with
// "." and "..".
func Format(storage sectorio.Storage, params Params) *Session {
	if params.BlockSize == 0 {
		params.BlockSize = 1024
	}
	if params.BlockSize%1024 != 0 {
		panic("ext2: block size must be a multiple of 1024")
	}
	if params.InodeCount == 0 {
		params.InodeCount = 128
	}

	totalBlocks := sectorio.Len(storage) / params.BlockSize
	firstDataBlock := uint64(1)
	if params.BlockSize > 1024 {
		firstDataBlock = 0
	}

	bitsPerBlock := params.BlockSize * 8
	blockCountPerGroup := bitsPerBlock
	groupCount := (totalBlocks - firstDataBlock + blockCountPerGroup - 1) / blockCountPerGroup
	if groupCount == 0 {
		groupCount = 1
	}
	inodeCountPerGroup := (params.InodeCount + groupCount - 1) / groupCount
	if inodeCountPerGroup > bitsPerBlock {
		panic("ext2: too many inodes requested for this block size")
	}
	inodeSize := uint64(128)
	inodeTableBlocksPerGroup := (inodeCountPerGroup*inodeSize + params.BlockSize - 1) / params.BlockSize
	bgdTableBlocks := (groupCount*bgdSize + params.BlockSize - 1) / params.BlockSize

	sb := superblock{
		inodesCount:           inodeCountPerGroup * groupCount,
		blocksCount:           totalBlocks,
		firstDataBlock:        firstDataBlock,
		logBlockSize:          logOf(params.BlockSize / 1024),
		blockCountPerGroup:    blockCountPerGroup,
		inodeCountPerGroup:    inodeCountPerGroup,
		revisionLevel:         1,
		firstUsableInodeIndex: 11,
		inodeSize:             inodeSize,
		featuresRoCompat:      featureSparseSuper,
		featuresIncompat:      featureFiletype,
	}

	s := &Session{storage: storage, superblock: sb, log: discardLogger()}
	ranges := s.blockGroupRanges()
	if uint64(len(ranges)) != groupCount {
		panic(fmt.Sprintf("ext2: computed %d block groups but ranges gave %d", groupCount, len(ranges)))
	}

	s.bgds = make([]blockGroupDescriptor, groupCount)
	for gi, r := range ranges {
		g := uint64(gi)
		reserved := uint64(0)
		if hasSuperblockCopy(sb.featuresRoCompat, g) {
			reserved = 1 + bgdTableBlocks
		}
		blockBitmapBlock := r.start + reserved
		inodeBitmapBlock := blockBitmapBlock + 1
		inodeTableBlock := inodeBitmapBlock + 1
		s.bgds[gi] = blockGroupDescriptor{
			blockBitmapBlockIndex:     blockBitmapBlock,
			inodeBitmapBlockIndex:     inodeBitmapBlock,
			inodeTableFirstBlockIndex: inodeTableBlock,
			freeBlocksCount:           r.len() - reserved - 2 - inodeTableBlocksPerGroup,
			freeInodesCount:           uint32(inodeCountPerGroup),
		}

		zero := make([]byte, params.BlockSize)
		s.writeBlock(blockBitmapBlock, append([]byte(nil), zero...))
		s.writeBlock(inodeBitmapBlock, append([]byte(nil), zero...))
		for b := uint64(0); b < inodeTableBlocksPerGroup; b++ {
			s.writeBlock(inodeTableBlock+b, append([]byte(nil), zero...))
		}
		// Mark the group's own metadata blocks used in its block bitmap.
		bm := s.readBlockBitmap(g)
		for b := r.start; b < inodeTableBlock+inodeTableBlocksPerGroup; b++ {
			bm.set(b-r.start, true)
		}
		s.writeBlockBitmap(g, bm)
	}
	s.superblock.freeBlocksCount = 0
	for _, bgd := range s.bgds {
		s.superblock.freeBlocksCount += bgd.freeBlocksCount
	}
	s.superblock.freeInodesCount = inodeCountPerGroup * groupCount
	s.updateSuperblockAndBGDCopies()

	// Reserve inode indices 1..10 (ext2 convention: 1 is bad-blocks, 2 is
	// root, 3..10 reserved) by marking them used in group 0's inode bitmap.
	bm := s.readInodeBitmap(0)
	for i := uint64(0); i < sb.firstUsableInodeIndex-1; i++ {
		bm.set(i, true)
	}
	s.writeInodeBitmap(0, bm)
	s.superblock.freeInodesCount -= sb.firstUsableInodeIndex - 1
	s.bgds[0].freeInodesCount -= uint32(sb.firstUsableInodeIndex - 1)
	s.updateSuperblockAndBGDCopies()

	root := inode{
		mode:       fs.ModeFromFileTypeAndPermissions(0o755, fs.Dir),
		linksCount: 2,
	}
	s.writeInode(rootInodeIndex, root)
	s.WriteDir(rootInodeIndex, []fs.DirEntry{
		{InodeIndex: rootInodeIndex, FileType: fs.Dir, HasFileType: true, Name: "."},
		{InodeIndex: rootInodeIndex, FileType: fs.Dir, HasFileType: true, Name: ".."},
	})

	return s
}

func logOf(v uint64) uint32 {
	var n uint32
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}
