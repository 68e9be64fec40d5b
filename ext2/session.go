// Package ext2 implements a read/write ext2 filesystem session over a
// sectorio.Storage: superblock and block-group-descriptor parsing and
// replication, block/inode bitmap allocation, inode I/O through the
// indirect-block tree, directory encoding, and resize.
package ext2

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/afdw/ext2os/fs"
	"github.com/afdw/ext2os/sectorio"
)

// Session mounts a sectorio.Storage holding an ext2 image and exposes the
// fs.Session capability over it. A Session is not safe for concurrent use:
// every operation assumes exclusive, single-threaded possession of the
// underlying storage.
type Session struct {
	storage    sectorio.Storage
	superblock superblock
	bgds       []blockGroupDescriptor
	log        *logrus.Logger
}

// Open mounts storage as an ext2 image.
func Open(storage sectorio.Storage) *Session {
	sb := superblockFromBytes(sectorio.ReadAligned(storage, superblockStart, superblockSize))
	s := &Session{storage: storage, superblock: sb, log: logrus.StandardLogger()}
	s.readBlockGroupDescriptors()
	return s
}

// SetLogger overrides the diagnostic sink. A nil logger is replaced with a
// logger that discards everything.
func (s *Session) SetLogger(log *logrus.Logger) {
	if log == nil {
		log = logrus.New()
		log.SetOutput(discardWriter{})
	}
	s.log = log
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(discardWriter{})
	return log
}

func (s *Session) readBlock(blockIndex uint64) []byte {
	return sectorio.ReadAligned(s.storage, blockIndex*s.superblock.blockSize(), s.superblock.blockSize())
}

func (s *Session) writeBlock(blockIndex uint64, data []byte) {
	sectorio.WriteAligned(s.storage, blockIndex*s.superblock.blockSize(), data)
}

// blockGroupRange is the [start, end) block range belonging to one group.
type blockGroupRange struct {
	start, end uint64
}

func (r blockGroupRange) contains(block uint64) bool {
	return block >= r.start && block < r.end
}

func (r blockGroupRange) len() uint64 {
	return r.end - r.start
}

func (s *Session) blockGroupRanges() []blockGroupRange {
	var ranges []blockGroupRange
	totalBlocks := sectorio.Len(s.storage) / s.superblock.blockSize()
	for i := uint64(0); ; i++ {
		start := s.superblock.firstDataBlock + i*s.superblock.blockCountPerGroup
		if start >= totalBlocks {
			break
		}
		end := start + s.superblock.blockCountPerGroup
		if end > totalBlocks {
			end = totalBlocks
		}
		if end <= start {
			break
		}
		ranges = append(ranges, blockGroupRange{start: start, end: end})
	}
	return ranges
}

func (s *Session) readBlockGroupDescriptors() {
	if s.superblock.blockSize()%bgdSize != 0 {
		panic("ext2: block size is not a multiple of the descriptor size")
	}
	ranges := s.blockGroupRanges()
	firstGroup := ranges[0]
	s.bgds = nil
	for groupIndex := range ranges {
		offset := uint64(groupIndex) * bgdSize
		blockWithinFirstGroup := 1 + offset/s.superblock.blockSize()
		blockIndex := firstGroup.start + blockWithinFirstGroup
		blockOffset := offset % s.superblock.blockSize()
		blockData := s.readBlock(blockIndex)
		s.bgds = append(s.bgds, bgdFromBytes(blockData[blockOffset:blockOffset+bgdSize]))
	}
}

// hasSuperblockCopy reports whether block group groupIndex carries a
// superblock + BGD table replica.
func hasSuperblockCopy(ro featuresRoCompat, groupIndex uint64) bool {
	if !ro.has(featureSparseSuper) {
		return true
	}
	if groupIndex == 0 {
		return true
	}
	for _, base := range []uint64{3, 5, 7} {
		n := groupIndex
		for n%base == 0 {
			n /= base
		}
		if n == 1 {
			return true
		}
	}
	return false
}

func (s *Session) updateSuperblockAndBGDCopies() {
	ranges := s.blockGroupRanges()
	for groupIndex, r := range ranges {
		gi := uint64(groupIndex)
		if !hasSuperblockCopy(s.superblock.featuresRoCompat, gi) {
			continue
		}
		superblockOffset := r.start * s.superblock.blockSize()
		if superblockOffset < superblockStart {
			// The primary superblock sits at byte 1024 even when that is
			// inside block 0 (block sizes above 1024).
			superblockOffset = superblockStart
		}
		sectorio.WriteAligned(s.storage, superblockOffset, s.superblock.toBytes(gi))

		for bgdIndex, bgd := range s.bgds {
			offset := uint64(bgdIndex) * bgdSize
			blockWithinGroup := 1 + offset/s.superblock.blockSize()
			blockIndex := r.start + blockWithinGroup
			blockOffset := offset % s.superblock.blockSize()
			blockData := s.readBlock(blockIndex)
			copy(blockData[blockOffset:blockOffset+bgdSize], bgd.toBytes())
			s.writeBlock(blockIndex, blockData)
		}
	}
}

func (s *Session) readBlockBitmap(groupIndex uint64) bitmap {
	return bitmap{data: s.readBlock(s.bgds[groupIndex].blockBitmapBlockIndex)}
}

func (s *Session) writeBlockBitmap(groupIndex uint64, bm bitmap) {
	s.writeBlock(s.bgds[groupIndex].blockBitmapBlockIndex, bm.data)
}

func (s *Session) readInodeBitmap(groupIndex uint64) bitmap {
	return bitmap{data: s.readBlock(s.bgds[groupIndex].inodeBitmapBlockIndex)}
}

func (s *Session) writeInodeBitmap(groupIndex uint64, bm bitmap) {
	s.writeBlock(s.bgds[groupIndex].inodeBitmapBlockIndex, bm.data)
}

func (s *Session) allocateBlock() uint64 {
	ranges := s.blockGroupRanges()
	for groupIndex, r := range ranges {
		gi := uint64(groupIndex)
		if s.bgds[gi].freeBlocksCount == 0 {
			continue
		}
		bm := s.readBlockBitmap(gi)
		for block := r.start; block < r.end; block++ {
			if bm.get(block - r.start) {
				continue
			}
			s.superblock.freeBlocksCount--
			s.bgds[gi].freeBlocksCount--
			s.updateSuperblockAndBGDCopies()
			bm.set(block-r.start, true)
			s.writeBlockBitmap(gi, bm)
			s.log.Debugf("ext2: allocated block %d in group %d", block, gi)
			return block
		}
		panic("ext2: no free blocks inside block group")
	}
	panic(errNoFreeBlocks)
}

func (s *Session) allocateZeroedBlock() uint64 {
	block := s.allocateBlock()
	s.writeBlock(block, make([]byte, s.superblock.blockSize()))
	return block
}

func (s *Session) freeBlock(blockIndex uint64) {
	ranges := s.blockGroupRanges()
	for groupIndex, r := range ranges {
		if !r.contains(blockIndex) {
			continue
		}
		gi := uint64(groupIndex)
		bm := s.readBlockBitmap(gi)
		if !bm.get(blockIndex - r.start) {
			panic("ext2: freeing an already-free block")
		}
		s.superblock.freeBlocksCount++
		s.bgds[gi].freeBlocksCount++
		s.updateSuperblockAndBGDCopies()
		bm.set(blockIndex-r.start, false)
		s.writeBlockBitmap(gi, bm)
		s.log.Debugf("ext2: freed block %d in group %d", blockIndex, gi)
		return
	}
	panic("ext2: block group not found")
}

func (s *Session) allocateInode() uint64 {
	for groupIndex, bgd := range s.bgds {
		if bgd.freeInodesCount == 0 {
			continue
		}
		gi := uint64(groupIndex)
		bm := s.readInodeBitmap(gi)
		rangeStart := 1 + gi*s.superblock.inodeCountPerGroup
		for inodeIndex := rangeStart; inodeIndex < rangeStart+s.superblock.inodeCountPerGroup; inodeIndex++ {
			if bm.get(inodeIndex - rangeStart) {
				continue
			}
			if inodeIndex < s.superblock.firstUsableInodeIndex {
				panic("ext2: allocated a reserved inode index")
			}
			s.superblock.freeInodesCount--
			s.bgds[gi].freeInodesCount--
			s.updateSuperblockAndBGDCopies()
			bm.set(inodeIndex-rangeStart, true)
			s.writeInodeBitmap(gi, bm)
			return inodeIndex
		}
		panic("ext2: no free inodes inside block group")
	}
	panic(errNoFreeInodes)
}

func (s *Session) freeInode(inodeIndex uint64) {
	if inodeIndex == 0 {
		panic("ext2: inode index 0 is invalid")
	}
	groupIndex := (inodeIndex - 1) / s.superblock.inodeCountPerGroup
	bm := s.readInodeBitmap(groupIndex)
	offset := (inodeIndex - 1) % s.superblock.inodeCountPerGroup
	if !bm.get(offset) {
		panic("ext2: freeing an already-free inode")
	}
	s.superblock.freeInodesCount++
	s.bgds[groupIndex].freeInodesCount++
	s.updateSuperblockAndBGDCopies()
	bm.set(offset, false)
	s.writeInodeBitmap(groupIndex, bm)
}

func (s *Session) readInode(inodeIndex uint64) inode {
	if s.superblock.blockSize()%s.superblock.inodeSize != 0 {
		panic("ext2: block size is not a multiple of the inode size")
	}
	if inodeIndex == 0 {
		panic("ext2: inode index 0 is invalid")
	}
	groupIndex := (inodeIndex - 1) / s.superblock.inodeCountPerGroup
	inGroupIndex := (inodeIndex - 1) % s.superblock.inodeCountPerGroup
	offset := inGroupIndex * s.superblock.inodeSize
	blockIndex := s.bgds[groupIndex].inodeTableFirstBlockIndex + offset/s.superblock.blockSize()
	blockOffset := offset % s.superblock.blockSize()
	blockData := s.readBlock(blockIndex)
	return inodeFromBytes(blockData[blockOffset : blockOffset+s.superblock.inodeSize])
}

func (s *Session) writeInode(inodeIndex uint64, in inode) {
	if inodeIndex == 0 {
		panic("ext2: inode index 0 is invalid")
	}
	groupIndex := (inodeIndex - 1) / s.superblock.inodeCountPerGroup
	inGroupIndex := (inodeIndex - 1) % s.superblock.inodeCountPerGroup
	offset := inGroupIndex * s.superblock.inodeSize
	blockIndex := s.bgds[groupIndex].inodeTableFirstBlockIndex + offset/s.superblock.blockSize()
	blockOffset := offset % s.superblock.blockSize()
	blockData := s.readBlock(blockIndex)
	copy(blockData[blockOffset:blockOffset+s.superblock.inodeSize], in.toBytes())
	s.writeBlock(blockIndex, blockData)
}

var (
	errNoFreeBlocks = fmt.Errorf("ext2: no free blocks")
	errNoFreeInodes = fmt.Errorf("ext2: no free inodes")
)

var _ fs.Session = (*Session)(nil)
