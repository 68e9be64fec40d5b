package ext2

import (
	"bytes"

	"github.com/afdw/ext2os/fs"
)

func (s *Session) blockIndicesPerBlock() uint64 {
	return s.superblock.blockSize() / 4
}

func (s *Session) readBlockIndices(blockIndex uint64) []uint64 {
	blockData := s.readBlock(blockIndex)
	w := newWireReader(blockData)
	n := s.blockIndicesPerBlock()
	indices := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		indices[i] = uint64(w.u32())
	}
	return indices
}

func (s *Session) writeBlockIndices(blockIndex uint64, indices []uint64) {
	if uint64(len(indices)) != s.blockIndicesPerBlock() {
		panic("ext2: wrong indirect block index count")
	}
	w := newWireWriter(int(s.superblock.blockSize()))
	for _, idx := range indices {
		w.u32(uint32(idx))
	}
	out := make([]byte, s.superblock.blockSize())
	copy(out, w.bytes())
	s.writeBlock(blockIndex, out)
}

// inodeBlockPath returns the sequence of data_block_map / indirect-block
// slot indices to follow to reach logical inode block inodeBlockIndex:
// one element for a direct block, two for single-indirect, three for
// double-indirect, four for triple-indirect.
func (s *Session) inodeBlockPath(inodeBlockIndex uint64) []uint64 {
	n := s.blockIndicesPerBlock()
	if inodeBlockIndex < 12 {
		return []uint64{inodeBlockIndex}
	}
	inodeBlockIndex -= 12
	if inodeBlockIndex < n {
		return []uint64{12, inodeBlockIndex}
	}
	inodeBlockIndex -= n
	if inodeBlockIndex < n*n {
		return []uint64{13, inodeBlockIndex / n, inodeBlockIndex % n}
	}
	inodeBlockIndex -= n * n
	if inodeBlockIndex < n*n*n {
		return []uint64{14, inodeBlockIndex / n / n, inodeBlockIndex / n % n, inodeBlockIndex % n}
	}
	panic("ext2: inode block index too big")
}

// inodeReadDataBlock returns one logical block's worth of data, reading
// implicit zeros for any unallocated slot along the path (a sparse hole).
func (s *Session) inodeReadDataBlock(in *inode, inodeBlockIndex uint64) []byte {
	var dataBlockIndex uint64
	indices := in.dataBlockMap[:]
	for _, slot := range s.inodeBlockPath(inodeBlockIndex) {
		dataBlockIndex = indices[slot]
		if dataBlockIndex == 0 {
			return make([]byte, s.superblock.blockSize())
		}
		indices = s.readBlockIndices(dataBlockIndex)
	}
	return s.readBlock(dataBlockIndex)
}

// inodeWriteDataBlock writes one logical block, allocating any unallocated
// slot along the path, then walks the path backwards freeing any indirect
// block (or the data block itself) that is now entirely zero — this is the
// sparse-reclaim behavior that makes writing zeros to a data block collapse
// back to an implicit hole.
func (s *Session) inodeWriteDataBlock(in *inode, inodeBlockIndex uint64, data []byte) {
	path := s.inodeBlockPath(inodeBlockIndex)
	var dataBlockIndex uint64
	dataBlockIndexHistory := make([]uint64, 0, len(path))
	indicesHistory := make([][]uint64, 0, len(path))
	indices := in.dataBlockMap[:]
	for pathIndex, slot := range path {
		if indices[slot] == 0 {
			indices[slot] = s.allocateZeroedBlock()
			if pathIndex == 0 {
				copy(in.dataBlockMap[:], indices)
			} else {
				s.writeBlockIndices(dataBlockIndex, indices)
			}
		}
		dataBlockIndex = indices[slot]
		dataBlockIndexHistory = append(dataBlockIndexHistory, dataBlockIndex)
		indicesHistory = append(indicesHistory, append([]uint64(nil), indices...))
		indices = s.readBlockIndices(dataBlockIndex)
	}
	s.writeBlock(dataBlockIndex, data)

	zero := make([]byte, s.superblock.blockSize())
	for pathIndex := len(path) - 1; pathIndex >= 0; pathIndex-- {
		if !bytes.Equal(s.readBlock(dataBlockIndexHistory[pathIndex]), zero) {
			break
		}
		slot := path[pathIndex]
		group := indicesHistory[pathIndex]
		s.freeBlock(group[slot])
		group[slot] = 0
		if pathIndex == 0 {
			copy(in.dataBlockMap[:], group)
		} else {
			s.writeBlockIndices(dataBlockIndexHistory[pathIndex-1], group)
		}
	}
}

// readDataRange decomposes [r.Start, r.End) into head-partial, whole, and
// tail-partial logical blocks and assembles the result by reading each
// through inodeReadDataBlock. Rederived directly from the byte range on
// every call rather than relying on any running offset bookkeeping, so
// there is no boundary-case arithmetic to get wrong.
func (s *Session) readDataRange(in *inode, r fs.ByteRange) []byte {
	if r.End <= r.Start {
		return nil
	}
	blockSize := s.superblock.blockSize()
	out := make([]byte, 0, r.Len())
	firstBlock := r.Start / blockSize
	lastBlock := (r.End - 1) / blockSize
	for blockIndex := firstBlock; blockIndex <= lastBlock; blockIndex++ {
		blockData := s.inodeReadDataBlock(in, blockIndex)
		blockStart := blockIndex * blockSize
		from := uint64(0)
		if r.Start > blockStart {
			from = r.Start - blockStart
		}
		to := blockSize
		if r.End < blockStart+blockSize {
			to = r.End - blockStart
		}
		out = append(out, blockData[from:to]...)
	}
	return out
}

// writeDataRange is the counterpart of readDataRange: it decomposes the
// range into logical blocks and, for any block only partially covered by
// data, read-modify-writes it through inodeReadDataBlock/inodeWriteDataBlock.
func (s *Session) writeDataRange(in *inode, r fs.ByteRange, data []byte) {
	if r.Len() != uint64(len(data)) {
		panic("ext2: write range length does not match data length")
	}
	if r.End <= r.Start {
		return
	}
	blockSize := s.superblock.blockSize()
	firstBlock := r.Start / blockSize
	lastBlock := (r.End - 1) / blockSize
	consumed := uint64(0)
	for blockIndex := firstBlock; blockIndex <= lastBlock; blockIndex++ {
		blockStart := blockIndex * blockSize
		from := uint64(0)
		if r.Start > blockStart {
			from = r.Start - blockStart
		}
		to := blockSize
		if r.End < blockStart+blockSize {
			to = r.End - blockStart
		}
		if from == 0 && to == blockSize {
			s.inodeWriteDataBlock(in, blockIndex, data[consumed:consumed+blockSize])
		} else {
			blockData := s.inodeReadDataBlock(in, blockIndex)
			copy(blockData[from:to], data[consumed:consumed+(to-from)])
			s.inodeWriteDataBlock(in, blockIndex, blockData)
		}
		consumed += to - from
	}
}

func (s *Session) readData(in *inode) []byte {
	return s.readDataRange(in, fs.ByteRange{Start: 0, End: in.size})
}

func (s *Session) writeData(in *inode, data []byte) {
	s.writeDataRange(in, fs.ByteRange{Start: 0, End: in.size}, data)
}

// resize grows or shrinks in to newSize, zero-filling the newly exposed
// range on growth and zeroing (and thereby sparse-reclaiming) the
// discarded range on shrink. At most one of the two ranges below is
// non-empty for a given call (neither, when the size is unchanged), and
// each write sits behind its own size comparison.
func (s *Session) resize(in *inode, newSize uint64) {
	if newSize > in.size {
		s.writeDataRange(in, fs.ByteRange{Start: in.size, End: newSize}, make([]byte, newSize-in.size))
	}
	if in.size > newSize {
		s.writeDataRange(in, fs.ByteRange{Start: newSize, End: in.size}, make([]byte, in.size-newSize))
	}
	in.size = newSize
	in.sectorCount = newSize * s.superblock.blockSize() / 512
}
