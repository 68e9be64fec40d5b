package ext2

const bgdSize = 32

// blockGroupDescriptor is one 32-byte entry of the block-group-descriptor
// table.
type blockGroupDescriptor struct {
	blockBitmapBlockIndex     uint64
	inodeBitmapBlockIndex     uint64
	inodeTableFirstBlockIndex uint64
	freeBlocksCount           uint64
	freeInodesCount           uint32
	usedDirsCount             uint32
}

func bgdFromBytes(data []byte) blockGroupDescriptor {
	w := newWireReader(data)
	var bgd blockGroupDescriptor
	bgd.blockBitmapBlockIndex = uint64(w.u32())
	bgd.inodeBitmapBlockIndex = uint64(w.u32())
	bgd.inodeTableFirstBlockIndex = uint64(w.u32())
	bgd.freeBlocksCount = uint64(w.u16())
	bgd.freeInodesCount = uint32(w.u16())
	bgd.usedDirsCount = uint32(w.u16())
	return bgd
}

func (bgd blockGroupDescriptor) toBytes() []byte {
	w := newWireWriter(bgdSize)
	w.u32(uint32(bgd.blockBitmapBlockIndex))
	w.u32(uint32(bgd.inodeBitmapBlockIndex))
	w.u32(uint32(bgd.inodeTableFirstBlockIndex))
	w.u16(uint16(bgd.freeBlocksCount))
	w.u16(uint16(bgd.freeInodesCount))
	w.u16(uint16(bgd.usedDirsCount))
	out := make([]byte, bgdSize)
	copy(out, w.bytes())
	return out
}
