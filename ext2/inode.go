package ext2

import "github.com/afdw/ext2os/fs"

const inodePracticalSize = 128

// inode mirrors the 128-byte on-disk inode record.
type inode struct {
	mode             fs.Mode
	uid              uint16
	size             uint64
	accessTime       uint64
	creationTime     uint64
	modificationTime uint64
	deletionTime     uint64
	gid              uint16
	linksCount       uint16
	sectorCount      uint64
	flags            uint32
	osDependent1     [4]byte
	dataBlockMap     [15]uint64
	generation       uint32
	fileACL          uint32
	dirACL           uint32
	faddr            uint32
	osDependent2     [12]byte
}

func inodeFromBytes(data []byte) inode {
	w := newWireReader(data)
	var in inode
	in.mode = fs.Mode(w.u16())
	in.uid = w.u16()
	in.size = uint64(w.u32())
	in.accessTime = uint64(w.u32())
	in.creationTime = uint64(w.u32())
	in.modificationTime = uint64(w.u32())
	in.deletionTime = uint64(w.u32())
	in.gid = w.u16()
	in.linksCount = w.u16()
	in.sectorCount = uint64(w.u32())
	in.flags = w.u32()
	copy(in.osDependent1[:], w.bytes(4))
	for i := range in.dataBlockMap {
		in.dataBlockMap[i] = uint64(w.u32())
	}
	in.generation = w.u32()
	in.fileACL = w.u32()
	in.dirACL = w.u32()
	in.faddr = w.u32()
	copy(in.osDependent2[:], w.bytes(12))
	if w.position() != inodePracticalSize {
		panic("ext2: inode record size mismatch")
	}
	return in
}

func (in inode) toBytes() []byte {
	w := newWireWriter(inodePracticalSize)
	w.u16(uint16(in.mode))
	w.u16(in.uid)
	w.u32(uint32(in.size))
	w.u32(uint32(in.accessTime))
	w.u32(uint32(in.creationTime))
	w.u32(uint32(in.modificationTime))
	w.u32(uint32(in.deletionTime))
	w.u16(in.gid)
	w.u16(in.linksCount)
	w.u32(uint32(in.sectorCount))
	w.u32(in.flags)
	w.write(in.osDependent1[:])
	for _, idx := range in.dataBlockMap {
		w.u32(uint32(idx))
	}
	w.u32(in.generation)
	w.u32(in.fileACL)
	w.u32(in.dirACL)
	w.u32(in.faddr)
	w.write(in.osDependent2[:])
	out := w.bytes()
	if int64(len(out)) != inodePracticalSize {
		panic("ext2: inode record size mismatch")
	}
	return out
}
