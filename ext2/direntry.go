package ext2

import "github.com/afdw/ext2os/fs"

const dirEntryPreferredSize = 512

// dirEntry is one parsed directory record. record_length is not retained:
// on write, every entry is re-emitted at dirEntryPreferredSize.
type dirEntry struct {
	inodeIndex  uint64
	fileType    fs.FileType
	hasFileType bool
	name        string
}

// dirEntryFromBytes decodes one record from the front of data and returns
// the remainder, honoring the record's own record_length rather than
// assuming dirEntryPreferredSize (a reader must accept any conforming
// record length, even though this package only ever emits the preferred
// one).
func dirEntryFromBytes(data []byte) (dirEntry, []byte) {
	w := newWireReader(data)
	inodeIndex := uint64(w.u32())
	recordLength := uint64(w.u16())
	nameLength := w.u8()
	fileTypeCode := w.u8()
	name := string(w.bytes(int(nameLength)))
	fileType, hasFileType := fs.FileTypeFromInode(fileTypeCode)
	return dirEntry{
		inodeIndex:  inodeIndex,
		fileType:    fileType,
		hasFileType: hasFileType,
		name:        name,
	}, data[recordLength:]
}

func (e dirEntry) toBytes() []byte {
	w := newWireWriter(dirEntryPreferredSize)
	w.u32(uint32(e.inodeIndex))
	w.u16(dirEntryPreferredSize)
	w.u8(uint8(len(e.name)))
	if e.hasFileType {
		w.u8(e.fileType.InodeFileType())
	} else {
		w.u8(0)
	}
	w.write([]byte(e.name))
	out := make([]byte, dirEntryPreferredSize)
	copy(out, w.bytes())
	return out
}

func manyDirEntriesFromBytes(data []byte) []dirEntry {
	var entries []dirEntry
	for len(data) > 0 {
		var e dirEntry
		e, data = dirEntryFromBytes(data)
		entries = append(entries, e)
	}
	return entries
}

func manyDirEntriesToBytes(entries []dirEntry) []byte {
	out := make([]byte, 0, len(entries)*dirEntryPreferredSize)
	for _, e := range entries {
		out = append(out, e.toBytes()...)
	}
	return out
}

func dirEntryToFS(e dirEntry) fs.DirEntry {
	return fs.DirEntry{InodeIndex: e.inodeIndex, FileType: e.fileType, HasFileType: e.hasFileType, Name: e.name}
}

func dirEntryFromFS(e fs.DirEntry) dirEntry {
	return dirEntry{inodeIndex: e.InodeIndex, fileType: e.FileType, hasFileType: e.HasFileType, name: e.Name}
}
