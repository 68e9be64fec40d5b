// Package gpt2 parses a GUID Partition Table directly off a
// sectorio.Storage and re-exposes each partition as a windowed storage of
// its own.
package gpt2

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"

	"github.com/google/uuid"

	"github.com/afdw/ext2os/sectorio"
)

// ErrNoPartitionTable is returned by Read when the device's second sector
// does not carry the "EFI PART" magic. This is a hint, not a failure: the
// device may simply be unpartitioned or use a different scheme.
var ErrNoPartitionTable = errors.New("gpt2: no GPT partition table")

// Partition is one decoded partition entry.
type Partition struct {
	TypeID         uuid.UUID
	ID             uuid.UUID
	StartingSector uint64
	EndingSector   uint64 // inclusive
	Flags          uint64
	Name           string
}

// Table is the decoded header + partition array.
type Table struct {
	ID         uuid.UUID
	Partitions []Partition
}

// Read parses the GPT header and partition array off storage. It returns
// ErrNoPartitionTable (with a nil Table) if the magic is absent.
func Read(storage sectorio.Storage) (*Table, error) {
	if storage.SectorCount() < 2 {
		return nil, ErrNoPartitionTable
	}
	header := storage.ReadSector(1)
	if string(header[0:8]) != "EFI PART" {
		return nil, ErrNoPartitionTable
	}

	entriesStartSector := binary.LittleEndian.Uint64(header[72:80])
	partitionCount := binary.LittleEndian.Uint32(header[80:84])
	entrySize := uint64(binary.LittleEndian.Uint32(header[84:88]))
	if entrySize == 0 || sectorio.SectorSize%entrySize != 0 {
		panic("gpt2: partition entry size does not divide the sector size")
	}

	table := &Table{ID: decodeMixedEndianGUID(header[56:72])}
	for i := uint32(0); i < partitionCount; i++ {
		entryOffset := uint64(i) * entrySize
		sectorIndex := entriesStartSector + entryOffset/sectorio.SectorSize
		sectorOffset := entryOffset % sectorio.SectorSize
		if sectorIndex >= storage.SectorCount() {
			panic("gpt2: partition entry sector out of range")
		}
		sector := storage.ReadSector(sectorIndex)
		entry := sector[sectorOffset : sectorOffset+entrySize]

		id := decodeMixedEndianGUID(entry[16:32])
		if id == (uuid.UUID{}) {
			continue
		}
		partition := Partition{
			TypeID:         decodeMixedEndianGUID(entry[0:16]),
			ID:             id,
			StartingSector: binary.LittleEndian.Uint64(entry[32:40]),
			EndingSector:   binary.LittleEndian.Uint64(entry[40:48]),
			Flags:          binary.LittleEndian.Uint64(entry[48:56]),
			Name:           decodeName(entry[56:]),
		}
		if partition.StartingSector > partition.EndingSector || partition.EndingSector >= storage.SectorCount() {
			panic("gpt2: partition sector range out of bounds")
		}
		table.Partitions = append(table.Partitions, partition)
	}
	return table, nil
}

// decodeName decodes the UTF-16LE partition name after dropping trailing
// NUL code units.
func decodeName(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(data[i:]))
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}

// decodeMixedEndianGUID decodes a 16-byte GPT/Microsoft-format GUID: the
// first three fields are little-endian, the last two (clock sequence and
// node) are big-endian, as opposed to google/uuid's own all-big-endian
// wire format.
func decodeMixedEndianGUID(data []byte) uuid.UUID {
	var out uuid.UUID
	out[0], out[1], out[2], out[3] = data[3], data[2], data[1], data[0]
	out[4], out[5] = data[5], data[4]
	out[6], out[7] = data[7], data[6]
	copy(out[8:], data[8:16])
	return out
}

// SubStorage windows storage onto one partition, the way the filesystem
// layer expects to open an independent sectorio.Storage per partition.
func SubStorage(storage sectorio.Storage, p Partition) *sectorio.Window {
	return sectorio.Sub(storage, p.StartingSector, p.EndingSector-p.StartingSector+1)
}
