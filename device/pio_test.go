package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afdw/ext2os/sectorio"
)

// fakePortIO models exactly one ATA drive at PrimaryMaster, enough register
// state to satisfy identify/read_sector/write_sector: it tracks the LBA
// low-order register writes the same sequencing pio.go issues and resolves
// the selected sector when a command is written.
type fakePortIO struct {
	sectors                          [][sectorio.SectorSize]byte
	regSectorNumber, regCylLo, regHi uint8
	lba                              uint64
	dataIndex                        int
	wordBuf                          [256]uint16
}

func newFakePortIO(sectorCount int) *fakePortIO {
	return &fakePortIO{sectors: make([][sectorio.SectorSize]byte, sectorCount)}
}

func (f *fakePortIO) InB(port uint16) uint8 {
	if port == portBaseIOPrimary+portOffsetStatus {
		return statusBitDRQ
	}
	return 0
}

func (f *fakePortIO) OutB(port uint16, value uint8) {
	switch port {
	case portBaseIOPrimary + portOffsetSectorNumber:
		f.regSectorNumber = value
	case portBaseIOPrimary + portOffsetCylinderLow:
		f.regCylLo = value
	case portBaseIOPrimary + portOffsetCylinderHigh:
		f.regHi = value
	case portBaseIOPrimary + portOffsetCommand:
		f.lba = uint64(f.regSectorNumber) | uint64(f.regCylLo)<<8 | uint64(f.regHi)<<16
		switch value {
		case commandIdentify:
			for i := range f.wordBuf {
				f.wordBuf[i] = 0
			}
			f.wordBuf[83] = 1 << 10
			count := uint64(len(f.sectors))
			f.wordBuf[100] = uint16(count)
			f.wordBuf[101] = uint16(count >> 16)
			f.wordBuf[102] = uint16(count >> 32)
			f.wordBuf[103] = uint16(count >> 48)
			f.dataIndex = 0
		case commandReadSectorsExt:
			sector := f.sectors[f.lba]
			for i := 0; i < 256; i++ {
				f.wordBuf[i] = uint16(sector[2*i]) | uint16(sector[2*i+1])<<8
			}
			f.dataIndex = 0
		case commandWriteSectorsExt, commandFlushCache:
			f.dataIndex = 0
		}
	}
}

func (f *fakePortIO) InW(port uint16) uint16 {
	v := f.wordBuf[f.dataIndex]
	f.dataIndex++
	return v
}

func (f *fakePortIO) OutW(port uint16, value uint16) {
	f.wordBuf[f.dataIndex] = value
	f.dataIndex++
	if f.dataIndex == 256 {
		var sector [sectorio.SectorSize]byte
		for i := 0; i < 256; i++ {
			sector[2*i] = byte(f.wordBuf[i])
			sector[2*i+1] = byte(f.wordBuf[i] >> 8)
		}
		f.sectors[f.lba] = sector
	}
}

func TestPIODiskIdentifyAndReadWrite(t *testing.T) {
	io := newFakePortIO(4)
	disk, ok := ProbePIODisk(io, PrimaryMaster)
	require.True(t, ok)
	require.Equal(t, uint64(4), disk.SectorCount())

	var data sectorio.Sector
	data[0] = 0x42
	disk.WriteSector(2, data)
	require.Equal(t, data, disk.ReadSector(2))
}

func TestPIODiskAbsent(t *testing.T) {
	io := &absentPortIO{}
	_, ok := ProbePIODisk(io, PrimaryMaster)
	require.False(t, ok)
}

type absentPortIO struct{}

func (*absentPortIO) InB(port uint16) uint8     { return 0xFF }
func (*absentPortIO) OutB(port uint16, v uint8)  {}
func (*absentPortIO) InW(port uint16) uint16     { return 0 }
func (*absentPortIO) OutW(port uint16, v uint16) {}
