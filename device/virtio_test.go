package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afdw/ext2os/sectorio"
)

type fakeVirtioTransport struct {
	status  uint8
	sectors [][sectorio.SectorSize]byte
	resets  int
}

func (f *fakeVirtioTransport) Reset()                 { f.resets++; f.status = 0 }
func (f *fakeVirtioTransport) SetStatus(status uint8)  { f.status = status }
func (f *fakeVirtioTransport) Status() uint8           { return f.status }
func (f *fakeVirtioTransport) Capacity() uint64        { return uint64(len(f.sectors)) }
func (f *fakeVirtioTransport) ReadBlock(i uint64) sectorio.Sector {
	return f.sectors[i]
}
func (f *fakeVirtioTransport) WriteBlock(i uint64, data sectorio.Sector) {
	f.sectors[i] = data
}

func TestVirtioBlkNegotiateAndReadWrite(t *testing.T) {
	transport := &fakeVirtioTransport{sectors: make([][sectorio.SectorSize]byte, 3)}
	blk := NewVirtioBlk(transport)
	require.Equal(t, 1, transport.resets)
	require.Equal(t, virtioStatusAcknowledge|virtioStatusDriver|virtioStatusDriverOK, transport.status)
	require.Equal(t, uint64(3), blk.SectorCount())

	var data sectorio.Sector
	data[10] = 0x7
	blk.WriteSector(1, data)
	require.Equal(t, data, blk.ReadSector(1))
}
