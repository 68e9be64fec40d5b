package sectorio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignedRoundTrip(t *testing.T) {
	s := NewMemStorage(4)
	data := make([]byte, 3*SectorSize)
	for i := range data {
		data[i] = byte(i)
	}
	WriteAligned(s, SectorSize, data)
	require.Equal(t, data, ReadAligned(s, SectorSize, uint64(len(data))))
}

func TestUnalignedPanics(t *testing.T) {
	s := NewMemStorage(1)
	require.Panics(t, func() { ReadAligned(s, 1, SectorSize) })
	require.Panics(t, func() { WriteAligned(s, 0, make([]byte, 1)) })
}

func TestWindow(t *testing.T) {
	s := NewMemStorage(10)
	var sector Sector
	sector[0] = 0xAB
	s.WriteSector(3, sector)

	w := Sub(s, 2, 4)
	require.Equal(t, uint64(4), w.SectorCount())
	require.Equal(t, byte(0xAB), w.ReadSector(1)[0])

	var other Sector
	other[0] = 0xCD
	w.WriteSector(0, other)
	require.Equal(t, byte(0xCD), s.ReadSector(2)[0])
}
