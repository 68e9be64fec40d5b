package sectorio

// MemStorage is an in-memory Storage; the tests use it in place of a real
// device.
type MemStorage struct {
	sectors [][SectorSize]byte
}

// NewMemStorage allocates a zeroed MemStorage of the given sector count.
func NewMemStorage(sectorCount uint64) *MemStorage {
	return &MemStorage{sectors: make([][SectorSize]byte, sectorCount)}
}

func (m *MemStorage) SectorCount() uint64 {
	return uint64(len(m.sectors))
}

func (m *MemStorage) ReadSector(index uint64) Sector {
	if index >= uint64(len(m.sectors)) {
		panic("sectorio: read out of range")
	}
	return m.sectors[index]
}

func (m *MemStorage) WriteSector(index uint64, data Sector) {
	if index >= uint64(len(m.sectors)) {
		panic("sectorio: write out of range")
	}
	m.sectors[index] = data
}
