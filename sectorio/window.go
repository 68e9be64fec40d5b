package sectorio

// Window is a Storage that re-exposes a contiguous sector range of an
// underlying Storage as a storage of its own, the way a GPT partition is
// re-exposed as an independently addressable device.
type Window struct {
	underlying  Storage
	startSector uint64
	sectorCount uint64
}

// Sub windows underlying to [startSector, startSector+sectorCount).
func Sub(underlying Storage, startSector, sectorCount uint64) *Window {
	if startSector+sectorCount > underlying.SectorCount() {
		panic("sectorio: window out of range")
	}
	return &Window{underlying: underlying, startSector: startSector, sectorCount: sectorCount}
}

func (w *Window) SectorCount() uint64 {
	return w.sectorCount
}

func (w *Window) ReadSector(index uint64) Sector {
	if index >= w.sectorCount {
		panic("sectorio: window read out of range")
	}
	return w.underlying.ReadSector(w.startSector + index)
}

func (w *Window) WriteSector(index uint64, data Sector) {
	if index >= w.sectorCount {
		panic("sectorio: window write out of range")
	}
	w.underlying.WriteSector(w.startSector+index, data)
}
