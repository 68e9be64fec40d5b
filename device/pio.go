package device

import "github.com/afdw/ext2os/sectorio"

const (
	portBaseControlPrimary   uint16 = 0x3F6
	portBaseControlSecondary uint16 = 0x376

	portBaseIOPrimary   uint16 = 0x1F0
	portBaseIOSecondary uint16 = 0x170

	portOffsetControl      uint16 = 0x0
	portOffsetData         uint16 = 0x0
	portOffsetSectorCount  uint16 = 0x2
	portOffsetSectorNumber uint16 = 0x3
	portOffsetCylinderLow  uint16 = 0x4
	portOffsetCylinderHigh uint16 = 0x5
	portOffsetDriveHead    uint16 = 0x6
	portOffsetCommand      uint16 = 0x7
	portOffsetStatus       uint16 = 0x7

	controlBitNIEN uint8 = 1 << 3

	statusBitERR uint8 = 1 << 0
	statusBitDRQ uint8 = 1 << 3
	statusBitBSY uint8 = 1 << 7

	commandReadSectorsExt  uint8 = 0x24
	commandWriteSectorsExt uint8 = 0x34
	commandFlushCache      uint8 = 0xE7
	commandIdentify        uint8 = 0xEC
)

// PIOPosition names one of the four logical IDE drives.
type PIOPosition int

const (
	PrimaryMaster PIOPosition = iota
	PrimarySlave
	SecondaryMaster
	SecondarySlave
)

func (p PIOPosition) portBaseControl() uint16 {
	if p == SecondaryMaster || p == SecondarySlave {
		return portBaseControlSecondary
	}
	return portBaseControlPrimary
}

func (p PIOPosition) portBaseIO() uint16 {
	if p == SecondaryMaster || p == SecondarySlave {
		return portBaseIOSecondary
	}
	return portBaseIOPrimary
}

func (p PIOPosition) deviceBit() uint8 {
	if p == PrimarySlave || p == SecondarySlave {
		return 1 << 4
	}
	return 0
}

// PIODisk is a sectorio.Storage backed by the legacy ATA PIO interface.
type PIODisk struct {
	io          PortIO
	position    PIOPosition
	sectorCount uint64
}

// ProbePIODisk issues IDENTIFY on position and, if a drive answers, returns
// a ready PIODisk. ok is false for a benign "no such device" — a disconnected
// bus or a non-ATA device — which is not a fatal condition at this layer.
func ProbePIODisk(io PortIO, position PIOPosition) (disk *PIODisk, ok bool) {
	sectorCount, ok := identify(io, position)
	if !ok {
		return nil, false
	}
	return &PIODisk{io: io, position: position, sectorCount: sectorCount}, true
}

func identify(io PortIO, position PIOPosition) (sectorCount uint64, ok bool) {
	status := io.InB(position.portBaseIO() + portOffsetStatus)
	if status == 0xFF {
		return 0, false
	}
	io.OutB(position.portBaseControl()+portOffsetControl, controlBitNIEN)
	io.OutB(position.portBaseIO()+portOffsetDriveHead, 0xA0|position.deviceBit())
	io.OutB(position.portBaseIO()+portOffsetSectorCount, 0)
	io.OutB(position.portBaseIO()+portOffsetSectorNumber, 0)
	io.OutB(position.portBaseIO()+portOffsetCylinderLow, 0)
	io.OutB(position.portBaseIO()+portOffsetCylinderHigh, 0)
	io.OutB(position.portBaseIO()+portOffsetCommand, commandIdentify)
	for i := 0; i < 15; i++ {
		io.InB(position.portBaseIO() + portOffsetStatus)
	}
	for {
		status := io.InB(position.portBaseIO() + portOffsetStatus)
		if status&statusBitBSY != 0 {
			continue
		}
		if status&statusBitERR != 0 || status&statusBitDRQ == 0 {
			return 0, false
		}
		break
	}
	var identifyData [sectorio.SectorSize / 2]uint16
	for i := range identifyData {
		identifyData[i] = io.InW(position.portBaseIO() + portOffsetData)
	}
	if identifyData[83]&(1<<10) == 0 {
		panic("device: drive does not support LBA48")
	}
	count := uint64(identifyData[100]) | uint64(identifyData[101])<<16 | uint64(identifyData[102])<<32 | uint64(identifyData[103])<<48
	return count, true
}

func (d *PIODisk) SectorCount() uint64 {
	return d.sectorCount
}

func (d *PIODisk) ReadSector(index uint64) sectorio.Sector {
	if index >= d.sectorCount {
		panic("device: read out of range")
	}
	lba := lbaBytes(index)
	io, p := d.io, d.position
	io.OutB(p.portBaseIO()+portOffsetDriveHead, 0x40|p.deviceBit())
	io.OutB(p.portBaseIO()+portOffsetSectorCount, 0)
	io.OutB(p.portBaseIO()+portOffsetSectorNumber, lba[3])
	io.OutB(p.portBaseIO()+portOffsetCylinderLow, lba[4])
	io.OutB(p.portBaseIO()+portOffsetCylinderHigh, lba[5])
	io.OutB(p.portBaseIO()+portOffsetSectorCount, 1)
	io.OutB(p.portBaseIO()+portOffsetSectorNumber, lba[0])
	io.OutB(p.portBaseIO()+portOffsetCylinderLow, lba[1])
	io.OutB(p.portBaseIO()+portOffsetCylinderHigh, lba[2])
	io.OutB(p.portBaseIO()+portOffsetCommand, commandReadSectorsExt)
	for i := 0; i < 15; i++ {
		io.InB(p.portBaseIO() + portOffsetStatus)
	}
	waitForDataOrFail(io, p)
	var sector sectorio.Sector
	for i := 0; i < sectorio.SectorSize/2; i++ {
		word := io.InW(p.portBaseIO() + portOffsetData)
		sector[2*i] = byte(word)
		sector[2*i+1] = byte(word >> 8)
	}
	return sector
}

func (d *PIODisk) WriteSector(index uint64, data sectorio.Sector) {
	if index >= d.sectorCount {
		panic("device: write out of range")
	}
	lba := lbaBytes(index)
	io, p := d.io, d.position
	io.OutB(p.portBaseIO()+portOffsetDriveHead, 0x40|p.deviceBit())
	io.OutB(p.portBaseIO()+portOffsetSectorCount, 0)
	io.OutB(p.portBaseIO()+portOffsetSectorNumber, lba[3])
	io.OutB(p.portBaseIO()+portOffsetCylinderLow, lba[4])
	io.OutB(p.portBaseIO()+portOffsetCylinderHigh, lba[5])
	io.OutB(p.portBaseIO()+portOffsetSectorCount, 1)
	io.OutB(p.portBaseIO()+portOffsetSectorNumber, lba[0])
	io.OutB(p.portBaseIO()+portOffsetCylinderLow, lba[1])
	io.OutB(p.portBaseIO()+portOffsetCylinderHigh, lba[2])
	io.OutB(p.portBaseIO()+portOffsetCommand, commandWriteSectorsExt)
	for i := 0; i < 15; i++ {
		io.InB(p.portBaseIO() + portOffsetStatus)
	}
	waitForDataOrFail(io, p)
	for i := 0; i < sectorio.SectorSize/2; i++ {
		word := uint16(data[2*i]) | uint16(data[2*i+1])<<8
		io.OutW(p.portBaseIO()+portOffsetData, word)
	}
	io.OutB(p.portBaseIO()+portOffsetDriveHead, p.deviceBit())
	io.OutB(p.portBaseIO()+portOffsetCommand, commandFlushCache)
	for {
		if io.InB(p.portBaseIO()+portOffsetStatus)&statusBitBSY == 0 {
			break
		}
	}
}

func waitForDataOrFail(io PortIO, p PIOPosition) {
	for {
		status := io.InB(p.portBaseIO() + portOffsetStatus)
		if status&statusBitBSY != 0 {
			continue
		}
		if status&statusBitERR != 0 || status&statusBitDRQ == 0 {
			panic("device: ATA command failed")
		}
		break
	}
}

func lbaBytes(lba uint64) [8]byte {
	if lba>>48 != 0 {
		panic("device: LBA exceeds 48 bits")
	}
	var b [8]byte
	for i := range b {
		b[i] = byte(lba >> (8 * i))
	}
	return b
}

var _ sectorio.Storage = (*PIODisk)(nil)
