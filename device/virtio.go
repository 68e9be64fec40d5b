package device

import "github.com/afdw/ext2os/sectorio"

// VirtioTransport is the capability a virtio-block device needs from its
// PCI transport: config-space access, reset/status negotiation, and a
// single-request read/write primitive. Production code backs this with the
// platform's PCI enumeration and virtqueue mechanics; tests back it with an
// in-memory fake.
type VirtioTransport interface {
	Reset()
	SetStatus(status uint8)
	Status() uint8
	Capacity() uint64
	ReadBlock(index uint64) sectorio.Sector
	WriteBlock(index uint64, data sectorio.Sector)
}

const (
	virtioStatusAcknowledge uint8 = 1
	virtioStatusDriver      uint8 = 2
	virtioStatusDriverOK    uint8 = 4
)

// VirtioBlk is a sectorio.Storage backed by a virtio-block device.
type VirtioBlk struct {
	transport VirtioTransport
}

// NewVirtioBlk negotiates the transport (reset, acknowledge, driver,
// driver-ok) and returns a ready VirtioBlk. Probe failure (no device
// present at this transport) is the caller's responsibility to detect
// before calling this — unlike the PIO driver, PCI enumeration itself is
// what determines device presence here.
func NewVirtioBlk(transport VirtioTransport) *VirtioBlk {
	transport.Reset()
	transport.SetStatus(virtioStatusAcknowledge)
	transport.SetStatus(transport.Status() | virtioStatusDriver)
	transport.SetStatus(transport.Status() | virtioStatusDriverOK)
	return &VirtioBlk{transport: transport}
}

func (v *VirtioBlk) SectorCount() uint64 {
	return v.transport.Capacity()
}

func (v *VirtioBlk) ReadSector(index uint64) sectorio.Sector {
	if index >= v.SectorCount() {
		panic("device: read out of range")
	}
	return v.transport.ReadBlock(index)
}

func (v *VirtioBlk) WriteSector(index uint64, data sectorio.Sector) {
	if index >= v.SectorCount() {
		panic("device: write out of range")
	}
	v.transport.WriteBlock(index, data)
}

var _ sectorio.Storage = (*VirtioBlk)(nil)
