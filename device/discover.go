package device

import (
	"github.com/sirupsen/logrus"

	"github.com/afdw/ext2os/sectorio"
)

// PCIEnumerator lists candidate virtio-block transports found on the bus.
// A real build backs this with firmware/ACPI-driven PCI enumeration; this
// package never needs to know how that enumeration happens.
type PCIEnumerator interface {
	VirtioBlockTransports() []VirtioTransport
}

// Discover probes the four legacy PIO drive positions and every
// virtio-block transport the enumerator reports, returning one
// sectorio.Storage per device that responded. An empty PIO position is
// logged at Debug; each attached device is logged at Info. A nil logger
// discards diagnostics.
func Discover(io PortIO, pci PCIEnumerator, log *logrus.Logger) []sectorio.Storage {
	if log == nil {
		log = discardLogrus()
	}
	var storages []sectorio.Storage
	for _, position := range []PIOPosition{PrimaryMaster, PrimarySlave, SecondaryMaster, SecondarySlave} {
		disk, ok := ProbePIODisk(io, position)
		if !ok {
			log.Debugf("device: no PIO drive at position %d", position)
			continue
		}
		log.Infof("device: attached PIO drive at position %d, %d sectors", position, disk.SectorCount())
		storages = append(storages, disk)
	}
	if pci != nil {
		for _, transport := range pci.VirtioBlockTransports() {
			blk := NewVirtioBlk(transport)
			log.Infof("device: attached virtio-block device, %d sectors", blk.SectorCount())
			storages = append(storages, blk)
		}
	}
	return storages
}

func discardLogrus() *logrus.Logger {
	log := logrus.New()
	log.Out = discardWriter{}
	return log
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
