package gpt2

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/afdw/ext2os/sectorio"
)

func encodeMixedEndianGUID(u uuid.UUID) [16]byte {
	var out [16]byte
	out[0], out[1], out[2], out[3] = u[3], u[2], u[1], u[0]
	out[4], out[5] = u[5], u[4]
	out[6], out[7] = u[7], u[6]
	copy(out[8:], u[8:16])
	return out
}

func buildSyntheticGPT(t *testing.T) (*sectorio.MemStorage, uuid.UUID, uuid.UUID) {
	t.Helper()
	storage := sectorio.NewMemStorage(10)

	tableID := uuid.New()
	partitionID := uuid.New()

	var header sectorio.Sector
	copy(header[0:8], "EFI PART")
	binary.LittleEndian.PutUint64(header[72:80], 3) // entries start at sector 3
	binary.LittleEndian.PutUint32(header[80:84], 1) // 1 entry
	binary.LittleEndian.PutUint32(header[84:88], 128)
	tableGUID := encodeMixedEndianGUID(tableID)
	copy(header[56:72], tableGUID[:])
	storage.WriteSector(1, header)

	var entrySector sectorio.Sector
	typeGUID := encodeMixedEndianGUID(uuid.Nil)
	copy(entrySector[0:16], typeGUID[:])
	idGUID := encodeMixedEndianGUID(partitionID)
	copy(entrySector[16:32], idGUID[:])
	binary.LittleEndian.PutUint64(entrySector[32:40], 5)
	binary.LittleEndian.PutUint64(entrySector[40:48], 8)
	name := utf16.Encode([]rune("data"))
	for i, u := range name {
		binary.LittleEndian.PutUint16(entrySector[56+2*i:], u)
	}
	storage.WriteSector(3, entrySector)

	return storage, tableID, partitionID
}

func TestReadGPT(t *testing.T) {
	storage, tableID, partitionID := buildSyntheticGPT(t)
	table, err := Read(storage)
	require.NoError(t, err)
	require.Equal(t, tableID, table.ID)
	require.Len(t, table.Partitions, 1)
	p := table.Partitions[0]
	require.Equal(t, partitionID, p.ID)
	require.Equal(t, uint64(5), p.StartingSector)
	require.Equal(t, uint64(8), p.EndingSector)
	require.Equal(t, "data", p.Name)
}

func TestReadGPTMissing(t *testing.T) {
	storage := sectorio.NewMemStorage(4)
	_, err := Read(storage)
	require.ErrorIs(t, err, ErrNoPartitionTable)
}

func TestSubStorageWindow(t *testing.T) {
	storage, _, _ := buildSyntheticGPT(t)
	table, err := Read(storage)
	require.NoError(t, err)
	sub := SubStorage(storage, table.Partitions[0])
	require.Equal(t, uint64(4), sub.SectorCount())
}
