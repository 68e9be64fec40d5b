package ext2

// featuresCompat is the compat feature bitset. Only informational here: the
// session round-trips it through every update without acting on any bit.
type featuresCompat uint32

const (
	featureDirPrealloc  featuresCompat = 0x0001
	featureImagicInodes featuresCompat = 0x0002
	featureHasJournal   featuresCompat = 0x0004
	featureExtAttr      featuresCompat = 0x0008
	featureResizeIno    featuresCompat = 0x0010
	featureDirIndex     featuresCompat = 0x0020
)

// featuresIncompat is the incompat feature bitset, round-tripped only.
type featuresIncompat uint32

const (
	featureCompression featuresIncompat = 0x0001
	featureFiletype     featuresIncompat = 0x0002
	featureRecover      featuresIncompat = 0x0004
	featureJournalDev   featuresIncompat = 0x0008
	featureMetaBG       featuresIncompat = 0x0010
)

// featuresRoCompat is the read-only-compat feature bitset. SparseSuper is the
// only bit the session consults for control flow.
type featuresRoCompat uint32

const (
	featureSparseSuper featuresRoCompat = 0x0001
	featureLargeFile   featuresRoCompat = 0x0002
	featureBtreeDir    featuresRoCompat = 0x0004
)

func (f featuresRoCompat) has(bit featuresRoCompat) bool {
	return f&bit != 0
}
