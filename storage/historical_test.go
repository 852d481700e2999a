package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
)

func TestHistoricalStoreVersionedReads(t *testing.T) {
	store := NewMemoryHistoricalStore()
	defer store.Close()

	owner := common.HexToAddress("0x0a")
	slot := common.Blake2Hash([]byte("slot"))

	store.Put(owner, slot, []byte("v1"))
	h10, err := store.CommitBlock(10, 1000)
	require.NoError(t, err)

	store.Put(owner, slot, []byte("v2"))
	h20, err := store.CommitBlock(20, 2000)
	require.NoError(t, err)

	v, err := store.ReadAt(h10, owner, slot)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = store.ReadAt(h20, owner, slot)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	// a never-written slot reads as absent, through the same header binding
	v, err = store.ReadAt(h20, owner, common.Blake2Hash([]byte("empty")))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestHistoricalStoreHeaderBinding(t *testing.T) {
	store := NewMemoryHistoricalStore()
	defer store.Close()

	owner := common.HexToAddress("0x0a")
	slot := common.Blake2Hash([]byte("slot"))
	store.Put(owner, slot, []byte("v1"))
	h10, err := store.CommitBlock(10, 1000)
	require.NoError(t, err)

	// forged state root
	forged := *h10
	forged.StateRoot = common.Blake2Hash([]byte("forged"))
	_, err = store.ReadAt(&forged, owner, slot)
	assert.ErrorIs(t, err, nrerrors.ErrSHeaderMismatch)

	// header for a block that was never committed
	unknown := *h10
	unknown.BlockNumber = 11
	_, err = store.ReadAt(&unknown, owner, slot)
	assert.ErrorIs(t, err, nrerrors.ErrSUnknownBlock)
}

func TestHistoricalStoreHeaderChain(t *testing.T) {
	store := NewMemoryHistoricalStore()
	defer store.Close()

	h1, err := store.CommitBlock(1, 100)
	require.NoError(t, err)
	h2, err := store.CommitBlock(2, 200)
	require.NoError(t, err)

	assert.Equal(t, h1.Hash(), h2.ParentHash)
	assert.NotEqual(t, h1.StateRoot, h2.StateRoot)

	got, err := store.HeaderAt(2)
	require.NoError(t, err)
	assert.Equal(t, h2.Hash(), got.Hash())

	// floor semantics: asking for a block between commits returns the older one
	got, err = store.HeaderAt(1)
	require.NoError(t, err)
	assert.Equal(t, h1.Hash(), got.Hash())

	_, err = store.HeaderAt(0)
	assert.ErrorIs(t, err, nrerrors.ErrSUnknownBlock)
}

func TestCloseDiscardsStagedWrites(t *testing.T) {
	store := NewMemoryHistoricalStore()

	store.Put(common.HexToAddress("0x0a"), common.Blake2Hash([]byte("slot")), []byte("v1"))
	err := store.Close()
	assert.ErrorIs(t, err, nrerrors.ErrSNotCommitted)

	// a committed store closes cleanly
	store = NewMemoryHistoricalStore()
	store.Put(common.HexToAddress("0x0a"), common.Blake2Hash([]byte("slot")), []byte("v1"))
	_, err = store.CommitBlock(1, 100)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestReadLatestUnconstrained(t *testing.T) {
	store := NewMemoryHistoricalStore()
	defer store.Close()

	owner := common.HexToAddress("0x0a")
	slot := common.Blake2Hash([]byte("slot"))
	store.Put(owner, slot, []byte("v1"))
	_, err := store.CommitBlock(5, 500)
	require.NoError(t, err)

	v, err := store.ReadLatest(owner, slot, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = store.ReadLatest(owner, slot, 4)
	require.NoError(t, err)
	assert.Nil(t, v)
}
