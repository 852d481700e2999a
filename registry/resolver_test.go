package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CollinsJawar/aztec-nr/account"
	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/keys"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/storage"
	"github.com/CollinsJawar/aztec-nr/types"
)

type testEnv struct {
	store    *storage.HistoricalStore
	hinter   *StoreHinter
	resolver *Resolver
	recorder *Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemoryHistoricalStore()
	t.Cleanup(func() { store.Close() })
	hinter := NewStoreHinter(store, CanonicalRegistryAddress)
	return &testEnv{
		store:    store,
		hinter:   hinter,
		resolver: NewResolver(store, hinter),
		recorder: NewRecorder(store),
	}
}

func newTestAccount(t *testing.T, salt string) (*keys.MasterSecrets, *types.CompleteAddress) {
	t.Helper()
	ms, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	partial := types.PartialAddress(common.Blake2Hash([]byte(salt)))
	return ms, types.NewCompleteAddress(ms.PublicKeys(), partial)
}

// lyingHinter returns attacker-chosen key material for every account.
type lyingHinter struct {
	keys    *types.PublicKeys
	partial types.PartialAddress
}

func (lh *lyingHinter) GetKeysAt(account common.Address, block uint64) (*types.PublicKeys, error) {
	return lh.keys, nil
}

func (lh *lyingHinter) GetCanonicalKeys(account common.Address) (*types.PublicKeys, types.PartialAddress, error) {
	return lh.keys, lh.partial, nil
}

func TestResolveCanonicalFallback(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	env.hinter.RegisterCanonical(ca)

	header, err := env.store.CommitBlock(1, 100)
	require.NoError(t, err)

	resolved, err := env.resolver.Resolve(header, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(&ca.Keys))

	// an account the hinter knows nothing about is a hard hint failure
	_, unknown := newTestAccount(t, "nobody")
	_, err = env.resolver.Resolve(header, unknown.Address)
	assert.ErrorIs(t, err, nrerrors.ErrKInvalidPublicKeysHint)
}

func TestResolveCanonicalRejectsForgedHint(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	_, forged := newTestAccount(t, "mallory")

	header, err := env.store.CommitBlock(1, 100)
	require.NoError(t, err)

	// the hinted keys + partial address must re-derive the account
	// identifier; mallory's material does not
	liar := &lyingHinter{keys: &forged.Keys, partial: forged.Partial}
	resolver := NewResolver(env.store, liar)
	_, err = resolver.Resolve(header, ca.Address)
	assert.ErrorIs(t, err, nrerrors.ErrKInvalidPublicKeysHint)
}

func TestResolveRegistryEntry(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	env.hinter.RegisterCanonical(ca)

	preHeader, err := env.store.CommitBlock(5, 100)
	require.NoError(t, err)

	rotatedSecrets, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	rotated := rotatedSecrets.PublicKeys()
	env.recorder.Rotate(ca.Address, rotated)
	postHeader, err := env.store.CommitBlock(10, 200)
	require.NoError(t, err)

	// once a non-zero commitment is readable, the registry entry is
	// authoritative and the canonical fallback must not be used
	resolved, err := env.resolver.Resolve(postHeader, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(rotated))
	assert.False(t, resolved.Equal(&ca.Keys))

	// before the rotation the same account still resolves canonically
	resolved, err = env.resolver.Resolve(preHeader, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(&ca.Keys))
}

func TestResolveRegistryRejectsForgedHint(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	rotatedSecrets, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	env.recorder.Rotate(ca.Address, rotatedSecrets.PublicKeys())
	header, err := env.store.CommitBlock(10, 200)
	require.NoError(t, err)

	_, forged := newTestAccount(t, "mallory")
	liar := &lyingHinter{keys: &forged.Keys, partial: forged.Partial}
	resolver := NewResolver(env.store, liar)
	_, err = resolver.Resolve(header, ca.Address)
	assert.ErrorIs(t, err, nrerrors.ErrKRegistryHintMismatch)
}

func TestResolveIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	env.hinter.RegisterCanonical(ca)
	header, err := env.store.CommitBlock(1, 100)
	require.NoError(t, err)

	first, err := env.resolver.Resolve(header, ca.Address)
	require.NoError(t, err)
	second, err := env.resolver.Resolve(header, ca.Address)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestResolveCurrentPinsMaxBlock(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	env.hinter.RegisterCanonical(ca)

	header, err := env.store.CommitBlock(30, 100)
	require.NoError(t, err)

	// empty registry: the pin still lands, with the exact same bound
	ctx := account.NewMockContext(header)
	_, err = env.resolver.ResolveCurrent(ctx, ca.Address)
	require.NoError(t, err)
	assert.True(t, ctx.MaxBlockSet)
	assert.Equal(t, header.BlockNumber+types.KeyRotationGraceBlocks, ctx.MaxBlockNumber)

	// present registry entry: same bound
	rotatedSecrets, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	env.recorder.Rotate(ca.Address, rotatedSecrets.PublicKeys())
	header2, err := env.store.CommitBlock(40, 200)
	require.NoError(t, err)

	ctx2 := account.NewMockContext(header2)
	_, err = env.resolver.ResolveCurrent(ctx2, ca.Address)
	require.NoError(t, err)
	assert.True(t, ctx2.MaxBlockSet)
	assert.Equal(t, header2.BlockNumber+types.KeyRotationGraceBlocks, ctx2.MaxBlockNumber)
}

// Account rotates at block 100. A reader anchored just before the
// rotation still resolves the old set and its proof stays usable
// through the grace window; past the window only the new commitment is
// visible to any fresh anchor.
func TestRotationGraceWindow(t *testing.T) {
	env := newTestEnv(t)
	_, ca := newTestAccount(t, "alice")
	env.hinter.RegisterCanonical(ca)

	firstSecrets, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	firstKeys := firstSecrets.PublicKeys()
	env.recorder.Rotate(ca.Address, firstKeys)
	_, err = env.store.CommitBlock(50, 100)
	require.NoError(t, err)

	header99, err := env.store.CommitBlock(99, 199)
	require.NoError(t, err)

	secondSecrets, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	secondKeys := secondSecrets.PublicKeys()
	env.recorder.Rotate(ca.Address, secondKeys)
	_, err = env.store.CommitBlock(100, 200)
	require.NoError(t, err)

	header104, err := env.store.CommitBlock(104, 204)
	require.NoError(t, err)
	header106, err := env.store.CommitBlock(106, 206)
	require.NoError(t, err)

	// a pre-rotation anchor sees the old commitment, post-rotation
	// anchors see only the new one
	resolved, err := env.resolver.Resolve(header99, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(firstKeys))

	resolved, err = env.resolver.Resolve(header104, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(secondKeys))

	resolved, err = env.resolver.Resolve(header106, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(secondKeys))

	// a proof built against the pre-rotation anchor is usable only
	// within the grace window
	ctx := account.NewMockContext(header99)
	resolved, err = env.resolver.ResolveCurrent(ctx, ca.Address)
	require.NoError(t, err)
	assert.True(t, resolved.Equal(firstKeys))
	assert.NoError(t, ctx.ValidateInclusion(104))
	assert.ErrorIs(t, ctx.ValidateInclusion(106), nrerrors.ErrKStaleProof)
}

func TestEntrySlots(t *testing.T) {
	accountA := common.HexToAddress("0x01")
	accountB := common.HexToAddress("0x02")

	fieldsA, commitmentA := EntrySlots(accountA)
	fieldsB, _ := EntrySlots(accountB)

	// commitment slot sits immediately after the key field array
	base := DeriveMapSlot(types.KeyRegistryBaseSlot, accountA)
	assert.Equal(t, SlotAt(base, 0), fieldsA[0])
	assert.Equal(t, SlotAt(base, types.NumKeyFields), commitmentA)

	// entries of different accounts never collide
	seen := map[common.Hash]bool{}
	for _, s := range append(fieldsA[:], commitmentA) {
		assert.False(t, seen[s])
		seen[s] = true
	}
	for _, s := range fieldsB {
		assert.False(t, seen[s])
	}
}
