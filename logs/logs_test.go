package logs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CollinsJawar/aztec-nr/account"
	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/keys"
	"github.com/CollinsJawar/aztec-nr/registry"
	"github.com/CollinsJawar/aztec-nr/storage"
	"github.com/CollinsJawar/aztec-nr/types"
)

type logEnv struct {
	store     *storage.HistoricalStore
	hinter    *registry.StoreHinter
	resolver  *registry.Resolver
	collector *Collector
	builder   *Builder

	contract common.Address

	sender        *keys.MasterSecrets
	senderAddr    *types.CompleteAddress
	recipient     *keys.MasterSecrets
	recipientAddr *types.CompleteAddress

	ctx *account.MockContext
}

func newLogEnv(t *testing.T) *logEnv {
	t.Helper()
	store := storage.NewMemoryHistoricalStore()
	t.Cleanup(func() { store.Close() })
	hinter := registry.NewStoreHinter(store, registry.CanonicalRegistryAddress)
	resolver := registry.NewResolver(store, hinter)
	collector := &Collector{}

	env := &logEnv{
		store:     store,
		hinter:    hinter,
		resolver:  resolver,
		collector: collector,
		builder:   NewBuilder(resolver, hinter, collector),
		contract:  common.HexToAddress("0xc0"),
	}

	var err error
	env.sender, err = keys.GenerateMasterSecrets()
	require.NoError(t, err)
	env.senderAddr = types.NewCompleteAddress(env.sender.PublicKeys(), types.PartialAddress(common.Blake2Hash([]byte("sender"))))
	env.recipient, err = keys.GenerateMasterSecrets()
	require.NoError(t, err)
	env.recipientAddr = types.NewCompleteAddress(env.recipient.PublicKeys(), types.PartialAddress(common.Blake2Hash([]byte("recipient"))))
	hinter.RegisterCanonical(env.senderAddr)
	hinter.RegisterCanonical(env.recipientAddr)

	header, err := store.CommitBlock(1, 100)
	require.NoError(t, err)
	env.ctx = account.NewMockContext(header)
	env.ctx.Address = env.senderAddr.Address
	return env
}

func TestEmitRoundTrip(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("a fixed-size private event body.."))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	record, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, Options{})
	require.NoError(t, err)
	assert.Equal(t, common.Keccak256(record.Ciphertext), record.BindingHash)

	// recipient recovers the payload with its incoming viewing secret
	body, err := DecryptIncoming(record.Ciphertext, &env.recipient.Ivsk)
	require.NoError(t, err)
	assert.Equal(t, event.Encode(), body)

	// a different viewing secret never yields the payload
	wrong, err := keys.GenerateMasterSecrets()
	require.NoError(t, err)
	_, err = DecryptIncoming(record.Ciphertext, &wrong.Ivsk)
	assert.Error(t, err)

	// sender recovers its own record through the outgoing path
	esk, recoveredRecipient, err := DecryptOutgoing(record.Ciphertext, &ovskApp)
	require.NoError(t, err)
	assert.Equal(t, env.recipientAddr.Address, recoveredRecipient)
	assert.True(t, esk.Equal(&record.Randomness))

	// emitted to the per-execution collection
	require.Len(t, env.collector.Logs, 1)
	assert.Equal(t, record.BindingHash, env.collector.Logs[0].BindingHash)
	assert.Equal(t, record.Ciphertext, env.collector.Logs[0].Ciphertext)
}

func TestEmitSuppliedRandomnessIsDeterministic(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("deterministic body"))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	var randomness = env.sender.Tsk // any fixed scalar
	opts := Options{Randomness: &randomness}

	first, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, opts)
	require.NoError(t, err)
	second, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Ciphertext, second.Ciphertext)
	assert.Equal(t, first.BindingHash, second.BindingHash)
	assert.Equal(t, first.MaskedRecipient, second.MaskedRecipient)
}

func TestEmitMaskedRecipientHidesAddress(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("masking body.."))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	first, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, Options{})
	require.NoError(t, err)
	second, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, Options{})
	require.NoError(t, err)

	// fresh randomness gives unlinkable masks for the same recipient
	assert.NotEqual(t, first.MaskedRecipient, second.MaskedRecipient)
	assert.NotEqual(t, common.Hash(env.recipientAddr.Address), first.MaskedRecipient)
}

func TestEmitWithSuppliedKeys(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("supplied keys body"))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	// no registry resolution: keys handed in directly
	opts := Options{Keys: &RecipientKeys{
		Ovpk: env.senderAddr.Keys.Ovpk,
		Ivpk: env.recipientAddr.Keys.Ivpk,
	}}
	record, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, opts)
	require.NoError(t, err)

	body, err := DecryptIncoming(record.Ciphertext, &env.recipient.Ivsk)
	require.NoError(t, err)
	assert.Equal(t, event.Encode(), body)

	// the supplied-keys path must not touch the freshness pin
	assert.False(t, env.ctx.MaxBlockSet)
}

func TestEmitHintOnly(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("hint only body...."))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	// hint-only needs a registry entry the hinter can read
	recorder := registry.NewRecorder(env.store)
	recorder.Rotate(env.senderAddr.Address, &env.senderAddr.Keys)
	recorder.Rotate(env.recipientAddr.Address, &env.recipientAddr.Keys)
	header, err := env.store.CommitBlock(2, 200)
	require.NoError(t, err)
	env.ctx.Header = header

	record, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, Options{HintOnly: true})
	require.NoError(t, err)

	body, err := DecryptIncoming(record.Ciphertext, &env.recipient.Ivsk)
	require.NoError(t, err)
	assert.Equal(t, event.Encode(), body)

	// unconstrained path: no freshness pin either
	assert.False(t, env.ctx.MaxBlockSet)
}

func TestEmitResolvedKeysPinsFreshness(t *testing.T) {
	env := newLogEnv(t)
	event := RawEvent([]byte("resolved keys body"))
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	_, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, event, Options{})
	require.NoError(t, err)
	assert.True(t, env.ctx.MaxBlockSet)
	assert.Equal(t, env.ctx.Header.BlockNumber+types.KeyRotationGraceBlocks, env.ctx.MaxBlockNumber)
}

func TestEventShapeMismatch(t *testing.T) {
	env := newLogEnv(t)
	ovskApp := keys.DeriveAppSecret(&env.sender.Ovsk, env.contract, keys.PurposeOutgoing)

	_, err := env.builder.Emit(env.ctx, env.contract, ovskApp, env.recipientAddr.Address, badEvent{}, Options{})
	assert.Error(t, err)
}

// badEvent declares one length and encodes another.
type badEvent struct{}

func (badEvent) Encode() []byte     { return []byte("short") }
func (badEvent) EncodedLength() int { return 64 }
