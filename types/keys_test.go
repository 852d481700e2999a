package types

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CollinsJawar/aztec-nr/common"
)

func testKeySet(seed int64) *PublicKeys {
	pk := &PublicKeys{}
	for i, p := range pk.Points() {
		var s big.Int
		s.SetInt64(seed + int64(i) + 1)
		p.ScalarMultiplicationBase(&s)
	}
	return pk
}

func TestPublicKeysSerializeRoundTrip(t *testing.T) {
	pk := testKeySet(1000)
	serialized := pk.Serialize()
	require.Equal(t, int(NumKeyFields)*KeyFieldLen, len(serialized))

	decoded, err := DeserializePublicKeys(serialized)
	require.NoError(t, err)
	assert.True(t, pk.Equal(decoded))
	assert.Equal(t, pk.Commitment(), decoded.Commitment())

	_, err = DeserializePublicKeys(serialized[:100])
	assert.Error(t, err)
}

func TestPublicKeysCommitmentBindsEveryKey(t *testing.T) {
	pk := testKeySet(2000)
	other := testKeySet(2000)
	require.Equal(t, pk.Commitment(), other.Commitment())

	// changing any single point changes the commitment
	var s big.Int
	s.SetInt64(99999)
	var tweaked bn254.G1Affine
	tweaked.ScalarMultiplicationBase(&s)
	for i := 0; i < int(NumKeyFields); i++ {
		mutated := *pk
		*mutated.Points()[i] = tweaked
		assert.NotEqual(t, pk.Commitment(), mutated.Commitment(), "key field %d not bound", i)
	}
}

func TestDeriveAddress(t *testing.T) {
	pk := testKeySet(3000)
	partial := PartialAddress(common.Blake2Hash([]byte("partial")))

	ca := NewCompleteAddress(pk, partial)
	assert.True(t, ca.Verify())
	assert.Equal(t, DeriveAddress(pk, partial), ca.Address)

	// different key set or partial address gives a different account
	otherKeys := testKeySet(4000)
	assert.NotEqual(t, ca.Address, DeriveAddress(otherKeys, partial))
	otherPartial := PartialAddress(common.Blake2Hash([]byte("other")))
	assert.NotEqual(t, ca.Address, DeriveAddress(pk, otherPartial))

	bad := *ca
	bad.Keys = *otherKeys
	assert.False(t, bad.Verify())
}

func TestPayloadHashDomains(t *testing.T) {
	payload := Payload{
		Calls: []FunctionCall{
			{Target: common.HexToAddress("0x01"), Selector: 0xdeadbeef, ArgsHash: common.Blake2Hash([]byte("args"))},
		},
		Nonce: common.Blake2Hash([]byte("nonce")),
	}
	app := AppPayload{Payload: payload}
	fee := FeePayload{Payload: payload}

	// identical call lists still hash apart across phases
	assert.NotEqual(t, app.Hash(), fee.Hash())
	assert.Equal(t, app.Hash(), (&AppPayload{Payload: payload}).Hash())
}

func TestBlockHeaderHash(t *testing.T) {
	h := &BlockHeader{
		ParentHash:  common.Blake2Hash([]byte("parent")),
		StateRoot:   common.Blake2Hash([]byte("root")),
		BlockNumber: 42,
		Timestamp:   1700000000,
	}
	assert.Equal(t, h.Hash(), h.Hash())

	h2 := *h
	h2.BlockNumber = 43
	assert.NotEqual(t, h.Hash(), h2.Hash())
}
