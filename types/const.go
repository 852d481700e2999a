package types

// KeyRotationGraceBlocks is the number of blocks during which both the
// previous and the newly rotated key set of an account must be treated
// as potentially valid by readers. Resolving "current" keys pins the
// maximum usable block to current + KeyRotationGraceBlocks so that a
// proof can neither be replayed long after a rotation nor reveal, by
// failing, that a rotation happened near the block it was built
// against. Protocol-wide parameter, not a per-call option.
const KeyRotationGraceBlocks uint64 = 5

// Registry storage layout: each account's entry is a fixed-length array
// of serialized key fields at the map-derived base slot, followed
// immediately by one trailing commitment-hash field at base + array
// length.
const (
	// KeyRegistryBaseSlot is the base map slot of the registry contract's
	// account -> key set mapping.
	KeyRegistryBaseSlot uint64 = 1

	// NumKeyFields is the number of serialized key fields per entry, one
	// per key point: nullifying, incoming-viewing, outgoing-viewing,
	// tagging.
	NumKeyFields uint64 = 4

	// KeyFieldLen is the byte length of one serialized key field
	// (an uncompressed bn254 G1 point).
	KeyFieldLen = 64
)

// Generator indices domain-separating every hash in the protocol.
const (
	GenKeySetCommitment byte = 1
	GenAddress          byte = 2
	GenMapSlot          byte = 3
	GenAuthwitMessage   byte = 4
	GenAppPayload       byte = 5
	GenFeePayload       byte = 6
	GenMaskedRecipient  byte = 7
	GenKeyPointHash     byte = 8

	// Per-purpose app secret derivation generators.
	GenAppSecretNullifying byte = 16
	GenAppSecretIncoming   byte = 17
	GenAppSecretOutgoing   byte = 18
	GenAppSecretTagging    byte = 19
)

// Selector is a 4-byte function/result discriminator.
type Selector uint32

// AuthwitValidSelector is the fixed marker returned by a successful
// private authwit verification.
const AuthwitValidSelector Selector = 0x61757468
