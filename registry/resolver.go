package registry

import (
	"fmt"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/types"
)

// Resolver decides which key set is authoritative for an account at a
// historical point. The mutable registry wins once it holds an entry;
// the canonical key set embedded in the account's address derivation is
// the fallback before the first rotation. Both paths verify the hinted
// material against a trusted commitment - the on-chain one for the
// registry, the account identifier itself for the canonical set.
type Resolver struct {
	store    types.HistoricalReader
	hinter   KeyHinter
	registry common.Address
}

func NewResolver(store types.HistoricalReader, hinter KeyHinter) *Resolver {
	return &Resolver{store: store, hinter: hinter, registry: CanonicalRegistryAddress}
}

// NewResolverAt is NewResolver against a non-canonical registry
// deployment, for tests.
func NewResolverAt(store types.HistoricalReader, hinter KeyHinter, registry common.Address) *Resolver {
	return &Resolver{store: store, hinter: hinter, registry: registry}
}

// Resolve returns the account's authoritative key set as of header's
// block. It does not fail for a well-formed account with no registry
// entry - that falls back to the canonical keys - but any hint whose
// recomputed commitment disagrees with the trusted one is a hard
// verification failure, never retried.
func (r *Resolver) Resolve(header *types.BlockHeader, account common.Address) (*types.PublicKeys, error) {
	_, commitmentSlot := EntrySlots(account)

	// One constrained read covers all four keys: the registry stores a
	// single commitment over the full set, and the hint supplies the
	// preimage. Callers discard the key fields they don't need.
	raw, err := r.store.ReadAt(header, r.registry, commitmentSlot)
	if err != nil {
		return nil, err
	}
	commitment := common.BytesToHash(raw)

	if !common.IsNilHash(commitment) {
		hinted, err := r.hinter.GetKeysAt(account, header.BlockNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", nrerrors.ErrKRegistryHintMismatch, err)
		}
		if hinted.Commitment() != commitment {
			return nil, fmt.Errorf("%w: account %s block %d", nrerrors.ErrKRegistryHintMismatch, account.StringShort(), header.BlockNumber)
		}
		log.Trace(log.RegistryMonitoring, "resolved rotated keys", "account", account.StringShort(), "block", header.BlockNumber, "commitment", commitment.StringShort())
		return hinted, nil
	}

	// No rotation ever recorded as of this block. The canonical key set
	// verifies against the account identifier itself: the hint must
	// re-derive hash(keys) + partial address back to the account.
	canonical, partial, err := r.hinter.GetCanonicalKeys(account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", nrerrors.ErrKInvalidPublicKeysHint, err)
	}
	if types.DeriveAddress(canonical, partial) != account {
		return nil, fmt.Errorf("%w: account %s", nrerrors.ErrKInvalidPublicKeysHint, account.StringShort())
	}
	log.Trace(log.RegistryMonitoring, "resolved canonical keys", "account", account.StringShort(), "block", header.BlockNumber)
	return canonical, nil
}

// ResolveCurrent resolves the account's keys against the context's
// current header, after pinning the context's maximum usable block to
// current + KeyRotationGraceBlocks. The pin is unconditional - proof of
// an empty registry entry carries the same freshness guarantee as proof
// of a resolved key set - and it is an upper bound: a proof built here
// cannot be included once the grace window has passed, so it can
// neither be replayed after a rotation nor fingerprinted by which side
// of a rotation boundary it lands on.
func (r *Resolver) ResolveCurrent(ctx types.ExecutionContext, account common.Address) (*types.PublicKeys, error) {
	header := ctx.GetHeader()
	ctx.SetMaxBlockNumber(header.BlockNumber + types.KeyRotationGraceBlocks)
	return r.Resolve(header, account)
}
