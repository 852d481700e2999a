package logs

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/nrerrors"
	"github.com/CollinsJawar/aztec-nr/registry"
	"github.com/CollinsJawar/aztec-nr/types"
)

// RecipientKeys is directly supplied viewing key material, bypassing
// registry resolution.
type RecipientKeys struct {
	// Ovpk is the sender's outgoing-viewing key.
	Ovpk bn254.G1Affine
	// Ivpk is the recipient's incoming-viewing key.
	Ivpk bn254.G1Affine
}

// Options selects how the builder obtains its inputs. The zero value is
// the fully constrained path: viewing keys resolved from the registry,
// randomness generated fresh.
type Options struct {
	// Randomness, when non-nil, is used instead of freshly generated
	// randomness. It doubles as the log's ephemeral secret.
	Randomness *fr.Element

	// Keys, when non-nil, supplies viewing keys directly instead of
	// resolving them from the registry.
	Keys *RecipientKeys

	// HintOnly skips the constrained registry resolution and takes key
	// material straight from the hint source. Cheaper, but nothing here
	// verifies it: only for contexts where the surrounding call already
	// constrains correctness, e.g. simulation. Ignored when Keys is set.
	HintOnly bool
}

// Builder derives keys, randomness, ciphertext and the binding hash for
// private events, then hands the result to the raw log emission
// interface. All emission variants funnel through Emit; Options picks
// the variant.
type Builder struct {
	resolver *registry.Resolver
	hinter   registry.KeyHinter
	emitter  Emitter
}

func NewBuilder(resolver *registry.Resolver, hinter registry.KeyHinter, emitter Emitter) *Builder {
	return &Builder{resolver: resolver, hinter: hinter, emitter: emitter}
}

// Emit builds the encrypted log for event and appends it to the
// emitter. ovskApp is the sender's per-application outgoing viewing
// secret; the masked recipient keeps the plaintext recipient address
// out of the emitted log index.
func (b *Builder) Emit(ctx types.ExecutionContext, contract common.Address, ovskApp fr.Element, recipient common.Address, event Event, opts Options) (*EncryptedLogRecord, error) {
	randomness, err := b.randomness(opts)
	if err != nil {
		return nil, err
	}
	keys, err := b.viewingKeys(ctx, recipient, opts)
	if err != nil {
		return nil, err
	}

	ciphertext, err := encrypt(&randomness, &keys.Ivpk, &ovskApp, recipient, event)
	if err != nil {
		return nil, err
	}
	bindingHash := common.Keccak256(ciphertext)
	randomnessBytes := randomness.Bytes()
	record := &EncryptedLogRecord{
		Contract:        contract,
		Randomness:      randomness,
		Ciphertext:      ciphertext,
		BindingHash:     bindingHash,
		MaskedRecipient: common.DomainHash(types.GenMaskedRecipient, recipient.Bytes(), randomnessBytes[:]),
	}
	if b.emitter != nil {
		b.emitter.Emit(record.Randomness, record.Ciphertext, record.BindingHash)
	}
	log.Trace(log.LogsMonitoring, "emitted encrypted log", "contract", contract.StringShort(), "bytes", len(ciphertext), "binding", bindingHash.StringShort())
	return record, nil
}

func (b *Builder) randomness(opts Options) (fr.Element, error) {
	if opts.Randomness != nil {
		return *opts.Randomness, nil
	}
	var randomness fr.Element
	if _, err := randomness.SetRandom(); err != nil {
		return fr.Element{}, fmt.Errorf("%w: %v", nrerrors.ErrLNoRandomness, err)
	}
	return randomness, nil
}

func (b *Builder) viewingKeys(ctx types.ExecutionContext, recipient common.Address, opts Options) (*RecipientKeys, error) {
	if opts.Keys != nil {
		return opts.Keys, nil
	}
	if opts.HintOnly {
		block := ctx.GetHeader().BlockNumber
		senderKeys, err := b.hinter.GetKeysAt(ctx.ThisAddress(), block)
		if err != nil {
			return nil, err
		}
		recipientKeys, err := b.hinter.GetKeysAt(recipient, block)
		if err != nil {
			return nil, err
		}
		return &RecipientKeys{Ovpk: senderKeys.Ovpk, Ivpk: recipientKeys.Ivpk}, nil
	}
	senderKeys, err := b.resolver.ResolveCurrent(ctx, ctx.ThisAddress())
	if err != nil {
		return nil, err
	}
	recipientKeys, err := b.resolver.ResolveCurrent(ctx, recipient)
	if err != nil {
		return nil, err
	}
	return &RecipientKeys{Ovpk: senderKeys.Ovpk, Ivpk: recipientKeys.Ivpk}, nil
}
