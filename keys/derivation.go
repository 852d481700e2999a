package keys

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/types"
)

// Purpose selects which of the four master keys a derivation is tied to.
type Purpose int

const (
	PurposeNullifying Purpose = iota
	PurposeIncoming
	PurposeOutgoing
	PurposeTagging
)

func (p Purpose) String() string {
	switch p {
	case PurposeNullifying:
		return "nullifying"
	case PurposeIncoming:
		return "incoming"
	case PurposeOutgoing:
		return "outgoing"
	case PurposeTagging:
		return "tagging"
	default:
		return fmt.Sprintf("purpose(%d)", int(p))
	}
}

// Generator returns the domain-separation generator index for the
// purpose's app secret derivation.
func (p Purpose) Generator() byte {
	switch p {
	case PurposeNullifying:
		return types.GenAppSecretNullifying
	case PurposeIncoming:
		return types.GenAppSecretIncoming
	case PurposeOutgoing:
		return types.GenAppSecretOutgoing
	case PurposeTagging:
		return types.GenAppSecretTagging
	default:
		panic(fmt.Sprintf("unknown purpose %d", int(p)))
	}
}

// MasterSecrets holds an account's four master secret scalars. The
// corresponding public key points are what the registry and the address
// derivation commit to.
type MasterSecrets struct {
	Nsk  fr.Element
	Ivsk fr.Element
	Ovsk fr.Element
	Tsk  fr.Element
}

// GenerateMasterSecrets draws four fresh master secrets.
func GenerateMasterSecrets() (*MasterSecrets, error) {
	ms := &MasterSecrets{}
	for _, sk := range []*fr.Element{&ms.Nsk, &ms.Ivsk, &ms.Ovsk, &ms.Tsk} {
		if _, err := sk.SetRandom(); err != nil {
			return nil, fmt.Errorf("keys: drawing master secret: %w", err)
		}
	}
	return ms, nil
}

// Secret returns the master secret for a purpose.
func (ms *MasterSecrets) Secret(p Purpose) fr.Element {
	switch p {
	case PurposeNullifying:
		return ms.Nsk
	case PurposeIncoming:
		return ms.Ivsk
	case PurposeOutgoing:
		return ms.Ovsk
	case PurposeTagging:
		return ms.Tsk
	default:
		panic(fmt.Sprintf("unknown purpose %d", int(p)))
	}
}

// PublicKeys derives the account key set from the master secrets.
func (ms *MasterSecrets) PublicKeys() *types.PublicKeys {
	pk := &types.PublicKeys{}
	pk.Npk = PublicKey(&ms.Nsk)
	pk.Ivpk = PublicKey(&ms.Ivsk)
	pk.Ovpk = PublicKey(&ms.Ovsk)
	pk.Tpk = PublicKey(&ms.Tsk)
	return pk
}

// PublicKey returns the public key point of one secret scalar.
func PublicKey(sk *fr.Element) bn254.G1Affine {
	var pk bn254.G1Affine
	var s big.Int
	sk.BigInt(&s)
	pk.ScalarMultiplicationBase(&s)
	return pk
}

// PointHash returns the hash of a single master key point, used to name
// the key in validation requests without revealing which slot of the
// registry entry it came from.
func PointHash(p *bn254.G1Affine) common.Hash {
	raw := p.RawBytes()
	return common.DomainHash(types.GenKeyPointHash, raw[:])
}

// DeriveAppSecret derives the per-application secret for one purpose:
// hash(generator(purpose), master secret, app address) reduced into the
// scalar field. Applications never see the master secret itself; two
// applications derive unrelated secrets from the same master.
func DeriveAppSecret(master *fr.Element, app common.Address, purpose Purpose) fr.Element {
	skBytes := master.Bytes()
	h := common.DomainHash(purpose.Generator(), skBytes[:], app.Bytes())
	var skApp fr.Element
	skApp.SetBytes(h.Bytes())
	return skApp
}
