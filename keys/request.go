package keys

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
)

// KeyValidationRequest pairs a master public key with the app secret
// derived from it, as returned by a validated key request.
type KeyValidationRequest struct {
	PkM   bn254.G1Affine
	SkApp fr.Element
}

// RequestValidator is the external collaborator that resolves a master
// key hash to a validated (master public key, app secret) pair. The
// historical/registry trust decision - does this master key really
// belong to the requesting account as of the anchored block - lives
// behind this interface, not here.
type RequestValidator interface {
	ValidateKeyRequest(pkMHash common.Hash, purpose Purpose) (*KeyValidationRequest, error)
}

// Service is a thin, per-application wrapper over a RequestValidator.
type Service struct {
	validator RequestValidator
}

func NewService(validator RequestValidator) *Service {
	return &Service{validator: validator}
}

// GetNskApp returns the application nullifying secret for the master
// nullifying key named by npkMHash.
func (s *Service) GetNskApp(npkMHash common.Hash) (fr.Element, error) {
	req, err := s.validator.ValidateKeyRequest(npkMHash, PurposeNullifying)
	if err != nil {
		return fr.Element{}, err
	}
	log.Trace(log.KeysMonitoring, "derived app nullifying secret", "npk_m_hash", npkMHash.StringShort())
	return req.SkApp, nil
}

// GetSkApp returns the application secret for an arbitrary purpose.
func (s *Service) GetSkApp(pkMHash common.Hash, purpose Purpose) (fr.Element, error) {
	req, err := s.validator.ValidateKeyRequest(pkMHash, purpose)
	if err != nil {
		return fr.Element{}, err
	}
	return req.SkApp, nil
}

// LocalValidator validates key requests against master secrets held in
// process, for wallets and tests. It checks the requested hash actually
// names one of the master keys before deriving.
type LocalValidator struct {
	Master *MasterSecrets
	App    common.Address
}

func (lv *LocalValidator) ValidateKeyRequest(pkMHash common.Hash, purpose Purpose) (*KeyValidationRequest, error) {
	sk := lv.Master.Secret(purpose)
	pkM := PublicKey(&sk)
	if PointHash(&pkM) != pkMHash {
		return nil, fmt.Errorf("keys: no master %s key with hash %s", purpose, pkMHash.StringShort())
	}
	skApp := DeriveAppSecret(&sk, lv.App, purpose)
	return &KeyValidationRequest{PkM: pkM, SkApp: skApp}, nil
}
