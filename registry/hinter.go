package registry

import (
	"bytes"
	"fmt"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/storage"
	"github.com/CollinsJawar/aztec-nr/types"
)

// KeyHinter is the untrusted hint source of the resolution protocol:
// synchronous, single-valued, and adversarial until proven otherwise.
// Every value it returns must be independently re-verified against a
// trusted commitment before being used; a hinter is never a source of
// truth.
type KeyHinter interface {
	// GetKeysAt returns a candidate key set for the account as of the
	// given block.
	GetKeysAt(account common.Address, block uint64) (*types.PublicKeys, error)

	// GetCanonicalKeys returns a candidate canonical key set and the
	// partial-address component of the account's derivation.
	GetCanonicalKeys(account common.Address) (*types.PublicKeys, types.PartialAddress, error)
}

// StoreHinter answers hints straight off a historical store's
// unconstrained read path, plus an in-process directory of canonical
// key material for accounts it has been told about.
type StoreHinter struct {
	store     *storage.HistoricalStore
	registry  common.Address
	canonical map[common.Address]*types.CompleteAddress
}

func NewStoreHinter(store *storage.HistoricalStore, registry common.Address) *StoreHinter {
	return &StoreHinter{
		store:     store,
		registry:  registry,
		canonical: make(map[common.Address]*types.CompleteAddress),
	}
}

// RegisterCanonical teaches the hinter an account's canonical key
// material so it can answer fallback hints for it.
func (sh *StoreHinter) RegisterCanonical(ca *types.CompleteAddress) {
	sh.canonical[ca.Address] = ca
}

func (sh *StoreHinter) GetKeysAt(account common.Address, block uint64) (*types.PublicKeys, error) {
	fieldSlots, _ := EntrySlots(account)
	var buffer bytes.Buffer
	for _, slot := range fieldSlots {
		value, err := sh.store.ReadLatest(sh.registry, slot, block)
		if err != nil {
			return nil, err
		}
		if len(value) != types.KeyFieldLen {
			return nil, fmt.Errorf("registry: no key set recorded for %s at block %d", account.StringShort(), block)
		}
		buffer.Write(value)
	}
	return types.DeserializePublicKeys(buffer.Bytes())
}

func (sh *StoreHinter) GetCanonicalKeys(account common.Address) (*types.PublicKeys, types.PartialAddress, error) {
	ca, ok := sh.canonical[account]
	if !ok {
		return nil, types.PartialAddress{}, fmt.Errorf("registry: no canonical key material known for %s", account.StringShort())
	}
	keys := ca.Keys
	return &keys, ca.Partial, nil
}
