package registry

import (
	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/storage"
	"github.com/CollinsJawar/aztec-nr/types"
)

// Recorder writes registry entries: the rotation side of the protocol.
// A rotation stages the serialized key fields followed by the trailing
// commitment; the entry becomes readable once the surrounding block is
// committed. Entries are only ever superseded by later rotations, never
// deleted.
type Recorder struct {
	store    *storage.HistoricalStore
	registry common.Address
}

func NewRecorder(store *storage.HistoricalStore) *Recorder {
	return &Recorder{store: store, registry: CanonicalRegistryAddress}
}

func NewRecorderAt(store *storage.HistoricalStore, registry common.Address) *Recorder {
	return &Recorder{store: store, registry: registry}
}

// Rotate stages a new key set for the account. The caller seals it by
// committing the block on the underlying store.
func (rc *Recorder) Rotate(account common.Address, newKeys *types.PublicKeys) {
	fieldSlots, commitmentSlot := EntrySlots(account)
	fields := newKeys.SerializeFields()
	for i := range fieldSlots {
		rc.store.Put(rc.registry, fieldSlots[i], fields[i])
	}
	commitment := newKeys.Commitment()
	rc.store.Put(rc.registry, commitmentSlot, commitment.Bytes())
	log.Info(log.RegistryMonitoring, "staged key rotation", "account", account.StringShort(), "commitment", commitment.StringShort())
}
