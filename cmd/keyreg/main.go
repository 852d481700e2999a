package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/CollinsJawar/aztec-nr/common"
	"github.com/CollinsJawar/aztec-nr/keys"
	"github.com/CollinsJawar/aztec-nr/log"
	"github.com/CollinsJawar/aztec-nr/registry"
	"github.com/CollinsJawar/aztec-nr/storage"
	"github.com/CollinsJawar/aztec-nr/types"
)

var (
	dbPath      string
	accountFile string
	logLevel    string
)

// accountRecord is the wallet file: canonical address material plus the
// current master secrets.
type accountRecord struct {
	Complete types.CompleteAddress `json:"complete_address"`
	Secrets  [4]string             `json:"master_secrets"`
}

func recordFromSecrets(ms *keys.MasterSecrets, partial types.PartialAddress) *accountRecord {
	rec := &accountRecord{
		Complete: *types.NewCompleteAddress(ms.PublicKeys(), partial),
	}
	for i, sk := range []fr.Element{ms.Nsk, ms.Ivsk, ms.Ovsk, ms.Tsk} {
		b := sk.Bytes()
		rec.Secrets[i] = common.Bytes2Hex(b[:])
	}
	return rec
}

func (rec *accountRecord) masterSecrets() *keys.MasterSecrets {
	ms := &keys.MasterSecrets{}
	for i, sk := range []*fr.Element{&ms.Nsk, &ms.Ivsk, &ms.Ovsk, &ms.Tsk} {
		sk.SetBytes(common.Hex2Bytes(rec.Secrets[i]))
	}
	return ms
}

func loadAccount(path string) (*accountRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := &accountRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func saveAccount(path string, rec *accountRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

func openStore() (*storage.HistoricalStore, error) {
	return storage.NewHistoricalStore(dbPath)
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Generate a fresh account and write its wallet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := keys.GenerateMasterSecrets()
			if err != nil {
				return err
			}
			var salt fr.Element
			if _, err := salt.SetRandom(); err != nil {
				return err
			}
			saltBytes := salt.Bytes()
			partial := types.PartialAddress(common.Blake2Hash(saltBytes[:]))
			rec := recordFromSecrets(ms, partial)
			if err := saveAccount(accountFile, rec); err != nil {
				return err
			}
			fmt.Printf("account %s -> %s\n", rec.Complete.Address.Hex(), accountFile)
			return nil
		},
	}
}

func newRotateCmd() *cobra.Command {
	var atBlock uint64
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate the account to fresh keys and commit a block recording the new registry entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadAccount(accountFile)
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ms, err := keys.GenerateMasterSecrets()
			if err != nil {
				return err
			}
			newKeys := ms.PublicKeys()
			recorder := registry.NewRecorder(store)
			recorder.Rotate(rec.Complete.Address, newKeys)
			header, err := store.CommitBlock(atBlock, uint64(time.Now().Unix()))
			if err != nil {
				return err
			}

			rotated := recordFromSecrets(ms, rec.Complete.Partial)
			rotated.Complete = rec.Complete
			if err := saveAccount(accountFile, rotated); err != nil {
				return err
			}
			fmt.Printf("rotated %s at block %d commitment %s\n",
				rec.Complete.Address.StringShort(), header.BlockNumber, newKeys.Commitment().StringShort())
			return nil
		},
	}
	cmd.Flags().Uint64Var(&atBlock, "block", 1, "block number to commit the rotation at")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var atBlock uint64
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the account's authoritative key set as of a block",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := loadAccount(accountFile)
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			lookup := atBlock
			if lookup == 0 {
				lookup = ^uint64(0)
			}
			header, err := store.HeaderAt(lookup)
			if err != nil {
				return err
			}
			hinter := registry.NewStoreHinter(store, registry.CanonicalRegistryAddress)
			hinter.RegisterCanonical(&rec.Complete)
			resolver := registry.NewResolver(store, hinter)
			resolved, err := resolver.Resolve(header, rec.Complete.Address)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(resolved, "", "  ")
			fmt.Printf("block %d commitment %s\n%s\n", header.BlockNumber, resolved.Commitment().Hex(), string(out))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&atBlock, "block", 0, "historical block to resolve at (0 = latest committed)")
	return cmd
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "keyreg",
		Short: "Account key registry tool: create accounts, rotate keys, resolve historical key sets",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.InitLogger(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "keyreg-db", "path of the registry store")
	rootCmd.PersistentFlags().StringVar(&accountFile, "account", "account.json", "path of the wallet file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "log level (trace|debug|info|warn|error)")
	rootCmd.AddCommand(newCreateCmd(), newRotateCmd(), newResolveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
