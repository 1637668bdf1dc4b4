// Package snapshot seals store snapshots into passphrase-protected export
// files and opens them again.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/cryptox"
	"github.com/dmitrijs2005/vinony/internal/store"
)

// Version is the export file format version.
const Version = 1

// file is the on-disk envelope.
type file struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal encrypts snap with a key derived from passphrase and writes the
// envelope to w.
func Seal(w io.Writer, snap store.Snapshot, passphrase []byte) error {
	plain, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return err
	}
	key := cryptox.DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	ct, nonce, err := cryptox.Encrypt(plain, key)
	if err != nil {
		return fmt.Errorf("encrypt snapshot: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file{Version: Version, Salt: salt, Nonce: nonce, Ciphertext: ct})
}

// Open reads an envelope from r and decrypts it. A damaged file or a wrong
// passphrase yields common.ErrInvalidSnapshot.
func Open(r io.Reader, passphrase []byte) (store.Snapshot, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSnapshot, err)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", common.ErrInvalidSnapshot, f.Version)
	}
	if len(f.Salt) == 0 || len(f.Nonce) == 0 {
		return nil, fmt.Errorf("%w: missing key material", common.ErrInvalidSnapshot)
	}

	key := cryptox.DeriveKey(passphrase, f.Salt)
	defer common.WipeByteArray(key)

	plain, err := cryptox.Decrypt(f.Ciphertext, f.Nonce, key)
	if err != nil {
		if errors.Is(err, cryptox.ErrDecrypt) {
			return nil, fmt.Errorf("%w: wrong passphrase or damaged file", common.ErrInvalidSnapshot)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSnapshot, err)
	}

	var snap store.Snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSnapshot, err)
	}
	return snap, nil
}
