// Package store provides an encrypted key-value vault backed by a filesystem.
// values are lz4 compressed and stored as individual AES-256-GCM encrypted files.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
)

const (
	saltFile    = "salt"
	verifyFile  = "verify"
	dataDir     = "data"
	verifyToken = "zpersona-vault-ok"
)

// frame header flags
const (
	frameRaw byte = iota
	frameLZ4
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for key names outside [a-z0-9-].
	ErrInvalidKey = errors.New("invalid key")
	// ErrWrongPassword is returned when the master password does not match.
	ErrWrongPassword = errors.New("wrong password")
)

var validKey = regexp.MustCompile(`^[a-z0-9-]+$`)

// KV is a flat key-value blob store.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Vault manages encrypted value files on a filesystem.
type Vault struct {
	fs  zfilesystem.ReadWriteFileFS
	key []byte
}

var _ KV = (*Vault)(nil)

// Open opens or initializes an encrypted vault.
// On first run, it creates the salt and verification token.
// On subsequent runs, it verifies the password by decrypting the token.
func Open(fsys zfilesystem.ReadWriteFileFS, password string) (*Vault, error) {
	salt, err := readOrCreateSalt(fsys)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	key, _, err := zcrypto.DeriveKey([]byte(password), salt)
	if err != nil {
		return nil, fmt.Errorf("open vault: derive key: %w", err)
	}

	if err := verifyOrCreateToken(fsys, key); err != nil {
		zcrypto.Erase(key)
		return nil, fmt.Errorf("open vault: %w", err)
	}

	if err := fsys.MkdirAll(dataDir, 0o700); err != nil {
		zcrypto.Erase(key)
		return nil, fmt.Errorf("open vault: create data dir: %w", err)
	}

	return &Vault{fs: fsys, key: key}, nil
}

// Set compresses, encrypts and writes a value.
func (v *Vault) Set(key string, value []byte) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("set %q: %w", key, ErrInvalidKey)
	}

	ct, err := zcrypto.Encrypt(v.key, pack(value))
	if err != nil {
		return fmt.Errorf("set %s: encrypt: %w", key, err)
	}

	if err := v.fs.WriteFile(valuePath(key), ct, 0o600); err != nil {
		return fmt.Errorf("set %s: write: %w", key, err)
	}

	return nil
}

// Get decrypts and returns a single value.
func (v *Vault) Get(key string) ([]byte, error) {
	if !validKey.MatchString(key) {
		return nil, fmt.Errorf("get %q: %w", key, ErrInvalidKey)
	}

	ct, err := v.fs.ReadFile(valuePath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: read: %w", key, err)
	}

	data, err := zcrypto.Decrypt(v.key, ct)
	if err != nil {
		return nil, fmt.Errorf("get %s: decrypt: %w", key, err)
	}

	value, err := unpack(data)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return value, nil
}

// Delete removes a value file.
func (v *Vault) Delete(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("delete %q: %w", key, ErrInvalidKey)
	}

	if err := v.fs.Remove(valuePath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s: remove: %w", key, err)
	}

	return nil
}

// Keys returns every stored key in lexical order.
func (v *Vault) Keys() ([]string, error) {
	var keys []string

	err := v.fs.WalkDir(dataDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		name, ok := strings.CutPrefix(path, dataDir+"/")
		if !ok {
			return nil
		}
		if name, ok = strings.CutSuffix(name, ".enc"); ok {
			keys = append(keys, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close erases the encryption key from memory.
func (v *Vault) Close() error {
	zcrypto.Erase(v.key)
	v.key = nil
	return nil
}

// pack frames a value as flag byte, uvarint plain length, payload.
func pack(value []byte) []byte {
	head := make([]byte, 1, 1+binary.MaxVarintLen64)
	head = binary.AppendUvarint(head, uint64(len(value)))

	buf := make([]byte, lz4.CompressBlockBound(len(value)))
	n, err := lz4.CompressBlock(value, buf, nil)
	if err != nil || n == 0 || n >= len(value) {
		head[0] = frameRaw
		return append(head, value...)
	}

	head[0] = frameLZ4
	return append(head, buf[:n]...)
}

func unpack(frame []byte) ([]byte, error) {
	if len(frame) < 2 {
		return nil, errors.New("unpack: short frame")
	}

	size, n := binary.Uvarint(frame[1:])
	if n <= 0 {
		return nil, errors.New("unpack: bad length")
	}
	body := frame[1+n:]

	switch frame[0] {
	case frameRaw:
		if uint64(len(body)) != size {
			return nil, fmt.Errorf("unpack: length %d, want %d", len(body), size)
		}
		return body, nil
	case frameLZ4:
		out := make([]byte, size)
		m, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("unpack: decompress: %w", err)
		}
		if uint64(m) != size {
			return nil, fmt.Errorf("unpack: decompressed %d, want %d", m, size)
		}
		return out, nil
	}

	return nil, fmt.Errorf("unpack: unknown frame type %d", frame[0])
}

func readOrCreateSalt(fsys zfilesystem.ReadWriteFileFS) ([]byte, error) {
	salt, err := fsys.ReadFile(saltFile)
	if err == nil {
		return salt, nil
	}

	salt, err = zcrypto.RandBytes(zcrypto.SaltSize)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	if err := fsys.WriteFile(saltFile, salt, 0o600); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}

	return salt, nil
}

func verifyOrCreateToken(fsys zfilesystem.ReadWriteFileFS, key []byte) error {
	ct, err := fsys.ReadFile(verifyFile)
	if err != nil {
		// first run, create the verification token
		ct, err = zcrypto.Encrypt(key, []byte(verifyToken))
		if err != nil {
			return fmt.Errorf("encrypt verify token: %w", err)
		}

		if err := fsys.WriteFile(verifyFile, ct, 0o600); err != nil {
			return fmt.Errorf("write verify token: %w", err)
		}

		return nil
	}

	plain, err := zcrypto.Decrypt(key, ct)
	if err != nil || string(plain) != verifyToken {
		return ErrWrongPassword
	}

	return nil
}

func valuePath(key string) string {
	return dataDir + "/" + key + ".enc"
}
