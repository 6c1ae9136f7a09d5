package store

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/zarlcorp/core/pkg/zfilesystem"
)

func openTestVault(t *testing.T) (*Vault, *zfilesystem.MemFS) {
	t.Helper()
	fs := zfilesystem.NewMemFS()
	v, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v, fs
}

func TestFirstRunCreatesSaltAndVerify(t *testing.T) {
	fs := zfilesystem.NewMemFS()
	v, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	defer v.Close()

	salt, err := fs.ReadFile("salt")
	if err != nil {
		t.Fatal("salt file not created")
	}
	if len(salt) != 16 {
		t.Fatalf("salt length: got %d, want 16", len(salt))
	}

	verify, err := fs.ReadFile("verify")
	if err != nil {
		t.Fatal("verify file not created")
	}
	if len(verify) == 0 {
		t.Fatal("verify file is empty")
	}
}

func TestReopenWithCorrectPassword(t *testing.T) {
	fs := zfilesystem.NewMemFS()

	v1, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	v1.Close()

	v2, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v2.Close()
}

func TestWrongPasswordFails(t *testing.T) {
	fs := zfilesystem.NewMemFS()

	v, err := Open(fs, "correct")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	v.Close()

	_, err = Open(fs, "wrong")
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("open with wrong password: got %v, want ErrWrongPassword", err)
	}
}

func TestSetAndGet(t *testing.T) {
	v, _ := openTestVault(t)

	want := []byte(`[{"id":"abc123","first_name":"Jane"}]`)
	if err := v.Set("history", want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := v.Get("history")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("get: got %q, want %q", got, want)
	}
}

func TestSetOverwrites(t *testing.T) {
	v, _ := openTestVault(t)

	if err := v.Set("favorites", []byte("first")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := v.Set("favorites", []byte("second")); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := v.Get("favorites")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("get: got %q, want second", got)
	}
}

func TestGetNotFound(t *testing.T) {
	v, _ := openTestVault(t)

	_, err := v.Get("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get nonexistent: got %v, want ErrNotFound", err)
	}
}

func TestInvalidKeys(t *testing.T) {
	v, _ := openTestVault(t)

	for _, key := range []string{"", "History", "../salt", "a/b", "key.enc", "spa ce"} {
		t.Run(key, func(t *testing.T) {
			if err := v.Set(key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("set %q: got %v, want ErrInvalidKey", key, err)
			}
			if _, err := v.Get(key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("get %q: got %v, want ErrInvalidKey", key, err)
			}
			if err := v.Delete(key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("delete %q: got %v, want ErrInvalidKey", key, err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	v, _ := openTestVault(t)

	if err := v.Set("to-delete", []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := v.Delete("to-delete"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := v.Get("to-delete")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	v, _ := openTestVault(t)

	err := v.Delete("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete nonexistent: got %v, want ErrNotFound", err)
	}
}

func TestKeysSorted(t *testing.T) {
	v, _ := openTestVault(t)

	for _, k := range []string{"settings", "favorites", "history"} {
		if err := v.Set(k, []byte("[]")); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := v.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	want := []string{"favorites", "history", "settings"}
	if strings.Join(keys, ",") != strings.Join(want, ",") {
		t.Errorf("keys: got %v, want %v", keys, want)
	}
}

func TestKeysEmptyVault(t *testing.T) {
	v, _ := openTestVault(t)

	keys, err := v.Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("keys length: got %d, want 0", len(keys))
	}
}

func TestValuesEncryptedAtRest(t *testing.T) {
	v, fs := openTestVault(t)

	plain := []byte(strings.Repeat(`{"email":"jane.doe@tempmail.com"}`, 20))
	if err := v.Set("history", plain); err != nil {
		t.Fatalf("set: %v", err)
	}

	raw, err := fs.ReadFile("data/history.enc")
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if bytes.Contains(raw, []byte("tempmail")) {
		t.Fatal("plaintext visible in stored file")
	}
	if len(raw) >= len(plain) {
		t.Errorf("repetitive value not compressed: %d bytes stored for %d", len(raw), len(plain))
	}
}

func TestCloseErasesKey(t *testing.T) {
	fs := zfilesystem.NewMemFS()
	v, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	v.Close()

	if v.key != nil {
		t.Fatal("key not nil after close")
	}
}

func TestDataPersistsAcrossReopen(t *testing.T) {
	fs := zfilesystem.NewMemFS()

	v1, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := v1.Set("persist", []byte("kept")); err != nil {
		t.Fatalf("set: %v", err)
	}
	v1.Close()

	v2, err := Open(fs, "testpass")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer v2.Close()

	got, err := v2.Get("persist")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "kept" {
		t.Errorf("get after reopen: got %q, want kept", got)
	}
}

func TestPackRoundTrip(t *testing.T) {
	random := make([]byte, 256)
	if _, err := rand.Read(random); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value []byte
		flag  byte
	}{
		{"empty", []byte{}, frameRaw},
		{"short", []byte("ab"), frameRaw},
		{"incompressible", random, frameRaw},
		{"repetitive", bytes.Repeat([]byte("zpersona "), 100), frameLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := pack(tt.value)
			if frame[0] != tt.flag {
				t.Errorf("frame flag: got %d, want %d", frame[0], tt.flag)
			}

			got, err := unpack(frame)
			if err != nil {
				t.Fatalf("unpack: %v", err)
			}
			if !bytes.Equal(got, tt.value) {
				t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.value))
			}
		})
	}
}

func TestUnpackRejectsCorruptFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
	}{
		{"empty", nil},
		{"flag only", []byte{frameRaw}},
		{"unknown flag", []byte{9, 0}},
		{"raw length mismatch", []byte{frameRaw, 5, 'a'}},
		{"lz4 garbage", []byte{frameLZ4, 50, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := unpack(tt.frame); err == nil {
				t.Error("expected error")
			}
		})
	}
}
