package backup

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	for _, plaintext := range [][]byte{[]byte("SQLite format 3\x00 lead rows"), {}} {
		sealed, err := Seal(plaintext, "correct horse")
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		if len(sealed) < saltSize+nonceSize+len(plaintext) {
			t.Errorf("sealed length = %d, too short", len(sealed))
		}
		if len(plaintext) > 0 && bytes.Contains(sealed, plaintext) {
			t.Error("ciphertext contains plaintext")
		}

		got, err := Open(sealed, "correct horse")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Errorf("Open = %q, want %q", got, plaintext)
		}
	}
}

func TestSealUsesFreshSalt(t *testing.T) {
	a, err := Seal([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	b, err := Seal([]byte("same"), "pass")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if bytes.Equal(a[:saltSize], b[:saltSize]) {
		t.Error("two archives share a salt")
	}
}

func TestSealRequiresPassphrase(t *testing.T) {
	if _, err := Seal([]byte("x"), ""); err == nil {
		t.Fatal("expected error for empty passphrase")
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret rows"), "right")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := Open(sealed, "wrong"); err == nil {
		t.Fatal("expected error for wrong passphrase")
	}
}

func TestOpenTampered(t *testing.T) {
	sealed, err := Seal([]byte("secret rows"), "pass")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := Open(sealed, "pass"); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestOpenTooSmall(t *testing.T) {
	if _, err := Open(make([]byte, 10), "pass"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Open error = %v, want ErrCorrupt", err)
	}
}
