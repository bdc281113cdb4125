package utils

import (
	"encoding/base64"
	"testing"
)

var cryptoTestKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := "IGQVJfirstlonglivedtoken"

	encrypted, err := Encrypt([]byte(plaintext), cryptoTestKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if encrypted == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	decrypted, err := Decrypt(encrypted, cryptoTestKey)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted != plaintext {
		t.Fatalf("round trip mismatch: %q != %q", decrypted, plaintext)
	}
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	a, err := Encrypt([]byte("same input"), cryptoTestKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := Encrypt([]byte("same input"), cryptoTestKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Fatal("two encryptions of the same input produced identical ciphertexts")
	}
}

func TestDecryptWithWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), cryptoTestKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	wrongKey := []byte("ffffffffffffffffffffffffffffffff")
	if _, err := Decrypt(encrypted, wrongKey); err == nil {
		t.Fatal("expected decryption failure with wrong key")
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	encrypted, err := Encrypt([]byte("secret"), cryptoTestKey)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		t.Fatalf("decoding ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(tampered, cryptoTestKey); err == nil {
		t.Fatal("expected decryption failure on tampered ciphertext")
	}
}

func TestDecryptTooShort(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("tiny"))
	if _, err := Decrypt(short, cryptoTestKey); err == nil {
		t.Fatal("expected error for ciphertext shorter than the nonce")
	}
}

func TestDecryptInvalidBase64(t *testing.T) {
	if _, err := Decrypt("%%%not-base64%%%", cryptoTestKey); err == nil {
		t.Fatal("expected error for invalid base64 input")
	}
}
