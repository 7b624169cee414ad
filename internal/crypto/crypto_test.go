package crypto

import (
	"encoding/base64"
	"testing"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString(make([]byte, 32))
}

func TestNewTokenEncryptorKeyValidation(t *testing.T) {
	if _, err := NewTokenEncryptor(""); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewTokenEncryptor("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString(make([]byte, 16))
	if _, err := NewTokenEncryptor(short); err == nil {
		t.Error("expected error for 16-byte key")
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	enc, err := NewTokenEncryptor(testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	plaintext := "evolution-api-token-abc123"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if ciphertext == plaintext {
		t.Error("ciphertext equals plaintext")
	}

	got, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if got != plaintext {
		t.Errorf("expected %q, got %q", plaintext, got)
	}
}

func TestEncryptEmptyString(t *testing.T) {
	enc, _ := NewTokenEncryptor(testKey())

	ciphertext, err := enc.Encrypt("")
	if err != nil || ciphertext != "" {
		t.Errorf("expected empty passthrough, got %q, %v", ciphertext, err)
	}
	plaintext, err := enc.Decrypt("")
	if err != nil || plaintext != "" {
		t.Errorf("expected empty passthrough, got %q, %v", plaintext, err)
	}
}

func TestDecryptTampered(t *testing.T) {
	enc, _ := NewTokenEncryptor(testKey())

	ciphertext, _ := enc.Encrypt("secret-token")
	raw, _ := base64.StdEncoding.DecodeString(ciphertext)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := enc.Decrypt(tampered); err == nil {
		t.Error("expected error for tampered ciphertext")
	}

	if _, err := enc.Decrypt("AAAA"); err == nil {
		t.Error("expected error for too-short ciphertext")
	}
}
