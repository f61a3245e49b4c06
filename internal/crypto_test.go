package weverse

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- matches the encryption under test
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
)

func TestEncryptPasswordProducesPlatformShape(t *testing.T) {
	encrypted, err := EncryptPassword("hunter2")
	if err != nil {
		t.Fatalf("EncryptPassword: %v", err)
	}
	if encrypted == "hunter2" {
		t.Fatal("password left in plaintext")
	}
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		t.Fatalf("ciphertext is not valid base64: %v", err)
	}
	// the embedded platform key is 2048-bit RSA
	if len(raw) != 256 {
		t.Fatalf("expected 256 ciphertext bytes, got %d", len(raw))
	}
}

func TestEncryptPasswordIsNondeterministic(t *testing.T) {
	a, err := EncryptPassword("hunter2")
	if err != nil {
		t.Fatalf("EncryptPassword: %v", err)
	}
	b, err := EncryptPassword("hunter2")
	if err != nil {
		t.Fatalf("EncryptPassword: %v", err)
	}
	if a == b {
		t.Fatal("OAEP ciphertexts must differ between calls")
	}
}

func TestEncryptPasswordWithKeyRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	encrypted, err := EncryptPasswordWithKey("correct horse battery staple", pemKey)
	if err != nil {
		t.Fatalf("EncryptPasswordWithKey: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}
	plain, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, key, raw, nil)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(plain) != "correct horse battery staple" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestEncryptPasswordWithKeyRejectsBadInput(t *testing.T) {
	if _, err := EncryptPasswordWithKey("pw", "not a pem block"); err == nil {
		t.Error("expected error for malformed PEM")
	}

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ec key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	if err != nil {
		t.Fatalf("marshal ec key: %v", err)
	}
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	if _, err := EncryptPasswordWithKey("pw", pemKey); err == nil {
		t.Error("expected error for non-RSA key")
	}
}
