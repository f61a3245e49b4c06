package weverse

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 -- OAEP hash mandated by the platform
	"crypto/x509"
	_ "embed"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// publicCert is the platform's RSA public key. Login payloads must carry the
// password encrypted against it.
//
//go:embed publiccert.pem
var publicCert string

// EncryptPassword encrypts a credential string with the embedded platform
// key and returns it base64-encoded, ready for the login payload.
func EncryptPassword(password string) (string, error) {
	return EncryptPasswordWithKey(password, publicCert)
}

// EncryptPasswordWithKey is EncryptPassword against an explicit PEM key.
func EncryptPasswordWithKey(password, pemKey string) (string, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return "", fmt.Errorf("failed to decode public key PEM")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("public key is not RSA")
	}
	// OAEP with SHA-1, matching the platform's web client.
	enc, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, key, []byte(password), nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(enc), nil
}
